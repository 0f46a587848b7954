// Package woql models the WOQL query AST as a tagged sum and its JSON-LD
// encoding: every variant serializes as {"@type": "<Variant>",
// "<field>": ...}, with lowercased field names except @id/@type.
package woql

import "fmt"

// Value is the general leaf value kind: a variable reference, a node (IRI),
// a data literal, or a list of values.
type Value struct {
	Variable string
	Node     string
	Data     interface{} // an xsdtype-encoded literal (bare scalar or {@type,@value})
	List     []Value

	kind valueKind
}

type valueKind int

const (
	valueNone valueKind = iota
	valueVariable
	valueNode
	valueData
	valueList
)

func Var(name string) Value  { return Value{Variable: name, kind: valueVariable} }
func Node(iri string) Value  { return Value{Node: iri, kind: valueNode} }
func Data(lit interface{}) Value { return Value{Data: lit, kind: valueData} }
func List(vs ...Value) Value { return Value{List: vs, kind: valueList} }

func (v Value) IsVariable() bool { return v.kind == valueVariable }
func (v Value) IsNode() bool     { return v.kind == valueNode }
func (v Value) IsData() bool     { return v.kind == valueData }

func (v Value) toJSONLD() map[string]interface{} {
	out := map[string]interface{}{"@type": "Value"}
	switch v.kind {
	case valueVariable:
		out["variable"] = v.Variable
	case valueNode:
		out["node"] = v.Node
	case valueData:
		out["data"] = v.Data
	case valueList:
		items := make([]interface{}, len(v.List))
		for i, e := range v.List {
			items[i] = e.toJSONLD()
		}
		out["list"] = items
	}
	return out
}

// NodeValue restricts Value to the Variable/Node subset WOQL requires for
// subject/predicate positions.
type NodeValue struct{ v Value }

func NodeVar(name string) NodeValue { return NodeValue{Var(name)} }
func NodeIRI(iri string) NodeValue  { return NodeValue{Node(iri)} }

func (n NodeValue) toJSONLD() map[string]interface{} { return n.v.toJSONLD() }

// AsNodeValue validates that v is a Variable or Node, the construction-time
// check the builder uses to reject a data literal in a node slot.
func AsNodeValue(v Value) (NodeValue, error) {
	if !v.IsVariable() && !v.IsNode() {
		return NodeValue{}, fmt.Errorf("woql: expected a node value (Variable or Node), got a data value")
	}
	return NodeValue{v}, nil
}

// DataValue restricts Value to the Variable/Data subset WOQL requires for
// literal positions.
type DataValue struct{ v Value }

func DataVar(name string) DataValue  { return DataValue{Var(name)} }
func DataLit(lit interface{}) DataValue { return DataValue{Data(lit)} }

func (d DataValue) toJSONLD() map[string]interface{} { return d.v.toJSONLD() }

// AsDataValue validates that v is a Variable or Data literal.
func AsDataValue(v Value) (DataValue, error) {
	if !v.IsVariable() && !v.IsData() {
		return DataValue{}, fmt.Errorf("woql: expected a data value (Variable or Data), got a node value")
	}
	return DataValue{v}, nil
}
