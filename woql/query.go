package woql

// GraphType selects the instance or schema graph a Triple applies to.
type GraphType string

const (
	GraphInstance GraphType = "instance"
	GraphSchema   GraphType = "schema"
)

// Query is the WOQL AST tagged sum. Exactly one field is populated,
// matching which constructor built the value; Kind reports which.
type Query struct {
	kind string

	// leaves
	Triple struct {
		Subject   NodeValue
		Predicate NodeValue
		Object    Value
		Graph     GraphType
		HasGraph  bool
	}
	IsA struct {
		Element NodeValue
		Type     NodeValue
	}
	Equals struct{ Left, Right Value }
	Less   struct{ Left, Right DataValue }
	Greater struct{ Left, Right DataValue }
	Regexp struct {
		Pattern string
		Input   DataValue
		Result  *DataValue
	}
	Trim struct{ Input, Output DataValue }
	True struct{}

	// combinators
	And []Query
	Or  []Query
	Not *Query
	If  struct{ Cond, Then, Else *Query }
	WoqlOptional *Query
	Select struct {
		Variables []string
		Query     *Query
	}
	Distinct struct {
		Variables []string
		Query     *Query
	}
	Limit struct {
		Limit uint64
		Query *Query
	}
	Offset struct {
		Offset uint64
		Query  *Query
	}
	Count struct {
		Query *Query
		Out   DataValue
	}
	Typecast struct {
		Value Value
		Type  string
		Out   Value
	}
	Immediately *Query
	Using       struct {
		Collection string
		Query      *Query
	}

	ReadDocument struct {
		ID  NodeValue
		Out Value
	}
	InsertDocument struct {
		Document Value
		Out      *Value
	}
	UpdateDocument struct {
		Document Value
		Out      *Value
	}
	DeleteDocument struct {
		ID NodeValue
	}
}

// Kind reports which variant of the tagged sum this Query holds.
func (q *Query) Kind() string { return q.kind }

func Triple(s, p NodeValue, o Value) *Query {
	q := &Query{kind: "Triple"}
	q.Triple.Subject, q.Triple.Predicate, q.Triple.Object = s, p, o
	return q
}

func TripleInGraph(s, p NodeValue, o Value, g GraphType) *Query {
	q := Triple(s, p, o)
	q.Triple.Graph, q.Triple.HasGraph = g, true
	return q
}

func IsA(element, typ NodeValue) *Query {
	q := &Query{kind: "IsA"}
	q.IsA.Element, q.IsA.Type = element, typ
	return q
}

func Equals(a, b Value) *Query {
	q := &Query{kind: "Equals"}
	q.Equals.Left, q.Equals.Right = a, b
	return q
}

func Less(a, b DataValue) *Query {
	q := &Query{kind: "Less"}
	q.Less.Left, q.Less.Right = a, b
	return q
}

func Greater(a, b DataValue) *Query {
	q := &Query{kind: "Greater"}
	q.Greater.Left, q.Greater.Right = a, b
	return q
}

func Regexp(pattern string, input DataValue, result *DataValue) *Query {
	q := &Query{kind: "Regexp"}
	q.Regexp.Pattern, q.Regexp.Input, q.Regexp.Result = pattern, input, result
	return q
}

func TrueQuery() *Query { return &Query{kind: "True"} }

func And(qs ...*Query) *Query {
	flat := make([]Query, len(qs))
	for i, q := range qs {
		flat[i] = *q
	}
	return &Query{kind: "And", And: flat}
}

func Or(qs ...*Query) *Query {
	flat := make([]Query, len(qs))
	for i, q := range qs {
		flat[i] = *q
	}
	return &Query{kind: "Or", Or: flat}
}

func Not(inner *Query) *Query {
	return &Query{kind: "Not", Not: inner}
}

func If(cond, then, els *Query) *Query {
	q := &Query{kind: "If"}
	q.If.Cond, q.If.Then, q.If.Else = cond, then, els
	return q
}

func Optional(inner *Query) *Query {
	return &Query{kind: "WoqlOptional", WoqlOptional: inner}
}

func Select(vars []string, inner *Query) *Query {
	q := &Query{kind: "Select"}
	q.Select.Variables, q.Select.Query = vars, inner
	return q
}

func Distinct(vars []string, inner *Query) *Query {
	q := &Query{kind: "Distinct"}
	q.Distinct.Variables, q.Distinct.Query = vars, inner
	return q
}

func Limit(n uint64, inner *Query) *Query {
	q := &Query{kind: "Limit"}
	q.Limit.Limit, q.Limit.Query = n, inner
	return q
}

func Offset(n uint64, inner *Query) *Query {
	q := &Query{kind: "Offset"}
	q.Offset.Offset, q.Offset.Query = n, inner
	return q
}

func Count(inner *Query, out DataValue) *Query {
	q := &Query{kind: "Count"}
	q.Count.Query, q.Count.Out = inner, out
	return q
}

func Typecast(value Value, typ string, out Value) *Query {
	q := &Query{kind: "Typecast"}
	q.Typecast.Value, q.Typecast.Type, q.Typecast.Out = value, typ, out
	return q
}

func Immediately(inner *Query) *Query {
	return &Query{kind: "Immediately", Immediately: inner}
}

func Using(collection string, inner *Query) *Query {
	q := &Query{kind: "Using"}
	q.Using.Collection, q.Using.Query = collection, inner
	return q
}

func ReadDocument(id NodeValue, out Value) *Query {
	q := &Query{kind: "ReadDocument"}
	q.ReadDocument.ID, q.ReadDocument.Out = id, out
	return q
}

func InsertDocument(doc Value, out *Value) *Query {
	q := &Query{kind: "InsertDocument"}
	q.InsertDocument.Document, q.InsertDocument.Out = doc, out
	return q
}

func UpdateDocument(doc Value, out *Value) *Query {
	q := &Query{kind: "UpdateDocument"}
	q.UpdateDocument.Document, q.UpdateDocument.Out = doc, out
	return q
}

func DeleteDocument(id NodeValue) *Query {
	q := &Query{kind: "DeleteDocument"}
	q.DeleteDocument.ID = id
	return q
}
