package woql

import "fmt"

// FromJSONLD decodes a WOQL JSON-LD document back into a Query, the
// inverse of ToJSONLD. Round-tripping (encode then decode) always
// reproduces an equivalent AST.
func FromJSONLD(raw map[string]interface{}) (*Query, error) {
	typ, _ := raw["@type"].(string)
	switch typ {
	case "Triple":
		s, err := valueFromJSONLD(raw["subject"])
		if err != nil {
			return nil, err
		}
		p, err := valueFromJSONLD(raw["predicate"])
		if err != nil {
			return nil, err
		}
		o, err := valueFromJSONLD(raw["object"])
		if err != nil {
			return nil, err
		}
		sn, err := AsNodeValue(s)
		if err != nil {
			return nil, err
		}
		pn, err := AsNodeValue(p)
		if err != nil {
			return nil, err
		}
		q := Triple(sn, pn, o)
		if g, ok := raw["graph"].(string); ok {
			q.Triple.Graph, q.Triple.HasGraph = GraphType(g), true
		}
		return q, nil
	case "IsA":
		el, err := nodeValueFromJSONLD(raw["element"])
		if err != nil {
			return nil, err
		}
		ty, err := nodeValueFromJSONLD(raw["type"])
		if err != nil {
			return nil, err
		}
		return IsA(el, ty), nil
	case "Equals":
		l, err := valueFromJSONLD(raw["left"])
		if err != nil {
			return nil, err
		}
		r, err := valueFromJSONLD(raw["right"])
		if err != nil {
			return nil, err
		}
		return Equals(l, r), nil
	case "Less", "Greater":
		l, err := dataValueFromJSONLD(raw["left"])
		if err != nil {
			return nil, err
		}
		r, err := dataValueFromJSONLD(raw["right"])
		if err != nil {
			return nil, err
		}
		if typ == "Less" {
			return Less(l, r), nil
		}
		return Greater(l, r), nil
	case "Regexp":
		pattern, _ := raw["pattern"].(string)
		input, err := dataValueFromJSONLD(raw["input"])
		if err != nil {
			return nil, err
		}
		var resultPtr *DataValue
		if rv, ok := raw["result"]; ok {
			result, err := dataValueFromJSONLD(rv)
			if err != nil {
				return nil, err
			}
			resultPtr = &result
		}
		return Regexp(pattern, input, resultPtr), nil
	case "True":
		return TrueQuery(), nil
	case "And":
		return combinatorFromJSONLD(raw, "and", And)
	case "Or":
		return combinatorFromJSONLD(raw, "or", Or)
	case "Not":
		inner, err := queryFromJSONLD(raw["query"])
		if err != nil {
			return nil, err
		}
		return Not(inner), nil
	case "If":
		cond, err := queryFromJSONLD(raw["test"])
		if err != nil {
			return nil, err
		}
		then, err := queryFromJSONLD(raw["then"])
		if err != nil {
			return nil, err
		}
		els, err := queryFromJSONLD(raw["else"])
		if err != nil {
			return nil, err
		}
		return If(cond, then, els), nil
	case "WoqlOptional":
		inner, err := queryFromJSONLD(raw["query"])
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil
	case "Select":
		inner, err := queryFromJSONLD(raw["query"])
		if err != nil {
			return nil, err
		}
		return Select(stringSlice(raw["variables"]), inner), nil
	case "Distinct":
		inner, err := queryFromJSONLD(raw["query"])
		if err != nil {
			return nil, err
		}
		return Distinct(stringSlice(raw["variables"]), inner), nil
	case "Limit":
		inner, err := queryFromJSONLD(raw["query"])
		if err != nil {
			return nil, err
		}
		return Limit(toUint64(raw["limit"]), inner), nil
	case "Offset":
		inner, err := queryFromJSONLD(raw["query"])
		if err != nil {
			return nil, err
		}
		return Offset(toUint64(raw["offset"]), inner), nil
	case "Count":
		inner, err := queryFromJSONLD(raw["query"])
		if err != nil {
			return nil, err
		}
		out, err := dataValueFromJSONLD(raw["count"])
		if err != nil {
			return nil, err
		}
		return Count(inner, out), nil
	case "Typecast":
		v, err := valueFromJSONLD(raw["value"])
		if err != nil {
			return nil, err
		}
		out, err := valueFromJSONLD(raw["result"])
		if err != nil {
			return nil, err
		}
		typeName, _ := raw["type"].(string)
		return Typecast(v, typeName, out), nil
	case "Immediately":
		inner, err := queryFromJSONLD(raw["query"])
		if err != nil {
			return nil, err
		}
		return Immediately(inner), nil
	case "Using":
		inner, err := queryFromJSONLD(raw["query"])
		if err != nil {
			return nil, err
		}
		collection, _ := raw["collection"].(string)
		return Using(collection, inner), nil
	case "ReadDocument":
		id, err := nodeValueFromJSONLD(raw["identifier"])
		if err != nil {
			return nil, err
		}
		out, err := valueFromJSONLD(raw["document"])
		if err != nil {
			return nil, err
		}
		return ReadDocument(id, out), nil
	case "InsertDocument":
		doc, err := valueFromJSONLD(raw["document"])
		if err != nil {
			return nil, err
		}
		var outPtr *Value
		if iv, ok := raw["identifier"]; ok {
			out, err := valueFromJSONLD(iv)
			if err != nil {
				return nil, err
			}
			outPtr = &out
		}
		return InsertDocument(doc, outPtr), nil
	case "UpdateDocument":
		doc, err := valueFromJSONLD(raw["document"])
		if err != nil {
			return nil, err
		}
		var outPtr *Value
		if iv, ok := raw["identifier"]; ok {
			out, err := valueFromJSONLD(iv)
			if err != nil {
				return nil, err
			}
			outPtr = &out
		}
		return UpdateDocument(doc, outPtr), nil
	case "DeleteDocument":
		id, err := nodeValueFromJSONLD(raw["identifier"])
		if err != nil {
			return nil, err
		}
		return DeleteDocument(id), nil
	default:
		return nil, fmt.Errorf("woql: unknown @type %q", typ)
	}
}

func queryFromJSONLD(v interface{}) (*Query, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("woql: expected query object")
	}
	return FromJSONLD(m)
}

func combinatorFromJSONLD(raw map[string]interface{}, field string, build func(...*Query) *Query) (*Query, error) {
	items, ok := raw[field].([]interface{})
	if !ok {
		return nil, fmt.Errorf("woql: expected array for %q", field)
	}
	queries := make([]*Query, len(items))
	for i, it := range items {
		q, err := queryFromJSONLD(it)
		if err != nil {
			return nil, err
		}
		queries[i] = q
	}
	return build(queries...), nil
}

func valueFromJSONLD(v interface{}) (Value, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Value{}, fmt.Errorf("woql: expected value object")
	}
	if variable, ok := m["variable"].(string); ok {
		return Var(variable), nil
	}
	if node, ok := m["node"].(string); ok {
		return Node(node), nil
	}
	if list, ok := m["list"].([]interface{}); ok {
		vs := make([]Value, len(list))
		for i, it := range list {
			sub, err := valueFromJSONLD(it)
			if err != nil {
				return Value{}, err
			}
			vs[i] = sub
		}
		return List(vs...), nil
	}
	if data, ok := m["data"]; ok {
		return Data(data), nil
	}
	return Value{}, fmt.Errorf("woql: value object has no recognized field")
}

func nodeValueFromJSONLD(v interface{}) (NodeValue, error) {
	val, err := valueFromJSONLD(v)
	if err != nil {
		return NodeValue{}, err
	}
	return AsNodeValue(val)
}

func dataValueFromJSONLD(v interface{}) (DataValue, error) {
	val, err := valueFromJSONLD(v)
	if err != nil {
		return DataValue{}, err
	}
	return AsDataValue(val)
}

func stringSlice(v interface{}) []string {
	if ss, ok := v.([]string); ok {
		return ss
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toUint64(v interface{}) uint64 {
	switch n := v.(type) {
	case float64:
		return uint64(n)
	case uint64:
		return n
	case int:
		return uint64(n)
	default:
		return 0
	}
}
