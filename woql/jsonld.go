package woql

import "fmt"

// ToJSONLD renders a Query tree into its wire JSON-LD form: every
// node is {"@type": "<Variant>", ...lowercased fields}.
func (q *Query) ToJSONLD() (map[string]interface{}, error) {
	if q == nil {
		return nil, fmt.Errorf("woql: nil query")
	}
	switch q.kind {
	case "Triple":
		out := map[string]interface{}{
			"@type":     "Triple",
			"subject":   q.Triple.Subject.toJSONLD(),
			"predicate": q.Triple.Predicate.toJSONLD(),
			"object":    q.Triple.Object.toJSONLD(),
		}
		if q.Triple.HasGraph {
			out["graph"] = string(q.Triple.Graph)
		}
		return out, nil
	case "IsA":
		return map[string]interface{}{
			"@type":   "IsA",
			"element": q.IsA.Element.toJSONLD(),
			"type":    q.IsA.Type.toJSONLD(),
		}, nil
	case "Equals":
		return map[string]interface{}{
			"@type": "Equals",
			"left":  q.Equals.Left.toJSONLD(),
			"right": q.Equals.Right.toJSONLD(),
		}, nil
	case "Less":
		return map[string]interface{}{
			"@type": "Less",
			"left":  q.Less.Left.toJSONLD(),
			"right": q.Less.Right.toJSONLD(),
		}, nil
	case "Greater":
		return map[string]interface{}{
			"@type": "Greater",
			"left":  q.Greater.Left.toJSONLD(),
			"right": q.Greater.Right.toJSONLD(),
		}, nil
	case "Regexp":
		out := map[string]interface{}{
			"@type":   "Regexp",
			"pattern": q.Regexp.Pattern,
			"input":   q.Regexp.Input.toJSONLD(),
		}
		if q.Regexp.Result != nil {
			out["result"] = q.Regexp.Result.toJSONLD()
		}
		return out, nil
	case "True":
		return map[string]interface{}{"@type": "True"}, nil
	case "And":
		return combinatorList("And", "and", q.And)
	case "Or":
		return combinatorList("Or", "or", q.Or)
	case "Not":
		inner, err := q.Not.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "Not", "query": inner}, nil
	case "If":
		cond, err := q.If.Cond.ToJSONLD()
		if err != nil {
			return nil, err
		}
		then, err := q.If.Then.ToJSONLD()
		if err != nil {
			return nil, err
		}
		els, err := q.If.Else.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "If", "test": cond, "then": then, "else": els}, nil
	case "WoqlOptional":
		inner, err := q.WoqlOptional.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "WoqlOptional", "query": inner}, nil
	case "Select":
		inner, err := q.Select.Query.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "Select", "variables": q.Select.Variables, "query": inner}, nil
	case "Distinct":
		inner, err := q.Distinct.Query.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "Distinct", "variables": q.Distinct.Variables, "query": inner}, nil
	case "Limit":
		inner, err := q.Limit.Query.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "Limit", "limit": q.Limit.Limit, "query": inner}, nil
	case "Offset":
		inner, err := q.Offset.Query.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "Offset", "offset": q.Offset.Offset, "query": inner}, nil
	case "Count":
		inner, err := q.Count.Query.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "Count", "query": inner, "count": q.Count.Out.toJSONLD()}, nil
	case "Typecast":
		return map[string]interface{}{
			"@type": "Typecast",
			"value": q.Typecast.Value.toJSONLD(),
			"type":  q.Typecast.Type,
			"result": q.Typecast.Out.toJSONLD(),
		}, nil
	case "Immediately":
		inner, err := q.Immediately.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "Immediately", "query": inner}, nil
	case "Using":
		inner, err := q.Using.Query.ToJSONLD()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@type": "Using", "collection": q.Using.Collection, "query": inner}, nil
	case "ReadDocument":
		return map[string]interface{}{
			"@type":    "ReadDocument",
			"identifier": q.ReadDocument.ID.toJSONLD(),
			"document": q.ReadDocument.Out.toJSONLD(),
		}, nil
	case "InsertDocument":
		out := map[string]interface{}{
			"@type":    "InsertDocument",
			"document": q.InsertDocument.Document.toJSONLD(),
		}
		if q.InsertDocument.Out != nil {
			out["identifier"] = q.InsertDocument.Out.toJSONLD()
		}
		return out, nil
	case "UpdateDocument":
		out := map[string]interface{}{
			"@type":    "UpdateDocument",
			"document": q.UpdateDocument.Document.toJSONLD(),
		}
		if q.UpdateDocument.Out != nil {
			out["identifier"] = q.UpdateDocument.Out.toJSONLD()
		}
		return out, nil
	case "DeleteDocument":
		return map[string]interface{}{
			"@type":      "DeleteDocument",
			"identifier": q.DeleteDocument.ID.toJSONLD(),
		}, nil
	default:
		return nil, fmt.Errorf("woql: unknown query kind %q", q.kind)
	}
}

func combinatorList(typeName, field string, queries []Query) (map[string]interface{}, error) {
	items := make([]interface{}, len(queries))
	for i := range queries {
		v, err := queries[i].ToJSONLD()
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return map[string]interface{}{"@type": typeName, field: items}, nil
}
