package testharness

import (
	"fmt"

	"github.com/terminusdb-labs/terminusdb-go/internal/storage/badger"
)

// solution is one partial variable binding produced while evaluating a WOQL
// query: the interpreter threads a slice of these through And/Select/
// Limit/Offset the same way the builder nests them, backing
// list_instances/count_instances/query_instances.
type solution map[string]interface{}

// interpreter evaluates a decoded WOQL JSON-LD query tree against one
// database/branch's stored documents.
type interpreter struct {
	store  *badger.DocumentStore
	db     string
	branch string
}

func newInterpreter(store *badger.DocumentStore, db, branch string) *interpreter {
	return &interpreter{store: store, db: db, branch: branch}
}

// Run evaluates raw and returns the resulting bindings in the wire shape
// the client's woqlResponseBody expects.
func (i *interpreter) Run(raw map[string]interface{}) ([]map[string]interface{}, error) {
	solutions, err := i.eval(raw, []solution{{}})
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, len(solutions))
	for idx, s := range solutions {
		out[idx] = map[string]interface{}(s)
	}
	return out, nil
}

func (i *interpreter) eval(raw map[string]interface{}, in []solution) ([]solution, error) {
	typ, _ := raw["@type"].(string)
	switch typ {
	case "True":
		return in, nil

	case "And":
		items, _ := raw["and"].([]interface{})
		cur := in
		for _, item := range items {
			sub, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("testharness: malformed And clause")
			}
			var err error
			cur, err = i.eval(sub, cur)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil

	case "Or":
		items, _ := raw["or"].([]interface{})
		var out []solution
		for _, item := range items {
			sub, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("testharness: malformed Or clause")
			}
			branch, err := i.eval(sub, in)
			if err != nil {
				return nil, err
			}
			out = append(out, branch...)
		}
		return out, nil

	case "IsA":
		element, _ := raw["element"].(map[string]interface{})
		class, _ := raw["type"].(map[string]interface{})
		className, _ := class["node"].(string)
		varName, isVar := element["variable"].(string)
		docs, err := i.store.ListDocuments(i.db, i.branch, className)
		if err != nil {
			return nil, err
		}
		var out []solution
		for _, s := range in {
			if !isVar {
				out = append(out, s)
				continue
			}
			for _, doc := range docs {
				id, _ := doc["@id"].(string)
				next := cloneSolution(s)
				next[varName] = id
				out = append(out, next)
			}
		}
		return out, nil

	case "Triple":
		subjectW, _ := raw["subject"].(map[string]interface{})
		predicateW, _ := raw["predicate"].(map[string]interface{})
		objectW, _ := raw["object"].(map[string]interface{})
		predName, _ := predicateW["node"].(string)

		var out []solution
		for _, s := range in {
			subjID, ok := resolveNode(subjectW, s)
			if !ok {
				continue
			}
			doc, found, err := i.store.GetDocument(i.db, i.branch, subjID)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			actual, present := doc[predName]
			if !present {
				continue
			}
			if varName, isVar := objectW["variable"].(string); isVar {
				next := cloneSolution(s)
				next[varName] = actual
				out = append(out, next)
				continue
			}
			if expected, hasData := objectW["data"]; hasData {
				if fmt.Sprint(actual) == fmt.Sprint(expected) {
					out = append(out, s)
				}
			}
		}
		return out, nil

	case "ReadDocument":
		idW, _ := raw["identifier"].(map[string]interface{})
		outW, _ := raw["document"].(map[string]interface{})
		docVar, _ := outW["variable"].(string)

		var out []solution
		for _, s := range in {
			id, ok := resolveNode(idW, s)
			if !ok {
				continue
			}
			doc, found, err := i.store.GetDocument(i.db, i.branch, id)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			next := cloneSolution(s)
			next[docVar] = doc
			out = append(out, next)
		}
		return out, nil

	case "Select":
		inner, _ := raw["query"].(map[string]interface{})
		vars, _ := raw["variables"].([]interface{})
		evaluated, err := i.eval(inner, in)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(vars))
		for _, v := range vars {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
		out := make([]solution, len(evaluated))
		for idx, s := range evaluated {
			projected := solution{}
			for _, name := range names {
				if v, ok := s[name]; ok {
					projected[name] = v
				}
			}
			out[idx] = projected
		}
		return out, nil

	case "Distinct":
		inner, _ := raw["query"].(map[string]interface{})
		return i.eval(inner, in)

	case "Limit":
		inner, _ := raw["query"].(map[string]interface{})
		limit, _ := raw["limit"].(float64)
		evaluated, err := i.eval(inner, in)
		if err != nil {
			return nil, err
		}
		if limit > 0 && int(limit) < len(evaluated) {
			return evaluated[:int(limit)], nil
		}
		return evaluated, nil

	case "Offset":
		inner, _ := raw["query"].(map[string]interface{})
		offset, _ := raw["offset"].(float64)
		evaluated, err := i.eval(inner, in)
		if err != nil {
			return nil, err
		}
		n := int(offset)
		if n >= len(evaluated) {
			return nil, nil
		}
		return evaluated[n:], nil

	case "Using":
		inner, _ := raw["query"].(map[string]interface{})
		return i.eval(inner, in)

	case "Count":
		inner, _ := raw["query"].(map[string]interface{})
		countW, _ := raw["count"].(map[string]interface{})
		countVar, _ := countW["variable"].(string)
		evaluated, err := i.eval(inner, in)
		if err != nil {
			return nil, err
		}
		return []solution{{countVar: float64(len(evaluated))}}, nil

	case "Not":
		inner, _ := raw["query"].(map[string]interface{})
		evaluated, err := i.eval(inner, in)
		if err != nil {
			return nil, err
		}
		if len(evaluated) == 0 {
			return in, nil
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("testharness: unsupported WOQL node %q", typ)
	}
}

// resolveNode resolves a Variable/Node wire value to a bound node-id string,
// either from the current solution or from a literal node IRI.
func resolveNode(w map[string]interface{}, s solution) (string, bool) {
	if name, ok := w["variable"].(string); ok {
		v, bound := s[name]
		if !bound {
			return "", false
		}
		id, ok := v.(string)
		return id, ok
	}
	if node, ok := w["node"].(string); ok {
		return node, true
	}
	return "", false
}

func cloneSolution(s solution) solution {
	next := make(solution, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	return next
}
