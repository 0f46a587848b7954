package instance

// BuildInstanceTree performs a depth-first walk that collects root and every
// instance reachable through its relation properties, in visit order,
// without altering any of them.
func BuildInstanceTree(root *Instance) []*Instance {
	var out []*Instance
	var walk func(*Instance)
	walk = func(in *Instance) {
		if in == nil {
			return
		}
		out = append(out, in)
		for _, p := range in.Properties {
			walkProperty(p, walk)
		}
	}
	walk(root)
	return out
}

func walkProperty(p Property, visit func(*Instance)) {
	switch p.Kind {
	case KindRelation:
		walkRelation(p.Relation, visit)
	case KindRelations:
		for _, r := range p.Relations {
			walkRelation(r, visit)
		}
	case KindAny:
		for _, a := range p.Any {
			walkProperty(a, visit)
		}
	}
}

func walkRelation(r RelationValue, visit func(*Instance)) {
	switch r.Kind {
	case RelationOne:
		visit(r.One)
	case RelationMore:
		for _, child := range r.More {
			visit(child)
		}
	}
}

// Flatten replaces every owning relation from root to a non-embed-preserving
// child with a bare ExternalReference, returning root (with those relations
// rewritten) followed by the removed children as standalone instances ready
// for bulk insert. Embed-preserving children — subdocuments,
// and tagged-union instances whose active variant is a subdocument — are
// left in place with all of their own data.
//
// When recurse is true, children that were themselves extracted are
// flattened in turn. A non-embed-preserving child that has no id cannot be
// replaced by a reference, so it stays embedded in its parent.
func Flatten(root *Instance, recurse bool) []*Instance {
	if root == nil {
		return nil
	}

	working := *root
	var extracted []*Instance
	newProps := make(map[string]Property, len(root.Properties))
	for k, p := range root.Properties {
		newProps[k] = flattenProperty(p, &extracted)
	}
	working.Properties = newProps

	result := []*Instance{&working}
	for _, child := range extracted {
		if recurse {
			result = append(result, Flatten(child, true)...)
		} else {
			result = append(result, child)
		}
	}
	return result
}

func flattenProperty(p Property, extracted *[]*Instance) Property {
	switch p.Kind {
	case KindRelation:
		if p.Relation.Kind == RelationMore {
			return flattenMoreToRelations(p.Relation.More, extracted)
		}
		p.Relation = flattenRelation(p.Relation, extracted)
		return p
	case KindRelations:
		newRels := make([]RelationValue, 0, len(p.Relations))
		for _, r := range p.Relations {
			if r.Kind == RelationMore {
				expanded := flattenMoreToRelations(r.More, extracted)
				newRels = append(newRels, expanded.Relations...)
				continue
			}
			newRels = append(newRels, flattenRelation(r, extracted))
		}
		p.Relations = newRels
		return p
	case KindAny:
		newAny := make([]Property, len(p.Any))
		for i, a := range p.Any {
			newAny[i] = flattenProperty(a, extracted)
		}
		p.Any = newAny
		return p
	default:
		return p
	}
}

// flattenMoreToRelations converts a single RelationMore (one property field
// pointing at several instances at once) into the Relations-list container:
// embed-preserving children stay as RelationOne entries with their own
// relations flattened, everything else is removed from the parent property
// and appended to extracted as a standalone instance referenced by id.
func flattenMoreToRelations(children []*Instance, extracted *[]*Instance) Property {
	out := make([]RelationValue, 0, len(children))
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.EmbedPreserving {
			out = append(out, RelationValue{Kind: RelationOne, One: flattenEmbeddedChild(child, extracted)})
			continue
		}
		if !child.HasID {
			// Cannot externalize a child with no id; keep it embedded
			// rather than silently drop data.
			out = append(out, RelationValue{Kind: RelationOne, One: flattenEmbeddedChild(child, extracted)})
			continue
		}
		*extracted = append(*extracted, child)
		out = append(out, RelationValue{Kind: RelationExternalRef, RefID: child.ID})
	}
	return Property{Kind: KindRelations, Relations: out}
}

func flattenRelation(r RelationValue, extracted *[]*Instance) RelationValue {
	if r.Kind != RelationOne || r.One == nil {
		return r
	}
	child := r.One
	if child.EmbedPreserving {
		return RelationValue{Kind: RelationOne, One: flattenEmbeddedChild(child, extracted)}
	}
	if !child.HasID {
		return r
	}
	*extracted = append(*extracted, child)
	return RelationValue{Kind: RelationExternalRef, RefID: child.ID}
}

// flattenEmbeddedChild recursively flattens an embed-preserving child's own
// relation properties in place, without extracting the child itself.
func flattenEmbeddedChild(child *Instance, extracted *[]*Instance) *Instance {
	nested := *child
	newProps := make(map[string]Property, len(nested.Properties))
	for k, p := range nested.Properties {
		newProps[k] = flattenProperty(p, extracted)
	}
	nested.Properties = newProps
	return &nested
}
