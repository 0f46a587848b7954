// Package iri parses and formats the typed document identifiers TerminusDB
// uses on the wire: bare "Type/id" paths, fragment- and path-based IRIs with
// a base, and the multi-segment paths subdocuments produce.
package iri

import (
	"fmt"
	"strings"
)

// DefaultDataBase is the base IRI prefix applied by WithDefaultBase when an
// IRI carries no base of its own.
const DefaultDataBase = "terminusdb:///data"

// IRI is a parsed TerminusDB document identifier.
type IRI struct {
	base            string
	hasBase         bool
	isFragmentBased bool
	typedPath       string
	typeName        string
	id              string
	parentPath      string
	hasParentPath   bool
}

// Base returns the IRI's base URI and whether one is present.
func (i IRI) Base() (string, bool) { return i.base, i.hasBase }

// TypedPath returns the complete "Type/id[...]" path, without the base.
func (i IRI) TypedPath() string { return i.typedPath }

// TypeName returns the final type in the path.
func (i IRI) TypeName() string { return i.typeName }

// ID returns the final segment (the document id) in the path.
func (i IRI) ID() string { return i.id }

// ParentPath returns the subdocument's parent path, if any.
func (i IRI) ParentPath() (string, bool) { return i.parentPath, i.hasParentPath }

// IsSubdocument reports whether this IRI addresses a subdocument.
func (i IRI) IsSubdocument() bool { return i.hasParentPath }

// Parse parses a bare typed path or a full IRI into its components.
//
// Accepted forms:
//
//	TypeName/id
//	base://...#TypeName/id                (fragment-based)
//	base:///.../TypeName/id               (path-based; base ends at the
//	                                        first path segment starting
//	                                        with an uppercase letter)
//	A/1/b/B/2/.../D/4                      (subdocument path; the last two
//	                                        segments are type/id)
func Parse(s string) (IRI, error) {
	if !strings.Contains(s, "/") {
		return IRI{}, fmt.Errorf("invalid iri format: no type information in %q", s)
	}

	if strings.Contains(s, "://") || strings.Contains(s, ":_//") {
		return parseFullIRI(s)
	}
	return parseTypedPath(s, "", false)
}

func parseFullIRI(s string) (IRI, error) {
	if idx := strings.Index(s, "#"); idx >= 0 {
		base := s[:idx]
		typedPath := s[idx+1:]
		out, err := parseTypedPath(typedPath, base, true)
		if err != nil {
			return IRI{}, err
		}
		out.isFragmentBased = true
		return out, nil
	}

	// Path-based: base ends at the first segment that starts with an
	// uppercase letter and contains no ':'.
	parts := strings.Split(s, "/")
	docStart := -1
	for i, part := range parts {
		if part == "" || strings.Contains(part, ":") {
			continue
		}
		if part[0] >= 'A' && part[0] <= 'Z' {
			docStart = i
			break
		}
	}
	if docStart < 0 {
		return IRI{}, fmt.Errorf("could not find document path in iri %q", s)
	}

	typedPath := strings.Join(parts[docStart:], "/")
	baseEnd := strings.Index(s, typedPath)
	if baseEnd < 0 {
		return IRI{}, fmt.Errorf("failed to extract base uri from %q", s)
	}
	base := s[:baseEnd]
	if strings.HasSuffix(base, "/") && len(base) > 1 {
		base = base[:len(base)-1]
	}

	out, err := parseTypedPath(typedPath, base, true)
	if err != nil {
		return IRI{}, err
	}
	out.isFragmentBased = false
	return out, nil
}

func parseTypedPath(typedPath, base string, hasBase bool) (IRI, error) {
	parts := strings.Split(typedPath, "/")
	if len(parts) < 2 {
		return IRI{}, fmt.Errorf("invalid typed path format: %q", typedPath)
	}

	out := IRI{
		base:      base,
		hasBase:   hasBase,
		typedPath: typedPath,
	}

	if len(parts) == 2 {
		out.typeName = parts[0]
		out.id = parts[1]
		return out, nil
	}

	typeIdx := len(parts) - 2
	idIdx := len(parts) - 1
	out.typeName = parts[typeIdx]
	out.id = parts[idIdx]
	if typeIdx > 0 {
		out.parentPath = strings.Join(parts[:typeIdx], "/")
		out.hasParentPath = true
	}
	return out, nil
}

// String reconstructs the IRI. Parsing the result again yields an equal IRI.
func (i IRI) String() string {
	if !i.hasBase {
		return i.typedPath
	}
	if i.isFragmentBased {
		return i.base + "#" + i.typedPath
	}
	return i.base + "/" + i.typedPath
}

// WithDefaultBase returns i with DefaultDataBase applied if i has no base.
// Idempotent: if i already has a base, it is returned unchanged.
func (i IRI) WithDefaultBase() IRI {
	return i.WithBase(DefaultDataBase)
}

// WithBase returns i with base applied if i has no base of its own.
// Idempotent: if i already has a base, it is returned unchanged.
func (i IRI) WithBase(base string) IRI {
	if i.hasBase {
		return i
	}
	out := i
	out.base = base
	out.hasBase = true
	out.isFragmentBased = false
	return out
}
