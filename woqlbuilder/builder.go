// Package woqlbuilder provides the fluent query builder over the woql AST:
// a Builder that accumulates triples/combinators and a handful of helper
// functions standing in for the derive's query-construction macros.
package woqlbuilder

import (
	"fmt"

	"github.com/terminusdb-labs/terminusdb-go/woql"
)

// Builder accumulates WOQL clauses and finalizes them into a single Query,
// implicitly And-ing every clause added so far.
type Builder struct {
	clauses []*woql.Query
	err     error

	usingCollection string
	selectVars      []string
	hasLimit        bool
	limitN          uint64
	hasOffset       bool
	offsetN         uint64
}

// New starts an empty builder.
func New() *Builder { return &Builder{} }

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Triple adds a Triple clause. s and p must be Variable or Node values; any
// other kind fails construction.
func (b *Builder) Triple(s, p, o woql.Value) *Builder {
	sn, err := woql.AsNodeValue(s)
	if err != nil {
		return b.fail(fmt.Errorf("triple subject: %w", err))
	}
	pn, err := woql.AsNodeValue(p)
	if err != nil {
		return b.fail(fmt.Errorf("triple predicate: %w", err))
	}
	b.clauses = append(b.clauses, woql.Triple(sn, pn, o))
	return b
}

// IsA adds a type-membership clause.
func (b *Builder) IsA(element, class woql.Value) *Builder {
	en, err := woql.AsNodeValue(element)
	if err != nil {
		return b.fail(fmt.Errorf("isa element: %w", err))
	}
	cn, err := woql.AsNodeValue(class)
	if err != nil {
		return b.fail(fmt.Errorf("isa class: %w", err))
	}
	b.clauses = append(b.clauses, woql.IsA(en, cn))
	return b
}

// ReadDocument adds a document-read clause binding id's document into out.
func (b *Builder) ReadDocument(id, out woql.Value) *Builder {
	idn, err := woql.AsNodeValue(id)
	if err != nil {
		return b.fail(fmt.Errorf("read_document id: %w", err))
	}
	b.clauses = append(b.clauses, woql.ReadDocument(idn, out))
	return b
}

// Eq adds an equality constraint.
func (b *Builder) Eq(a, v woql.Value) *Builder {
	b.clauses = append(b.clauses, woql.Equals(a, v))
	return b
}

// Using scopes the finalized query to a specific collection.
func (b *Builder) Using(collection string) *Builder {
	b.usingCollection = collection
	return b
}

// Select restricts the finalized query's output variables.
func (b *Builder) Select(vars ...string) *Builder {
	b.selectVars = vars
	return b
}

// Limit caps the finalized query's result count.
func (b *Builder) Limit(n uint64) *Builder {
	b.hasLimit, b.limitN = true, n
	return b
}

// Offset skips the first n results of the finalized query.
func (b *Builder) Offset(n uint64) *Builder {
	b.hasOffset, b.offsetN = true, n
	return b
}

// Or builds a disjunction of the given sub-builders' finalized queries.
func Or(builders ...*Builder) *Builder {
	b := New()
	qs := make([]*woql.Query, 0, len(builders))
	for _, sub := range builders {
		q, err := sub.Finalize()
		if err != nil {
			return b.fail(err)
		}
		qs = append(qs, q)
	}
	b.clauses = []*woql.Query{woql.Or(qs...)}
	return b
}

// Not wraps sub's finalized query in a negation.
func Not(sub *Builder) *Builder {
	b := New()
	q, err := sub.Finalize()
	if err != nil {
		return b.fail(err)
	}
	b.clauses = []*woql.Query{woql.Not(q)}
	return b
}

// Finalize builds the accumulated clauses into a single Query, applying
// Using/Select/Limit/Offset wrappers outermost-to-innermost in that order —
// matching how the document-instance client composes list/count queries.
func (b *Builder) Finalize() (*woql.Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	var inner *woql.Query
	switch len(b.clauses) {
	case 0:
		inner = woql.TrueQuery()
	case 1:
		inner = b.clauses[0]
	default:
		inner = woql.And(b.clauses...)
	}

	if b.hasOffset {
		inner = woql.Offset(b.offsetN, inner)
	}
	if b.hasLimit {
		inner = woql.Limit(b.limitN, inner)
	}
	if b.selectVars != nil {
		inner = woql.Select(b.selectVars, inner)
	}
	if b.usingCollection != "" {
		inner = woql.Using(b.usingCollection, inner)
	}
	return inner, nil
}
