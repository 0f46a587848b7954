package instance

import "github.com/terminusdb-labs/terminusdb-go/schema"

// ResolverFromSchemas builds a Resolver backed by a fixed set of schemas —
// typically schema.Tree[T]()'s output — so FromJSONLD can look up any
// class reachable from a typed root without a caller-maintained registry.
func ResolverFromSchemas(schemas []schema.Schema) Resolver {
	byName := make(map[string]schema.Schema, len(schemas))
	for _, s := range schemas {
		byName[s.ClassName] = s
	}
	return func(class string) (schema.Schema, bool) {
		s, ok := byName[class]
		return s, ok
	}
}
