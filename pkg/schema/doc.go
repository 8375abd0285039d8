// Package schema describes the shape of a store's state tree.
//
// A Schema maps top-level keys to types. Nested records are described with
// Object, so a whole tree can be checked in one pass:
//
//	todos := schema.Schema{
//	    "entities": schema.Optional(schema.Any()),
//	    "ids":      schema.Slice(schema.String()),
//	    "ui": schema.Object(schema.Schema{
//	        "filter": schema.String(),
//	    }),
//	}
//
//	if err := schema.Validate(todos, tree); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // e.Key is the dotted path below the store, e.g. "ui.filter"
//	    }
//	}
//
// Schemas can also be parsed from type strings, which is how they are
// written in configuration:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "loading": "bool",
//	    "skills":  "[string]",
//	    "error":   "any?",
//	})
//
// A trailing "?" marks a key optional. store.WithSchema attaches a schema to
// a store, and every commit that would break it is rejected.
package schema
