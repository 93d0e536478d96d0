// Package dsl parses model files into a model.DomainList.
//
// A model file declares entities, records with typed fields, and enums,
// ordered sets of constants:
//
//	entity User {
//	    String name
//	    Integer age
//	}
//	enum State {
//	    ACTIVE
//	    BLOCKED
//	}
//
// Declarations inside a body are separated by line breaks. A body whose first
// declaration sits on the line of the opening brace may list its declarations
// separated by plain whitespace instead:
//
//	enum State { ACTIVE BLOCKED }
//
// The parser is a hand-rolled, single-pass recursive-descent parser over a
// lazy Lexer. The words entity and enum are keywords only where a domain
// declaration may start; inside a body they are ordinary identifiers.
// Field types are not checked and references to other domains are not
// resolved.
//
// Usage:
//
//	domains, err := dsl.ParseString(src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	user, _ := domains.DomainByName("User")
package dsl
