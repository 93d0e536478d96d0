package dsl

import (
	"errors"
	"fmt"

	"github.com/TechXTT/mdsl/pkg/model"
)

// ErrorKind is a coarse classification of parse failures.
type ErrorKind string

const (
	KindLex                ErrorKind = "lex"
	KindUnexpectedToken    ErrorKind = "unexpected_token"
	KindMissingType        ErrorKind = "missing_type"
	KindUnexpectedEOF      ErrorKind = "unexpected_eof"
	KindDuplicateDomain    ErrorKind = "duplicate_domain"
	KindDuplicateAttribute ErrorKind = "duplicate_attribute"
)

// ParseError is embedded by every error the parser returns.
type ParseError struct {
	Message string
	Pos     model.Position
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("line %d, col %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Cause }

// LexError is returned for characters the lexer cannot scan and for read failures.
type LexError struct{ ParseError }

func (e *LexError) Kind() ErrorKind { return KindLex }

// UnexpectedTokenError is returned when the grammar does not allow a token.
type UnexpectedTokenError struct {
	ParseError
	Expected string
	Got      string
}

func (e *UnexpectedTokenError) Error() string {
	msg := fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
	if e.Message != "" {
		msg = e.Message + ": " + msg
	}
	if e.Pos.Line > 0 {
		return fmt.Sprintf("line %d, col %d: %s", e.Pos.Line, e.Pos.Column, msg)
	}
	return msg
}

func (e *UnexpectedTokenError) Kind() ErrorKind { return KindUnexpectedToken }

// MissingTypeError is returned for an entity field declared without a type.
type MissingTypeError struct {
	ParseError
	Domain string
	Name   string
}

func (e *MissingTypeError) Kind() ErrorKind { return KindMissingType }

// UnexpectedEOFError is returned when input ends inside a domain declaration.
type UnexpectedEOFError struct {
	ParseError
	Domain string
}

func (e *UnexpectedEOFError) Kind() ErrorKind { return KindUnexpectedEOF }

// DuplicateDomainError is returned when a domain name is declared twice.
// Pos is the duplicate, First the original declaration.
type DuplicateDomainError struct {
	ParseError
	Name  string
	First model.Position
}

func (e *DuplicateDomainError) Kind() ErrorKind { return KindDuplicateDomain }

// DuplicateAttributeError is returned when an attribute name repeats within a domain.
type DuplicateAttributeError struct {
	ParseError
	Domain string
	Name   string
	First  model.Position
}

func (e *DuplicateAttributeError) Kind() ErrorKind { return KindDuplicateAttribute }

// KindOf returns the kind of the first parse error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// IsKind reports whether err is a parse error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Position returns the source position attached to a parse error.
func Position(err error) (model.Position, bool) {
	var p interface{ position() model.Position }
	if errors.As(err, &p) {
		return p.position(), true
	}
	return model.Position{}, false
}

func (e *ParseError) position() model.Position { return e.Pos }
