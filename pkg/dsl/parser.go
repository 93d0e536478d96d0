package dsl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/TechXTT/mdsl/pkg/model"
)

// Parse reads model source from r and returns the domains it declares.
// Failures are one of *LexError, *UnexpectedTokenError, *MissingTypeError,
// *UnexpectedEOFError, *DuplicateDomainError or *DuplicateAttributeError.
func Parse(r io.Reader) (*model.DomainList, error) {
	p := &parser{
		lex:     NewLexer(r),
		domains: model.NewListBuilder(),
	}
	return p.parseDocument()
}

// ParseString parses model source held in a string.
func ParseString(src string) (*model.DomainList, error) {
	return Parse(strings.NewReader(src))
}

// ParseBytes parses model source held in a byte slice.
func ParseBytes(src []byte) (*model.DomainList, error) {
	return Parse(bytes.NewReader(src))
}

type parser struct {
	lex     *Lexer
	domains *model.ListBuilder
}

func (p *parser) peek() (Token, error) { return p.lex.Peek() }
func (p *parser) next() (Token, error) { return p.lex.Next() }

func describe(tok Token) string {
	if tok.Kind == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s (%q)", tok.Kind, tok.Text)
}

func unexpected(tok Token, expected, msg string) error {
	return &UnexpectedTokenError{
		ParseError: ParseError{Message: msg, Pos: tok.Pos},
		Expected:   expected,
		Got:        describe(tok),
	}
}

func unexpectedEOF(tok Token, domain string) error {
	return &UnexpectedEOFError{
		ParseError: ParseError{
			Message: fmt.Sprintf("unexpected end of input: block %s is not closed", domain),
			Pos:     tok.Pos,
		},
		Domain: domain,
	}
}

func (p *parser) parseDocument() (*model.DomainList, error) {
	for {
		p.lex.SetDeclarationContext(true)
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokenEOF {
			return p.domains.Build(), nil
		}
		d, err := p.parseDomain()
		if err != nil {
			return nil, err
		}
		if err := p.domains.Add(d); err != nil {
			return nil, err
		}
	}
}

// parseDomain parses `("entity" | "enum") IDENTIFIER "{" body "}"`.
func (p *parser) parseDomain() (*model.Domain, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}
	var kind model.Kind
	switch kw.Kind {
	case TokenEntity:
		kind = model.Entity
	case TokenEnum:
		kind = model.Enum
	default:
		return nil, unexpected(kw, "'entity' or 'enum'", "")
	}

	// The domain name and everything up to the closing brace is read with
	// keywords disabled, so `entity` and `enum` are plain identifiers there.
	p.lex.SetDeclarationContext(false)

	nameTok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch nameTok.Kind {
	case TokenIdentifier:
	case TokenEOF:
		return nil, unexpectedEOF(nameTok, kw.Text)
	default:
		return nil, unexpected(nameTok, "domain name", "")
	}
	if first, ok := p.domains.Lookup(nameTok.Text); ok {
		return nil, &DuplicateDomainError{
			ParseError: ParseError{
				Message: fmt.Sprintf("domain %q already declared at line %d, col %d", nameTok.Text, first.Line, first.Column),
				Pos:     nameTok.Pos,
			},
			Name:  nameTok.Text,
			First: first,
		}
	}

	lbrace, err := p.next()
	if err != nil {
		return nil, err
	}
	switch lbrace.Kind {
	case TokenLBrace:
	case TokenEOF:
		return nil, unexpectedEOF(lbrace, nameTok.Text)
	default:
		return nil, unexpected(lbrace, TokenLBrace.String(), "")
	}

	b := model.NewDomainBuilder(nameTok.Text, kind, nameTok.Pos)
	if err := p.parseBody(b); err != nil {
		return nil, err
	}
	return b.Build()
}

// parseBody consumes declarations up to and including the closing brace.
//
// A body whose first declaration shares the line of the opening brace is
// inline: declarations are separated by whitespace alone. Otherwise each
// declaration must start on its own line.
func (p *parser) parseBody(b *model.DomainBuilder) error {
	inline := false
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokenRBrace:
			_, _ = p.next()
			if b.Len() == 0 {
				return unexpected(tok, "attribute declaration", fmt.Sprintf("%s %s has an empty body", b.Kind(), b.Name()))
			}
			return nil
		case TokenEOF:
			return unexpectedEOF(tok, b.Name())
		case TokenIdentifier:
		default:
			return unexpected(tok, "attribute declaration", "")
		}

		if b.Len() == 0 {
			inline = !tok.LineBreak
		} else if !inline && !tok.LineBreak {
			return unexpected(tok, "line break", fmt.Sprintf("declaration in %s continues past its line", b.Name()))
		}

		if b.Kind() == model.Entity {
			err = p.parseEntityLine(b, inline)
		} else {
			err = p.parseEnumLine(b)
		}
		if err != nil {
			return err
		}
	}
}

// parseEntityLine parses `TYPE_IDENTIFIER IDENTIFIER`.
func (p *parser) parseEntityLine(b *model.DomainBuilder, inline bool) error {
	typeTok, err := p.next()
	if err != nil {
		return err
	}
	nameTok, err := p.peek()
	if err != nil {
		return err
	}
	if nameTok.Kind == TokenEOF {
		return unexpectedEOF(nameTok, b.Name())
	}
	if nameTok.Kind != TokenIdentifier || (!inline && nameTok.LineBreak) {
		// A lone identifier is taken as the field name.
		return &MissingTypeError{
			ParseError: ParseError{
				Message: fmt.Sprintf("field %q of %s has no type", typeTok.Text, b.Name()),
				Pos:     typeTok.Pos,
			},
			Domain: b.Name(),
			Name:   typeTok.Text,
		}
	}
	_, _ = p.next()
	return p.add(b, nameTok, b.AddField(typeTok.Text, nameTok.Text, nameTok.Pos))
}

// parseEnumLine parses `IDENTIFIER`.
func (p *parser) parseEnumLine(b *model.DomainBuilder) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	return p.add(b, tok, b.AddConstant(tok.Text, tok.Pos))
}

func (p *parser) add(b *model.DomainBuilder, tok Token, err error) error {
	var dup *model.DuplicateNameError
	if errors.As(err, &dup) {
		return &DuplicateAttributeError{
			ParseError: ParseError{
				Message: fmt.Sprintf("attribute %q of %s already declared at line %d, col %d", dup.Name, b.Name(), dup.First.Line, dup.First.Column),
				Pos:     tok.Pos,
				Cause:   err,
			},
			Domain: b.Name(),
			Name:   dup.Name,
			First:  dup.First,
		}
	}
	return err
}
