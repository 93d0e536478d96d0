package dsl

import "github.com/TechXTT/mdsl/pkg/model"

// TokenKind identifies the type of a lexical token.
type TokenKind int

const (
	TokenEOF        TokenKind = iota
	TokenIdentifier           // letter or _ followed by letters, digits, _
	TokenLBrace               // {
	TokenRBrace               // }

	// Keywords, only produced in declaration context.
	TokenEntity // entity
	TokenEnum   // enum
)

var tokenNames = map[TokenKind]string{
	TokenEOF:        "EOF",
	TokenIdentifier: "identifier",
	TokenLBrace:     "'{'",
	TokenRBrace:     "'}'",
	TokenEntity:     "'entity'",
	TokenEnum:       "'enum'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Kind TokenKind
	Text string
	Pos  model.Position
	// LineBreak is set when at least one newline precedes the token.
	LineBreak bool
}

// classify turns an identifier into a keyword token when keywords are
// allowed at the current position.
func classify(tok Token, declaration bool) Token {
	if tok.Kind != TokenIdentifier || !declaration {
		return tok
	}
	switch tok.Text {
	case "entity":
		tok.Kind = TokenEntity
	case "enum":
		tok.Kind = TokenEnum
	}
	return tok
}
