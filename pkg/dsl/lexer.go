package dsl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/TechXTT/mdsl/pkg/model"
)

// Lexer tokenizes model source into a stream of tokens. It reads its input
// lazily, one rune at a time.
type Lexer struct {
	src  io.RuneReader
	line int // current line (1-based)
	col  int // current column (1-based)
	off  int // current byte offset

	ch    rune // lookahead rune, valid when hasCh
	chLen int
	hasCh bool
	err   error // sticky read error

	declaration bool
	peeked      *Token
}

// NewLexer creates a Lexer reading from r. Keyword recognition starts enabled.
func NewLexer(r io.Reader) *Lexer {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	return &Lexer{src: rr, line: 1, col: 1, declaration: true}
}

// SetDeclarationContext enables or disables keyword recognition. The parser
// turns it on where a domain declaration may start and off inside bodies.
func (l *Lexer) SetDeclarationContext(on bool) {
	l.declaration = on
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked == nil {
		tok, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		l.peeked = &tok
	}
	return classify(*l.peeked, l.declaration), nil
}

// Next returns the next token and advances the lexer.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return classify(tok, l.declaration), nil
	}
	tok, err := l.scan()
	if err != nil {
		return Token{}, err
	}
	return classify(tok, l.declaration), nil
}

func (l *Lexer) currentPos() model.Position {
	return model.Position{Line: l.line, Column: l.col, Offset: l.off}
}

// peek fills the lookahead rune. It returns false at end of input or on a
// read error, which is kept in l.err.
func (l *Lexer) peek() (rune, bool) {
	if l.hasCh {
		return l.ch, true
	}
	if l.err != nil {
		return 0, false
	}
	ch, size, err := l.src.ReadRune()
	if err != nil {
		l.err = err
		return 0, false
	}
	l.ch, l.chLen, l.hasCh = ch, size, true
	return ch, true
}

func (l *Lexer) advance() rune {
	ch := l.ch
	l.hasCh = false
	l.off += l.chLen
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) readErr() error {
	if l.err == nil || l.err == io.EOF {
		return nil
	}
	return &LexError{ParseError{
		Message: "read input",
		Pos:     l.currentPos(),
		Cause:   l.err,
	}}
}

// skipSpace consumes whitespace and reports whether a newline was seen.
func (l *Lexer) skipSpace() bool {
	newline := false
	for {
		ch, ok := l.peek()
		if !ok || !isSpace(ch) {
			return newline
		}
		if ch == '\n' {
			newline = true
		}
		l.advance()
	}
}

func (l *Lexer) scan() (Token, error) {
	newline := l.skipSpace()
	pos := l.currentPos()

	ch, ok := l.peek()
	if !ok {
		if err := l.readErr(); err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenEOF, Pos: pos, LineBreak: newline}, nil
	}

	switch {
	case ch == '{':
		l.advance()
		return Token{Kind: TokenLBrace, Text: "{", Pos: pos, LineBreak: newline}, nil
	case ch == '}':
		l.advance()
		return Token{Kind: TokenRBrace, Text: "}", Pos: pos, LineBreak: newline}, nil
	case isIdentStart(ch):
		return l.scanIdentifier(pos, newline)
	}

	l.advance()
	msg := fmt.Sprintf("unexpected character %q", ch)
	if ch == utf8.RuneError && l.chLen == 1 {
		msg = "invalid UTF-8 encoding"
	} else if unicode.IsDigit(ch) {
		msg = fmt.Sprintf("identifier cannot start with digit %q", ch)
	}
	return Token{}, &LexError{ParseError{Message: msg, Pos: pos}}
}

func (l *Lexer) scanIdentifier(pos model.Position, newline bool) (Token, error) {
	var sb strings.Builder
	for {
		ch, ok := l.peek()
		if !ok || !isIdentPart(ch) {
			break
		}
		sb.WriteRune(l.advance())
	}
	if err := l.readErr(); err != nil {
		return Token{}, err
	}
	return Token{Kind: TokenIdentifier, Text: sb.String(), Pos: pos, LineBreak: newline}, nil
}

// isSpace accepts only the separators of the grammar. Other Unicode spaces
// and line separators are lex errors.
func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}
