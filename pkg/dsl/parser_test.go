package dsl

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechXTT/mdsl/pkg/model"
)

const userStateModel = `entity User {
   String name
   String login
   String password
   Integer age
}
enum State {
    ACTIVE
    INACTIVE
    BLOCKED
    CANCELED
}`

func assertUserState(t *testing.T, l *model.DomainList) {
	t.Helper()
	require.NotNil(t, l)
	require.Equal(t, 2, l.Len())

	user, ok := l.DomainByName("User")
	require.True(t, ok)
	assert.Equal(t, model.Entity, user.Kind())
	require.Equal(t, 4, user.Len())
	for i, name := range []string{"name", "login", "password", "age"} {
		a, ok := user.AttributeByName(name)
		require.True(t, ok, name)
		assert.Same(t, a, user.Attributes()[i])
		assert.NotEmpty(t, a.Type())
		assert.Equal(t, "User", a.DomainName())
	}
	age, _ := user.AttributeByName("age")
	assert.Equal(t, "Integer", age.Type())

	state, ok := l.DomainByName("State")
	require.True(t, ok)
	assert.Equal(t, model.Enum, state.Kind())
	require.Equal(t, 4, state.Len())
	for i, name := range []string{"ACTIVE", "INACTIVE", "BLOCKED", "CANCELED"} {
		a, ok := state.AttributeByName(name)
		require.True(t, ok, name)
		ord, isConst := a.Ordinal()
		assert.True(t, isConst)
		assert.Equal(t, i, ord)
		assert.False(t, a.HasType())
	}
}

func TestParseBlockLayout(t *testing.T) {
	l, err := ParseString(userStateModel)
	require.NoError(t, err)
	assertUserState(t, l)
}

func TestParseInlineLayout(t *testing.T) {
	src := `
entity User { String name String login String password Integer age }
enum State { ACTIVE INACTIVE BLOCKED CANCELED }
`
	l, err := ParseString(src)
	require.NoError(t, err)
	assertUserState(t, l)
}

func TestParseBytesAndReader(t *testing.T) {
	l, err := ParseBytes([]byte(userStateModel))
	require.NoError(t, err)
	assertUserState(t, l)

	l, err = Parse(strings.NewReader(userStateModel))
	require.NoError(t, err)
	assertUserState(t, l)
}

func TestParseEmptyDocument(t *testing.T) {
	for _, src := range []string{"", "  \n\t\n"} {
		l, err := ParseString(src)
		require.NoError(t, err)
		assert.Equal(t, 0, l.Len())
		assert.Empty(t, l.Domains())
	}
}

func TestParseDeterministic(t *testing.T) {
	a, err := ParseString(userStateModel)
	require.NoError(t, err)
	b, err := ParseString(userStateModel)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Empty(t, cmp.Diff(a, b))
}

func TestParseKeywordsAsIdentifiersInBody(t *testing.T) {
	src := `
entity enum {
    entity enum
    enum entity
}
enum entity { enum entity }
`
	l, err := ParseString(src)
	require.NoError(t, err)
	require.Equal(t, 2, l.Len())

	ent, ok := l.DomainByName("enum")
	require.True(t, ok)
	assert.Equal(t, model.Entity, ent.Kind())
	f, ok := ent.AttributeByName("enum")
	require.True(t, ok)
	assert.Equal(t, "entity", f.Type())

	en, ok := l.DomainByName("entity")
	require.True(t, ok)
	assert.Equal(t, model.Enum, en.Kind())
	assert.Equal(t, 2, en.Len())
}

func TestParseCrossReferenceIsNotResolved(t *testing.T) {
	l, err := ParseString("entity Order {\n User owner\n State state\n Missing other\n}")
	require.NoError(t, err)
	d, _ := l.DomainByName("Order")
	other, ok := d.AttributeByName("other")
	require.True(t, ok)
	assert.Equal(t, "Missing", other.Type())
}

func TestParseLookupIsCaseSensitive(t *testing.T) {
	l, err := ParseString("entity User { String name String Name }\nentity user { String x }")
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())

	u, ok := l.DomainByName("User")
	require.True(t, ok)
	assert.Equal(t, 2, u.Len())
	_, ok = l.DomainByName("USER")
	assert.False(t, ok)
	_, ok = u.AttributeByName("NAME")
	assert.False(t, ok)
}

func TestParseDomainPositions(t *testing.T) {
	l, err := ParseString(userStateModel)
	require.NoError(t, err)
	state, _ := l.DomainByName("State")
	assert.Equal(t, model.Position{Line: 7, Column: 6, Offset: 86}, state.Pos())
	blocked, _ := state.AttributeByName("BLOCKED")
	assert.Equal(t, 10, blocked.Pos().Line)
	assert.Equal(t, 5, blocked.Pos().Column)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
		line int
		col  int
	}{
		{"missing type inline", "entity User { name }", KindMissingType, 1, 15},
		{"missing type block", "entity User {\n  String\n  name\n}", KindMissingType, 2, 3},
		{"missing type odd count", "entity User { String name age }", KindMissingType, 1, 27},
		{"unterminated", "entity User { String name", KindUnexpectedEOF, 1, 26},
		{"unterminated after open", "entity User {", KindUnexpectedEOF, 1, 14},
		{"unterminated lone identifier", "entity User { name", KindUnexpectedEOF, 1, 19},
		{"unterminated enum", "enum S {\n A\n B\n", KindUnexpectedEOF, 4, 1},
		{"eof after keyword", "enum", KindUnexpectedEOF, 1, 5},
		{"eof after name", "enum S", KindUnexpectedEOF, 1, 7},
		{"empty body", "entity A {}", KindUnexpectedToken, 1, 11},
		{"empty enum body", "enum A {\n}", KindUnexpectedToken, 2, 1},
		{"unknown keyword", "record User { String name }", KindUnexpectedToken, 1, 1},
		{"identifier at top", "entity A { String x }\nB", KindUnexpectedToken, 2, 1},
		{"stray rbrace", "}", KindUnexpectedToken, 1, 1},
		{"missing name", "entity { String x }", KindUnexpectedToken, 1, 8},
		{"missing lbrace", "entity A String x }", KindUnexpectedToken, 1, 10},
		{"nested brace", "entity A { String x { }", KindUnexpectedToken, 1, 21},
		{"two identifiers on enum line", "enum State {\n  ACTIVE INACTIVE\n}", KindUnexpectedToken, 2, 10},
		{"three identifiers on entity line", "entity A {\n  String x y\n}", KindUnexpectedToken, 2, 12},
		{"duplicate domain", "entity A { String x }\nentity A { String y }", KindDuplicateDomain, 2, 8},
		{"duplicate across kinds", "entity A { String x }\nenum A { X }", KindDuplicateDomain, 2, 6},
		{"duplicate attribute", "entity A{String x String x}", KindDuplicateAttribute, 1, 26},
		{"duplicate constant", "enum S {\n A\n B\n A\n}", KindDuplicateAttribute, 4, 2},
		{"lex error in body", "entity A { String x; }", KindLex, 1, 20},
		{"dotted type", "entity A { java.String x }", KindLex, 1, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ParseString(tt.src)
			require.Error(t, err)
			assert.Nil(t, l)
			assert.Equal(t, tt.kind, KindOf(err), "error: %v", err)
			pos, ok := Position(err)
			require.True(t, ok)
			assert.Equal(t, tt.line, pos.Line, "error: %v", err)
			assert.Equal(t, tt.col, pos.Column, "error: %v", err)
		})
	}
}

func TestParseEmptyBodiesRejectedBeforeDuplicates(t *testing.T) {
	_, err := ParseString("entity A{} entity A{}")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnexpectedToken))
}

func TestMissingTypeErrorDetails(t *testing.T) {
	_, err := ParseString("entity User { name }")
	var mt *MissingTypeError
	require.ErrorAs(t, err, &mt)
	assert.Equal(t, "User", mt.Domain)
	assert.Equal(t, "name", mt.Name)
	assert.Equal(t, `line 1, col 15: field "name" of User has no type`, err.Error())
}

func TestDuplicateErrorsReportBothPositions(t *testing.T) {
	_, err := ParseString("entity A { String x }\n\nentity A { String y }")
	var dd *DuplicateDomainError
	require.ErrorAs(t, err, &dd)
	assert.Equal(t, "A", dd.Name)
	assert.Equal(t, model.Position{Line: 1, Column: 8, Offset: 7}, dd.First)
	assert.Equal(t, 3, dd.Pos.Line)

	_, err = ParseString("entity A {\n String x\n Integer x\n}")
	var da *DuplicateAttributeError
	require.ErrorAs(t, err, &da)
	assert.Equal(t, "A", da.Domain)
	assert.Equal(t, "x", da.Name)
	assert.Equal(t, 2, da.First.Line)
	assert.Equal(t, 3, da.Pos.Line)

	var dn *model.DuplicateNameError
	assert.ErrorAs(t, err, &dn)
}

func TestUnexpectedTokenErrorMessage(t *testing.T) {
	_, err := ParseString("record User {}")
	assert.Equal(t, `line 1, col 1: expected 'entity' or 'enum', got identifier ("record")`, err.Error())
}

func TestParseConcurrent(t *testing.T) {
	want, err := ParseString(userStateModel)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ParseString(userStateModel)
			if err != nil {
				errs <- err
				return
			}
			if !got.Equal(want) {
				errs <- fmt.Errorf("parse result differs")
				return
			}
			// readers of a shared list need no locking
			if _, ok := want.DomainByName("User"); !ok {
				errs <- fmt.Errorf("lookup failed")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
