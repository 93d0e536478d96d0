package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDomain  = errors.New("domain has no attributes")
	ErrKindMismatch = errors.New("attribute does not match domain kind")
	ErrInvalidName  = errors.New("empty name")
)

// DuplicateNameError is returned when a name is declared twice in the same scope.
type DuplicateNameError struct {
	Name  string
	First Position
	Dup   Position
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate name %q at %s (first declared at %s)", e.Name, e.Dup, e.First)
}

// DomainBuilder collects the attributes of one domain.
// A builder must not be reused after Build.
type DomainBuilder struct {
	d *Domain
}

func NewDomainBuilder(name string, kind Kind, pos Position) *DomainBuilder {
	return &DomainBuilder{d: &Domain{
		name:  name,
		kind:  kind,
		pos:   pos,
		index: make(map[string]*Attribute),
	}}
}

func (b *DomainBuilder) Name() string { return b.d.name }
func (b *DomainBuilder) Kind() Kind   { return b.d.kind }
func (b *DomainBuilder) Len() int     { return len(b.d.attrs) }

// Lookup returns the position of an already added attribute.
func (b *DomainBuilder) Lookup(name string) (Position, bool) {
	if a, ok := b.d.index[name]; ok {
		return a.pos, true
	}
	return Position{}, false
}

// AddField appends a typed field to an entity.
func (b *DomainBuilder) AddField(typ, name string, pos Position) error {
	if b.d.kind != Entity {
		return fmt.Errorf("field %q on %s %s: %w", name, b.d.kind, b.d.name, ErrKindMismatch)
	}
	if typ == "" {
		return fmt.Errorf("type of field %q: %w", name, ErrInvalidName)
	}
	return b.add(&Attribute{name: name, typ: typ, kind: Entity, pos: pos})
}

// AddConstant appends a constant to an enum. Its ordinal is its insertion index.
func (b *DomainBuilder) AddConstant(name string, pos Position) error {
	if b.d.kind != Enum {
		return fmt.Errorf("constant %q on %s %s: %w", name, b.d.kind, b.d.name, ErrKindMismatch)
	}
	return b.add(&Attribute{name: name, ordinal: len(b.d.attrs), kind: Enum, pos: pos})
}

func (b *DomainBuilder) add(a *Attribute) error {
	if a.name == "" {
		return fmt.Errorf("attribute of %s: %w", b.d.name, ErrInvalidName)
	}
	if first, ok := b.Lookup(a.name); ok {
		return &DuplicateNameError{Name: a.name, First: first, Dup: a.pos}
	}
	a.domain = b.d.name
	b.d.attrs = append(b.d.attrs, a)
	b.d.index[a.name] = a
	return nil
}

// Build finalizes the domain.
func (b *DomainBuilder) Build() (*Domain, error) {
	if b.d.name == "" {
		return nil, ErrInvalidName
	}
	if len(b.d.attrs) == 0 {
		return nil, fmt.Errorf("%s %s: %w", b.d.kind, b.d.name, ErrEmptyDomain)
	}
	d := b.d
	b.d = nil
	return d, nil
}

// ListBuilder collects domains into a DomainList.
type ListBuilder struct {
	l *DomainList
}

func NewListBuilder() *ListBuilder {
	return &ListBuilder{l: &DomainList{index: make(map[string]*Domain)}}
}

// Lookup returns the position of an already added domain.
func (b *ListBuilder) Lookup(name string) (Position, bool) {
	if d, ok := b.l.index[name]; ok {
		return d.pos, true
	}
	return Position{}, false
}

func (b *ListBuilder) Add(d *Domain) error {
	if first, ok := b.Lookup(d.name); ok {
		return &DuplicateNameError{Name: d.name, First: first, Dup: d.pos}
	}
	b.l.domains = append(b.l.domains, d)
	b.l.index[d.name] = d
	return nil
}

// Build returns the list. The builder must not be used afterwards.
func (b *ListBuilder) Build() *DomainList {
	l := b.l
	b.l = nil
	return l
}
