// Package model holds the structural output of a parsed model file: an ordered
// list of domains, each with ordered attributes. Values are immutable once
// built; use DomainBuilder and ListBuilder to construct them.
package model

import "fmt"

// Position is a source location.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column, counted in runes
	Offset int // 0-based byte offset into source
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Kind tells entities and enums apart.
type Kind int

const (
	Entity Kind = iota + 1
	Enum
)

func (k Kind) String() string {
	switch k {
	case Entity:
		return "ENTITY"
	case Enum:
		return "ENUM"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Attribute is a typed field of an entity or a constant of an enum.
type Attribute struct {
	name    string
	typ     string
	ordinal int
	kind    Kind
	domain  string
	pos     Position
}

func (a *Attribute) Name() string { return a.name }

// Type returns the declared type of an entity field, or "" for enum constants.
func (a *Attribute) Type() string { return a.typ }

func (a *Attribute) HasType() bool { return a.typ != "" }

// Kind is the kind of the owning domain.
func (a *Attribute) Kind() Kind { return a.kind }

// Ordinal returns the zero-based declaration index of an enum constant.
// The second result is false for entity fields.
func (a *Attribute) Ordinal() (int, bool) {
	if a.kind != Enum {
		return 0, false
	}
	return a.ordinal, true
}

// DomainName names the owning domain. Resolve it through DomainList.DomainByName.
func (a *Attribute) DomainName() string { return a.domain }

func (a *Attribute) Pos() Position { return a.pos }

// Equal reports structural equality. Positions are ignored.
func (a *Attribute) Equal(o *Attribute) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.name == o.name && a.typ == o.typ && a.ordinal == o.ordinal && a.kind == o.kind && a.domain == o.domain
}

// Domain is a named entity or enum.
type Domain struct {
	name  string
	kind  Kind
	pos   Position
	attrs []*Attribute
	index map[string]*Attribute
}

func (d *Domain) Name() string  { return d.name }
func (d *Domain) Kind() Kind    { return d.kind }
func (d *Domain) Pos() Position { return d.pos }
func (d *Domain) Len() int      { return len(d.attrs) }

// Attributes returns the attributes in declaration order.
func (d *Domain) Attributes() []*Attribute {
	out := make([]*Attribute, len(d.attrs))
	copy(out, d.attrs)
	return out
}

// AttributeByName looks up an attribute. Names are case-sensitive.
func (d *Domain) AttributeByName(name string) (*Attribute, bool) {
	a, ok := d.index[name]
	return a, ok
}

func (d *Domain) Equal(o *Domain) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.name != o.name || d.kind != o.kind || len(d.attrs) != len(o.attrs) {
		return false
	}
	for i := range d.attrs {
		if !d.attrs[i].Equal(o.attrs[i]) {
			return false
		}
	}
	return true
}

// DomainList is the result of a successful parse.
type DomainList struct {
	domains []*Domain
	index   map[string]*Domain
}

func (l *DomainList) Len() int { return len(l.domains) }

// Domains returns the domains in declaration order.
func (l *DomainList) Domains() []*Domain {
	out := make([]*Domain, len(l.domains))
	copy(out, l.domains)
	return out
}

// DomainByName looks up a domain. Names are case-sensitive.
func (l *DomainList) DomainByName(name string) (*Domain, bool) {
	d, ok := l.index[name]
	return d, ok
}

// Entities returns the entity domains in declaration order.
func (l *DomainList) Entities() []*Domain { return l.filter(Entity) }

// Enums returns the enum domains in declaration order.
func (l *DomainList) Enums() []*Domain { return l.filter(Enum) }

func (l *DomainList) filter(k Kind) []*Domain {
	var out []*Domain
	for _, d := range l.domains {
		if d.kind == k {
			out = append(out, d)
		}
	}
	return out
}

func (l *DomainList) Equal(o *DomainList) bool {
	if l == nil || o == nil {
		return l == o
	}
	if len(l.domains) != len(o.domains) {
		return false
	}
	for i := range l.domains {
		if !l.domains[i].Equal(o.domains[i]) {
			return false
		}
	}
	return true
}
