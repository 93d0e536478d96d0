package generator

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/TechXTT/mdsl/internal/logger"
	"github.com/TechXTT/mdsl/pkg/casing"
	"github.com/TechXTT/mdsl/pkg/internal/typeconv"
	"github.com/TechXTT/mdsl/pkg/model"
)

// ErrNameCollision is returned when distinct model names map to the same
// generated identifier or file.
var ErrNameCollision = errors.New("name collision")

// nameSet maps generated names back to the model names they came from.
type nameSet map[string]string

// claim records source under target. It fails with ErrNameCollision when
// another source already owns target.
func (s nameSet) claim(scope, what, target, source string) error {
	if first, ok := s[target]; ok {
		return fmt.Errorf("%s: %s %q and %q both map to %s: %w", scope, what, first, source, target, ErrNameCollision)
	}
	s[target] = source
	return nil
}

// Generator writes one Go file per domain of a model.
type Generator struct {
	entity *template.Template
	enum   *template.Template
	pkg    string
	log    *slog.Logger
}

type Option func(*Generator)

// WithPackage sets the package clause of generated files. By default the
// base name of the output directory is used.
func WithPackage(name string) Option {
	return func(g *Generator) { g.pkg = name }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

type field struct {
	Name   string
	Type   string
	Column string
	JSON   string
}

type constant struct {
	Name  string
	Value string
}

type fileData struct {
	Package   string
	Domain    string
	Name      string
	Imports   []string
	Fields    []field
	Constants []constant
}

func NewGenerator(opts ...Option) (*Generator, error) {
	funcMap := template.FuncMap{
		"buildTags": buildTags,
		"receiver":  receiver,
	}
	entity, err := template.New("entity").Funcs(funcMap).Parse(entityTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse entity template: %w", err)
	}
	enum, err := template.New("enum").Funcs(funcMap).Parse(enumTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse enum template: %w", err)
	}
	g := &Generator{entity: entity, enum: enum}
	for _, opt := range opts {
		opt(g)
	}
	g.log = logger.Or(g.log)
	return g, nil
}

// hasTime returns true if any field uses time.Time.
func hasTime(fields []field) bool {
	for _, f := range fields {
		if typeconv.IsTime(f.Type) {
			return true
		}
	}
	return false
}

// hasUUID returns true if any field uses uuid.UUID.
func hasUUID(fields []field) bool {
	for _, f := range fields {
		if typeconv.IsUUID(f.Type) {
			return true
		}
	}
	return false
}

func buildTags(f field) string {
	return fmt.Sprintf("`db:%q json:%q`", f.Column, f.JSON)
}

func receiver(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r))
}

func constName(d *model.Domain, a *model.Attribute) string {
	return casing.Pascal(d.Name()) + casing.PascalFromSnake(a.Name())
}

// FileName is the name of the file generated for a domain.
func FileName(d *model.Domain) string {
	return casing.SnakeLower(d.Name()) + ".go"
}

// Render returns the formatted Go source for one domain of list.
func (g *Generator) Render(list *model.DomainList, d *model.Domain, pkg string) ([]byte, error) {
	data := fileData{
		Package: pkg,
		Domain:  d.Name(),
		Name:    casing.Pascal(d.Name()),
	}
	tmpl := g.entity
	names := nameSet{}
	if d.Kind() == model.Enum {
		tmpl = g.enum
		data.Imports = []string{"fmt"}
		for _, a := range d.Attributes() {
			c := constant{Name: constName(d, a), Value: a.Name()}
			if err := names.claim(d.Name(), "constants", c.Name, a.Name()); err != nil {
				return nil, err
			}
			data.Constants = append(data.Constants, c)
		}
	} else {
		columns := nameSet{}
		for _, a := range d.Attributes() {
			f := field{
				Name:   casing.Pascal(a.Name()),
				Type:   typeconv.GoType(list, a.Type()),
				Column: typeconv.ColumnName(list, a),
				JSON:   casing.Camel(a.Name()),
			}
			if err := names.claim(d.Name(), "fields", f.Name, a.Name()); err != nil {
				return nil, err
			}
			if err := columns.claim(d.Name(), "fields", "column "+f.Column, a.Name()); err != nil {
				return nil, err
			}
			data.Fields = append(data.Fields, f)
		}
		if hasTime(data.Fields) {
			data.Imports = append(data.Imports, "time")
		}
		if hasUUID(data.Fields) {
			if len(data.Imports) > 0 {
				data.Imports = append(data.Imports, "")
			}
			data.Imports = append(data.Imports, "github.com/google/uuid")
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", d.Name(), err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", d.Name(), err)
	}
	return src, nil
}

// Generate writes a file for every domain into outDir, creating it if needed.
func (g *Generator) Generate(list *model.DomainList, outDir string) error {
	pkgName := g.pkg
	if pkgName == "" {
		pkgName = packageName(outDir)
	}
	domains := list.Domains()
	sources := make([][]byte, len(domains))
	for i, d := range domains {
		src, err := g.Render(list, d, pkgName)
		if err != nil {
			return err
		}
		sources[i] = src
	}
	if err := checkPackage(list); err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for i, d := range domains {
		path := filepath.Join(outDir, FileName(d))
		if err := os.WriteFile(path, sources[i], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		g.log.Info("generator.file_written", "path", path, "domain", d.Name(), "kind", d.Kind().String())
	}
	return nil
}

// checkPackage rejects models whose domains would share a file or whose
// types and enum constants would share a package-level identifier.
func checkPackage(list *model.DomainList) error {
	files, idents := nameSet{}, nameSet{}
	for _, d := range list.Domains() {
		if err := files.claim("package", "domains", FileName(d), d.Name()); err != nil {
			return err
		}
		if err := idents.claim("package", "declarations", casing.Pascal(d.Name()), d.Name()); err != nil {
			return err
		}
		if d.Kind() != model.Enum {
			continue
		}
		for _, a := range d.Attributes() {
			if err := idents.claim("package", "declarations", constName(d, a), d.Name()+"."+a.Name()); err != nil {
				return err
			}
		}
	}
	return nil
}

func packageName(outDir string) string {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		abs = outDir
	}
	name := strings.ToLower(strings.ReplaceAll(filepath.Base(abs), "-", "_"))
	if !token.IsIdentifier(name) || token.IsKeyword(name) {
		return "models"
	}
	return name
}

const header = `// Code generated by mdsl. DO NOT EDIT.

package {{ .Package }}
{{ if .Imports }}
import (
{{ range .Imports }}{{ if . }}	"{{ . }}"{{ end }}
{{ end }})
{{ end }}`

const entityTemplate = header + `
// {{ .Name }} is generated from entity {{ .Domain }}.
type {{ .Name }} struct {
{{- range .Fields }}
	{{ .Name }} {{ .Type }} {{ buildTags . }}
{{- end }}
}
`

const enumTemplate = header + `
// {{ .Name }} is generated from enum {{ .Domain }}.
type {{ .Name }} int

const (
{{- range $i, $c := .Constants }}
	{{ $c.Name }}{{ if eq $i 0 }} {{ $.Name }} = iota{{ end }}
{{- end }}
)

// String returns the constant name as declared in the model.
func ({{ receiver .Name }} {{ .Name }}) String() string {
	switch {{ receiver .Name }} {
{{- range .Constants }}
	case {{ .Name }}:
		return "{{ .Value }}"
{{- end }}
	}
	return fmt.Sprintf("{{ .Name }}(%d)", int({{ receiver .Name }}))
}
`
