package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	mdsl "github.com/TechXTT/mdsl"
	"github.com/TechXTT/mdsl/pkg/dsl"
	"github.com/TechXTT/mdsl/pkg/model"
)

type attributeDTO struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Ordinal *int   `json:"ordinal,omitempty" yaml:"ordinal,omitempty"`
}

type domainDTO struct {
	Name       string         `json:"name" yaml:"name"`
	Kind       string         `json:"kind" yaml:"kind"`
	Line       int            `json:"line" yaml:"line"`
	Column     int            `json:"column" yaml:"column"`
	Attributes []attributeDTO `json:"attributes" yaml:"attributes"`
}

type modelDTO struct {
	Domains []domainDTO `json:"domains" yaml:"domains"`
}

func toDTO(list *model.DomainList) modelDTO {
	out := modelDTO{Domains: []domainDTO{}}
	for _, d := range list.Domains() {
		dd := domainDTO{
			Name:   d.Name(),
			Kind:   strings.ToLower(d.Kind().String()),
			Line:   d.Pos().Line,
			Column: d.Pos().Column,
		}
		for _, a := range d.Attributes() {
			ad := attributeDTO{Name: a.Name(), Type: a.Type()}
			if ord, ok := a.Ordinal(); ok {
				ad.Ordinal = &ord
			}
			dd.Attributes = append(dd.Attributes, ad)
		}
		out.Domains = append(out.Domains, dd)
	}
	return out
}

func writeModel(w io.Writer, list *model.DomainList, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toDTO(list))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toDTO(list)); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		for _, d := range list.Domains() {
			fmt.Fprintf(w, "%s %s\n", strings.ToLower(d.Kind().String()), d.Name())
			for _, a := range d.Attributes() {
				if ord, ok := a.Ordinal(); ok {
					fmt.Fprintf(w, "  %s = %d\n", a.Name(), ord)
				} else {
					fmt.Fprintf(w, "  %s %s\n", a.Type(), a.Name())
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// describe renders a parse failure as path:line:col: kind: message.
func describe(path string, err error) error {
	var pe interface {
		error
		Kind() dsl.ErrorKind
	}
	pos, ok := dsl.Position(err)
	if !ok || !errors.As(err, &pe) {
		return err
	}
	msg := strings.TrimPrefix(pe.Error(), fmt.Sprintf("line %d, col %d: ", pos.Line, pos.Column))
	return fmt.Errorf("%s:%d:%d: %s: %s", path, pos.Line, pos.Column, pe.Kind(), msg)
}

// parseSchema reads a model file, reporting failures with their location.
func parseSchema(path string) (*model.DomainList, error) {
	list, err := mdsl.ParseFile(path)
	if err != nil {
		return nil, describe(path, err)
	}
	return list, nil
}

func newParseCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Validate a model file and print the parsed model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			path := cfg.SchemaPath
			if len(args) == 1 {
				path = args[0]
			}
			list, err := parseSchema(path)
			if err != nil {
				return err
			}
			a.log.Debug("parse.done", "path", path, "domains", list.Len())
			return writeModel(cmd.OutOrStdout(), list, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	return cmd
}
