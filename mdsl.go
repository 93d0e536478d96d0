// Package mdsl reads model files. It offers three ways to supply the source
// text; all of them end up in dsl.Parse.
package mdsl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TechXTT/mdsl/pkg/dsl"
	"github.com/TechXTT/mdsl/pkg/model"
)

// ParseFile parses the model file at path.
func ParseFile(path string) (*model.DomainList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mdsl: open %s: %w", path, err)
	}
	defer f.Close()

	list, err := dsl.Parse(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("mdsl: %s: %w", path, err)
	}
	return list, nil
}

// ParseReader parses model source read from r.
func ParseReader(r io.Reader) (*model.DomainList, error) {
	return dsl.Parse(r)
}

// ParseString parses model source held in code.
func ParseString(code string) (*model.DomainList, error) {
	return dsl.Parse(strings.NewReader(code))
}
