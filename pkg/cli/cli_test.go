package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParse_Text(t *testing.T) {
	out, err := run(t, "parse", "testdata/shop.mdsl")
	require.NoError(t, err)
	assert.Equal(t, `entity User
  String name
  Integer age
enum State
  ACTIVE = 0
  BLOCKED = 1
`, out)
}

func TestParse_JSON(t *testing.T) {
	out, err := run(t, "parse", "--format", "json", "testdata/shop.mdsl")
	require.NoError(t, err)

	var got modelDTO
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Domains, 2)
	assert.Equal(t, "entity", got.Domains[0].Kind)
	assert.Equal(t, 1, got.Domains[0].Line)
	assert.Nil(t, got.Domains[0].Attributes[0].Ordinal)
	state := got.Domains[1]
	assert.Equal(t, "enum", state.Kind)
	require.NotNil(t, state.Attributes[0].Ordinal)
	assert.Equal(t, 0, *state.Attributes[0].Ordinal)
	assert.Empty(t, state.Attributes[0].Type)
}

func TestParse_YAML(t *testing.T) {
	out, err := run(t, "parse", "-f", "yaml", "testdata/shop.mdsl")
	require.NoError(t, err)

	var got modelDTO
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got.Domains, 2)
	assert.Equal(t, "State", got.Domains[1].Name)
	assert.Equal(t, 1, *got.Domains[1].Attributes[1].Ordinal)
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := run(t, "parse", "--format", "xml", "testdata/shop.mdsl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestParse_ReportsLocation(t *testing.T) {
	_, err := run(t, "parse", "testdata/broken.mdsl")
	require.Error(t, err)
	assert.Equal(t, `testdata/broken.mdsl:3:5: missing_type: field "age" of User has no type`, err.Error())
}

func TestParse_MissingFile(t *testing.T) {
	_, err := run(t, "parse", "testdata/nope.mdsl")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "models")
	stdout, err := run(t, "generate", "--out", out, "testdata/shop.mdsl")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Generated 2 files")

	src, err := os.ReadFile(filepath.Join(out, "user.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package models")
	assert.FileExists(t, filepath.Join(out, "state.go"))
}

func TestGenerate_PackageFlag(t *testing.T) {
	out := t.TempDir()
	_, err := run(t, "generate", "--out", out, "--package", "domain", "testdata/shop.mdsl")
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(out, "state.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package domain")
}

func TestMigrate_RequiresDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MDSL_DATABASE_URL", "")
	_, err := run(t, "migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is empty")
}

func TestMigrate_RejectsUnknownAction(t *testing.T) {
	_, err := run(t, "migrate", "sideways")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
