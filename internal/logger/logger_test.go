package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(Config{Format: "json", Writer: &buf})
	t.Cleanup(func() { Setup(Config{Writer: &bytes.Buffer{}}) })

	l.Info("generator.file_written", "path", "models/user.go")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "generator.file_written", rec["msg"])
	assert.Equal(t, "models/user.go", rec["path"])
	assert.Same(t, l, L())
}

func TestSetupDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Writer: &buf})
	L().Debug("hidden")
	assert.Empty(t, buf.String())

	Setup(Config{Debug: true, Writer: &buf})
	L().Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestOr(t *testing.T) {
	own := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, own, Or(own))
	assert.Same(t, L(), Or(nil))
}
