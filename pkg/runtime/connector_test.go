package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost/db", "postgres://u:p@localhost/db?sslmode=disable"},
		{"postgresql://localhost/db?connect_timeout=5", "postgresql://localhost/db?connect_timeout=5&sslmode=disable"},
		{"postgres://localhost/db?sslmode=require", "postgres://localhost/db?sslmode=require"},
		{"host=localhost dbname=db", "host=localhost dbname=db"},
		{"  postgres://localhost/db  ", "postgres://localhost/db?sslmode=disable"},
	}
	for _, tt := range tests {
		got, err := NormalizeDSN(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyDSN)
}
