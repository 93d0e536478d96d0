package casing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"camel single word", Camel, "UserName", "userName"},
		{"camel words", Camel, "user NAME  id", "userNameId"},
		{"camel empty", Camel, "", ""},
		{"pascal single word", Pascal, "userName", "UserName"},
		{"pascal words", Pascal, "user name", "UserName"},
		{"pascal unicode", Pascal, "über", "Über"},
		{"pascal from constant", PascalFromSnake, "NOT_STARTED", "NotStarted"},
		{"pascal from single constant", PascalFromSnake, "ACTIVE", "Active"},
		{"lower first", LowerFirst, "ID", "iD"},
		{"snake upper", SnakeUpper, "createdAt", "CREATED_AT"},
		{"snake lower", SnakeLower, "UserAccount", "user_account"},
		{"snake keeps acronyms together", SnakeLower, "HTTPServer", "httpserver"},
		{"snake already", SnakeLower, "created_at", "created_at"},
		{"kebab upper", KebabUpper, "orderLineItem", "ORDER-LINE-ITEM"},
		{"kebab lower", KebabLower, "orderLineItem", "order-line-item"},
		{"path", Path, "com.m2r.model", "com/m2r/model"},
		{"package", Package, "com/m2r/model", "com.m2r.model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}
