package typeconv

import (
	"strings"

	"github.com/TechXTT/mdsl/pkg/casing"
	"github.com/TechXTT/mdsl/pkg/model"
)

type builtin struct {
	goType  string
	sqlType string
}

// builtins maps the scalar type names a model file may use.
var builtins = map[string]builtin{
	"String":     {"string", "TEXT"},
	"Text":       {"string", "TEXT"},
	"Integer":    {"int", "INTEGER"},
	"Int":        {"int", "INTEGER"},
	"Long":       {"int64", "BIGINT"},
	"Short":      {"int16", "SMALLINT"},
	"Boolean":    {"bool", "BOOLEAN"},
	"Bool":       {"bool", "BOOLEAN"},
	"Float":      {"float32", "REAL"},
	"Double":     {"float64", "DOUBLE PRECISION"},
	"Decimal":    {"float64", "NUMERIC"},
	"BigDecimal": {"float64", "NUMERIC"},
	"Date":       {"time.Time", "DATE"},
	"DateTime":   {"time.Time", "TIMESTAMP"},
	"Timestamp":  {"time.Time", "TIMESTAMP"},
	"Instant":    {"time.Time", "TIMESTAMP"},
	"Time":       {"time.Time", "TIME"},
	"UUID":       {"uuid.UUID", "UUID"},
	"Bytes":      {"[]byte", "BYTEA"},
}

// IsBuiltin reports whether typ is a scalar type rather than a domain reference.
func IsBuiltin(typ string) bool {
	_, ok := builtins[typ]
	return ok
}

// Reference returns the domain a field type refers to, if any.
func Reference(list *model.DomainList, typ string) (*model.Domain, bool) {
	if IsBuiltin(typ) || list == nil {
		return nil, false
	}
	return list.DomainByName(typ)
}

// GoType maps a field type to a Go type. Entity references become pointers,
// enum references the generated enum type. Unknown names pass through.
func GoType(list *model.DomainList, typ string) string {
	if b, ok := builtins[typ]; ok {
		return b.goType
	}
	if d, ok := Reference(list, typ); ok {
		if d.Kind() == model.Entity {
			return "*" + casing.Pascal(d.Name())
		}
		return casing.Pascal(d.Name())
	}
	return typ
}

// SQLType maps a field type to a PostgreSQL column type. Entity references
// become INTEGER foreign keys, enum references the enum type name. Unknown
// names fall back to TEXT.
func SQLType(list *model.DomainList, typ string) string {
	if b, ok := builtins[typ]; ok {
		return b.sqlType
	}
	if d, ok := Reference(list, typ); ok {
		if d.Kind() == model.Entity {
			return "INTEGER"
		}
		return TableName(d.Name())
	}
	return "TEXT"
}

// TableName is the unquoted SQL name of a domain's table or enum type.
func TableName(domain string) string {
	return casing.SnakeLower(domain)
}

// ColumnName is the unquoted SQL column of a field. Entity references get an
// _id suffix.
func ColumnName(list *model.DomainList, a *model.Attribute) string {
	col := casing.SnakeLower(a.Name())
	if d, ok := Reference(list, a.Type()); ok && d.Kind() == model.Entity {
		col += "_id"
	}
	return col
}

func IsTime(goType string) bool { return goType == "time.Time" }

func IsUUID(goType string) bool { return goType == "uuid.UUID" }

// CanonicalType normalizes SQL types for comparison.
func CanonicalType(typ string) string {
	t := strings.ToUpper(strings.Trim(typ, `"`))
	switch t {
	case "INT4", "INT", "INTEGER", "SERIAL":
		return "INTEGER"
	case "INT8", "BIGINT", "BIGSERIAL":
		return "BIGINT"
	case "INT2", "SMALLINT":
		return "SMALLINT"
	case "BOOL", "BOOLEAN":
		return "BOOLEAN"
	case "TEXT", "VARCHAR":
		return "TEXT"
	case "REAL", "FLOAT4":
		return "REAL"
	case "FLOAT8", "DOUBLE PRECISION":
		return "DOUBLE PRECISION"
	case "NUMERIC", "DECIMAL":
		return "NUMERIC"
	case "TIMESTAMP", "TIMESTAMPTZ":
		return "TIMESTAMP"
	case "TIME", "TIMETZ":
		return "TIME"
	case "UUID":
		return "UUID"
	case "BYTEA":
		return "BYTEA"
	default:
		return t
	}
}
