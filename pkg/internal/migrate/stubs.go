package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/TechXTT/mdsl/internal/logger"
	"github.com/TechXTT/mdsl/pkg/internal/typeconv"
	"github.com/TechXTT/mdsl/pkg/model"
)

const columnsQuery = `SELECT column_name, udt_name
             FROM information_schema.columns
             WHERE table_schema = 'public' AND table_name = $1`

const enumLabelsQuery = `SELECT e.enumlabel
             FROM pg_enum e JOIN pg_type t ON t.oid = e.enumtypid
             WHERE t.typname = $1
             ORDER BY e.enumsortorder`

var reUp = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// ErrNameCollision is returned when distinct model names map to the same
// SQL table, type or column.
var ErrNameCollision = errors.New("name collision")

type stubWriter struct {
	dir     string
	version int
	written []string
	log     *slog.Logger
}

func (w *stubWriter) write(name, up, down string) error {
	w.version++
	upFile := fmt.Sprintf("%04d_%s.up.sql", w.version, name)
	downFile := fmt.Sprintf("%04d_%s.down.sql", w.version, name)
	if err := os.WriteFile(filepath.Join(w.dir, upFile), []byte(up+"\n"), 0o644); err != nil {
		return fmt.Errorf("write up stub: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, downFile), []byte(down+"\n"), 0o644); err != nil {
		return fmt.Errorf("write down stub: %w", err)
	}
	w.written = append(w.written, upFile, downFile)
	w.log.Info("migrate.stub_written", "up", upFile, "down", downFile)
	return nil
}

// EnsureStubs writes up/down migration files for every domain of list that
// is new or has drifted from the live database. Domains already covered by a
// migration file are compared against information_schema and pg_enum.
// It returns the names of the files it created.
func EnsureStubs(ctx context.Context, db *sql.DB, list *model.DomainList, dir string, log *slog.Logger) ([]string, error) {
	if err := checkNames(list); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations dir: %w", err)
	}
	seen, maxVer, err := scanMigrations(dir)
	if err != nil {
		return nil, err
	}
	w := &stubWriter{dir: dir, version: maxVer, log: logger.Or(log)}

	for _, enum := range list.Enums() {
		name := typeconv.TableName(enum.Name())
		if !seen[name] {
			up, down := createTypeSQL(enum)
			if err := w.write(name, up, down); err != nil {
				return w.written, err
			}
			continue
		}
		labels, err := enumLabels(ctx, db, name)
		if err != nil {
			return w.written, err
		}
		if up, down, ok := alterTypeSQL(enum, labels); ok {
			if err := w.write(name, up, down); err != nil {
				return w.written, err
			}
		}
	}

	for _, ent := range orderEntities(list) {
		name := typeconv.TableName(ent.Name())
		if !seen[name] {
			up, down, err := createTableSQL(list, ent)
			if err != nil {
				return w.written, err
			}
			if err := w.write(name, up, down); err != nil {
				return w.written, err
			}
			continue
		}
		cols, err := tableColumns(ctx, db, name)
		if err != nil {
			return w.written, err
		}
		up, down, ok, err := alterTableSQL(list, ent, cols)
		if err != nil {
			return w.written, err
		}
		if ok {
			if err := w.write(name, up, down); err != nil {
				return w.written, err
			}
		}
	}
	return w.written, nil
}

// checkNames rejects models whose domains share a table or type name, or
// whose entities have clashing columns. Tables and enum types share the
// pg_type namespace, so both are checked together.
func checkNames(list *model.DomainList) error {
	tables := map[string]string{}
	for _, d := range list.Domains() {
		name := typeconv.TableName(d.Name())
		if first, ok := tables[name]; ok {
			return fmt.Errorf("domains %q and %q both map to %s: %w", first, d.Name(), name, ErrNameCollision)
		}
		tables[name] = d.Name()
	}
	for _, ent := range list.Entities() {
		if _, _, err := entityColumns(list, ent); err != nil {
			return err
		}
	}
	return nil
}

// entityColumns splits ent into its key attribute, nil when the key is
// implicit, and the remaining columns. Two attributes may not map to the
// same column and at most one may be named id in any case.
func entityColumns(list *model.DomainList, ent *model.Domain) (*model.Attribute, []*model.Attribute, error) {
	var id *model.Attribute
	for _, a := range ent.Attributes() {
		if !isKey(a) {
			continue
		}
		if id != nil {
			return nil, nil, fmt.Errorf("%s: attributes %q and %q are both primary keys: %w",
				ent.Name(), id.Name(), a.Name(), ErrNameCollision)
		}
		id = a
	}

	owners := map[string]string{"id": "id"}
	if id != nil {
		owners["id"] = id.Name()
	}
	var cols []*model.Attribute
	for _, a := range ent.Attributes() {
		if a == id {
			continue
		}
		col := typeconv.ColumnName(list, a)
		if first, ok := owners[col]; ok {
			return nil, nil, fmt.Errorf("%s: attributes %q and %q both map to column %s: %w",
				ent.Name(), first, a.Name(), col, ErrNameCollision)
		}
		owners[col] = a.Name()
		cols = append(cols, a)
	}
	return id, cols, nil
}

func isKey(a *model.Attribute) bool { return strings.EqualFold(a.Name(), "id") }

func scanMigrations(dir string) (map[string]bool, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]bool{}, 0, nil
		}
		return nil, 0, fmt.Errorf("read migrations dir: %w", err)
	}
	seen := map[string]bool{}
	maxVer := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := reUp.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		seen[m[2]] = true
		if v, err := strconv.Atoi(m[1]); err == nil && v > maxVer {
			maxVer = v
		}
	}
	return seen, maxVer, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("introspect table %s: %w", table, err)
	}
	defer rows.Close()

	cols := map[string]string{}
	for rows.Next() {
		var col, udtName string
		if err := rows.Scan(&col, &udtName); err != nil {
			return nil, fmt.Errorf("scan column for %s: %w", table, err)
		}
		cols[col] = strings.ToUpper(udtName)
	}
	return cols, rows.Err()
}

func enumLabels(ctx context.Context, db *sql.DB, typ string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, enumLabelsQuery, typ)
	if err != nil {
		return nil, fmt.Errorf("introspect enum %s: %w", typ, err)
	}
	defer rows.Close()

	labels := map[string]bool{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan label for %s: %w", typ, err)
		}
		labels[label] = true
	}
	return labels, rows.Err()
}

// orderEntities puts referenced entities before the entities that reference
// them. Declaration order is kept otherwise, including inside cycles.
func orderEntities(list *model.DomainList) []*model.Domain {
	const (
		unvisited = iota
		visiting
		done
	)
	state := map[string]int{}
	var out []*model.Domain
	var visit func(d *model.Domain)
	visit = func(d *model.Domain) {
		if state[d.Name()] != unvisited {
			return
		}
		state[d.Name()] = visiting
		for _, a := range d.Attributes() {
			if ref, ok := typeconv.Reference(list, a.Type()); ok && ref.Kind() == model.Entity {
				visit(ref)
			}
		}
		state[d.Name()] = done
		out = append(out, d)
	}
	for _, d := range list.Entities() {
		visit(d)
	}
	return out
}

func createTypeSQL(enum *model.Domain) (string, string) {
	typ := pq.QuoteIdentifier(typeconv.TableName(enum.Name()))
	var labels []string
	for _, a := range enum.Attributes() {
		labels = append(labels, pq.QuoteLiteral(a.Name()))
	}
	up := fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", typ, strings.Join(labels, ", "))
	down := fmt.Sprintf("DROP TYPE %s;", typ)
	return up, down
}

func alterTypeSQL(enum *model.Domain, existing map[string]bool) (string, string, bool) {
	typ := pq.QuoteIdentifier(typeconv.TableName(enum.Name()))
	var adds, notes []string
	for _, a := range enum.Attributes() {
		if existing[a.Name()] {
			continue
		}
		adds = append(adds, fmt.Sprintf("ALTER TYPE %s ADD VALUE IF NOT EXISTS %s;", typ, pq.QuoteLiteral(a.Name())))
		notes = append(notes, fmt.Sprintf("-- note: value %s of %s cannot be dropped; recreate the type to remove it", a.Name(), typ))
	}
	if len(adds) == 0 {
		return "", "", false
	}
	return strings.Join(adds, "\n"), strings.Join(notes, "\n"), true
}

// idAttribute returns the attribute declared as the primary key, if any.
func idAttribute(d *model.Domain) (*model.Attribute, bool) {
	for _, a := range d.Attributes() {
		if isKey(a) {
			return a, true
		}
	}
	return nil, false
}

// keyType is the column type of foreign keys pointing at d.
func keyType(list *model.DomainList, d *model.Domain) string {
	if id, ok := idAttribute(d); ok {
		return typeconv.CanonicalType(typeconv.SQLType(list, id.Type()))
	}
	return "INTEGER"
}

// columnType is the SQL type of a non key attribute.
func columnType(list *model.DomainList, a *model.Attribute) string {
	if ref, ok := typeconv.Reference(list, a.Type()); ok {
		if ref.Kind() == model.Entity {
			return keyType(list, ref)
		}
		return pq.QuoteIdentifier(typeconv.TableName(ref.Name()))
	}
	return typeconv.SQLType(list, a.Type())
}

// primaryKeySQL renders the key column. It is always named id so that
// foreign keys can reference it.
func primaryKeySQL(list *model.DomainList, id *model.Attribute) string {
	col := pq.QuoteIdentifier("id")
	if id == nil {
		return fmt.Sprintf("    %s SERIAL PRIMARY KEY", col)
	}
	switch typeconv.SQLType(list, id.Type()) {
	case "INTEGER":
		return fmt.Sprintf("    %s SERIAL PRIMARY KEY", col)
	case "BIGINT":
		return fmt.Sprintf("    %s BIGSERIAL PRIMARY KEY", col)
	case "UUID":
		return fmt.Sprintf("    %s UUID PRIMARY KEY DEFAULT gen_random_uuid()", col)
	default:
		return fmt.Sprintf("    %s %s PRIMARY KEY", col, columnType(list, id))
	}
}

func columnSQL(list *model.DomainList, a *model.Attribute) string {
	def := fmt.Sprintf("%s %s", pq.QuoteIdentifier(typeconv.ColumnName(list, a)), columnType(list, a))
	if ref, ok := typeconv.Reference(list, a.Type()); ok && ref.Kind() == model.Entity {
		def += fmt.Sprintf(" REFERENCES %s(id)", pq.QuoteIdentifier(typeconv.TableName(ref.Name())))
	}
	return def
}

func createTableSQL(list *model.DomainList, ent *model.Domain) (string, string, error) {
	id, cols, err := entityColumns(list, ent)
	if err != nil {
		return "", "", err
	}
	table := pq.QuoteIdentifier(typeconv.TableName(ent.Name()))
	lines := []string{primaryKeySQL(list, id)}
	for _, a := range cols {
		lines = append(lines, "    "+columnSQL(list, a))
	}
	up := fmt.Sprintf("CREATE TABLE %s (\n%s\n);", table, strings.Join(lines, ",\n"))
	down := fmt.Sprintf("DROP TABLE %s;", table)
	return up, down, nil
}

func alterTableSQL(list *model.DomainList, ent *model.Domain, existing map[string]string) (string, string, bool, error) {
	_, cols, err := entityColumns(list, ent)
	if err != nil {
		return "", "", false, err
	}
	table := pq.QuoteIdentifier(typeconv.TableName(ent.Name()))
	var alters, drops []string

	wanted := map[string]bool{"id": true}
	for _, a := range cols {
		col := typeconv.ColumnName(list, a)
		wanted[col] = true
		actual, ok := existing[col]
		if !ok {
			alters = append(alters, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, columnSQL(list, a)))
			drops = append(drops, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, pq.QuoteIdentifier(col)))
			continue
		}
		expected := columnType(list, a)
		if typeconv.CanonicalType(expected) != typeconv.CanonicalType(actual) {
			alters = append(alters, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;",
				table, pq.QuoteIdentifier(col), expected))
			drops = append(drops, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;",
				table, pq.QuoteIdentifier(col), typeconv.CanonicalType(actual)))
		}
	}

	var removed []string
	for col := range existing {
		if !wanted[col] {
			removed = append(removed, col)
		}
	}
	sort.Strings(removed)
	for _, col := range removed {
		alters = append(alters, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, pq.QuoteIdentifier(col)))
		drops = append(drops, fmt.Sprintf("-- note: column %s dropped; manual re-add may be required", col))
	}

	if len(alters) == 0 {
		return "", "", false, nil
	}
	return strings.Join(alters, "\n"), strings.Join(drops, "\n"), true, nil
}
