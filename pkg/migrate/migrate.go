package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/TechXTT/mdsl/internal/logger"
)

// Migration holds one versioned migration
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

func (m Migration) String() string { return fmt.Sprintf("%04d_%s", m.Version, m.Name) }

// Manager applies and rolls back migrations
type Manager struct {
	db            *sql.DB
	migrationsDir string
	migrations    []Migration
	log           *slog.Logger
}

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

var reMigration = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// NewManager loads migration files from the specified directory, creating it
// when missing.
func NewManager(db *sql.DB, migrationsDir string, opts ...Option) (*Manager, error) {
	m := &Manager{db: db, migrationsDir: migrationsDir}
	for _, opt := range opts {
		opt(m)
	}
	m.log = logger.Or(m.log)
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations dir: %w", err)
	}
	if err := m.loadMigrations(); err != nil {
		return nil, err
	}
	return m, nil
}

// Migrations returns the loaded migrations sorted by version.
func (m *Manager) Migrations() []Migration {
	return append([]Migration(nil), m.migrations...)
}

// loadMigrations reads .up.sql/.down.sql files and organizes them by version
func (m *Manager) loadMigrations() error {
	entries, err := os.ReadDir(m.migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	tmp := map[int]*Migration{}
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		matches := reMigration.FindStringSubmatch(fi.Name())
		if len(matches) != 4 {
			continue
		}
		ver, err := strconv.Atoi(matches[1])
		if err != nil {
			return fmt.Errorf("bad version in %s: %w", fi.Name(), err)
		}
		data, err := os.ReadFile(filepath.Join(m.migrationsDir, fi.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", fi.Name(), err)
		}
		mig, exists := tmp[ver]
		if !exists {
			mig = &Migration{Version: ver, Name: matches[2]}
			tmp[ver] = mig
		}
		if matches[3] == "up" {
			mig.UpSQL = string(data)
		} else {
			mig.DownSQL = string(data)
		}
	}
	versions := make([]int, 0, len(tmp))
	for v := range tmp {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	m.migrations = m.migrations[:0]
	for _, v := range versions {
		m.migrations = append(m.migrations, *tmp[v])
	}
	return nil
}

// EnsureVersionTable creates schema_migrations if missing
func (m *Manager) EnsureVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INT PRIMARY KEY);`)
	if err != nil {
		return fmt.Errorf("ensure version table: %w", err)
	}
	return nil
}

// currentVersion returns the highest applied migration version
func (m *Manager) currentVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	row := m.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations;`)
	if err := row.Scan(&v); err != nil {
		return 0, fmt.Errorf("current version: %w", err)
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

func (m *Manager) prepare(ctx context.Context) (int, error) {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return 0, err
	}
	return m.currentVersion(ctx)
}

// apply runs one migration script and its bookkeeping statement in a single
// transaction.
func (m *Manager) apply(ctx context.Context, script, bookkeeping string, version int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if strings.TrimSpace(script) != "" {
		if _, err := tx.ExecContext(ctx, script); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Up applies all pending migrations
func (m *Manager) Up(ctx context.Context) error {
	current, err := m.prepare(ctx)
	if err != nil {
		return err
	}
	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		m.log.Info("migrate.apply", "migration", mig.String(), "direction", "up")
		if err := m.apply(ctx, mig.UpSQL, `INSERT INTO schema_migrations(version) VALUES($1);`, mig.Version); err != nil {
			return fmt.Errorf("apply up %d: %w", mig.Version, err)
		}
	}
	return nil
}

// Down rolls back the latest migration
func (m *Manager) Down(ctx context.Context) error {
	current, err := m.prepare(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		m.log.Info("migrate.nothing_to_roll_back")
		return nil
	}
	var toRoll *Migration
	for i := len(m.migrations) - 1; i >= 0; i-- {
		if m.migrations[i].Version == current {
			toRoll = &m.migrations[i]
			break
		}
	}
	if toRoll == nil {
		return fmt.Errorf("migration not found for version %d", current)
	}
	return m.rollback(ctx, *toRoll)
}

func (m *Manager) rollback(ctx context.Context, mig Migration) error {
	m.log.Info("migrate.apply", "migration", mig.String(), "direction", "down")
	if err := m.apply(ctx, mig.DownSQL, `DELETE FROM schema_migrations WHERE version = $1;`, mig.Version); err != nil {
		return fmt.Errorf("apply down %d: %w", mig.Version, err)
	}
	return nil
}

// Reset rolls back every applied migration in reverse order, then reapplies
// them all.
func (m *Manager) Reset(ctx context.Context) error {
	current, err := m.prepare(ctx)
	if err != nil {
		return err
	}
	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.Version > current {
			continue
		}
		if err := m.rollback(ctx, mig); err != nil {
			return err
		}
	}
	return m.Up(ctx)
}

// Pending returns the migrations newer than the applied version.
func (m *Manager) Pending(ctx context.Context) ([]Migration, error) {
	current, err := m.prepare(ctx)
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, mig := range m.migrations {
		if mig.Version > current {
			out = append(out, mig)
		}
	}
	return out, nil
}

// Status reports the applied version and the state of every migration.
func (m *Manager) Status(ctx context.Context) (string, error) {
	current, err := m.prepare(ctx)
	if err != nil {
		return "", err
	}
	lines := []string{fmt.Sprintf("Current version: %d", current)}
	for _, mig := range m.migrations {
		state := "pending"
		if mig.Version <= current {
			state = "applied"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", mig, state))
	}
	return strings.Join(lines, "\n"), nil
}
