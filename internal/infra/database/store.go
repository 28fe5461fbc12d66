package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect holds what differs between the supported SQL engines.
type Dialect struct {
	Name       string
	DriverName string
	Schema     []string
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d.Name == DialectSQLite {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

var dialects = map[string]Dialect{
	DialectPostgres: {
		Name:       DialectPostgres,
		DriverName: "postgres",
		Schema: []string{
			`CREATE TABLE IF NOT EXISTS person (
				id   BIGSERIAL PRIMARY KEY,
				name VARCHAR(100) NOT NULL
			)`,
		},
	},
	DialectSQLite: {
		Name:       DialectSQLite,
		DriverName: "sqlite",
		Schema: []string{
			`CREATE TABLE IF NOT EXISTS person (
				id   INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL CHECK (length(name) <= 100)
			)`,
		},
	},
}

type StoreConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// Store owns the connection pool. Persistence contexts borrow a dedicated
// connection from it for as long as they live.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func Open(ctx context.Context, cfg StoreConfig) (*Store, error) {
	dialect, ok := dialects[strings.ToLower(cfg.Driver)]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	dsn := cfg.DSN
	if dialect.Name == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

var sqlitePragmas = []string{"busy_timeout(5000)", "foreign_keys(1)"}

// sqliteDSN turns a path or URI into one every pooled connection can share.
// Missing pragmas are appended since each connection needs them. A memory
// database becomes a named shared-cache one: a plain :memory: would give every
// connection its own empty database.
func sqliteDSN(dsn string) string {
	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")

	var params []string
	if query != "" {
		params = strings.Split(query, "&")
	}

	if path == "" || path == ":memory:" {
		path = "people-" + uuid.NewString()
		params = append(params, "mode=memory")
	}
	if hasParam(params, "mode=memory") && !hasParam(params, "cache=shared") {
		params = append(params, "cache=shared")
	}
	for _, pragma := range sqlitePragmas {
		name, _, _ := strings.Cut(pragma, "(")
		if !hasPragma(params, name) {
			params = append(params, "_pragma="+pragma)
		}
	}

	return "file:" + path + "?" + strings.Join(params, "&")
}

func hasParam(params []string, param string) bool {
	for _, p := range params {
		if strings.EqualFold(p, param) {
			return true
		}
	}
	return false
}

func hasPragma(params []string, name string) bool {
	for _, p := range params {
		value, ok := strings.CutPrefix(p, "_pragma=")
		if ok && strings.HasPrefix(strings.ToLower(value), name) {
			return true
		}
	}
	return false
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Close() error {
	return s.db.Close()
}
