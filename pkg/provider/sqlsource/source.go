package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/denoland-id/denoid/pkg/provider"
)

// DefaultTable is the table read when none is configured
const DefaultTable = "modules"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Source reads module records from a SQL database
type Source struct {
	db    *sql.DB
	table string
}

// Open connects to the database with the given driver ("postgres" or "sqlite3")
func Open(driver, dsn, table string) (*Source, error) {
	switch driver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s (must be postgres or sqlite3)", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	src, err := New(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return src, nil
}

// New wraps an existing database handle
func New(db *sql.DB, table string) (*Source, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	return &Source{db: db, table: table}, nil
}

// Name implements provider.Provider.Name
func (s *Source) Name() string {
	return "sql"
}

// DB returns the underlying handle, used for health checks
func (s *Source) DB() *sql.DB {
	return s.db
}

// Close closes the database handle
func (s *Source) Close() error {
	return s.db.Close()
}

// buildQuery renders the SELECT for a provider query
func (s *Source) buildQuery(q provider.Query) string {
	var b strings.Builder
	b.WriteString(`SELECT name, "desc" FROM `)
	b.WriteString(s.table)
	if q.ActiveOnly {
		b.WriteString(" WHERE active = TRUE")
	}
	if q.SortBy != "" {
		b.WriteString(" ORDER BY name ASC")
	}
	return b.String()
}

// ListModules implements provider.Provider.ListModules
func (s *Source) ListModules(ctx context.Context, q provider.Query) ([]provider.Module, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.buildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []provider.Module
	for rows.Next() {
		var (
			m    provider.Module
			desc sql.NullString
		)
		if err := rows.Scan(&m.Name, &desc); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		m.Desc = desc.String
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate modules: %w", err)
	}

	return provider.Normalize(modules)
}
