package tabular

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DefaultLaunchTable is the table queried when the source names none
const DefaultLaunchTable = "spacex_launches"

// SQLSource identifies a launch table inside a database
type SQLSource struct {
	Driver string
	DSN    string
	Table  string
}

// ParseSQLSource recognises postgres://, postgresql:// and sqlite3:<path>
// sources. A "#table" suffix overrides DefaultLaunchTable.
func ParseSQLSource(source string) (SQLSource, bool) {
	table := DefaultLaunchTable
	if idx := strings.LastIndex(source, "#"); idx > 0 {
		table = source[idx+1:]
		source = source[:idx]
	}

	switch {
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		return SQLSource{Driver: "postgres", DSN: source, Table: table}, true
	case strings.HasPrefix(source, "sqlite3:"):
		return SQLSource{Driver: "sqlite3", DSN: strings.TrimPrefix(source, "sqlite3:"), Table: table}, true
	default:
		return SQLSource{}, false
	}
}

// SQLReader reads the launch table from a database using sqlx.
// The sqlite3 driver must be registered by the importing binary.
type SQLReader struct {
	source SQLSource
}

// NewSQLReader creates a reader over a database table
func NewSQLReader(source SQLSource) *SQLReader {
	return &SQLReader{source: source}
}

// Describe names the driver and table; the DSN may hold credentials so it is omitted
func (r *SQLReader) Describe() string {
	return fmt.Sprintf("%s table %s", r.source.Driver, r.source.Table)
}

// Read selects the launch columns and returns them under the CSV header names
func (r *SQLReader) Read(ctx context.Context) (*Table, error) {
	if !validIdentifier(r.source.Table) {
		return nil, fmt.Errorf("invalid table name %q", r.source.Table)
	}

	startTime := time.Now()
	db, err := sqlx.ConnectContext(ctx, r.source.Driver, r.source.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", r.source.Driver, err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT
		launch_site AS "Launch Site",
		payload_mass_kg AS "Payload Mass (kg)",
		class AS "class",
		booster_version_category AS "Booster Version Category"
	FROM %s`, r.source.Table)

	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.source.Table, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	table := &Table{Headers: headers}
	for rows.Next() {
		values := make(map[string]interface{}, len(headers))
		if err := rows.MapScan(values); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(table.Rows)+1, err)
		}
		row := make(Row, len(values))
		for k, v := range values {
			row[k] = cellString(v)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.source.Table, err)
	}

	log.Printf("[SQLReader] %s read in %.2fms (%d rows)",
		r.Describe(), float64(time.Since(startTime).Nanoseconds())/1e6, len(table.Rows))
	return table, nil
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return strings.TrimSpace(string(t))
	case string:
		return strings.TrimSpace(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c == '.':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
