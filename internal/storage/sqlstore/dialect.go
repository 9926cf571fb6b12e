package sqlstore

import (
	"fmt"
	"strings"
)

// Dialect holds the SQL differences between supported databases
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2) instead of ?
	numbered bool
}

var (
	// Postgres is used by the pgx and postgres drivers
	Postgres = Dialect{Name: "postgres", numbered: true}
	// SQLite is used by the sqlite3 driver
	SQLite = Dialect{Name: "sqlite", numbered: false}
)

// DialectFor returns the dialect of a database/sql driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Rebind rewrites ? placeholders for the dialect
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// schema returns the statements creating the store's tables
func (d Dialect) schema() []string {
	timestamp := "TIMESTAMP"
	if d.numbered {
		timestamp = "TIMESTAMPTZ"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS collections (
	handle VARCHAR(255) PRIMARY KEY,
	data TEXT NOT NULL,
	updated_at ` + timestamp + ` NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS collection_positions (
	collection VARCHAR(255) NOT NULL REFERENCES collections(handle) ON DELETE CASCADE,
	position BIGINT NOT NULL,
	entry_id VARCHAR(255) NOT NULL,
	PRIMARY KEY (collection, position)
)`,
		`CREATE INDEX IF NOT EXISTS idx_collection_positions_entry
ON collection_positions(collection, entry_id)`,
	}
}
