package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/appdotbuilder/school-management-app/internal/schema"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var sqliteSeq atomic.Int64

// NewSQLite returns a migrated in-memory store private to t, with foreign keys
// enforced. It is closed when t finishes.
func NewSQLite(t *testing.T) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, sqliteSeq.Add(1))

	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	// the database lives as long as its only connection
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	database := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, schema.Migrate(context.Background(), database))

	t.Cleanup(func() { database.Close() })
	return database
}

// Reset empties every record table, children first.
func Reset(t *testing.T, database *bun.DB) {
	t.Helper()

	ctx := context.Background()
	for i := len(schema.Tables) - 1; i >= 0; i-- {
		table := schema.Tables[i]

		var query string
		switch database.Dialect().Name() {
		case dialect.PG:
			query = "TRUNCATE " + table + " RESTART IDENTITY CASCADE"
		default:
			query = "DELETE FROM " + table
		}

		_, err := database.ExecContext(ctx, query)
		require.NoError(t, err, "failed to clean table: %s", table)
	}
}
