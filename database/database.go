package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
)

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// OpenWhatsmeow opens the session database and upgrades the whatsmeow schema.
// The caller owns the returned *sql.DB and must close it.
func OpenWhatsmeow(ctx context.Context, dialect, dsn string, log waLog.Logger) (*sql.DB, *sqlstore.Container, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, nil, fmt.Errorf("unsupported session dialect %q", dialect)
	}

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	container := sqlstore.NewWithDB(db, dialect, log)
	if err := container.Upgrade(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("upgrade whatsmeow schema: %w", err)
	}

	return db, container, nil
}

// SQLiteDSN points whatsmeow at a database file with foreign keys enabled.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on"
}
