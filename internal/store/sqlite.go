package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT    NOT NULL,
	id         TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	body       TEXT    NOT NULL,
	PRIMARY KEY (collection, id)
)`

// SQLiteBackend stores every collection in one SQLite table.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path. Use ":memory:" for a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, persistErr("open", path, err)
	}
	// one connection keeps ":memory:" a single database and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, persistErr("migrate", path, err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Load returns the documents of collection in saved order.
func (b *SQLiteBackend) Load(ctx context.Context, collection string) ([]Document, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, body FROM records WHERE collection = ? ORDER BY position`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Body: []byte(body)})
	}
	return docs, rows.Err()
}

// Save replaces collection inside a single transaction.
func (b *SQLiteBackend) Save(ctx context.Context, collection string, docs []Document) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records(collection, id, position, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, d := range docs {
		id := d.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}
		if _, err := stmt.ExecContext(ctx, collection, id, i, string(d.Body)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

var _ Backend = (*SQLiteBackend)(nil)
