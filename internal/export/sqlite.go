// Package export writes a catalog to formats other tools can query.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/morozRed/pdfxref/internal/document"
	_ "modernc.org/sqlite"
)

const schema = `
DROP TABLE IF EXISTS crossrefs;
DROP TABLE IF EXISTS document_fields;
DROP TABLE IF EXISTS documents;

CREATE TABLE documents (
	id       INTEGER PRIMARY KEY,
	filename TEXT NOT NULL,
	path     TEXT NOT NULL,
	name     TEXT NOT NULL,
	author   TEXT NOT NULL,
	year     INTEGER NOT NULL,
	pages    INTEGER NOT NULL,
	free     INTEGER NOT NULL
);

CREATE TABLE document_fields (
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	key         TEXT NOT NULL,
	kind        TEXT NOT NULL CHECK (kind IN ('unset', 'bool', 'text')),
	bool_value  INTEGER,
	text_value  TEXT,
	PRIMARY KEY (document_id, key)
);

CREATE TABLE crossrefs (
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	target      TEXT NOT NULL,
	mentioned   INTEGER,
	PRIMARY KEY (document_id, target)
);

CREATE INDEX idx_crossrefs_target ON crossrefs(target);
`

// WriteSQLite replaces the catalog tables of the database at path with docs,
// in one transaction. Unknown cross-references are stored as NULL.
func WriteSQLite(ctx context.Context, path string, docs []*document.Document) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: begin tx: %w", err)
	}
	if err := writeTables(ctx, tx, docs); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export: commit: %w", err)
	}
	return nil
}

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("export: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("export: open %s: %w", path, err)
	}
	// A single file is easier to hand around than a WAL pair.
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = DELETE",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("export: %s: %w", p, err)
		}
	}
	return db, nil
}

func writeTables(ctx context.Context, tx *sql.Tx, docs []*document.Document) error {
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("export: create schema: %w", err)
	}

	insertDoc, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (id, filename, path, name, author, year, pages, free) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare documents: %w", err)
	}
	defer insertDoc.Close()
	insertField, err := tx.PrepareContext(ctx,
		`INSERT INTO document_fields (document_id, key, kind, bool_value, text_value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare document_fields: %w", err)
	}
	defer insertField.Close()
	insertRef, err := tx.PrepareContext(ctx,
		`INSERT INTO crossrefs (document_id, position, target, mentioned) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare crossrefs: %w", err)
	}
	defer insertRef.Close()

	for i, doc := range docs {
		id := i + 1
		if _, err := insertDoc.ExecContext(ctx, id, doc.Filename, doc.Path, doc.Name, doc.Author, doc.Year, doc.Pages, doc.Free); err != nil {
			return fmt.Errorf("export: insert %s: %w", doc.Filename, err)
		}

		for _, field := range doc.Fields() {
			kind, boolValue, textValue := fieldColumns(*field.Value)
			if _, err := insertField.ExecContext(ctx, id, field.Key, kind, boolValue, textValue); err != nil {
				return fmt.Errorf("export: insert %s of %s: %w", field.Key, doc.Filename, err)
			}
		}

		for pos, target := range doc.CrossRefs.Keys() {
			var mentioned sql.NullBool
			switch doc.CrossRefs.Get(target) {
			case document.MentionYes:
				mentioned = sql.NullBool{Bool: true, Valid: true}
			case document.MentionNo:
				mentioned = sql.NullBool{Bool: false, Valid: true}
			}
			if _, err := insertRef.ExecContext(ctx, id, pos, target, mentioned); err != nil {
				return fmt.Errorf("export: insert crossref %q of %s: %w", target, doc.Filename, err)
			}
		}
	}
	return nil
}

func fieldColumns(a document.Answer) (string, sql.NullBool, sql.NullString) {
	if v, ok := a.BoolValue(); ok {
		return "bool", sql.NullBool{Bool: v, Valid: true}, sql.NullString{}
	}
	if v, ok := a.TextValue(); ok {
		return "text", sql.NullBool{}, sql.NullString{String: v, Valid: true}
	}
	return "unset", sql.NullBool{}, sql.NullString{}
}
