package sqlite

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"
)

// NewTestDB открывает базу в памяти, применяет миграции из fsys/dir и
// закрывает её по завершении теста.
func NewTestDB(t testing.TB, fsys fs.FS, dir string) *sql.DB {
	t.Helper()

	db, err := OpenInMemory(context.Background())
	if err != nil {
		t.Fatalf("open in-memory test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if fsys != nil {
		if _, err := ApplyMigrations(db, fsys, dir); err != nil {
			t.Fatalf("apply test migrations: %v", err)
		}
	}
	return db
}
