package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	migrate "github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationInfo содержит результат применения миграций.
type MigrationInfo struct {
	Applied        bool // были ли применены новые миграции
	CurrentVersion uint // версия до применения
	FinalVersion   uint // версия после применения
}

// ApplyMigrations применяет миграции из каталога dir в fsys к открытой базе db.
// Повторный вызов безопасен: migrate.ErrNoChange ошибкой не считается.
//
// Драйвер работает поверх переданного соединения, поэтому подходит и для
// базы в памяти. migrate.Close не вызывается: он закрыл бы db.
func ApplyMigrations(db *sql.DB, fsys fs.FS, dir string) (MigrationInfo, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return MigrationInfo{}, fmt.Errorf("create iofs source: %w", err)
	}
	defer func() { _ = src.Close() }()

	driver, err := msqlite.WithInstance(db, &msqlite.Config{})
	if err != nil {
		return MigrationInfo{}, fmt.Errorf("create sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return MigrationInfo{}, fmt.Errorf("create migrate instance: %w", err)
	}

	var info MigrationInfo
	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return info, fmt.Errorf("get current version: %w", err)
	}
	if dirty {
		return info, fmt.Errorf("database is in dirty state at version %d", current)
	}
	info.CurrentVersion = current
	info.FinalVersion = current

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return info, nil
		}
		return info, fmt.Errorf("apply migrations: %w", err)
	}

	info.Applied = true
	if v, _, err := m.Version(); err == nil {
		info.FinalVersion = v
	}
	return info, nil
}
