package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite драйвер
)

// MemoryPath открывает базу в памяти процесса.
const MemoryPath = ":memory:"

// Options содержит настройки подключения к SQLite.
type Options struct {
	// MaxOpenConns - максимальное количество открытых соединений
	MaxOpenConns int
	// MaxIdleConns - максимальное количество idle соединений
	MaxIdleConns int
	// ConnMaxLifetime - максимальное время жизни соединения
	ConnMaxLifetime time.Duration
	// PingTimeout - таймаут проверки соединения при открытии
	PingTimeout time.Duration
	// WALMode - включить журнал WAL
	WALMode bool
	// ForeignKeys - включить проверку внешних ключей
	ForeignKeys bool
	// BusyTimeout - ожидание при SQLITE_BUSY
	BusyTimeout time.Duration
}

// DefaultOptions возвращает настройки для файловой базы каталога.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    4, // один писатель, несколько читателей
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		WALMode:         true,
		ForeignKeys:     true,
		BusyTimeout:     5 * time.Second,
	}
}

// Open открывает файловую базу с настройками по умолчанию.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == MemoryPath {
		return OpenInMemory(ctx)
	}
	return OpenWithOptions(ctx, path, DefaultOptions())
}

// OpenInMemory открывает базу в памяти. Пул ограничен одним соединением,
// иначе каждое соединение видит свою пустую базу.
func OpenInMemory(ctx context.Context) (*sql.DB, error) {
	opts := DefaultOptions()
	opts.WALMode = false
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	opts.ConnMaxLifetime = 0
	return OpenWithOptions(ctx, MemoryPath, opts)
}

// OpenWithOptions открывает базу по пути path и применяет PRAGMA из opts.
func OpenWithOptions(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if err := applyPragmas(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// pragmas возвращает PRAGMA для opts в порядке применения.
func pragmas(opts Options) []string {
	out := make([]string, 0, 4)
	if opts.ForeignKeys {
		out = append(out, "PRAGMA foreign_keys = ON")
	}
	if opts.WALMode {
		out = append(out, "PRAGMA journal_mode = WAL")
	}
	out = append(out, "PRAGMA synchronous = NORMAL")
	if opts.BusyTimeout > 0 {
		out = append(out, fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout.Milliseconds()))
	}
	return out
}

func applyPragmas(ctx context.Context, db *sql.DB, opts Options) error {
	for _, p := range pragmas(opts) {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("execute %s: %w", p, err)
		}
	}
	return nil
}
