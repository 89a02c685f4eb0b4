// Package sqlite предоставляет подключение к SQLite (modernc.org/sqlite, без cgo),
// транзакции с повтором при SQLITE_BUSY и миграции golang-migrate из fs.FS.
//
// # Быстрый старт
//
//	db, err := sqlite.Open(ctx, "data/items.db")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	if _, err := sqlite.ApplyMigrations(db, migrations.FS, "sqlite"); err != nil {
//		return err
//	}
//
// # Транзакции
//
//	runner := sqlite.NewTxRunner(db)
//	err = runner.WithinTx(ctx, func(ctx context.Context) error {
//		_, err := runner.Querier(ctx).ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "pen")
//		return err
//	})
//
// # Тестирование
//
//	db := sqlite.NewTestDB(t, migrations.FS, "sqlite")
package sqlite
