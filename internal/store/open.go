package store

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"gitlab.com/dirk.krummacker/contactbook/internal/config"
	"gitlab.com/dirk.krummacker/contactbook/internal/store/migrations"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// sqliteDriver is the name under which modernc.org/sqlite registers itself.
const sqliteDriver = "sqlite"

// gooseDialects maps database/sql driver names to goose dialects.
var gooseDialects = map[string]string{
	sqliteDriver: "sqlite3",
	"mysql":      "mysql",
}

func init() {
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

// Open connects to the database selected by the configuration.
func Open(cfg config.Config) (*sqlx.DB, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.DriverMySQL:
		db, err := sqlx.Connect("mysql", cfg.MySQLDSN())
		if err != nil {
			return nil, errors.Wrap(err, "could not connect to MySQL")
		}
		return db, nil
	default:
		return nil, errors.Errorf("driver %q has no database", cfg.DBDriver)
	}
}

// OpenSQLite opens the SQLite database file at path; ":memory:" creates a private in-memory
// database. Only one connection is kept open so that writes never run into a locked database
// and an in-memory database is shared by all statements.
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(sqliteDriver, path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open SQLite database %s", path)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "could not open SQLite database %s", path)
	}
	return db, nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sqlx.DB, log *zap.Logger) error {
	if err := setupGoose(db, log); err != nil {
		return err
	}
	return errors.Wrap(goose.UpContext(ctx, db.DB, "."), "could not apply migrations")
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *sqlx.DB, log *zap.Logger) error {
	if err := setupGoose(db, log); err != nil {
		return err
	}
	return errors.Wrap(goose.DownContext(ctx, db.DB, "."), "could not roll back migration")
}

// MigrationStatus logs the state of every migration.
func MigrationStatus(ctx context.Context, db *sqlx.DB, log *zap.Logger) error {
	if err := setupGoose(db, log); err != nil {
		return err
	}
	return errors.Wrap(goose.StatusContext(ctx, db.DB, "."), "could not read migration status")
}

func setupGoose(db *sqlx.DB, log *zap.Logger) error {
	dialect, ok := gooseDialects[db.DriverName()]
	if !ok {
		return errors.Errorf("no migrations for driver %q", db.DriverName())
	}
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(zap.NewStdLog(log.Named("goose")))
	return goose.SetDialect(dialect)
}
