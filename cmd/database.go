package cmd

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/core/datamodel/person"
	"github.com/frahmantamala/hr-directory/internal/core/datamodel/user"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqlDriverName is the database/sql driver behind each configured driver;
// sqlx uses it to pick the bind variable style.
var sqlDriverName = map[string]string{
	internal.DatabaseDriverPostgres: "pgx",
	internal.DatabaseDriverSQLite:   "sqlite3",
}

// Databases are the two handles over one connection pool: gorm for the
// directory and principal lookups, sqlx for the account repository.
type Databases struct {
	Gorm *gorm.DB
	SQLX *sqlx.DB
	SQL  *sql.DB
}

func (d *Databases) Close() error {
	return d.SQL.Close()
}

// initDB opens the configured database and applies the pool settings.
func initDB(cfg internal.DatabaseConfig) (*Databases, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.DatabaseDriverPostgres:
		dialector = postgres.New(postgres.Config{DSN: cfg.GetDSN(), DriverName: "pgx"})
	case internal.DatabaseDriverSQLite:
		dialector = sqlite.Open(cfg.GetDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Databases{
		Gorm: gdb,
		SQLX: sqlx.NewDb(sqlDB, sqlDriverName[cfg.Driver]),
		SQL:  sqlDB,
	}, nil
}

// models are migrated by gorm on SQLite, where the Postgres SQL migrations
// do not apply.
var models = []interface{}{
	&person.Person{},
	&user.User{},
	&user.Group{},
	&user.UserGroup{},
}
