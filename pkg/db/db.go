package db

import (
	"context"
	"fmt"

	"github.com/go-pg/pg/v10"
)

// DB wraps the go-pg connection used across the application.
type DB struct {
	*pg.DB
}

func New(dbc *pg.DB) DB {
	return DB{DB: dbc}
}

// Ping checks the database connection.
func (dbc DB) Ping(ctx context.Context) error {
	_, err := dbc.DB.ExecContext(ctx, "SELECT 1")
	return err
}

// Version returns postgres version string.
func (dbc DB) Version(ctx context.Context) (string, error) {
	var v string
	_, err := dbc.DB.QueryOneContext(ctx, pg.Scan(&v), "SELECT version()")
	return v, err
}

// DSN builds a lib/pq connection string from go-pg options. Used by the
// migration runner, which talks to postgres through database/sql.
func DSN(o *pg.Options) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", o.User, o.Password, o.Addr, o.Database)
}
