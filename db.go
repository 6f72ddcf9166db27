package sso

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenDB builds the pooled database handle the store operates on.
// Connections are acquired per-operation and returned to the pool; the
// pool bounds come from configuration.
func OpenDB(cfg *Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to open database").
			WithTextCode(TextCodeBackendUnavailable)
	}

	sqldb.SetMaxOpenConns(cfg.PoolMaxOpen)
	sqldb.SetMaxIdleConns(cfg.PoolMaxIdle)
	sqldb.SetConnMaxLifetime(cfg.PoolMaxLifetime)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS titles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR(64) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS departments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		department VARCHAR(64) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location VARCHAR(64) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_role VARCHAR(64) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS credentials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email VARCHAR(64) NOT NULL UNIQUE,
		password_hash VARCHAR(72) NOT NULL,
		temp_password_hash VARCHAR(72),
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		first_name VARCHAR(64) NOT NULL,
		last_name VARCHAR(64) NOT NULL,
		title_id INTEGER NOT NULL REFERENCES titles (id),
		department_id INTEGER NOT NULL REFERENCES departments (id),
		location_id INTEGER NOT NULL REFERENCES locations (id),
		user_role_id INTEGER NOT NULL REFERENCES user_roles (id)
	)`,
}

// CreateSchema installs the credentials table and its lookup tables.
// Migration tooling proper lives outside this core; this exists for
// embedded deployments and tests.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create schema").
				WithTextCode(TextCodeBackendUnavailable)
		}
	}
	return nil
}

// LookupValues seeds the lookup tables the credentials table references.
type LookupValues struct {
	Titles      []string
	Departments []string
	Locations   []string
	Roles       []string
}

// SeedLookupValues inserts any missing lookup rows. Existing values are
// left alone.
func SeedLookupValues(ctx context.Context, db *bun.DB, values LookupValues) error {
	seeds := []struct {
		stmt   string
		values []string
	}{
		{`INSERT INTO titles (title) VALUES (?)`, values.Titles},
		{`INSERT INTO departments (department) VALUES (?)`, values.Departments},
		{`INSERT INTO locations (location) VALUES (?)`, values.Locations},
		{`INSERT INTO user_roles (user_role) VALUES (?)`, values.Roles},
	}

	for _, seed := range seeds {
		for _, value := range seed.values {
			if _, err := db.ExecContext(ctx, seed.stmt, value); err != nil {
				if isUniqueViolation(err) {
					continue
				}
				return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to seed lookup values").
					WithTextCode(TextCodeBackendUnavailable)
			}
		}
	}
	return nil
}
