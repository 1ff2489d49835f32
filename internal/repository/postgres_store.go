package repository

import (
	"database/sql"
	"embed"
)

// Migrations schema files applied by common/database.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir directory inside Migrations.
const MigrationsDir = "migrations"

// PostgresStore every Postgres repository over one pool.
type PostgresStore struct {
	*PostgresDoorsRepository
	*PostgresNamesRepository
	*PostgresArchivesRepository
	*PostgresUsersRepository
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		PostgresDoorsRepository:    NewPostgresDoorsRepository(db),
		PostgresNamesRepository:    NewPostgresNamesRepository(db),
		PostgresArchivesRepository: NewPostgresArchivesRepository(db),
		PostgresUsersRepository:    NewPostgresUsersRepository(db),
	}
}

var _ Store = (*PostgresStore)(nil)
