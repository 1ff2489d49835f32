package repository

import (
	"context"
	"database/sql"

	"github.com/rekk2/event-registration/internal/domain"
)

// PostgresNamesRepository names table (the active set).
type PostgresNamesRepository struct {
	db *sql.DB
}

func NewPostgresNamesRepository(db *sql.DB) *PostgresNamesRepository {
	return &PostgresNamesRepository{db: db}
}

var _ NamesRepository = (*PostgresNamesRepository)(nil)

const nameColumns = `name_id::text, door, name, created_at`

func (r *PostgresNamesRepository) CreateName(ctx context.Context, entry *domain.NameEntry) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO names (door, name, created_at) VALUES ($1, $2, $3)
		 RETURNING name_id::text`,
		entry.Door, entry.Name, entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return domain.NewStorageError("create name", err)
	}
	return nil
}

func (r *PostgresNamesRepository) ListNames(ctx context.Context) ([]domain.NameEntry, error) {
	return r.query(ctx, "list names",
		`SELECT `+nameColumns+` FROM names ORDER BY door ASC, created_at ASC`)
}

func (r *PostgresNamesRepository) ListRecentByDoor(ctx context.Context, door string, limit int) ([]domain.NameEntry, error) {
	return r.query(ctx, "list recent names",
		`SELECT `+nameColumns+` FROM names WHERE door = $1 ORDER BY created_at DESC LIMIT $2`,
		door, limit)
}

func (r *PostgresNamesRepository) SearchNames(ctx context.Context, pattern string) ([]domain.NameEntry, error) {
	return r.query(ctx, "search names",
		`SELECT `+nameColumns+` FROM names WHERE name ILIKE $1 ESCAPE '\' ORDER BY created_at ASC`,
		containsPattern(pattern))
}

func (r *PostgresNamesRepository) CountByDoor(ctx context.Context) (domain.Aggregate, error) {
	agg := domain.Aggregate{DoorCounts: map[string]int{}}
	rows, err := r.db.QueryContext(ctx, `SELECT door, COUNT(*) FROM names GROUP BY door`)
	if err != nil {
		return agg, domain.NewStorageError("count names", err)
	}
	defer rows.Close()

	for rows.Next() {
		var door string
		var n int
		if err := rows.Scan(&door, &n); err != nil {
			return agg, domain.NewStorageError("scan count", err)
		}
		agg.DoorCounts[door] = n
		agg.TotalCount += n
	}
	if err := rows.Err(); err != nil {
		return agg, domain.NewStorageError("count names", err)
	}
	return agg, nil
}

func (r *PostgresNamesRepository) DeleteName(ctx context.Context, nameID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM names WHERE name_id = $1`, nameID)
	if err != nil {
		return mapNotFound("delete name", "name", nameID, err)
	}
	return requireAffected(res, "name", nameID)
}

func (r *PostgresNamesRepository) DeleteAllNames(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM names`)
	if err != nil {
		return 0, domain.NewStorageError("delete all names", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.NewStorageError("delete all names", err)
	}
	return n, nil
}

func (r *PostgresNamesRepository) query(ctx context.Context, op, query string, args ...any) ([]domain.NameEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	entries := []domain.NameEntry{}
	for rows.Next() {
		var e domain.NameEntry
		if err := rows.Scan(&e.ID, &e.Door, &e.Name, &e.Timestamp); err != nil {
			return nil, domain.NewStorageError(op, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	return entries, nil
}
