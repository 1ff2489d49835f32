package repository

import (
	"context"
	"database/sql"

	"github.com/rekk2/event-registration/internal/domain"
)

// PostgresDoorsRepository doors table.
type PostgresDoorsRepository struct {
	db *sql.DB
}

func NewPostgresDoorsRepository(db *sql.DB) *PostgresDoorsRepository {
	return &PostgresDoorsRepository{db: db}
}

var _ DoorsRepository = (*PostgresDoorsRepository)(nil)

func (r *PostgresDoorsRepository) ListDoors(ctx context.Context) ([]domain.Door, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT door_id::text, door FROM doors ORDER BY door ASC`)
	if err != nil {
		return nil, domain.NewStorageError("list doors", err)
	}
	defer rows.Close()

	doors := []domain.Door{}
	for rows.Next() {
		var d domain.Door
		if err := rows.Scan(&d.ID, &d.Door); err != nil {
			return nil, domain.NewStorageError("scan door", err)
		}
		doors = append(doors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list doors", err)
	}
	return doors, nil
}

func (r *PostgresDoorsRepository) DoorExists(ctx context.Context, door string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM doors WHERE door = $1)`, door).Scan(&exists)
	if err != nil {
		return false, domain.NewStorageError("door exists", err)
	}
	return exists, nil
}

func (r *PostgresDoorsRepository) CreateDoor(ctx context.Context, door string) (*domain.Door, error) {
	d := domain.Door{Door: door}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO doors (door) VALUES ($1) RETURNING door_id::text`,
		door,
	).Scan(&d.ID)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return nil, doorConflict(door)
		}
		return nil, domain.NewStorageError("create door", err)
	}
	return &d, nil
}

func (r *PostgresDoorsRepository) RenameDoor(ctx context.Context, doorID, newName string) (*domain.Door, error) {
	d := domain.Door{Door: newName}
	err := r.db.QueryRowContext(ctx,
		`UPDATE doors SET door = $2 WHERE door_id = $1 RETURNING door_id::text`,
		doorID, newName,
	).Scan(&d.ID)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return nil, doorConflict(newName)
		}
		return nil, mapNotFound("rename door", "door", doorID, err)
	}
	return &d, nil
}

func (r *PostgresDoorsRepository) DeleteDoor(ctx context.Context, doorID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM doors WHERE door_id = $1`, doorID)
	if err != nil {
		return mapNotFound("delete door", "door", doorID, err)
	}
	return requireAffected(res, "door", doorID)
}
