package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rekk2/event-registration/internal/domain"
)

// PostgresArchivesRepository archives table. Entry data lives in a JSONB column so an
// archive is independent of later changes to names.
type PostgresArchivesRepository struct {
	db *sql.DB
}

func NewPostgresArchivesRepository(db *sql.DB) *PostgresArchivesRepository {
	return &PostgresArchivesRepository{db: db}
}

var _ ArchivesRepository = (*PostgresArchivesRepository)(nil)

// entryJSON must produce the same keys as domain.NameEntry's json tags.
const entryJSON = `jsonb_build_object('_id', name_id::text, 'door', door, 'name', name, 'timestamp', created_at)`

const createArchiveSQL = `
INSERT INTO archives (event_name, created_at, data)
SELECT $1, $2, COALESCE(jsonb_agg(` + entryJSON + ` ORDER BY door, created_at), '[]'::jsonb)
FROM names
RETURNING archive_id::text, data`

// The DELETE and INSERT share one snapshot, so exactly the removed rows are archived.
const archiveAndClearSQL = `
WITH removed AS (
	DELETE FROM names RETURNING name_id, door, name, created_at
)
INSERT INTO archives (event_name, created_at, data)
SELECT $1, $2, COALESCE(jsonb_agg(` + entryJSON + ` ORDER BY door, created_at), '[]'::jsonb)
FROM removed
RETURNING archive_id::text, data`

func (r *PostgresArchivesRepository) CreateArchive(ctx context.Context, eventName string, at time.Time) (*domain.Archive, error) {
	return r.insert(ctx, "create archive", createArchiveSQL, eventName, at)
}

func (r *PostgresArchivesRepository) ArchiveAndClear(ctx context.Context, eventName string, at time.Time) (*domain.Archive, int64, error) {
	a, err := r.insert(ctx, "archive and clear", archiveAndClearSQL, eventName, at)
	if err != nil {
		return nil, 0, err
	}
	return a, int64(len(a.Data)), nil
}

func (r *PostgresArchivesRepository) insert(ctx context.Context, op, query, eventName string, at time.Time) (*domain.Archive, error) {
	a := domain.Archive{EventName: eventName, Timestamp: at}
	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, eventName, at).Scan(&a.ID, &raw); err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	if err := json.Unmarshal(raw, &a.Data); err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	return &a, nil
}

func (r *PostgresArchivesRepository) ListArchives(ctx context.Context) ([]domain.ArchiveSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT archive_id::text, event_name, created_at, jsonb_array_length(data)
		 FROM archives ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.NewStorageError("list archives", err)
	}
	defer rows.Close()

	out := []domain.ArchiveSummary{}
	for rows.Next() {
		var s domain.ArchiveSummary
		if err := rows.Scan(&s.ID, &s.EventName, &s.Timestamp, &s.TotalCount); err != nil {
			return nil, domain.NewStorageError("scan archive", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list archives", err)
	}
	return out, nil
}

func (r *PostgresArchivesRepository) GetArchive(ctx context.Context, archiveID string) (*domain.Archive, error) {
	var a domain.Archive
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT archive_id::text, event_name, created_at, data FROM archives WHERE archive_id = $1`,
		archiveID,
	).Scan(&a.ID, &a.EventName, &a.Timestamp, &raw)
	if err != nil {
		return nil, mapNotFound("get archive", "archive", archiveID, err)
	}
	if err := json.Unmarshal(raw, &a.Data); err != nil {
		return nil, domain.NewStorageError("decode archive", err)
	}
	return &a, nil
}

func (r *PostgresArchivesRepository) DeleteArchive(ctx context.Context, archiveID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM archives WHERE archive_id = $1`, archiveID)
	if err != nil {
		return mapNotFound("delete archive", "archive", archiveID, err)
	}
	return requireAffected(res, "archive", archiveID)
}

func (r *PostgresArchivesRepository) SearchArchives(ctx context.Context, pattern string) ([]domain.NameEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.entry
		 FROM archives a
		 CROSS JOIN LATERAL jsonb_array_elements(a.data) WITH ORDINALITY AS e(entry, pos)
		 WHERE e.entry->>'name' ILIKE $1 ESCAPE '\'
		 ORDER BY a.created_at ASC, a.archive_id, e.pos`,
		containsPattern(pattern))
	if err != nil {
		return nil, domain.NewStorageError("search archives", err)
	}
	defer rows.Close()

	out := []domain.NameEntry{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, domain.NewStorageError("scan archive entry", err)
		}
		var e domain.NameEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, domain.NewStorageError("decode archive entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("search archives", err)
	}
	return out, nil
}
