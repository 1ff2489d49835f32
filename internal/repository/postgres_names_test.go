package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rekk2/event-registration/internal/domain"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCreateName_ReturnsID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresNamesRepository(db)

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO names`).
		WithArgs("A", "Ann Smith", at).
		WillReturnRows(sqlmock.NewRows([]string{"name_id"}).AddRow("n-1"))

	entry := &domain.NameEntry{Door: "A", Name: "Ann Smith", Timestamp: at}
	require.NoError(t, repo.CreateName(context.Background(), entry))
	assert.Equal(t, "n-1", entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentByDoor_PassesLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresNamesRepository(db)

	t1 := time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC)
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"name_id", "door", "name", "created_at"}).
		AddRow("n-2", "A", "Bob Adams", t1).
		AddRow("n-1", "A", "Ann Smith", t0)
	mock.ExpectQuery(`SELECT .+ FROM names WHERE door = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("A", 10).
		WillReturnRows(rows)

	entries, err := repo.ListRecentByDoor(context.Background(), "A", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "n-2", entries[0].ID)
	assert.Equal(t, t1, entries[0].Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchNames_EscapesPattern(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresNamesRepository(db)

	mock.ExpectQuery(`WHERE name ILIKE \$1`).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"name_id", "door", "name", "created_at"}))

	entries, err := repo.SearchNames(context.Background(), "50%_off")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByDoor_SumsTotal(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresNamesRepository(db)

	mock.ExpectQuery(`SELECT door, COUNT\(\*\) FROM names GROUP BY door`).
		WillReturnRows(sqlmock.NewRows([]string{"door", "count"}).AddRow("A", 2).AddRow("B", 1))

	agg, err := repo.CountByDoor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, agg.DoorCounts)
	assert.Equal(t, 3, agg.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteName_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresNamesRepository(db)

	mock.ExpectExec(`DELETE FROM names WHERE name_id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteName(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllNames_ReturnsCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresNamesRepository(db)

	mock.ExpectExec(`DELETE FROM names`).WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteAllNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNames_WrapsStorageError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresNamesRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM names ORDER BY door ASC, created_at ASC`).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.ListNames(context.Background())
	var se *domain.StorageError
	assert.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
