package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rekk2/event-registration/internal/domain"
)

// PostgresUsersRepository users table.
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `user_id::text, username, password_hash, role, COALESCE(door, '')`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.Door); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *PostgresUsersRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, domain.NewStorageError("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list users", err)
	}
	return users, nil
}

func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID))
	if err != nil {
		return nil, mapNotFound("get user", "user", userID, err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, mapNotFound("get user", "user", username, err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, door)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 RETURNING user_id::text`,
		user.Username, user.PasswordHash, string(user.Role), user.Door,
	).Scan(&user.ID)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return &domain.ConflictError{Message: fmt.Sprintf("username %q already exists", user.Username)}
		}
		return domain.NewStorageError("create user", err)
	}
	return nil
}

func (r *PostgresUsersRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = $2, password_hash = $3, role = $4, door = NULLIF($5, '')
		 WHERE user_id = $1`,
		user.ID, user.Username, user.PasswordHash, string(user.Role), user.Door,
	)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return &domain.ConflictError{Message: fmt.Sprintf("username %q already exists", user.Username)}
		}
		return mapNotFound("update user", "user", user.ID, err)
	}
	return requireAffected(res, "user", user.ID)
}

func (r *PostgresUsersRepository) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return mapNotFound("delete user", "user", userID, err)
	}
	return requireAffected(res, "user", userID)
}

func (r *PostgresUsersRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&n); err != nil {
		return 0, domain.NewStorageError("count users", err)
	}
	return n, nil
}
