package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrAlreadyExist = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Groups(ctx context.Context, userID int64) ([]string, error)
	ListByGroup(ctx context.Context, group string) ([]User, error)
	AddToGroup(ctx context.Context, userID int64, group string) error
	RemoveFromGroup(ctx context.Context, userID int64, group string) (bool, error)
	InGroup(ctx context.Context, userID int64, group string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, is_superuser, created_at)
		VALUES ($1,$2,$3,$4,NOW())
		RETURNING id, created_at
	`, u.Username, u.Email, u.PasswordHash, u.IsSuperuser).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExist
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, is_superuser, created_at
		FROM users WHERE id=$1
	`, id))
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, is_superuser, created_at
		FROM users WHERE username=$1
	`, username))
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsSuperuser, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepo) Groups(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT group_name FROM user_groups WHERE user_id=$1 ORDER BY group_name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListByGroup(ctx context.Context, group string) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.is_superuser, u.created_at
		FROM users u
		JOIN user_groups g ON g.user_id = u.id
		WHERE g.group_name = $1
		ORDER BY u.id
	`, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsSuperuser, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PGRepo) AddToGroup(ctx context.Context, userID int64, group string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO user_groups (user_id, group_name) VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, userID, group)
	return err
}

func (r *PGRepo) RemoveFromGroup(ctx context.Context, userID int64, group string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM user_groups WHERE user_id=$1 AND group_name=$2
	`, userID, group)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) InGroup(ctx context.Context, userID int64, group string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_groups WHERE user_id=$1 AND group_name=$2)
	`, userID, group).Scan(&ok)
	return ok, err
}
