package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juliog922/chatlink-v2/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, req *domain.CreateUserRequest) (int64, error)
	List(ctx context.Context) ([]domain.User, error)
	GetPhone(ctx context.Context, id int64) (string, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, req *domain.CreateUserRequest) (int64, error) {
	const q = `
		INSERT INTO users (phone, email, name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx, q, req.Phone, req.Email, req.Name, req.Role).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.conflictError(ctx, req.Phone, req.Email)
	}
	if err != nil {
		return 0, err
	}

	return id, nil
}

// conflictError figures out which unique column collided so the caller
// can say so instead of returning a bare 409.
func (r *userRepository) conflictError(ctx context.Context, phone, email string) error {
	const q = `
		SELECT
		  EXISTS (SELECT 1 FROM users WHERE phone = $1),
		  EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($2))`

	var phoneTaken, emailTaken bool
	if err := r.pool.QueryRow(ctx, q, phone, email).Scan(&phoneTaken, &emailTaken); err != nil {
		return &domain.ConflictError{Message: "uniqueness conflict"}
	}

	switch {
	case phoneTaken && emailTaken:
		return &domain.ConflictError{Message: "phone and email already exist"}
	case phoneTaken:
		return &domain.ConflictError{Message: "phone already exists"}
	case emailTaken:
		return &domain.ConflictError{Message: "email already exists"}
	default:
		return &domain.ConflictError{Message: "uniqueness conflict"}
	}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const q = `SELECT id, phone, email, name, role FROM users ORDER BY id ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Phone, &u.Email, &u.Name, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *userRepository) GetPhone(ctx context.Context, id int64) (string, error) {
	const q = `SELECT phone FROM users WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var phone string
	err := r.pool.QueryRow(ctx, q, id).Scan(&phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select user phone: %w", err)
	}

	return phone, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}
