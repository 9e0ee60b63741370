package postgres

import (
	"context"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create creates a new user
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		user.Name, user.Email, user.PasswordHash,
	)
	created, err := scanUser(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(id int32) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(email string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ExistsByEmail reports whether any user has the email, ignoring case
func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email,
	).Scan(&exists)
	return exists, err
}

// Update updates a user's name and email
func (r *UserRepository) Update(user *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE users SET name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.Name, user.Email,
	)
	updated, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		if isPgUniqueViolation(err) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	return updated, nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(id int32, passwordHash string) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes a user. Budgets, custom categories and transactions are
// removed by ON DELETE CASCADE.
func (r *UserRepository) Delete(id int32) error {
	tag, err := r.pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
