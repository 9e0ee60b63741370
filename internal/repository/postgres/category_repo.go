package postgres

import (
	"context"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, name, user_id, created_at`

// CategoryRepository implements domain.CategoryRepository using PostgreSQL.
// A NULL user_id stores the default owner.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create creates a new category
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO categories (name, user_id)
		VALUES ($1, $2)
		RETURNING `+categoryColumns,
		category.Name, ownerToPgInt4(category.Owner),
	)
	created, err := scanCategory(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a category by its ID
func (r *CategoryRepository) GetByID(id int32) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	return r.one(row)
}

// GetDefaultByName retrieves a default category by name, ignoring case
func (r *CategoryRepository) GetDefaultByName(name string) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+categoryColumns+` FROM categories WHERE user_id IS NULL AND lower(name) = lower($1)`, name)
	return r.one(row)
}

// GetCustomByName retrieves a user's custom category by name, ignoring case
func (r *CategoryRepository) GetCustomByName(userID int32, name string) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 AND lower(name) = lower($2)`, userID, name)
	return r.one(row)
}

// GetAvailable returns default categories plus the user's custom ones, ordered by name
func (r *CategoryRepository) GetAvailable(userID int32) ([]*domain.Category, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+categoryColumns+` FROM categories
		WHERE user_id IS NULL OR user_id = $1
		ORDER BY name, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

// Delete removes a category
func (r *CategoryRepository) Delete(id int32) error {
	tag, err := r.pool.Exec(context.Background(), `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// HasTransactions reports whether any transaction references the category
func (r *CategoryRepository) HasTransactions(id int32) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *CategoryRepository) one(row pgx.Row) (*domain.Category, error) {
	category, err := scanCategory(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c      domain.Category
		userID pgtype.Int4
	)
	if err := row.Scan(&c.ID, &c.Name, &userID, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Owner = pgInt4ToOwner(userID)
	return &c, nil
}

func ownerToPgInt4(owner domain.CategoryOwner) pgtype.Int4 {
	userID, custom := owner.UserID()
	if !custom {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: userID, Valid: true}
}

func pgInt4ToOwner(userID pgtype.Int4) domain.CategoryOwner {
	if !userID.Valid {
		return domain.DefaultOwner()
	}
	return domain.CustomOwner(userID.Int32)
}
