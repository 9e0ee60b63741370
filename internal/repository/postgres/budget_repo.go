package postgres

import (
	"context"
	"fmt"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const budgetColumns = `id, user_id, name, limit_amount, category, start_date, end_date, created_at, updated_at`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create creates a new budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	limit, err := decimalToPgNumeric(budget.Limit)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO budgets (user_id, name, limit_amount, category, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+budgetColumns,
		budget.UserID, budget.Name, limit, budget.Category,
		timeToPgDate(budget.StartDate), timePtrToPgDate(budget.EndDate),
	)
	return scanBudget(row)
}

// GetByID retrieves a budget by its ID
func (r *BudgetRepository) GetByID(id int32) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id)
	budget, err := scanBudget(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// GetAllByUser retrieves all budgets for a user ordered by start date
func (r *BudgetRepository) GetAllByUser(userID int32) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY start_date, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, budget)
	}
	return result, rows.Err()
}

// Update replaces a budget's mutable fields. UserID is never changed.
func (r *BudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	limit, err := decimalToPgNumeric(budget.Limit)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE budgets
		SET name = $2, limit_amount = $3, category = $4, start_date = $5, end_date = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+budgetColumns,
		budget.ID, budget.Name, limit, budget.Category,
		timeToPgDate(budget.StartDate), timePtrToPgDate(budget.EndDate),
	)
	updated, err := scanBudget(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Exists reports whether a budget with the ID exists
func (r *BudgetRepository) Exists(id int32) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM budgets WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// DeleteWithTransactions removes the budget's transactions and then the
// budget in a single database transaction
func (r *BudgetRepository) DeleteWithTransactions(id int32) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	removed, err := tx.Exec(ctx, `DELETE FROM transactions WHERE budget_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete budget transactions: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Debug().Int32("budget_id", id).Int64("transactions", removed.RowsAffected()).Msg("Budget deleted with transactions")
	return nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b         domain.Budget
		limit     pgtype.Numeric
		startDate pgtype.Date
		endDate   pgtype.Date
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &limit, &b.Category, &startDate, &endDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Limit = pgNumericToDecimal(limit)
	b.StartDate = pgDateToTime(startDate)
	b.EndDate = pgDateToTimePtr(endDate)
	return &b, nil
}
