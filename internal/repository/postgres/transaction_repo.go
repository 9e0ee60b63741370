package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionSelect = `
	SELECT t.id, t.user_id, t.budget_id, t.category_id, t.amount, t.description, t.type,
	       t.transaction_date, t.created_at, t.updated_at,
	       c.name, c.user_id, c.created_at
	FROM transactions t
	JOIN categories c ON c.id = t.category_id`

const transactionReturning = `id, user_id, budget_id, category_id, amount, description, type, transaction_date, created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a new transaction. The resolved Budget and Category of the
// input are carried over to the result.
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO transactions (user_id, budget_id, category_id, amount, description, type, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+transactionReturning,
		transaction.UserID, int32PtrToPgInt4(transaction.BudgetID), transaction.CategoryID, amount,
		stringPtrToPgText(transaction.Description), string(transaction.Type), transaction.Date,
	)
	created, err := scanTransactionRow(row)
	if err != nil {
		return nil, err
	}
	created.Budget = transaction.Budget
	created.Category = transaction.Category
	return created, nil
}

// GetByID retrieves a transaction with its category
func (r *TransactionRepository) GetByID(id int32) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(), transactionSelect+` WHERE t.id = $1`, id)
	transaction, err := scanTransactionWithCategory(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// GetByUser retrieves a user's transactions matching filters, newest first
func (r *TransactionRepository) GetByUser(userID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	where, args := buildTransactionFilters(userID, filters)
	query := transactionSelect + ` WHERE ` + where + ` ORDER BY t.transaction_date DESC, t.id DESC`
	return r.list(query, args...)
}

// GetByBudget retrieves all transactions attached to a budget
func (r *TransactionRepository) GetByBudget(budgetID int32) ([]*domain.Transaction, error) {
	return r.list(transactionSelect+` WHERE t.budget_id = $1 ORDER BY t.id`, budgetID)
}

// Update replaces a transaction's mutable fields. UserID is never changed.
func (r *TransactionRepository) Update(transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE transactions
		SET budget_id = $2, category_id = $3, amount = $4, description = $5, type = $6,
		    transaction_date = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+transactionReturning,
		transaction.ID, int32PtrToPgInt4(transaction.BudgetID), transaction.CategoryID, amount,
		stringPtrToPgText(transaction.Description), string(transaction.Type), transaction.Date,
	)
	updated, err := scanTransactionRow(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	updated.Budget = transaction.Budget
	updated.Category = transaction.Category
	return updated, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(id int32) error {
	tag, err := r.pool.Exec(context.Background(), `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) list(query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		transaction, err := scanTransactionWithCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, transaction)
	}
	return result, rows.Err()
}

// buildTransactionFilters returns a WHERE clause with positional arguments
func buildTransactionFilters(userID int32, filters *domain.TransactionFilters) (string, []any) {
	conds := []string{"t.user_id = $1"}
	args := []any{userID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters != nil {
		if filters.BudgetID != nil {
			add("t.budget_id = $%d", *filters.BudgetID)
		}
		if filters.CategoryID != nil {
			add("t.category_id = $%d", *filters.CategoryID)
		}
		if filters.Type != nil {
			add("t.type = $%d", string(*filters.Type))
		}
		if filters.StartDate != nil {
			add("t.transaction_date >= $%d", *filters.StartDate)
		}
		if filters.EndDate != nil {
			add("t.transaction_date <= $%d", *filters.EndDate)
		}
	}

	return strings.Join(conds, " AND "), args
}

func scanTransactionRow(row pgx.Row) (*domain.Transaction, error) {
	var (
		t           domain.Transaction
		budgetID    pgtype.Int4
		amount      pgtype.Numeric
		description pgtype.Text
		txType      string
	)
	err := row.Scan(&t.ID, &t.UserID, &budgetID, &t.CategoryID, &amount, &description, &txType,
		&t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.BudgetID = pgInt4ToInt32Ptr(budgetID)
	t.Amount = pgNumericToDecimal(amount)
	t.Description = pgTextToStringPtr(description)
	t.Type = domain.TransactionType(txType)
	// timestamptz scans in the server's location
	t.Date = t.Date.UTC()
	return &t, nil
}

func scanTransactionWithCategory(row pgx.Row) (*domain.Transaction, error) {
	var (
		t             domain.Transaction
		c             domain.Category
		budgetID      pgtype.Int4
		amount        pgtype.Numeric
		description   pgtype.Text
		txType        string
		categoryOwner pgtype.Int4
	)
	err := row.Scan(&t.ID, &t.UserID, &budgetID, &t.CategoryID, &amount, &description, &txType,
		&t.Date, &t.CreatedAt, &t.UpdatedAt,
		&c.Name, &categoryOwner, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.BudgetID = pgInt4ToInt32Ptr(budgetID)
	t.Amount = pgNumericToDecimal(amount)
	t.Description = pgTextToStringPtr(description)
	t.Type = domain.TransactionType(txType)
	// timestamptz scans in the server's location
	t.Date = t.Date.UTC()

	c.ID = t.CategoryID
	c.Owner = pgInt4ToOwner(categoryOwner)
	t.Category = &c
	return &t, nil
}
