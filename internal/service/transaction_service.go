package service

import (
	"strings"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// TransactionService authorizes and stores income/expense transactions
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	budgetRepo      domain.BudgetRepository
	categories      *CategoryService
	eventPublisher  websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, budgetRepo domain.BudgetRepository, categories *CategoryService) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		categories:      categories,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(userID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// TransactionInput holds the caller-supplied transaction fields.
// UserID is the owner the caller claims; it must match the acting user.
type TransactionInput struct {
	UserID      int32
	BudgetID    *int32
	CategoryID  *int32
	Amount      decimal.Decimal
	Description *string
	Type        domain.TransactionType
	Date        time.Time
}

// CreateTransaction records a transaction for userID after resolving and
// authorizing its budget and category references
func (s *TransactionService) CreateTransaction(userID int32, input TransactionInput) (*domain.Transaction, error) {
	if input.UserID != userID {
		return nil, domain.ErrTransactionAccessDenied
	}

	transaction := &domain.Transaction{UserID: userID}
	if err := s.applyInput(userID, transaction, input); err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.Create(transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionCreated(created))
	return created, nil
}

// UpdateTransaction replaces a transaction's amount, description, type,
// date, category and budget. A nil BudgetID detaches it from its budget.
func (s *TransactionService) UpdateTransaction(userID int32, id int32, input TransactionInput) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !transaction.IsOwnedBy(userID) {
		return nil, domain.ErrTransactionAccessDenied
	}

	if err := s.applyInput(userID, transaction, input); err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.Update(transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// applyInput validates input and copies it, with resolved references, onto transaction
func (s *TransactionService) applyInput(userID int32, transaction *domain.Transaction, input TransactionInput) error {
	var budget *domain.Budget
	if input.BudgetID != nil {
		b, err := s.budgetRepo.GetByID(*input.BudgetID)
		if err != nil {
			return err
		}
		if !b.IsOwnedBy(userID) {
			return domain.ErrBudgetNotFound
		}
		budget = b
	}

	if input.CategoryID == nil {
		return domain.NewFieldError("category", "category is required")
	}
	category, err := s.categories.ResolveForUse(*input.CategoryID, userID)
	if err != nil {
		return err
	}

	if !input.Amount.GreaterThan(decimal.Zero) {
		return domain.NewFieldError("amount", "amount must be greater than zero")
	}
	if err := domain.ValidateMoneyPrecision("amount", input.Amount); err != nil {
		return err
	}
	if !input.Type.Valid() {
		return domain.NewFieldError("type", "type must be INCOME or EXPENSE")
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if len(trimmed) > domain.MaxDescriptionLength {
			return domain.NewFieldError("description", "description exceeds maximum length")
		}
		if trimmed != "" {
			description = &trimmed
		}
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	transaction.Budget = budget
	transaction.BudgetID = nil
	if budget != nil {
		transaction.BudgetID = &budget.ID
	}
	transaction.Category = category
	transaction.CategoryID = category.ID
	transaction.Amount = input.Amount
	transaction.Description = description
	transaction.Type = input.Type
	transaction.Date = date
	return nil
}

// GetTransaction returns one of userID's transactions
func (s *TransactionService) GetTransaction(userID int32, id int32) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !transaction.IsOwnedBy(userID) {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

// GetTransactions lists userID's transactions matching filters, newest first
func (s *TransactionService) GetTransactions(userID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	if filters != nil && filters.StartDate != nil && filters.EndDate != nil {
		if filters.EndDate.Before(*filters.StartDate) {
			return nil, domain.ErrInvalidDateRange
		}
	}
	return s.transactionRepo.GetByUser(userID, filters)
}

// GetTransactionsByBudget lists the transactions attached to one of userID's budgets
func (s *TransactionService) GetTransactionsByBudget(userID int32, budgetID int32) ([]*domain.Transaction, error) {
	budget, err := s.budgetRepo.GetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.IsOwnedBy(userID) {
		return nil, domain.ErrBudgetNotFound
	}
	return s.transactionRepo.GetByBudget(budgetID)
}

// DeleteTransaction removes one of userID's transactions. Someone else's
// transaction is reported as not found.
func (s *TransactionService) DeleteTransaction(userID int32, id int32) error {
	if _, err := s.GetTransaction(userID, id); err != nil {
		return err
	}
	if err := s.transactionRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.TransactionDeleted(map[string]interface{}{"id": id}))
	return nil
}
