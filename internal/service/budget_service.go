package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget CRUD around the budget validator
type BudgetService struct {
	budgetRepo     domain.BudgetRepository
	validator      *BudgetValidator
	locker         domain.UserLocker
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, locker domain.UserLocker) *BudgetService {
	return &BudgetService{
		budgetRepo: budgetRepo,
		validator:  NewBudgetValidator(NewBudgetOverlapValidator(budgetRepo)),
		locker:     locker,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(userID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// BudgetInput holds the caller-supplied budget fields
type BudgetInput struct {
	Name      string
	Limit     decimal.Decimal
	Category  string
	StartDate time.Time
	EndDate   *time.Time
}

func (in BudgetInput) apply(budget *domain.Budget) {
	budget.Name = strings.TrimSpace(in.Name)
	budget.Limit = in.Limit
	budget.Category = strings.TrimSpace(in.Category)
	budget.StartDate = time.Time{}
	if !in.StartDate.IsZero() {
		budget.StartDate = domain.DateOnly(in.StartDate)
	}
	budget.EndDate = nil
	if in.EndDate != nil {
		end := domain.DateOnly(*in.EndDate)
		budget.EndDate = &end
	}
}

// CreateBudget validates and stores a new budget owned by userID.
// The overlap check and insert run under the user's lock.
func (s *BudgetService) CreateBudget(userID int32, input BudgetInput) (*domain.Budget, error) {
	unlock, err := s.locker.Lock(userID)
	if err != nil {
		return nil, fmt.Errorf("acquire budget lock: %w", err)
	}
	defer unlock()

	budget := &domain.Budget{UserID: userID}
	input.apply(budget)

	if err := s.validator.Validate(budget); err != nil {
		return nil, err
	}

	created, err := s.budgetRepo.Create(budget)
	if err != nil {
		return nil, err
	}

	log.Info().Int32("user_id", userID).Int32("budget_id", created.ID).Msg("Budget created")
	s.publishEvent(userID, websocket.BudgetCreated(created))
	return created, nil
}

// GetBudget returns a budget owned by userID
func (s *BudgetService) GetBudget(userID int32, id int32) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !budget.IsOwnedBy(userID) {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

// GetBudgets returns all budgets owned by userID ordered by start date
func (s *BudgetService) GetBudgets(userID int32) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAllByUser(userID)
}

// UpdateBudget replaces every editable field of a budget. The budget's own
// stored range is excluded from the overlap check.
func (s *BudgetService) UpdateBudget(userID int32, id int32, input BudgetInput) (*domain.Budget, error) {
	unlock, err := s.locker.Lock(userID)
	if err != nil {
		return nil, fmt.Errorf("acquire budget lock: %w", err)
	}
	defer unlock()

	budget, err := s.GetBudget(userID, id)
	if err != nil {
		return nil, err
	}

	input.apply(budget)
	if err := s.validator.Validate(budget); err != nil {
		return nil, err
	}

	updated, err := s.budgetRepo.Update(budget)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetUpdated(updated))
	return updated, nil
}

// DeleteBudget removes a budget and every transaction attached to it
func (s *BudgetService) DeleteBudget(userID int32, id int32) error {
	if _, err := s.GetBudget(userID, id); err != nil {
		return err
	}

	if err := s.budgetRepo.DeleteWithTransactions(id); err != nil {
		return err
	}

	log.Info().Int32("user_id", userID).Int32("budget_id", id).Msg("Budget deleted with its transactions")
	s.publishEvent(userID, websocket.BudgetDeleted(map[string]interface{}{"id": id}))
	return nil
}
