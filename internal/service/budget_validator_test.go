package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func newValidator(repo *testutil.MockBudgetRepository) *BudgetValidator {
	return NewBudgetValidator(NewBudgetOverlapValidator(repo))
}

func validBudget() *domain.Budget {
	return &domain.Budget{
		UserID:    1,
		Name:      "Groceries",
		Limit:     decimal.NewFromInt(500),
		Category:  "Food",
		StartDate: day(2025, 1, 1),
		EndDate:   dayPtr(2025, 1, 31),
	}
}

func TestBudgetValidator_Valid(t *testing.T) {
	v := newValidator(testutil.NewMockBudgetRepository())
	assert.NoError(t, v.Validate(validBudget()))
}

func TestBudgetValidator_FieldChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *domain.Budget)
		field   string
		wantErr error
	}{
		{"blank name", func(b *domain.Budget) { b.Name = "   " }, "name", domain.ErrInvalidField},
		{"name too long", func(b *domain.Budget) { b.Name = strings.Repeat("x", domain.MaxNameLength+1) }, "name", domain.ErrInvalidField},
		{"no user", func(b *domain.Budget) { b.UserID = 0 }, "user", domain.ErrInvalidField},
		{"missing start", func(b *domain.Budget) { b.StartDate = time.Time{} }, "", domain.ErrInvalidDateRange},
		{"end before start", func(b *domain.Budget) { b.EndDate = dayPtr(2024, 12, 1) }, "", domain.ErrInvalidDateRange},
		{"end equals start", func(b *domain.Budget) { b.EndDate = dayPtr(2025, 1, 1) }, "", domain.ErrInvalidDateRange},
		{"zero limit", func(b *domain.Budget) { b.Limit = decimal.Zero }, "limit", domain.ErrInvalidField},
		{"negative limit", func(b *domain.Budget) { b.Limit = decimal.NewFromInt(-5) }, "limit", domain.ErrInvalidField},
		{"sub-cent limit", func(b *domain.Budget) { b.Limit = decimal.RequireFromString("0.004") }, "limit", domain.ErrInvalidField},
		{"limit with three decimals", func(b *domain.Budget) { b.Limit = decimal.RequireFromString("450.125") }, "limit", domain.ErrInvalidField},
		{"limit too large", func(b *domain.Budget) { b.Limit = decimal.New(1, domain.MaxMoneyIntegerDigits) }, "limit", domain.ErrInvalidField},
		{"blank category", func(b *domain.Budget) { b.Category = "" }, "category", domain.ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBudget()
			tt.mutate(b)

			err := newValidator(testutil.NewMockBudgetRepository()).Validate(b)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			if tt.field != "" {
				var fieldErr *domain.FieldError
				require.True(t, errors.As(err, &fieldErr))
				assert.Equal(t, tt.field, fieldErr.Field)
			}
		})
	}
}

func TestBudgetValidator_CheckOrder(t *testing.T) {
	// every field is invalid; the name check reports first
	b := &domain.Budget{}
	err := newValidator(testutil.NewMockBudgetRepository()).Validate(b)

	var fieldErr *domain.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "name", fieldErr.Field)

	// with a name, user comes next
	b.Name = "Trip"
	err = newValidator(testutil.NewMockBudgetRepository()).Validate(b)
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "user", fieldErr.Field)

	// date range is checked before limit
	b.UserID = 1
	err = newValidator(testutil.NewMockBudgetRepository()).Validate(b)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestBudgetValidator_FieldErrorsSkipOverlapScan(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	b := validBudget()
	b.Limit = decimal.Zero

	_ = newValidator(repo).Validate(b)
	assert.Equal(t, 0, repo.GetAllCalls)
}

func TestBudgetOverlapValidator(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	repo.AddBudget(&domain.Budget{ID: 1, UserID: 1, Name: "Groceries", Limit: decimal.NewFromInt(500), Category: "Food", StartDate: day(2025, 1, 1), EndDate: dayPtr(2025, 1, 31)})
	repo.AddBudget(&domain.Budget{ID: 2, UserID: 2, Name: "Other user", Limit: decimal.NewFromInt(100), Category: "Food", StartDate: day(2025, 1, 1), EndDate: nil})

	v := NewBudgetOverlapValidator(repo)

	tests := []struct {
		name      string
		candidate *domain.Budget
		overlaps  bool
	}{
		{"partial overlap", &domain.Budget{UserID: 1, StartDate: day(2025, 1, 15), EndDate: dayPtr(2025, 2, 15)}, true},
		{"shares boundary day", &domain.Budget{UserID: 1, StartDate: day(2025, 1, 31), EndDate: dayPtr(2025, 2, 28)}, true},
		{"disjoint", &domain.Budget{UserID: 1, StartDate: day(2025, 2, 1), EndDate: dayPtr(2025, 2, 28)}, false},
		{"open-ended far future", &domain.Budget{UserID: 1, StartDate: day(2030, 1, 1)}, true},
		{"own record excluded", &domain.Budget{ID: 1, UserID: 1, StartDate: day(2025, 1, 10), EndDate: dayPtr(2025, 1, 20)}, false},
		{"other users ignored", &domain.Budget{UserID: 3, StartDate: day(2025, 1, 1), EndDate: dayPtr(2025, 1, 31)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateNoOverlap(tt.candidate)
			if !tt.overlaps {
				assert.NoError(t, err)
				return
			}

			var overlapErr *domain.BudgetOverlapError
			require.True(t, errors.As(err, &overlapErr))
			assert.ErrorIs(t, err, domain.ErrBudgetOverlap)
			assert.Equal(t, int32(1), overlapErr.ConflictingID)
			assert.Equal(t, "Groceries", overlapErr.ConflictingName)
		})
	}
}

func TestBudgetOverlapValidator_RepositoryError(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	repoErr := errors.New("connection reset")
	repo.GetAllByUserFn = func(userID int32) ([]*domain.Budget, error) {
		return nil, repoErr
	}

	err := NewBudgetOverlapValidator(repo).ValidateNoOverlap(validBudget())
	assert.ErrorIs(t, err, repoErr)
}
