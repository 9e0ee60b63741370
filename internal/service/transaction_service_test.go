package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

type transactionFixture struct {
	service      *TransactionService
	txRepo       *testutil.MockTransactionRepository
	budgetRepo   *testutil.MockBudgetRepository
	categoryRepo *testutil.MockCategoryRepository
	publisher    *capturePublisher
}

// users 1 and 2; budget 10 belongs to 1, budget 20 to 2; category 1 is a
// default, 2 is custom to user 1 and 3 is custom to user 2
func newTransactionFixture() *transactionFixture {
	txRepo := testutil.NewMockTransactionRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()

	budgetRepo.AddBudget(&domain.Budget{ID: 10, UserID: 1, Name: "Groceries", Limit: decimal.NewFromInt(500), Category: "Food", StartDate: day(2025, 1, 1), EndDate: dayPtr(2025, 1, 31)})
	budgetRepo.AddBudget(&domain.Budget{ID: 20, UserID: 2, Name: "Theirs", Limit: decimal.NewFromInt(100), Category: "Fun", StartDate: day(2025, 1, 1)})
	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Groceries", Owner: domain.DefaultOwner()})
	categoryRepo.AddCategory(&domain.Category{ID: 2, Name: "Coffee", Owner: domain.CustomOwner(1)})
	categoryRepo.AddCategory(&domain.Category{ID: 3, Name: "Books", Owner: domain.CustomOwner(2)})

	service := NewTransactionService(txRepo, budgetRepo, NewCategoryService(categoryRepo))
	publisher := &capturePublisher{}
	service.SetEventPublisher(publisher)

	return &transactionFixture{
		service:      service,
		txRepo:       txRepo,
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
	}
}

func int32Ptr(v int32) *int32 {
	return &v
}

func expenseInput(userID int32, amount string) TransactionInput {
	return TransactionInput{
		UserID:     userID,
		BudgetID:   int32Ptr(10),
		CategoryID: int32Ptr(1),
		Amount:     decimal.RequireFromString(amount),
		Type:       domain.TransactionTypeExpense,
		Date:       day(2025, 1, 10),
	}
}

func TestCreateTransaction_Success(t *testing.T) {
	f := newTransactionFixture()

	description := "  weekly shop  "
	input := expenseInput(1, "50.00")
	input.Description = &description

	tx, err := f.service.CreateTransaction(1, input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if tx.UserID != 1 {
		t.Errorf("Expected user ID 1, got %d", tx.UserID)
	}
	if tx.BudgetID == nil || *tx.BudgetID != 10 || tx.Budget == nil {
		t.Errorf("Expected resolved budget 10, got %v", tx.BudgetID)
	}
	if tx.Category == nil || tx.Category.Name != "Groceries" {
		t.Errorf("Expected resolved category 'Groceries', got %+v", tx.Category)
	}
	if tx.Description == nil || *tx.Description != "weekly shop" {
		t.Errorf("Expected trimmed description, got %v", tx.Description)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected amount 50, got %s", tx.Amount)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].event.Type != "transaction.created" {
		t.Errorf("Expected a transaction.created event, got %+v", f.publisher.events)
	}
}

func TestCreateTransaction_WithoutBudget(t *testing.T) {
	f := newTransactionFixture()

	input := expenseInput(1, "12.50")
	input.BudgetID = nil
	input.CategoryID = int32Ptr(2)

	tx, err := f.service.CreateTransaction(1, input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tx.BudgetID != nil || tx.Budget != nil {
		t.Error("Expected no budget attached")
	}
}

func TestCreateTransaction_DefaultsDateToNow(t *testing.T) {
	f := newTransactionFixture()

	input := expenseInput(1, "5")
	input.Date = time.Time{}

	before := time.Now().UTC()
	tx, err := f.service.CreateTransaction(1, input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tx.Date.Before(before.Add(-time.Second)) || tx.Date.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("Expected date defaulted to now, got %v", tx.Date)
	}
}

func TestCreateTransaction_Authorization(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *TransactionInput)
		wantErr error
	}{
		{"owner mismatch", func(in *TransactionInput) { in.UserID = 2 }, domain.ErrTransactionAccessDenied},
		{"someone else's budget", func(in *TransactionInput) { in.BudgetID = int32Ptr(20) }, domain.ErrBudgetNotFound},
		{"missing budget", func(in *TransactionInput) { in.BudgetID = int32Ptr(99) }, domain.ErrBudgetNotFound},
		{"someone else's category", func(in *TransactionInput) { in.CategoryID = int32Ptr(3) }, domain.ErrCategoryAccessDenied},
		{"missing category", func(in *TransactionInput) { in.CategoryID = int32Ptr(99) }, domain.ErrCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransactionFixture()
			input := expenseInput(1, "10")
			tt.mutate(&input)

			_, err := f.service.CreateTransaction(1, input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if len(f.txRepo.Transactions) != 0 {
				t.Error("Expected nothing persisted")
			}
		})
	}
}

func TestCreateTransaction_FieldValidation(t *testing.T) {
	tooLong := strings.Repeat("d", domain.MaxDescriptionLength+1)

	tests := []struct {
		name   string
		mutate func(in *TransactionInput)
		field  string
	}{
		{"no category", func(in *TransactionInput) { in.CategoryID = nil }, "category"},
		{"zero amount", func(in *TransactionInput) { in.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(in *TransactionInput) { in.Amount = decimal.NewFromInt(-3) }, "amount"},
		{"sub-cent amount", func(in *TransactionInput) { in.Amount = decimal.RequireFromString("0.001") }, "amount"},
		{"three decimal places", func(in *TransactionInput) { in.Amount = decimal.RequireFromString("10.005") }, "amount"},
		{"amount too large", func(in *TransactionInput) { in.Amount = decimal.RequireFromString("100000000000000000") }, "amount"},
		{"unknown type", func(in *TransactionInput) { in.Type = "TRANSFER" }, "type"},
		{"description too long", func(in *TransactionInput) { in.Description = &tooLong }, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransactionFixture()
			input := expenseInput(1, "10")
			tt.mutate(&input)

			_, err := f.service.CreateTransaction(1, input)
			var fieldErr *domain.FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("Expected FieldError, got %v", err)
			}
			if fieldErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, fieldErr.Field)
			}
		})
	}
}

func TestCreateTransaction_KeepsTwoDecimalPlaces(t *testing.T) {
	f := newTransactionFixture()

	tx, err := f.service.CreateTransaction(1, expenseInput(1, "10.500"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("Expected amount 10.5, got %s", tx.Amount)
	}

	updated, err := f.service.UpdateTransaction(1, tx.ID, expenseInput(1, "10.005"))
	if !errors.Is(err, domain.ErrInvalidField) {
		t.Fatalf("Expected ErrInvalidField on update, got %v (%v)", err, updated)
	}
}

func TestUpdateTransaction_Success(t *testing.T) {
	f := newTransactionFixture()
	created, err := f.service.CreateTransaction(1, expenseInput(1, "10"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	input := expenseInput(1, "25")
	input.BudgetID = nil
	input.CategoryID = int32Ptr(2)
	input.Type = domain.TransactionTypeIncome

	updated, err := f.service.UpdateTransaction(1, created.ID, input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.BudgetID != nil {
		t.Error("Expected budget cleared")
	}
	if updated.CategoryID != 2 || updated.Type != domain.TransactionTypeIncome {
		t.Errorf("Expected category 2 and INCOME, got %d %s", updated.CategoryID, updated.Type)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected amount 25, got %s", updated.Amount)
	}
}

func TestUpdateTransaction_Errors(t *testing.T) {
	f := newTransactionFixture()
	f.txRepo.AddTransaction(&domain.Transaction{ID: 7, UserID: 2, CategoryID: 1, Amount: decimal.NewFromInt(5), Type: domain.TransactionTypeExpense})
	f.txRepo.AddTransaction(&domain.Transaction{ID: 8, UserID: 1, CategoryID: 1, Amount: decimal.NewFromInt(5), Type: domain.TransactionTypeExpense})

	if _, err := f.service.UpdateTransaction(1, 99, expenseInput(1, "1")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := f.service.UpdateTransaction(1, 7, expenseInput(1, "1")); !errors.Is(err, domain.ErrTransactionAccessDenied) {
		t.Errorf("Expected access denied, got %v", err)
	}

	input := expenseInput(1, "1")
	input.CategoryID = int32Ptr(3)
	if _, err := f.service.UpdateTransaction(1, 8, input); !errors.Is(err, domain.ErrCategoryAccessDenied) {
		t.Errorf("Expected category access denied, got %v", err)
	}
	if f.txRepo.Transactions[8].CategoryID != 1 {
		t.Error("Expected rejected update to leave the transaction unchanged")
	}
}

func TestGetTransaction_OtherUserIsNotFound(t *testing.T) {
	f := newTransactionFixture()
	f.txRepo.AddTransaction(&domain.Transaction{ID: 7, UserID: 2})

	_, err := f.service.GetTransaction(1, 7)
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound, got %v", err)
	}
	if errors.Is(err, domain.ErrAccessDenied) {
		t.Error("Expected ownership failure to look like not found")
	}
}

func TestDeleteTransaction_OtherUserIsNotFound(t *testing.T) {
	f := newTransactionFixture()
	f.txRepo.AddTransaction(&domain.Transaction{ID: 7, UserID: 2})

	err := f.service.DeleteTransaction(1, 7)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, ok := f.txRepo.Transactions[7]; !ok {
		t.Error("Expected transaction to survive")
	}
}

func TestDeleteTransaction_Success(t *testing.T) {
	f := newTransactionFixture()
	f.txRepo.AddTransaction(&domain.Transaction{ID: 7, UserID: 1})

	if err := f.service.DeleteTransaction(1, 7); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(f.txRepo.Transactions) != 0 {
		t.Error("Expected transaction deleted")
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].event.Type != "transaction.deleted" {
		t.Errorf("Expected a transaction.deleted event, got %+v", f.publisher.events)
	}
}

func TestGetTransactionsByBudget(t *testing.T) {
	f := newTransactionFixture()
	f.txRepo.AddTransaction(&domain.Transaction{ID: 1, UserID: 1, BudgetID: int32Ptr(10)})
	f.txRepo.AddTransaction(&domain.Transaction{ID: 2, UserID: 1, BudgetID: int32Ptr(10)})
	f.txRepo.AddTransaction(&domain.Transaction{ID: 3, UserID: 2, BudgetID: int32Ptr(20)})

	txs, err := f.service.GetTransactionsByBudget(1, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("Expected 2 transactions, got %d", len(txs))
	}

	if _, err := f.service.GetTransactionsByBudget(1, 20); !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Errorf("Expected ErrBudgetNotFound for another user's budget, got %v", err)
	}
}

func TestGetTransactions_Filters(t *testing.T) {
	f := newTransactionFixture()
	f.txRepo.AddTransaction(&domain.Transaction{ID: 1, UserID: 1, Type: domain.TransactionTypeExpense, Date: day(2025, 1, 5)})
	f.txRepo.AddTransaction(&domain.Transaction{ID: 2, UserID: 1, Type: domain.TransactionTypeIncome, Date: day(2025, 1, 20)})
	f.txRepo.AddTransaction(&domain.Transaction{ID: 3, UserID: 1, Type: domain.TransactionTypeExpense, Date: day(2025, 2, 5)})
	f.txRepo.AddTransaction(&domain.Transaction{ID: 4, UserID: 2, Type: domain.TransactionTypeExpense, Date: day(2025, 1, 5)})

	all, err := f.service.GetTransactions(1, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(all) != 3 || all[0].ID != 3 {
		t.Errorf("Expected 3 transactions newest first, got %d", len(all))
	}

	expense := domain.TransactionTypeExpense
	filtered, err := f.service.GetTransactions(1, &domain.TransactionFilters{
		Type:      &expense,
		StartDate: dayPtr(2025, 1, 1),
		EndDate:   dayPtr(2025, 1, 31),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != 1 {
		t.Errorf("Expected only transaction 1, got %+v", filtered)
	}

	_, err = f.service.GetTransactions(1, &domain.TransactionFilters{StartDate: dayPtr(2025, 2, 1), EndDate: dayPtr(2025, 1, 1)})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}
