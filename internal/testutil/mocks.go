package testutil

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[int32]*domain.User
	ByEmail  map[string]*domain.User
	NextID   int32
	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:   make(map[int32]*domain.User),
		ByEmail: make(map[string]*domain.User),
		NextID:  1,
	}
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	if _, ok := m.ByEmail[user.Email]; ok {
		return nil, domain.ErrEmailAlreadyExists
	}
	user.ID = m.NextID
	m.NextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.Users[user.ID] = user
	m.ByEmail[user.Email] = user
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id int32) (*domain.User, error) {
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	if user, ok := m.ByEmail[email]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// ExistsByEmail reports whether a user with email exists
func (m *MockUserRepository) ExistsByEmail(email string) (bool, error) {
	_, ok := m.ByEmail[email]
	return ok, nil
}

// Update updates an existing user's profile fields
func (m *MockUserRepository) Update(user *domain.User) (*domain.User, error) {
	existing, ok := m.Users[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if other, taken := m.ByEmail[user.Email]; taken && other.ID != user.ID {
		return nil, domain.ErrEmailAlreadyExists
	}
	delete(m.ByEmail, existing.Email)
	user.UpdatedAt = time.Now()
	m.Users[user.ID] = user
	m.ByEmail[user.Email] = user
	return user, nil
}

// UpdatePassword replaces a user's password hash
func (m *MockUserRepository) UpdatePassword(id int32, passwordHash string) error {
	user, ok := m.Users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// Delete removes a user
func (m *MockUserRepository) Delete(id int32) error {
	user, ok := m.Users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(m.Users, id)
	delete(m.ByEmail, user.Email)
	return nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.ID] = user
	m.ByEmail[user.Email] = user
	if user.ID >= m.NextID {
		m.NextID = user.ID + 1
	}
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets        map[int32]*domain.Budget
	NextID         int32
	Transactions   *MockTransactionRepository
	GetAllCalls    int
	GetAllByUserFn func(userID int32) ([]*domain.Budget, error)
	CreateFn       func(budget *domain.Budget) (*domain.Budget, error)
	UpdateFn       func(budget *domain.Budget) (*domain.Budget, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	if m.CreateFn != nil {
		return m.CreateFn(budget)
	}
	stored := *budget
	stored.ID = m.NextID
	m.NextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = time.Now()
	m.Budgets[stored.ID] = &stored
	result := stored
	return &result, nil
}

// GetByID retrieves a budget by ID
func (m *MockBudgetRepository) GetByID(id int32) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	result := *budget
	return &result, nil
}

// GetAllByUser retrieves all budgets owned by a user ordered by start date
func (m *MockBudgetRepository) GetAllByUser(userID int32) ([]*domain.Budget, error) {
	m.GetAllCalls++
	if m.GetAllByUserFn != nil {
		return m.GetAllByUserFn(userID)
	}
	result := []*domain.Budget{}
	for _, budget := range m.Budgets {
		if budget.UserID == userID {
			copied := *budget
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}

// Update replaces a budget's fields
func (m *MockBudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(budget)
	}
	existing, ok := m.Budgets[budget.ID]
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	stored := *budget
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	m.Budgets[stored.ID] = &stored
	result := stored
	return &result, nil
}

// Exists reports whether a budget exists
func (m *MockBudgetRepository) Exists(id int32) (bool, error) {
	_, ok := m.Budgets[id]
	return ok, nil
}

// DeleteWithTransactions deletes the budget's transactions and then the budget
func (m *MockBudgetRepository) DeleteWithTransactions(id int32) error {
	if _, ok := m.Budgets[id]; !ok {
		return domain.ErrBudgetNotFound
	}
	if m.Transactions != nil {
		for txID, tx := range m.Transactions.Transactions {
			if tx.BudgetID != nil && *tx.BudgetID == id {
				delete(m.Transactions.Transactions, txID)
			}
		}
	}
	delete(m.Budgets, id)
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	m.Budgets[budget.ID] = budget
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories        map[int32]*domain.Category
	NextID            int32
	Transactions      *MockTransactionRepository
	CreateFn          func(category *domain.Category) (*domain.Category, error)
	HasTransactionsFn func(id int32) (bool, error)
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
	}
}

func sameCategoryName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Create creates a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	if m.CreateFn != nil {
		return m.CreateFn(category)
	}
	for _, existing := range m.Categories {
		if existing.Owner == category.Owner && sameCategoryName(existing.Name, category.Name) {
			return nil, domain.ErrCategoryAlreadyExists
		}
	}
	category.ID = m.NextID
	m.NextID++
	category.CreatedAt = time.Now()
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category by ID
func (m *MockCategoryRepository) GetByID(id int32) (*domain.Category, error) {
	if category, ok := m.Categories[id]; ok {
		return category, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetDefaultByName retrieves a default category by name
func (m *MockCategoryRepository) GetDefaultByName(name string) (*domain.Category, error) {
	for _, category := range m.Categories {
		if category.IsDefault() && sameCategoryName(category.Name, name) {
			return category, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// GetCustomByName retrieves a user's custom category by name
func (m *MockCategoryRepository) GetCustomByName(userID int32, name string) (*domain.Category, error) {
	for _, category := range m.Categories {
		if category.Owner == domain.CustomOwner(userID) && sameCategoryName(category.Name, name) {
			return category, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// GetAvailable returns default categories plus the user's custom ones, ordered by name
func (m *MockCategoryRepository) GetAvailable(userID int32) ([]*domain.Category, error) {
	result := []*domain.Category{}
	for _, category := range m.Categories {
		if category.Owner.CanBeUsedBy(userID) {
			result = append(result, category)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Delete removes a category
func (m *MockCategoryRepository) Delete(id int32) error {
	if _, ok := m.Categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// HasTransactions reports whether any transaction references the category
func (m *MockCategoryRepository) HasTransactions(id int32) (bool, error) {
	if m.HasTransactionsFn != nil {
		return m.HasTransactionsFn(id)
	}
	if m.Transactions == nil {
		return false, nil
	}
	for _, tx := range m.Transactions.Transactions {
		if tx.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.Categories[category.ID] = category
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions  map[int32]*domain.Transaction
	NextID        int32
	CreateFn      func(transaction *domain.Transaction) (*domain.Transaction, error)
	GetByBudgetFn func(budgetID int32) ([]*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	transaction.ID = m.NextID
	m.NextID++
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = time.Now()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(id int32) (*domain.Transaction, error) {
	if transaction, ok := m.Transactions[id]; ok {
		return transaction, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// GetByUser retrieves a user's transactions matching filters, newest first
func (m *MockTransactionRepository) GetByUser(userID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	result := []*domain.Transaction{}
	for _, tx := range m.Transactions {
		if tx.UserID != userID || !matchesFilters(tx, filters) {
			continue
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID > result[j].ID
		}
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

func matchesFilters(tx *domain.Transaction, filters *domain.TransactionFilters) bool {
	if filters == nil {
		return true
	}
	if filters.BudgetID != nil && (tx.BudgetID == nil || *tx.BudgetID != *filters.BudgetID) {
		return false
	}
	if filters.CategoryID != nil && tx.CategoryID != *filters.CategoryID {
		return false
	}
	if filters.Type != nil && tx.Type != *filters.Type {
		return false
	}
	if filters.StartDate != nil && tx.Date.Before(*filters.StartDate) {
		return false
	}
	if filters.EndDate != nil && tx.Date.After(*filters.EndDate) {
		return false
	}
	return true
}

// GetByBudget retrieves all transactions attached to a budget
func (m *MockTransactionRepository) GetByBudget(budgetID int32) ([]*domain.Transaction, error) {
	if m.GetByBudgetFn != nil {
		return m.GetByBudgetFn(budgetID)
	}
	result := []*domain.Transaction{}
	for _, tx := range m.Transactions {
		if tx.BudgetID != nil && *tx.BudgetID == budgetID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update replaces a transaction
func (m *MockTransactionRepository) Update(transaction *domain.Transaction) (*domain.Transaction, error) {
	if _, ok := m.Transactions[transaction.ID]; !ok {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.UpdatedAt = time.Now()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(id int32) error {
	if _, ok := m.Transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	m.Transactions[transaction.ID] = transaction
	if transaction.ID >= m.NextID {
		m.NextID = transaction.ID + 1
	}
}

// MockUserLocker records lock/unlock pairs per user
type MockUserLocker struct {
	mu      sync.Mutex
	Held    map[int32]bool
	Locks   int
	Unlocks int
	LockErr error
}

// NewMockUserLocker creates a new MockUserLocker
func NewMockUserLocker() *MockUserLocker {
	return &MockUserLocker{Held: make(map[int32]bool)}
}

// Lock marks userID as held
func (m *MockUserLocker) Lock(userID int32) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LockErr != nil {
		return nil, m.LockErr
	}
	if m.Held[userID] {
		return nil, fmt.Errorf("user %d already locked", userID)
	}
	m.Held[userID] = true
	m.Locks++
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.Held, userID)
		m.Unlocks++
	}, nil
}
