package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveForUse(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Groceries", Owner: domain.DefaultOwner()})
	categoryRepo.AddCategory(&domain.Category{ID: 2, Name: "Coffee", Owner: domain.CustomOwner(10)})
	categoryService := NewCategoryService(categoryRepo)

	tests := []struct {
		name       string
		categoryID int32
		userID     int32
		wantErr    error
	}{
		{"default usable by A", 1, 10, nil},
		{"default usable by B", 1, 20, nil},
		{"custom usable by owner", 2, 10, nil},
		{"custom denied to other user", 2, 20, domain.ErrAccessDenied},
		{"missing category", 99, 10, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, err := categoryService.ResolveForUse(tt.categoryID, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, category)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.categoryID, category.ID)
		})
	}
}

func TestCreateCustom_Success(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)
	publisher := &capturePublisher{}
	categoryService.SetEventPublisher(publisher)

	category, err := categoryService.CreateCustom(10, "  Food ")
	require.NoError(t, err)

	assert.Equal(t, "Food", category.Name)
	ownerID, custom := category.Owner.UserID()
	assert.True(t, custom)
	assert.Equal(t, int32(10), ownerID)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "category.created", publisher.events[0].event.Type)
}

func TestCreateCustom_DuplicateIsConflict(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())

	_, err := categoryService.CreateCustom(10, "Food")
	require.NoError(t, err)

	_, err = categoryService.CreateCustom(10, "Food")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrCategoryAlreadyExists)

	// the same name for a different user is allowed
	_, err = categoryService.CreateCustom(11, "Food")
	assert.NoError(t, err)
}

func TestCreateCustom_InvalidName(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())

	for _, name := range []string{"", "   ", strings.Repeat("a", domain.MaxCategoryNameLen+1)} {
		_, err := categoryService.CreateCustom(10, name)

		var fieldErr *domain.FieldError
		require.True(t, errors.As(err, &fieldErr), "name %q", name)
		assert.Equal(t, "name", fieldErr.Field)
	}
}

func TestListAvailable(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Rent", Owner: domain.DefaultOwner()})
	categoryRepo.AddCategory(&domain.Category{ID: 2, Name: "Coffee", Owner: domain.CustomOwner(10)})
	categoryRepo.AddCategory(&domain.Category{ID: 3, Name: "Books", Owner: domain.CustomOwner(20)})
	categoryService := NewCategoryService(categoryRepo)

	categories, err := categoryService.ListAvailable(10)
	require.NoError(t, err)

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Coffee", "Rent"}, names)
}

func TestSeedDefaults_Idempotent(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)

	require.NoError(t, categoryService.SeedDefaults())
	assert.Len(t, categoryRepo.Categories, len(domain.DefaultCategoryNames))

	require.NoError(t, categoryService.SeedDefaults())
	assert.Len(t, categoryRepo.Categories, len(domain.DefaultCategoryNames))

	for _, c := range categoryRepo.Categories {
		assert.True(t, c.IsDefault(), "seeded %s should be a default", c.Name)
	}
}

func TestSeedDefaults_KeepsExisting(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.AddCategory(&domain.Category{ID: 50, Name: "Rent", Owner: domain.DefaultOwner()})
	// a custom category with a default's name does not count as the default
	categoryRepo.AddCategory(&domain.Category{ID: 51, Name: "Salary", Owner: domain.CustomOwner(3)})
	categoryService := NewCategoryService(categoryRepo)

	require.NoError(t, categoryService.SeedDefaults())

	assert.Len(t, categoryRepo.Categories, len(domain.DefaultCategoryNames)+1)
	rent, err := categoryRepo.GetDefaultByName("Rent")
	require.NoError(t, err)
	assert.Equal(t, int32(50), rent.ID)
	_, err = categoryRepo.GetDefaultByName("Salary")
	assert.NoError(t, err)
}

func TestSeedDefaults_RepositoryError(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	repoErr := errors.New("connection refused")
	categoryRepo.CreateFn = func(category *domain.Category) (*domain.Category, error) {
		return nil, repoErr
	}

	err := NewCategoryService(categoryRepo).SeedDefaults()
	assert.ErrorIs(t, err, repoErr)
}

func TestDeleteCustom(t *testing.T) {
	newFixture := func() (*CategoryService, *testutil.MockCategoryRepository, *testutil.MockTransactionRepository) {
		categoryRepo := testutil.NewMockCategoryRepository()
		txRepo := testutil.NewMockTransactionRepository()
		categoryRepo.Transactions = txRepo
		categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Rent", Owner: domain.DefaultOwner()})
		categoryRepo.AddCategory(&domain.Category{ID: 2, Name: "Coffee", Owner: domain.CustomOwner(10)})
		return NewCategoryService(categoryRepo), categoryRepo, txRepo
	}

	t.Run("owner deletes unused category", func(t *testing.T) {
		categoryService, categoryRepo, _ := newFixture()
		require.NoError(t, categoryService.DeleteCustom(10, 2))
		assert.NotContains(t, categoryRepo.Categories, int32(2))
	})

	t.Run("other user gets not found", func(t *testing.T) {
		categoryService, categoryRepo, _ := newFixture()
		assert.ErrorIs(t, categoryService.DeleteCustom(20, 2), domain.ErrNotFound)
		assert.Contains(t, categoryRepo.Categories, int32(2))
	})

	t.Run("defaults cannot be deleted", func(t *testing.T) {
		categoryService, _, _ := newFixture()
		assert.ErrorIs(t, categoryService.DeleteCustom(10, 1), domain.ErrAccessDenied)
	})

	t.Run("in use is a conflict", func(t *testing.T) {
		categoryService, categoryRepo, txRepo := newFixture()
		txRepo.AddTransaction(&domain.Transaction{ID: 1, UserID: 10, CategoryID: 2})
		assert.ErrorIs(t, categoryService.DeleteCustom(10, 2), domain.ErrCategoryInUse)
		assert.Contains(t, categoryRepo.Categories, int32(2))
	})
}
