package service

import (
	"errors"
	"strings"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// CategoryService resolves, authorizes and manages transaction categories
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CategoryService) publishEvent(userID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// ResolveForUse loads a category and checks that userID may attach it
func (s *CategoryService) ResolveForUse(categoryID int32, userID int32) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return nil, err
	}
	if !category.Owner.CanBeUsedBy(userID) {
		return nil, domain.ErrCategoryAccessDenied
	}
	return category, nil
}

// CreateCustom creates a category visible only to userID
func (s *CategoryService) CreateCustom(userID int32, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewFieldError("name", "category name cannot be empty")
	}
	if len(name) > domain.MaxCategoryNameLen {
		return nil, domain.NewFieldError("name", "category name exceeds maximum length")
	}

	if _, err := s.categoryRepo.GetCustomByName(userID, name); err == nil {
		return nil, domain.ErrCategoryAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	created, err := s.categoryRepo.Create(&domain.Category{
		Name:  name,
		Owner: domain.CustomOwner(userID),
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryCreated(created))
	return created, nil
}

// ListAvailable returns the defaults plus userID's own categories, ordered by name
func (s *CategoryService) ListAvailable(userID int32) ([]*domain.Category, error) {
	return s.categoryRepo.GetAvailable(userID)
}

// SeedDefaults creates any missing default category. Running it again is a no-op.
func (s *CategoryService) SeedDefaults() error {
	created := 0
	for _, name := range domain.DefaultCategoryNames {
		_, err := s.categoryRepo.GetDefaultByName(name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		_, err = s.categoryRepo.Create(&domain.Category{Name: name, Owner: domain.DefaultOwner()})
		if err != nil && !errors.Is(err, domain.ErrConflict) {
			return err
		}
		created++
	}

	if created > 0 {
		log.Info().Int("created", created).Msg("Seeded default categories")
	}
	return nil
}

// DeleteCustom removes one of userID's custom categories. Defaults cannot be
// deleted and categories still referenced by transactions are kept.
func (s *CategoryService) DeleteCustom(userID int32, categoryID int32) error {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category.IsDefault() {
		return domain.ErrCategoryAccessDenied
	}
	if owner, _ := category.Owner.UserID(); owner != userID {
		return domain.ErrCategoryNotFound
	}

	inUse, err := s.categoryRepo.HasTransactions(categoryID)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(categoryID); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.CategoryDeleted(map[string]interface{}{"id": categoryID}))
	return nil
}
