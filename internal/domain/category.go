package domain

import (
	"encoding/json"
	"time"
)

// DefaultCategoryNames are seeded at startup as categories usable by everyone
var DefaultCategoryNames = []string{
	"Groceries", "Rent", "Salary", "Transport", "Entertainment", "Utilities",
}

// CategoryOwner is either the shared default owner or a single user.
// The zero value is the default owner.
type CategoryOwner struct {
	userID int32
}

// DefaultOwner returns the owner of categories shared by every user
func DefaultOwner() CategoryOwner {
	return CategoryOwner{}
}

// CustomOwner returns the owner of a category restricted to userID
func CustomOwner(userID int32) CategoryOwner {
	return CategoryOwner{userID: userID}
}

// IsDefault reports whether this is the shared default owner
func (o CategoryOwner) IsDefault() bool {
	return o.userID == 0
}

// UserID returns the owning user, or false for the default owner
func (o CategoryOwner) UserID() (int32, bool) {
	if o.IsDefault() {
		return 0, false
	}
	return o.userID, true
}

// CanBeUsedBy reports whether userID may attach the category to a transaction
func (o CategoryOwner) CanBeUsedBy(userID int32) bool {
	owner, custom := o.UserID()
	if !custom {
		return true
	}
	return owner == userID
}

// Category labels transactions. Default categories have no owning user.
type Category struct {
	ID        int32         `json:"id"`
	Name      string        `json:"name"`
	Owner     CategoryOwner `json:"-"`
	CreatedAt time.Time     `json:"createdAt"`
}

// IsDefault reports whether the category is usable by everyone
func (c *Category) IsDefault() bool {
	return c.Owner.IsDefault()
}

// MarshalJSON flattens the owner into userId/isDefault fields
func (c Category) MarshalJSON() ([]byte, error) {
	type alias Category
	var userID *int32
	if id, ok := c.Owner.UserID(); ok {
		userID = &id
	}
	return json.Marshal(struct {
		alias
		UserID    *int32 `json:"userId"`
		IsDefault bool   `json:"isDefault"`
	}{alias(c), userID, c.Owner.IsDefault()})
}

// CategoryRepository defines the interface for category persistence operations
type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(id int32) (*Category, error)
	GetDefaultByName(name string) (*Category, error)
	GetCustomByName(userID int32, name string) (*Category, error)
	// GetAvailable returns defaults plus userID's custom categories ordered by name
	GetAvailable(userID int32) ([]*Category, error)
	Delete(id int32) error
	HasTransactions(id int32) (bool, error)
}
