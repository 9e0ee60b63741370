package domain

import "time"

// User represents a registered user. PasswordHash is never serialized.
type User struct {
	ID           int32     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	Create(user *User) (*User, error)
	GetByID(id int32) (*User, error)
	GetByEmail(email string) (*User, error)
	ExistsByEmail(email string) (bool, error)
	Update(user *User) (*User, error)
	UpdatePassword(id int32, passwordHash string) error
	// Delete removes the user; their budgets, categories and transactions go with them
	Delete(id int32) error
}
