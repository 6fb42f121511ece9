package usersvc

import (
	"context"

	"github.com/ichigozero/taskguard/kind"
)

// User is a registered account. Name and Email are kept in normalized form
// so the unique indexes enforce case-insensitive uniqueness.
type User struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
}

// Profile is the user supplied part of a User.
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Field names a column users can be looked up by.
type Field string

const (
	ByName  Field = "name"
	ByEmail Field = "email"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Find(ctx context.Context, id uint64) (User, error)
	FindBy(ctx context.Context, field Field, value string) (User, error)
	FindAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) error
	// Delete removes the user and releases every task it owns.
	Delete(ctx context.Context, id uint64) error
}

var (
	ErrInvalidArgument = kind.New("invalid argument", kind.ErrBadRequest)
	ErrUserNotFound    = kind.New("user not found", kind.ErrNotFound)
	ErrInvalidName     = kind.New("invalid user name", kind.ErrInvalidInput)
	ErrInvalidEmail    = kind.New("invalid email", kind.ErrInvalidInput)
	ErrInvalidPassword = kind.New("invalid password", kind.ErrInvalidInput)
	ErrNameInUse       = kind.New("user name already in use", ErrInvalidName, kind.ErrConflict)
	ErrEmailInUse      = kind.New("email already in use", ErrInvalidEmail, kind.ErrConflict)
	ErrNotOwner        = kind.New("not allowed to modify this user", kind.ErrForbidden)
)
