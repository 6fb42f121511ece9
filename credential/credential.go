// Package credential hashes passwords and checks login attempts against the
// stored hashes.
package credential

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/storage"
	"github.com/ichigozero/taskguard/usersvc"
	"github.com/ichigozero/taskguard/validate"
)

type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Bcrypt hashes with the given cost; zero means bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (Bcrypt) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type Store struct {
	store     storage.Store
	hasher    Hasher
	dummyHash string
}

func NewStore(s storage.Store, h Hasher) (*Store, error) {
	// Compared against when the user does not exist so both failure paths
	// cost one hash comparison.
	dummy, err := h.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, err
	}
	return &Store{store: s, hasher: h, dummyHash: dummy}, nil
}

// Authenticate returns the user whose normalized name matches username and
// whose password hash matches password.
func (c *Store) Authenticate(ctx context.Context, username, password string) (usersvc.User, error) {
	var user usersvc.User
	err := c.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		user, err = tx.Users().FindBy(ctx, usersvc.ByName, validate.Normalize(username))
		return err
	})
	switch {
	case errors.Is(err, usersvc.ErrUserNotFound):
		_ = c.hasher.Compare(c.dummyHash, password)
		return usersvc.User{}, authsvc.ErrInvalidCredentials
	case err != nil:
		return usersvc.User{}, err
	}

	if err := c.hasher.Compare(user.PasswordHash, password); err != nil {
		return usersvc.User{}, authsvc.ErrInvalidCredentials
	}
	return user, nil
}
