// Package storage defines the transactional Entity Store contract shared by
// the guard and the read side of the services.
package storage

import (
	"context"

	"github.com/ichigozero/taskguard/kind"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = kind.New("duplicate key", kind.ErrConflict)

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Users() usersvc.UserRepository
	Tasks() tasksvc.TaskRepository
}

// Store runs fn inside a single transaction. The transaction commits when
// fn returns nil and rolls back otherwise. Once started, the transaction
// is not bound to the cancellation of ctx.
type Store interface {
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
