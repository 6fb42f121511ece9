package gorm

import (
	"context"

	"github.com/ichigozero/taskguard/storage"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
	stdgorm "gorm.io/gorm"
)

type store struct {
	db *stdgorm.DB
}

// NewStore returns a storage.Store backed by db.
func NewStore(db *stdgorm.DB) storage.Store {
	return &store{db}
}

// Migrate creates or updates the tables and unique indexes.
func Migrate(db *stdgorm.DB) error {
	return db.AutoMigrate(&usersvc.User{}, &tasksvc.Task{})
}

func (s *store) Transaction(ctx context.Context, fn func(context.Context, storage.Tx) error) error {
	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Transaction(func(db *stdgorm.DB) error {
		return fn(ctx, tx{db})
	})
	return translate(err)
}

type tx struct {
	db *stdgorm.DB
}

func (t tx) Users() usersvc.UserRepository { return NewUserRepository(t.db) }

func (t tx) Tasks() tasksvc.TaskRepository { return NewTaskRepository(t.db) }
