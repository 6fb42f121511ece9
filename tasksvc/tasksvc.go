package tasksvc

import (
	"context"

	"github.com/ichigozero/taskguard/kind"
	"github.com/ichigozero/taskguard/validate"
)

const (
	StatusNew       = validate.StatusNew
	StatusActive    = validate.StatusActive
	StatusCompleted = validate.StatusCompleted
)

// Task is a unit of work. A nil OwnerID marks a free task; a user owns at
// most one task.
type Task struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title" gorm:"not null"`
	TitleKey    string  `json:"-" gorm:"uniqueIndex;not null"`
	Description string  `json:"description"`
	Status      string  `json:"status" gorm:"not null"`
	OwnerID     *uint64 `json:"user_id" gorm:"uniqueIndex"`
}

// OwnedBy reports whether the task references userID as its owner.
func (t Task) OwnedBy(userID uint64) bool {
	return t.OwnerID != nil && *t.OwnerID == userID
}

// Draft is the user supplied part of a Task.
type Draft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	OwnerID     *uint64 `json:"user_id"`
}

// Field names a column tasks can be looked up by.
type Field string

const (
	ByTitle Field = "title_key"
	ByOwner Field = "owner_id"
)

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	Find(ctx context.Context, id uint64) (Task, error)
	// FindBy expects a normalized title for ByTitle and a uint64 for ByOwner.
	FindBy(ctx context.Context, field Field, value interface{}) (Task, error)
	FindAll(ctx context.Context) ([]Task, error)
	Update(ctx context.Context, task Task) error
	Delete(ctx context.Context, id uint64) error
}

var (
	ErrInvalidArgument    = kind.New("invalid argument", kind.ErrBadRequest)
	ErrTaskNotFound       = kind.New("task not found", kind.ErrNotFound)
	ErrInvalidTitle       = kind.New("invalid task title", kind.ErrInvalidInput)
	ErrTitleInUse         = kind.New("task title already in use", ErrInvalidTitle, kind.ErrConflict)
	ErrInvalidStatus      = kind.New("invalid task status", kind.ErrInvalidInput)
	ErrInvalidDescription = kind.New("invalid task description", kind.ErrInvalidInput)
	ErrInvalidOwner       = kind.New("invalid task owner", kind.ErrInvalidInput)
	ErrOwnerNotFound      = kind.New("task owner does not exist", ErrInvalidOwner)
	ErrOwnerTaken         = kind.New("user already owns a task", ErrInvalidOwner, kind.ErrConflict)
	ErrNotOwner           = kind.New("not allowed to modify this task", kind.ErrForbidden)
)
