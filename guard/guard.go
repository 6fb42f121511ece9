// Package guard applies the dynamic write rules: field validation, case
// insensitive uniqueness and ownership. Each operation checks and writes
// inside one store transaction. The unique indexes of the store remain the
// final arbiter; a duplicate key reported at write time is diagnosed again
// so the caller still gets the specific error.
package guard

import (
	"context"
	"errors"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/credential"
	"github.com/ichigozero/taskguard/kind"
	"github.com/ichigozero/taskguard/storage"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
	"github.com/ichigozero/taskguard/validate"
)

type Guard struct {
	store  storage.Store
	hasher credential.Hasher
}

func New(s storage.Store, h credential.Hasher) *Guard {
	return &Guard{store: s, hasher: h}
}

// CreateUser validates p and stores a new user with a hashed password.
func (g *Guard) CreateUser(ctx context.Context, p usersvc.Profile) (usersvc.User, error) {
	var user usersvc.User
	err := g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := checkUser(ctx, tx, 0, p); err != nil {
			return err
		}

		hash, err := g.hasher.Hash(p.Password)
		if err != nil {
			return err
		}

		user = usersvc.User{
			Name:         validate.Normalize(p.Name),
			Email:        validate.Normalize(p.Email),
			PasswordHash: hash,
		}
		return tx.Users().Create(ctx, &user)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return usersvc.User{}, g.diagnoseUser(ctx, 0, p)
	}
	if err != nil {
		return usersvc.User{}, err
	}
	return user, nil
}

// UpdateUser replaces the profile of user id. Only the user itself may do
// so, and its current name and email do not count as taken.
func (g *Guard) UpdateUser(ctx context.Context, caller authsvc.Identity, id uint64, p usersvc.Profile) (usersvc.User, error) {
	if caller.ID != id {
		return usersvc.User{}, usersvc.ErrNotOwner
	}

	var user usersvc.User
	err := g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		user, err = tx.Users().Find(ctx, id)
		if err != nil {
			return err
		}
		if err := checkUser(ctx, tx, id, p); err != nil {
			return err
		}

		hash, err := g.hasher.Hash(p.Password)
		if err != nil {
			return err
		}

		user.Name = validate.Normalize(p.Name)
		user.Email = validate.Normalize(p.Email)
		user.PasswordHash = hash
		return tx.Users().Update(ctx, user)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return usersvc.User{}, g.diagnoseUser(ctx, id, p)
	}
	if err != nil {
		return usersvc.User{}, err
	}
	return user, nil
}

// DeleteUser removes user id and frees the task it owns.
func (g *Guard) DeleteUser(ctx context.Context, caller authsvc.Identity, id uint64) error {
	return g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, err := tx.Users().Find(ctx, id)
		if err != nil {
			return err
		}
		return deleteUser(ctx, tx, caller, user)
	})
}

// DeleteUserBy is DeleteUser addressed by name or email.
func (g *Guard) DeleteUserBy(ctx context.Context, caller authsvc.Identity, field usersvc.Field, value string) error {
	return g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, err := tx.Users().FindBy(ctx, field, validate.Normalize(value))
		if err != nil {
			return err
		}
		return deleteUser(ctx, tx, caller, user)
	})
}

func deleteUser(ctx context.Context, tx storage.Tx, caller authsvc.Identity, user usersvc.User) error {
	if user.ID != caller.ID {
		return usersvc.ErrNotOwner
	}
	return tx.Users().Delete(ctx, user.ID)
}

// checkUser runs the user rules in order and returns the first failure.
// The user with ID self is left out of the uniqueness scan.
func checkUser(ctx context.Context, tx storage.Tx, self uint64, p usersvc.Profile) error {
	users, err := tx.Users().FindAll(ctx)
	if err != nil {
		return err
	}

	if !validate.Name(p.Name) {
		return usersvc.ErrInvalidName
	}
	name := validate.Normalize(p.Name)
	for _, u := range users {
		if u.ID != self && u.Name == name {
			return usersvc.ErrNameInUse
		}
	}

	if !validate.Email(p.Email) {
		return usersvc.ErrInvalidEmail
	}
	email := validate.Normalize(p.Email)
	for _, u := range users {
		if u.ID != self && u.Email == email {
			return usersvc.ErrEmailInUse
		}
	}

	if !validate.Password(p.Password) {
		return usersvc.ErrInvalidPassword
	}
	return nil
}

func (g *Guard) diagnoseUser(ctx context.Context, self uint64, p usersvc.Profile) error {
	err := g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		return checkUser(ctx, tx, self, p)
	})
	if err == nil {
		return kind.ErrConflict
	}
	return err
}

// CreateTask validates d and stores a new task.
func (g *Guard) CreateTask(ctx context.Context, d tasksvc.Draft) (tasksvc.Task, error) {
	var task tasksvc.Task
	err := g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := checkTask(ctx, tx, 0, d); err != nil {
			return err
		}
		task = fromDraft(0, d)
		return tx.Tasks().Create(ctx, &task)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return tasksvc.Task{}, g.diagnoseTask(ctx, 0, d)
	}
	if err != nil {
		return tasksvc.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces task id with d. Only the task's owner may do so; a
// free task cannot be updated.
func (g *Guard) UpdateTask(ctx context.Context, caller authsvc.Identity, id uint64, d tasksvc.Draft) (tasksvc.Task, error) {
	var task tasksvc.Task
	err := g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		current, err := tx.Tasks().Find(ctx, id)
		if err != nil {
			return err
		}
		if !current.OwnedBy(caller.ID) {
			return tasksvc.ErrNotOwner
		}
		if err := checkTask(ctx, tx, id, d); err != nil {
			return err
		}
		task = fromDraft(id, d)
		return tx.Tasks().Update(ctx, task)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return tasksvc.Task{}, g.diagnoseTask(ctx, id, d)
	}
	if err != nil {
		return tasksvc.Task{}, err
	}
	return task, nil
}

func (g *Guard) DeleteTask(ctx context.Context, caller authsvc.Identity, id uint64) error {
	return g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		task, err := tx.Tasks().Find(ctx, id)
		if err != nil {
			return err
		}
		return deleteTask(ctx, tx, caller, task)
	})
}

func (g *Guard) DeleteTaskByTitle(ctx context.Context, caller authsvc.Identity, title string) error {
	return g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		task, err := tx.Tasks().FindBy(ctx, tasksvc.ByTitle, validate.Normalize(title))
		if err != nil {
			return err
		}
		return deleteTask(ctx, tx, caller, task)
	})
}

func deleteTask(ctx context.Context, tx storage.Tx, caller authsvc.Identity, task tasksvc.Task) error {
	if !task.OwnedBy(caller.ID) {
		return tasksvc.ErrNotOwner
	}
	return tx.Tasks().Delete(ctx, task.ID)
}

// checkTask runs the task rules in order and returns the first failure.
// The task with ID self is left out of the uniqueness scans.
func checkTask(ctx context.Context, tx storage.Tx, self uint64, d tasksvc.Draft) error {
	tasks, err := tx.Tasks().FindAll(ctx)
	if err != nil {
		return err
	}

	if !validate.Title(d.Title) {
		return tasksvc.ErrInvalidTitle
	}
	key := validate.Normalize(d.Title)
	for _, t := range tasks {
		if t.ID != self && t.TitleKey == key {
			return tasksvc.ErrTitleInUse
		}
	}

	if !validate.Status(d.Status) {
		return tasksvc.ErrInvalidStatus
	}
	if !validate.Description(d.Description) {
		return tasksvc.ErrInvalidDescription
	}

	if d.OwnerID == nil {
		return nil
	}
	if _, err := tx.Users().Find(ctx, *d.OwnerID); err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return tasksvc.ErrOwnerNotFound
		}
		return err
	}
	for _, t := range tasks {
		if t.ID != self && t.OwnedBy(*d.OwnerID) {
			return tasksvc.ErrOwnerTaken
		}
	}
	return nil
}

func (g *Guard) diagnoseTask(ctx context.Context, self uint64, d tasksvc.Draft) error {
	err := g.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		return checkTask(ctx, tx, self, d)
	})
	if err == nil {
		return kind.ErrConflict
	}
	return err
}

func fromDraft(id uint64, d tasksvc.Draft) tasksvc.Task {
	task := tasksvc.Task{
		ID:          id,
		Title:       d.Title,
		TitleKey:    validate.Normalize(d.Title),
		Description: d.Description,
		Status:      d.Status,
	}
	if d.OwnerID != nil {
		owner := *d.OwnerID
		task.OwnerID = &owner
	}
	return task
}
