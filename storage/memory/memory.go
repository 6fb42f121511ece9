// Package memory provides a storage.Store kept in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ichigozero/taskguard/storage"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
)

type state struct {
	users      map[uint64]usersvc.User
	tasks      map[uint64]tasksvc.Task
	nextUserID uint64
	nextTaskID uint64
}

func (s state) clone() state {
	c := s
	c.users = make(map[uint64]usersvc.User, len(s.users))
	for id, u := range s.users {
		c.users[id] = u
	}
	c.tasks = make(map[uint64]tasksvc.Task, len(s.tasks))
	for id, t := range s.tasks {
		c.tasks[id] = copyTask(t)
	}
	return c
}

// Store serializes transactions and applies a transaction's writes only
// when it succeeds.
type Store struct {
	mtx   sync.Mutex
	state state
}

func NewStore() *Store {
	return &Store{
		state: state{
			users:      map[uint64]usersvc.User{},
			tasks:      map[uint64]tasksvc.Task{},
			nextUserID: 1,
			nextTaskID: 1,
		},
	}
}

func (s *Store) Transaction(ctx context.Context, fn func(context.Context, storage.Tx) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	work := s.state.clone()
	if err := fn(context.WithoutCancel(ctx), &tx{&work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type tx struct {
	state *state
}

func (t *tx) Users() usersvc.UserRepository { return userRepository{t.state} }

func (t *tx) Tasks() tasksvc.TaskRepository { return taskRepository{t.state} }

type userRepository struct {
	state *state
}

func (r userRepository) Create(_ context.Context, user *usersvc.User) error {
	if r.taken(0, user.Name, user.Email) {
		return storage.ErrDuplicate
	}
	user.ID = r.state.nextUserID
	r.state.nextUserID++
	r.state.users[user.ID] = *user
	return nil
}

func (r userRepository) Find(_ context.Context, id uint64) (usersvc.User, error) {
	u, ok := r.state.users[id]
	if !ok {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}
	return u, nil
}

func (r userRepository) FindBy(_ context.Context, field usersvc.Field, value string) (usersvc.User, error) {
	for _, u := range r.sorted() {
		switch {
		case field == usersvc.ByName && u.Name == value,
			field == usersvc.ByEmail && u.Email == value:
			return u, nil
		}
	}
	return usersvc.User{}, usersvc.ErrUserNotFound
}

func (r userRepository) FindAll(context.Context) ([]usersvc.User, error) {
	return r.sorted(), nil
}

func (r userRepository) Update(_ context.Context, user usersvc.User) error {
	if _, ok := r.state.users[user.ID]; !ok {
		return usersvc.ErrUserNotFound
	}
	if r.taken(user.ID, user.Name, user.Email) {
		return storage.ErrDuplicate
	}
	r.state.users[user.ID] = user
	return nil
}

func (r userRepository) Delete(_ context.Context, id uint64) error {
	if _, ok := r.state.users[id]; !ok {
		return usersvc.ErrUserNotFound
	}
	for tid, t := range r.state.tasks {
		if t.OwnedBy(id) {
			t.OwnerID = nil
			r.state.tasks[tid] = t
		}
	}
	delete(r.state.users, id)
	return nil
}

func (r userRepository) taken(self uint64, name, email string) bool {
	for id, u := range r.state.users {
		if id != self && (u.Name == name || u.Email == email) {
			return true
		}
	}
	return false
}

func (r userRepository) sorted() []usersvc.User {
	users := make([]usersvc.User, 0, len(r.state.users))
	for _, u := range r.state.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

type taskRepository struct {
	state *state
}

func (r taskRepository) Create(_ context.Context, task *tasksvc.Task) error {
	if r.taken(0, *task) {
		return storage.ErrDuplicate
	}
	task.ID = r.state.nextTaskID
	r.state.nextTaskID++
	r.state.tasks[task.ID] = copyTask(*task)
	return nil
}

func (r taskRepository) Find(_ context.Context, id uint64) (tasksvc.Task, error) {
	t, ok := r.state.tasks[id]
	if !ok {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}
	return copyTask(t), nil
}

func (r taskRepository) FindBy(_ context.Context, field tasksvc.Field, value interface{}) (tasksvc.Task, error) {
	for _, t := range r.sorted() {
		switch field {
		case tasksvc.ByTitle:
			if title, ok := value.(string); ok && t.TitleKey == title {
				return t, nil
			}
		case tasksvc.ByOwner:
			if id, ok := value.(uint64); ok && t.OwnedBy(id) {
				return t, nil
			}
		}
	}
	return tasksvc.Task{}, tasksvc.ErrTaskNotFound
}

func (r taskRepository) FindAll(context.Context) ([]tasksvc.Task, error) {
	return r.sorted(), nil
}

func (r taskRepository) Update(_ context.Context, task tasksvc.Task) error {
	if _, ok := r.state.tasks[task.ID]; !ok {
		return tasksvc.ErrTaskNotFound
	}
	if r.taken(task.ID, task) {
		return storage.ErrDuplicate
	}
	r.state.tasks[task.ID] = copyTask(task)
	return nil
}

func (r taskRepository) Delete(_ context.Context, id uint64) error {
	if _, ok := r.state.tasks[id]; !ok {
		return tasksvc.ErrTaskNotFound
	}
	delete(r.state.tasks, id)
	return nil
}

func (r taskRepository) taken(self uint64, task tasksvc.Task) bool {
	for id, t := range r.state.tasks {
		if id == self {
			continue
		}
		if t.TitleKey == task.TitleKey {
			return true
		}
		if task.OwnerID != nil && t.OwnedBy(*task.OwnerID) {
			return true
		}
	}
	return false
}

func (r taskRepository) sorted() []tasksvc.Task {
	tasks := make([]tasksvc.Task, 0, len(r.state.tasks))
	for _, t := range r.state.tasks {
		tasks = append(tasks, copyTask(t))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func copyTask(t tasksvc.Task) tasksvc.Task {
	if t.OwnerID != nil {
		id := *t.OwnerID
		t.OwnerID = &id
	}
	return t
}
