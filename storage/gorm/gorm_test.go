package gorm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	stdgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ichigozero/taskguard/storage"
	"github.com/ichigozero/taskguard/storage/gorm"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
)

func newStore(t *testing.T) storage.Store {
	t.Helper()

	db, err := stdgorm.Open(sqlite.Open(":memory:"), &stdgorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gorm.Migrate(db))
	return gorm.NewStore(db)
}

func createUser(t *testing.T, s storage.Store, name, email string) usersvc.User {
	t.Helper()

	user := usersvc.User{Name: name, Email: email, PasswordHash: "hash"}
	err := s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Create(ctx, &user)
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	return user
}

func TestUserRepository(t *testing.T) {
	s := newStore(t)
	alice := createUser(t, s, "Alice1", "A@b.com")
	bob := createUser(t, s, "Bobby", "B@b.com")

	err := s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		users := tx.Users()

		got, err := users.Find(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice, got)

		got, err = users.FindBy(ctx, usersvc.ByEmail, "B@b.com")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.ID)

		_, err = users.FindBy(ctx, usersvc.ByName, "Nobody")
		assert.ErrorIs(t, err, usersvc.ErrUserNotFound)

		_, err = users.Find(ctx, 999)
		assert.ErrorIs(t, err, usersvc.ErrUserNotFound)

		all, err := users.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		bob.Email = "Bob@b.com"
		require.NoError(t, users.Update(ctx, bob))
		got, err = users.Find(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bob@b.com", got.Email)

		assert.ErrorIs(t, users.Update(ctx, usersvc.User{ID: 999, Name: "Ghost"}), usersvc.ErrUserNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestUserRepository_Duplicate(t *testing.T) {
	s := newStore(t)
	createUser(t, s, "Alice1", "A@b.com")

	err := s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Create(ctx, &usersvc.User{Name: "Alice1", Email: "other@b.com", PasswordHash: "x"})
	})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestUserRepository_DeleteReleasesTask(t *testing.T) {
	s := newStore(t)
	alice := createUser(t, s, "Alice1", "A@b.com")

	task := tasksvc.Task{Title: "buyMilk", TitleKey: "Buymilk", Description: "getit2", Status: "new", OwnerID: &alice.ID}
	err := s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		return tx.Tasks().Create(ctx, &task)
	})
	require.NoError(t, err)

	err = s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		if err := tx.Users().Delete(ctx, alice.ID); err != nil {
			return err
		}
		got, err := tx.Tasks().Find(ctx, task.ID)
		require.NoError(t, err)
		assert.Nil(t, got.OwnerID)

		assert.ErrorIs(t, tx.Users().Delete(ctx, alice.ID), usersvc.ErrUserNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestTaskRepository(t *testing.T) {
	s := newStore(t)
	alice := createUser(t, s, "Alice1", "A@b.com")
	bob := createUser(t, s, "Bobby", "B@b.com")

	owned := tasksvc.Task{Title: "buyMilk", TitleKey: "Buymilk", Description: "getit2", Status: "new", OwnerID: &alice.ID}
	free := tasksvc.Task{Title: "walkDog", TitleKey: "Walkdog", Description: "twice", Status: "active"}

	err := s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		tasks := tx.Tasks()
		require.NoError(t, tasks.Create(ctx, &owned))
		require.NoError(t, tasks.Create(ctx, &free))

		got, err := tasks.FindBy(ctx, tasksvc.ByOwner, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, owned.ID, got.ID)

		got, err = tasks.FindBy(ctx, tasksvc.ByTitle, "Walkdog")
		require.NoError(t, err)
		assert.Equal(t, free.ID, got.ID)
		assert.Nil(t, got.OwnerID)

		_, err = tasks.FindBy(ctx, tasksvc.ByOwner, bob.ID)
		assert.ErrorIs(t, err, tasksvc.ErrTaskNotFound)

		free.OwnerID = &bob.ID
		free.Status = "completed"
		require.NoError(t, tasks.Update(ctx, free))
		got, err = tasks.Find(ctx, free.ID)
		require.NoError(t, err)
		assert.Equal(t, "completed", got.Status)
		require.NotNil(t, got.OwnerID)
		assert.Equal(t, bob.ID, *got.OwnerID)

		all, err := tasks.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		require.NoError(t, tasks.Delete(ctx, owned.ID))
		assert.ErrorIs(t, tasks.Delete(ctx, owned.ID), tasksvc.ErrTaskNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestTaskRepository_Duplicate(t *testing.T) {
	s := newStore(t)
	alice := createUser(t, s, "Alice1", "A@b.com")

	err := s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		return tx.Tasks().Create(ctx, &tasksvc.Task{Title: "buyMilk", TitleKey: "Buymilk", Status: "new", OwnerID: &alice.ID})
	})
	require.NoError(t, err)

	tests := map[string]tasksvc.Task{
		"title": {Title: "BUYMILK", TitleKey: "Buymilk", Status: "new"},
		"owner": {Title: "other", TitleKey: "Other", Status: "new", OwnerID: &alice.ID},
	}
	for name, task := range tests {
		task := task
		t.Run(name, func(t *testing.T) {
			err := s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
				return tx.Tasks().Create(ctx, &task)
			})
			assert.ErrorIs(t, err, storage.ErrDuplicate)
		})
	}
}

func TestTransaction_Rollback(t *testing.T) {
	s := newStore(t)
	errBoom := assert.AnError

	err := s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.Users().Create(ctx, &usersvc.User{Name: "Alice1", Email: "A@b.com", PasswordHash: "x"}))
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	err = s.Transaction(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		users, err := tx.Users().FindAll(ctx)
		assert.Empty(t, users)
		return err
	})
	require.NoError(t, err)
}

func TestTransaction_IgnoresCancel(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		cancel()
		return tx.Users().Create(ctx, &usersvc.User{Name: "Alice1", Email: "A@b.com", PasswordHash: "x"})
	})
	require.NoError(t, err)
}
