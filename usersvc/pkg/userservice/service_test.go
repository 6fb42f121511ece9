package userservice_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/credential"
	"github.com/ichigozero/taskguard/guard"
	"github.com/ichigozero/taskguard/storage/memory"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
	"github.com/ichigozero/taskguard/usersvc/pkg/userservice"
)

func TestService(t *testing.T) {
	var buf bytes.Buffer
	store := memory.NewStore()
	g := guard.New(store, credential.Bcrypt{Cost: bcrypt.MinCost})
	svc := userservice.New(store, g, log.NewLogfmtLogger(&buf), discard.NewCounter(), discard.NewHistogram())
	ctx := context.Background()

	alice, err := g.CreateUser(ctx, usersvc.Profile{Name: "alice1", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	bob, err := g.CreateUser(ctx, usersvc.Profile{Name: "bobby1", Email: "b@b.com", Password: "secret1"})
	require.NoError(t, err)
	task, err := g.CreateTask(ctx, tasksvc.Draft{Title: "buyMilk", Description: "getit2", Status: "new", OwnerID: &alice.ID})
	require.NoError(t, err)

	asAlice := authsvc.Identity{Username: alice.Name, ID: alice.ID}
	asBob := authsvc.Identity{Username: bob.Name, ID: bob.ID}

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	free, err := svc.FreeUsers(ctx)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, bob.ID, free[0].ID)

	got, err := svc.User(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	got, err = svc.UserByName(ctx, "ALICE1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = svc.UserByEmail(ctx, "b@B.COM")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	tasks, err := svc.UserTasks(ctx, asAlice)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)

	tasks, err = svc.UserTasks(ctx, asBob)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = svc.UpdateUser(ctx, asBob, alice.ID, usersvc.Profile{Name: "alice2", Email: "a@b.com", Password: "secret1"})
	assert.ErrorIs(t, err, usersvc.ErrNotOwner)

	assert.ErrorIs(t, svc.DeleteUserByName(ctx, asBob, "alice1"), usersvc.ErrNotOwner)
	require.NoError(t, svc.DeleteUserByEmail(ctx, asAlice, "A@b.com"))
	require.NoError(t, svc.DeleteUser(ctx, asBob, bob.ID))

	_, err = svc.UserTasks(ctx, asAlice)
	assert.ErrorIs(t, err, usersvc.ErrUserNotFound)

	assert.Contains(t, buf.String(), "method=DeleteUserByEmail")
	assert.NotContains(t, buf.String(), "secret1")
}
