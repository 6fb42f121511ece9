package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/sd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ichigozero/taskguard/apigateway/gatewaytest"
	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/authsvc/pkg/authtransport"
	"github.com/ichigozero/taskguard/kind"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/tasksvc/client"
	"github.com/ichigozero/taskguard/usersvc"
)

func TestClient(t *testing.T) {
	srv := gatewaytest.NewServer(t)
	auth, err := authtransport.NewHTTPClient(srv.URL, log.NewNopLogger())
	require.NoError(t, err)
	set, err := client.New(sd.FixedInstancer{"127.0.0.1:1", srv.URL}, log.NewNopLogger(), 3, 5*time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	login := func(name, email string) (context.Context, usersvc.User) {
		user, err := auth.Register(ctx, usersvc.Profile{Name: name, Email: email, Password: "secret1"})
		require.NoError(t, err)
		token, err := auth.Login(ctx, name, "secret1")
		require.NoError(t, err)
		return authtransport.WithBearer(ctx, token.AccessToken), user
	}
	aliceCtx, alice := login("alice1", "a@b.com")
	bobCtx, _ := login("bob42", "b@b.com")

	draft := tasksvc.Draft{Title: "buyMilk", Description: "getit2", Status: tasksvc.StatusNew, OwnerID: &alice.ID}

	_, err = set.CreateTask(ctx, draft)
	assert.ErrorIs(t, err, kind.ErrUnauthorized)

	task, err := set.CreateTask(aliceCtx, draft)
	require.NoError(t, err)
	assert.Equal(t, "buyMilk", task.Title)
	require.NotNil(t, task.OwnerID)
	assert.Equal(t, alice.ID, *task.OwnerID)

	_, err = set.CreateTask(aliceCtx, draft)
	assert.EqualError(t, err, tasksvc.ErrTitleInUse.Error())

	got, err := set.TaskByTitle(ctx, "BUYMILK")
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	got, err = set.TaskByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	draft.Status = tasksvc.StatusActive
	updated, err := set.UpdateTask(aliceCtx, authsvc.Identity{}, task.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, tasksvc.StatusActive, updated.Status)

	err = set.DeleteTask(bobCtx, authsvc.Identity{}, task.ID)
	assert.ErrorIs(t, err, kind.ErrForbidden)

	tasks, err := set.Tasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	free, err := set.FreeTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, free)

	require.NoError(t, set.DeleteTaskByTitle(aliceCtx, authsvc.Identity{}, "buymilk"))

	_, err = set.Task(ctx, task.ID)
	assert.ErrorIs(t, err, kind.ErrNotFound)
}
