package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/homeservices_backend/models"
)

type fakeRealtime struct {
	mu   sync.Mutex
	sent map[string]int
}

func (r *fakeRealtime) SendToUser(userID string, _ interface{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = map[string]int{}
	}
	r.sent[userID]++
	return true
}

type fakeDevices struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (d *fakeDevices) Push(_ context.Context, deviceToken string, _ *models.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens = append(d.tokens, deviceToken)
	return d.err
}

func TestNotifyFansOut(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)
	env.signIn(t, "u2", models.RoleUser)
	ctx := context.Background()
	require.NoError(t, env.store.Users.SetFCMToken(ctx, "u1", "device-1"))

	realtime := &fakeRealtime{}
	devices := &fakeDevices{}
	svc := NewNotificationService(env.auth, env.store.Notifications, env.store.Users, realtime, devices, env.log)

	svc.Notify(ctx, "u1", "Payment received", "Thanks", "/bookings/b1")
	svc.Notify(ctx, "u2", "Hello", "No device", "")
	svc.Notify(ctx, "", "Dropped", "No recipient", "")

	assert.Equal(t, 1, realtime.sent["u1"])
	assert.Equal(t, 1, realtime.sent["u2"])
	assert.Equal(t, []string{"device-1"}, devices.tokens)

	list, err := svc.ListNotifications(ctx, token, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Payment received", list[0].Title)
	assert.False(t, list[0].Read)
}

func TestNotifyPushFailureStillStores(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)
	ctx := context.Background()
	require.NoError(t, env.store.Users.SetFCMToken(ctx, "u1", "device-1"))

	svc := NewNotificationService(env.auth, env.store.Notifications, env.store.Users, nil, &fakeDevices{err: errors.New("unregistered")}, env.log)
	svc.Notify(ctx, "u1", "Job assigned", "See details", "")

	list, err := svc.ListNotifications(ctx, token, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMarkNotificationsRead(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "u1", models.RoleUser)
	other := env.signIn(t, "u2", models.RoleUser)
	ctx := context.Background()

	svc := NewNotificationService(env.auth, env.store.Notifications, env.store.Users, nil, nil, env.log)
	for i := 0; i < 3; i++ {
		svc.Notify(ctx, "u1", "Update", "Something happened", "")
	}

	list, err := svc.ListNotifications(ctx, token, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)

	err = svc.MarkNotificationRead(ctx, other, list[0].ID)
	requireKind(t, err, models.KindNotFound)

	require.NoError(t, svc.MarkNotificationRead(ctx, token, list[0].ID))

	changed, err := svc.MarkAllRead(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	changed, err = svc.MarkAllRead(ctx, token)
	require.NoError(t, err)
	assert.Zero(t, changed)

	_, err = svc.ListNotifications(ctx, "", 0)
	requireKind(t, err, models.KindUnauthenticated)
}
