package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	return client, mr
}

type failing struct{}

func (failing) Notify(context.Context, string, domain.Notification) error {
	return errors.New("down")
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	require.NoError(t, r.Notify(ctx, "alice", domain.Notification{Title: "one"}))
	require.NoError(t, r.Notify(ctx, "bob", domain.Notification{Title: "two"}))

	got := r.For("alice")
	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].Title)
	assert.Empty(t, r.For("carol"))
}

func TestFanout(t *testing.T) {
	r := NewRecorder()
	err := Fanout{failing{}, nil, r}.Notify(context.Background(), "alice", domain.Notification{Title: "x"})
	assert.Error(t, err)
	assert.Len(t, r.For("alice"), 1, "later notifiers still run")
}

func TestRedisPublisher_RoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	pub := NewRedisPublisher(client)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := pub.Subscribe(ctx, "alice")
	require.NoError(t, err)

	sent := domain.Notification{Severity: domain.SeveritySuccess, Title: "File deleted", Kind: "files"}
	require.NoError(t, pub.Notify(ctx, "alice", sent))

	select {
	case got := <-stream:
		assert.Equal(t, sent.Title, got.Title)
		assert.Equal(t, sent.Severity, got.Severity)
	case <-time.After(2 * time.Second):
		t.Fatal("notification not received")
	}

	cancel()
	for range stream {
	}
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "dash:notify:alice", Channel("alice"))
}
