package events

import (
	"context"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/finstream/finstream/backend/go-services/internal/models"
)

func TestPublisher_SubscriptionChanged(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	pub := NewPublisher(client, "test:events")

	ctx := context.Background()
	u := &models.User{ExternalID: "X", Username: "alice", Email: "a@x.com", Subscribed: true}
	pub.SubscriptionChanged(ctx, u, true)

	entries, err := client.XRange(ctx, "test:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "X", entries[0].Values["externalIdentityId"])
	require.Equal(t, "true", entries[0].Values["subscribed"])
	require.Equal(t, "true", entries[0].Values["created"])
	require.NotEmpty(t, entries[0].Values["at"])

	// update event on the same user
	u.Subscribed = false
	pub.SubscriptionChanged(ctx, u, false)

	entries, err = client.XRange(ctx, "test:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "false", entries[1].Values["subscribed"])
	require.Equal(t, "false", entries[1].Values["created"])
}

func TestPublisher_DefaultStream(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	pub := NewPublisher(client, "")

	pub.SubscriptionChanged(context.Background(), &models.User{ExternalID: "X"}, true)

	n, err := client.XLen(context.Background(), DefaultStream).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestPublisher_NilClientIsNoop(t *testing.T) {
	pub := NewPublisher(nil, "")
	// must not panic or block
	pub.SubscriptionChanged(context.Background(), &models.User{ExternalID: "X"}, true)

	var nilPub *Publisher
	nilPub.SubscriptionChanged(context.Background(), &models.User{ExternalID: "X"}, true)
}
