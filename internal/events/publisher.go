package events

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finstream/finstream/backend/go-services/internal/models"
	"github.com/finstream/finstream/backend/go-services/pkg/logger"
)

// DefaultStream is the Redis stream subscription changes are appended to.
const DefaultStream = "subscription:events"

// Publisher appends subscription-change records to a Redis stream so that
// downstream consumers (digest mailers, analytics) can react to them.
// Publishing is best-effort: a nil client disables it and failures only log.
type Publisher struct {
	client *redis.Client
	stream string
}

// NewPublisher creates a Publisher writing to the given stream. Stream may be
// empty; client may be nil to disable publishing.
func NewPublisher(client *redis.Client, stream string) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{client: client, stream: stream}
}

// SubscriptionChanged records that the user's subscription flag was persisted.
// Never fails the calling request.
func (p *Publisher) SubscriptionChanged(ctx context.Context, u *models.User, created bool) {
	if p == nil || p.client == nil {
		return
	}
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]interface{}{
			"externalIdentityId": u.ExternalID,
			"subscribed":         strconv.FormatBool(u.Subscribed),
			"created":            strconv.FormatBool(created),
			"at":                 time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		logger.Warnf("failed to publish subscription event for %s: %v", u.ExternalID, err)
	}
}
