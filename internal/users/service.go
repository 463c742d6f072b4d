package users

import (
	"context"

	"github.com/finstream/finstream/backend/go-services/internal/events"
	"github.com/finstream/finstream/backend/go-services/internal/models"
	"github.com/finstream/finstream/backend/go-services/pkg/httperr"
	"github.com/finstream/finstream/backend/go-services/pkg/metrics"
	"github.com/finstream/finstream/backend/go-services/pkg/middleware"
)

// Service encapsulates user-related business logic
type Service struct {
	repo   Repository
	events *events.Publisher
}

// NewService wires the repository and the (optional) event publisher.
func NewService(r Repository, pub *events.Publisher) *Service {
	return &Service{repo: r, events: pub}
}

// SetSubscription finds or creates the caller's row and persists the requested
// flag. A brand-new row takes username/email from the verified claims; an
// existing row keeps its stored values and only the flag changes.
func (s *Service) SetSubscription(ctx context.Context, ident middleware.Identity, subscribed bool) (*models.User, error) {
	u, err := s.repo.FindByExternalID(ctx, ident.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u = &models.User{
			ExternalID: ident.Subject,
			Username:   ident.Username,
			Email:      ident.Email,
		}
	}
	u.Subscribed = subscribed

	persisted, created, err := s.repo.Persist(ctx, u)
	if err != nil {
		return nil, err
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	metrics.SubscriptionUpdates.WithLabelValues(outcome).Inc()
	s.events.SubscriptionChanged(ctx, persisted, created)

	return persisted, nil
}

// Current returns the caller's row or a Not-Found request error.
func (s *Service) Current(ctx context.Context, ident middleware.Identity) (*models.User, error) {
	u, err := s.repo.FindByExternalID(ctx, ident.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, httperr.NotFound("User not Found")
	}
	return u, nil
}

// List returns every stored user.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.ListAll(ctx)
}
