package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type NewsletterService struct {
	Repo   repo.SubscriberRepo
	Events events.Publisher
}

func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	sub := &models.Subscriber{Email: email, SubscribedAt: time.Now().UTC()}
	if err := s.Repo.CreateSubscriber(ctx, sub); err != nil {
		return nil, fromRepo(err)
	}

	publish(ctx, s.Events, events.TopicSubscribers, sub.ID, map[string]any{
		"type":  "subscribed",
		"email": sub.Email,
	})
	return sub, nil
}
