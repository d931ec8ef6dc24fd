package services

import (
	"context"
	"server/internal/events"
	"server/internal/logger"
	"time"

	"github.com/google/uuid"
)

// Notifier hands completion-link and lifecycle notifications off to the
// delivery collaborator. Delivery itself (email) lives outside this
// service; failures here must never roll back the action that triggered
// the notification.
type Notifier interface {
	CompletionLinkIssued(ctx context.Context, email, token string, missingFields []string) error
	ApplicationApproved(ctx context.Context, applicationID string) error
	ProviderProvisioned(ctx context.Context, applicationID, providerID, providerCode string) error
}

// NotificationService publishes notifications on the event bus for the
// out-of-process mailer to pick up.
type NotificationService struct {
	eventBus *events.EventBus
	log      logger.Logger
}

func NewNotificationService(eventBus *events.EventBus) *NotificationService {
	return &NotificationService{
		eventBus: eventBus,
		log:      logger.New("NotificationService"),
	}
}

func (s *NotificationService) CompletionLinkIssued(
	ctx context.Context,
	email, token string,
	missingFields []string,
) error {
	log := s.log.Function("CompletionLinkIssued")

	event := events.Event{
		ID:      uuid.New().String(),
		Type:    "completion_link.issued",
		Channel: events.ChannelLinks,
		Data: map[string]any{
			"email":         email,
			"token":         token,
			"missingFields": missingFields,
		},
		Timestamp: time.Now(),
	}

	if err := s.eventBus.Publish(events.ChannelLinks, event); err != nil {
		return log.Err("failed to publish link issued event", err, "email", email)
	}

	return nil
}

func (s *NotificationService) ApplicationApproved(ctx context.Context, applicationID string) error {
	log := s.log.Function("ApplicationApproved")

	event := events.Event{
		ID:        uuid.New().String(),
		Type:      "application.approved",
		Channel:   events.ChannelApplications,
		Data:      map[string]any{"applicationId": applicationID},
		Timestamp: time.Now(),
	}

	if err := s.eventBus.Publish(events.ChannelApplications, event); err != nil {
		return log.Err("failed to publish approval event", err, "applicationID", applicationID)
	}

	return nil
}

func (s *NotificationService) ProviderProvisioned(
	ctx context.Context,
	applicationID, providerID, providerCode string,
) error {
	log := s.log.Function("ProviderProvisioned")

	event := events.Event{
		ID:      uuid.New().String(),
		Type:    "provider.provisioned",
		Channel: events.ChannelProviders,
		Data: map[string]any{
			"applicationId": applicationID,
			"providerId":    providerID,
			"providerCode":  providerCode,
		},
		Timestamp: time.Now(),
	}

	if err := s.eventBus.Publish(events.ChannelProviders, event); err != nil {
		return log.Err("failed to publish provisioned event", err, "providerID", providerID)
	}

	return nil
}
