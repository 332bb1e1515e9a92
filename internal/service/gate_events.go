package service

import (
	"context"
	"time"

	"socio-service/internal/domain"
)

type GateEventPublisher interface {
	Publish(ctx context.Context, event domain.GateEvent) error
}

// GateEventService fans access verdicts out to the event stream. It is
// nil-safe so the access path works unchanged when no broker is configured.
type GateEventService struct {
	publisher GateEventPublisher
}

func NewGateEventService(publisher GateEventPublisher) *GateEventService {
	return &GateEventService{publisher: publisher}
}

func (s *GateEventService) RecordAccessCheck(ctx context.Context, entry *domain.AccessLogEntry) error {
	if s == nil || s.publisher == nil || entry == nil {
		return nil
	}

	eventType := "access_denied"
	if entry.Granted {
		eventType = "access_granted"
	}

	event := domain.GateEvent{
		Service:    "socio-service",
		EventType:  eventType,
		MemberID:   entry.MemberID,
		Actor:      entry.CheckedBy,
		OccurredAt: time.Now().UTC(),
		Payload: map[string]interface{}{
			"granted":         entry.Granted,
			"reason":          entry.Reason,
			"standing_status": entry.StandingStatus,
			"dues_status":     entry.DuesStatus,
		},
	}

	return s.publisher.Publish(ctx, event)
}
