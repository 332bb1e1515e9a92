package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"socio-service/internal/domain"
	"socio-service/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	messageMayEnter    = "MAY ENTER THE STADIUM"
	messageMayNotEnter = "MAY NOT ENTER"

	defaultLogPageSize = 20
	maxLogPageSize     = 100
)

type AccessServiceInterface interface {
	CheckAccess(ctx context.Context, memberID, checkedBy string) (*domain.AccessResponse, error)
	ListLogs(ctx context.Context, filter domain.AccessLogFilter) (*domain.AccessLogPage, error)
}

// AccessService decides stadium entry eligibility and keeps the audit trail.
type AccessService struct {
	members repository.MemberRepository
	logs    repository.AccessLogRepository
	events  *GateEventService
	now     func() time.Time
}

func NewAccessService(members repository.MemberRepository, logs repository.AccessLogRepository, events *GateEventService) *AccessService {
	return &AccessService{
		members: members,
		logs:    logs,
		events:  events,
		now:     time.Now,
	}
}

// CheckAccess looks up the member, evaluates the entry rules and appends one
// audit entry with the verdict's status snapshot. The audit write is part of
// the contract: if it fails the whole check fails rather than reporting an
// unlogged verdict. An unknown member id yields an ineligible response and
// no audit entry.
func (s *AccessService) CheckAccess(ctx context.Context, memberID, checkedBy string) (*domain.AccessResponse, error) {
	if memberID == "" {
		return nil, fmt.Errorf("member ID is required")
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil && !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, fmt.Errorf("failed to load member for access check: %w", err)
	}

	verdict := domain.EvaluateAccess(member, s.now())

	if member == nil {
		log.WithField("member_id", memberID).Info("Access check for unknown member")
		return &domain.AccessResponse{
			IsEligible:     false,
			StatusMessage:  messageMayNotEnter,
			StandingStatus: verdict.StandingStatus,
			DuesStatus:     verdict.DuesStatus,
		}, nil
	}

	entry := &domain.AccessLogEntry{
		ID:             uuid.NewString(),
		MemberID:       member.ID,
		Granted:        verdict.Eligible,
		Reason:         verdict.Reason,
		StandingStatus: verdict.StandingStatus,
		DuesStatus:     verdict.DuesStatus,
		CheckedBy:      checkedBy,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.logs.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record access check: %w", err)
	}

	if err := s.events.RecordAccessCheck(ctx, entry); err != nil {
		log.WithError(err).WithField("member_id", member.ID).Warn("Failed to publish gate event")
	}

	message := messageMayNotEnter
	if verdict.Eligible {
		message = messageMayEnter
	}

	log.WithFields(log.Fields{
		"member_id": member.ID,
		"granted":   verdict.Eligible,
		"reason":    verdict.Reason,
	}).Info("Access check completed")

	return &domain.AccessResponse{
		IsEligible:     verdict.Eligible,
		StatusMessage:  message,
		StandingStatus: verdict.StandingStatus,
		DuesStatus:     verdict.DuesStatus,
		Member: &domain.MemberSummary{
			ID:             member.ID,
			MemberNumber:   member.MemberNumber,
			FirstName:      member.FirstName,
			LastName:       member.LastName,
			Category:       member.Category,
			PhotoURL:       member.PhotoURL,
			DuesExpiryDate: member.DuesExpiryDate,
		},
	}, nil
}

// ListLogs returns one page of the audit trail, newest entries first.
// Requesting a page past the end yields an empty page, never an error, and
// the page count is never below 1 so "page 1 of 1" is always displayable.
func (s *AccessService) ListLogs(ctx context.Context, filter domain.AccessLogFilter) (*domain.AccessLogPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultLogPageSize
	}
	if filter.PageSize > maxLogPageSize {
		filter.PageSize = maxLogPageSize
	}

	entries, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list access logs: %w", err)
	}

	pages := int(math.Ceil(float64(total) / float64(filter.PageSize)))
	if pages < 1 {
		pages = 1
	}

	if entries == nil {
		entries = []domain.AccessLogEntry{}
	}

	return &domain.AccessLogPage{
		Data:  entries,
		Total: total,
		Page:  filter.Page,
		Pages: pages,
	}, nil
}
