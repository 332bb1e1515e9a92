package service

import (
	"context"
	"fmt"

	"socio-service/internal/domain"
	"socio-service/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type MatchServiceInterface interface {
	CreateMatch(ctx context.Context, req domain.CreateMatchRequest) (*domain.Match, error)
	GetMatch(ctx context.Context, id string) (*domain.Match, error)
	ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error)
	UpdateMatch(ctx context.Context, id string, req domain.UpdateMatchRequest) (*domain.Match, error)
	DeleteMatch(ctx context.Context, id string) error
}

type MatchService struct {
	matchRepository  repository.MatchRepository
	memberRepository repository.MemberRepository
}

func NewMatchService(matchRepository repository.MatchRepository, memberRepository repository.MemberRepository) *MatchService {
	return &MatchService{
		matchRepository:  matchRepository,
		memberRepository: memberRepository,
	}
}

func (s *MatchService) CreateMatch(ctx context.Context, req domain.CreateMatchRequest) (*domain.Match, error) {
	if req.MemberID == "" {
		return nil, fmt.Errorf("member ID is required")
	}
	if req.Opponent == "" {
		return nil, domain.ErrInvalidOpponent
	}
	if req.Date == "" {
		return nil, fmt.Errorf("date is required")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid match date: %w", err)
	}

	status := req.Status
	if status == "" {
		status = domain.MatchScheduled
	}
	if err := domain.ValidateMatchStatus(status); err != nil {
		return nil, err
	}

	// A match entry must reference an existing member.
	member, err := s.memberRepository.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	match := &domain.Match{
		ID:           uuid.NewString(),
		MemberID:     member.ID,
		Date:         date,
		Opponent:     req.Opponent,
		Status:       status,
		MemberName:   member.FullName(),
		MemberNumber: member.MemberNumber,
	}

	if err := s.matchRepository.Create(ctx, match); err != nil {
		log.WithError(err).WithField("member_id", req.MemberID).Error("Failed to create match")
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	log.WithFields(log.Fields{
		"match_id":  match.ID,
		"member_id": match.MemberID,
	}).Info("Match successfully created")

	return match, nil
}

func (s *MatchService) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	if id == "" {
		return nil, fmt.Errorf("match ID is required")
	}

	return s.matchRepository.GetByID(ctx, id)
}

func (s *MatchService) ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	if filter.Status != "" {
		if err := domain.ValidateMatchStatus(filter.Status); err != nil {
			return nil, err
		}
	}

	matches, err := s.matchRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	if matches == nil {
		matches = []domain.Match{}
	}

	return matches, nil
}

func (s *MatchService) UpdateMatch(ctx context.Context, id string, req domain.UpdateMatchRequest) (*domain.Match, error) {
	if id == "" {
		return nil, fmt.Errorf("match ID is required")
	}

	fields := &domain.MatchUpdate{
		Opponent: req.Opponent,
	}

	if req.Date != nil {
		parsed, err := parseDate(*req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid match date: %w", err)
		}
		fields.Date = &parsed
	}

	if req.Status != nil {
		if err := domain.ValidateMatchStatus(*req.Status); err != nil {
			return nil, err
		}
		fields.Status = req.Status
	}

	if err := s.matchRepository.Update(ctx, id, fields); err != nil {
		log.WithError(err).WithField("match_id", id).Error("Failed to update match")
		return nil, err
	}

	return s.matchRepository.GetByID(ctx, id)
}

func (s *MatchService) DeleteMatch(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("match ID is required")
	}

	return s.matchRepository.Delete(ctx, id)
}
