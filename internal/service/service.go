package service

import (
	"bytes"
	"context"
	"encoding/csv"
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
	defaultMemberPageSize = 20
	maxMemberPageSize     = 500
	seniorityRankingSize  = 10
)

type MemberServiceInterface interface {
	CreateMember(ctx context.Context, req domain.CreateMemberRequest) (*domain.Member, error)
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	GetStatusHistory(ctx context.Context, id string) ([]domain.StatusChange, error)
	UpdateMember(ctx context.Context, id string, req domain.UpdateMemberRequest) (*domain.Member, error)
	DeleteMember(ctx context.Context, id, actor string) error
	ListMembers(ctx context.Context, filter domain.MemberFilter) (*domain.MemberPage, error)
	SuspendMember(ctx context.Context, id, reason, actor string) (*domain.Member, error)
	ReactivateMember(ctx context.Context, id, reason, actor string) (*domain.Member, error)
	ChangeCategory(ctx context.Context, id, category string) (*domain.Member, error)
	PayDues(ctx context.Context, id string, months int) (*domain.Member, error)
	Stats(ctx context.Context) (*domain.MemberStats, error)
	ListOverdue(ctx context.Context) ([]domain.Member, error)
	SeniorityRanking(ctx context.Context) ([]domain.Member, error)
	ExportCSV(ctx context.Context, standing, category string) ([]byte, error)
}

type MemberService struct {
	memberRepository repository.MemberRepository
	now              func() time.Time
}

func NewMemberService(memberRepository repository.MemberRepository) *MemberService {
	return &MemberService{
		memberRepository: memberRepository,
		now:              time.Now,
	}
}

// parseDate accepts the club's date-only format and full RFC 3339.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (s *MemberService) CreateMember(ctx context.Context, req domain.CreateMemberRequest) (*domain.Member, error) {
	if req.FirstName == "" {
		return nil, fmt.Errorf("first name is required")
	}
	if req.LastName == "" {
		return nil, fmt.Errorf("last name is required")
	}
	if err := domain.ValidateDNI(req.DNI); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(req.Email); err != nil {
		return nil, err
	}

	category, role := domain.NormalizeCategoryRole(req.Category, req.Role)
	if category == "" {
		category = domain.CategoryFull
	}
	if err := domain.ValidateCategory(category); err != nil {
		return nil, err
	}

	standing := req.Standing
	if standing == "" {
		standing = domain.StandingActive
	}
	if err := domain.ValidateStanding(standing); err != nil {
		return nil, err
	}

	existing, err := s.memberRepository.GetByDNI(ctx, req.DNI)
	if err != nil && !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, fmt.Errorf("failed to check DNI uniqueness: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDNIExists
	}

	existingByEmail, err := s.memberRepository.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existingByEmail != nil {
		return nil, domain.ErrEmailExists
	}

	memberNumber, err := s.memberRepository.NextMemberNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign member number: %w", err)
	}

	now := s.now()

	// New members get one month of dues unless a date was supplied.
	duesExpiry := now.AddDate(0, 1, 0)
	if req.DuesExpiryDate != "" {
		duesExpiry, err = parseDate(req.DuesExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid dues expiry date: %w", err)
		}
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		parsed, err := parseDate(req.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("invalid birth date: %w", err)
		}
		birthDate = &parsed
	}

	member := &domain.Member{
		ID:             uuid.NewString(),
		MemberNumber:   memberNumber,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DNI:            req.DNI,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		BirthDate:      birthDate,
		Category:       category,
		Role:           role,
		Standing:       standing,
		JoinedAt:       now,
		DuesExpiryDate: duesExpiry,
		SeasonTicket:   req.SeasonTicket,
		PhotoURL:       req.PhotoURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.memberRepository.Create(ctx, member); err != nil {
		log.WithError(err).WithField("dni", req.DNI).Error("Failed to create member")
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	log.WithFields(log.Fields{
		"member_id":     member.ID,
		"member_number": member.MemberNumber,
	}).Info("Member successfully created")

	return member, nil
}

func (s *MemberService) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	if id == "" {
		return nil, fmt.Errorf("member ID is required")
	}

	return s.memberRepository.GetByID(ctx, id)
}

func (s *MemberService) GetStatusHistory(ctx context.Context, id string) ([]domain.StatusChange, error) {
	if id == "" {
		return nil, fmt.Errorf("member ID is required")
	}

	if _, err := s.memberRepository.GetByID(ctx, id); err != nil {
		return nil, err
	}

	return s.memberRepository.ListStatusHistory(ctx, id)
}

func (s *MemberService) UpdateMember(ctx context.Context, id string, req domain.UpdateMemberRequest) (*domain.Member, error) {
	if id == "" {
		return nil, fmt.Errorf("member ID is required")
	}

	member, err := s.memberRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := &domain.MemberUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Address:      req.Address,
		SeasonTicket: req.SeasonTicket,
		PhotoURL:     req.PhotoURL,
	}

	if req.DNI != nil {
		if err := domain.ValidateDNI(*req.DNI); err != nil {
			return nil, err
		}
		if *req.DNI != member.DNI {
			existing, err := s.memberRepository.GetByDNI(ctx, *req.DNI)
			if err != nil && !errors.Is(err, domain.ErrMemberNotFound) {
				return nil, fmt.Errorf("failed to check DNI uniqueness: %w", err)
			}
			if existing != nil {
				return nil, domain.ErrDNIExists
			}
		}
		fields.DNI = req.DNI
	}

	if req.Email != nil {
		if err := domain.ValidateEmail(*req.Email); err != nil {
			return nil, err
		}
		if *req.Email != member.Email {
			existing, err := s.memberRepository.GetByEmail(ctx, *req.Email)
			if err != nil && !errors.Is(err, domain.ErrMemberNotFound) {
				return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
			}
			if existing != nil {
				return nil, domain.ErrEmailExists
			}
		}
		fields.Email = req.Email
	}

	if req.Category != nil {
		category, role := domain.NormalizeCategoryRole(*req.Category, "")
		if err := domain.ValidateCategory(category); err != nil {
			return nil, err
		}
		fields.Category = &category
		if role != "" && req.Role == nil {
			fields.Role = &role
		}
	}
	if req.Role != nil {
		fields.Role = req.Role
	}

	if req.Standing != nil {
		if err := domain.ValidateStanding(*req.Standing); err != nil {
			return nil, err
		}
		fields.Standing = req.Standing
	}

	if req.DuesExpiryDate != nil {
		parsed, err := parseDate(*req.DuesExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid dues expiry date: %w", err)
		}
		fields.DuesExpiryDate = &parsed
	}

	if err := s.memberRepository.Update(ctx, id, fields); err != nil {
		log.WithError(err).WithField("member_id", id).Error("Failed to update member")
		return nil, err
	}

	log.WithField("member_id", id).Info("Member successfully updated")
	return s.memberRepository.GetByID(ctx, id)
}

// DeleteMember is a soft delete: the member is marked Terminated and keeps
// its row so the audit trail stays resolvable.
func (s *MemberService) DeleteMember(ctx context.Context, id, actor string) error {
	if id == "" {
		return fmt.Errorf("member ID is required")
	}

	if _, err := s.memberRepository.GetByID(ctx, id); err != nil {
		return err
	}

	now := s.now()
	standing := domain.StandingTerminated
	fields := &domain.MemberUpdate{
		Standing:     &standing,
		TerminatedAt: &now,
	}

	if err := s.memberRepository.Update(ctx, id, fields); err != nil {
		log.WithError(err).WithField("member_id", id).Error("Failed to terminate member")
		return err
	}

	s.appendHistory(ctx, id, domain.StandingTerminated, "membership terminated", actor)

	log.WithField("member_id", id).Info("Member successfully terminated")
	return nil
}

func (s *MemberService) ListMembers(ctx context.Context, filter domain.MemberFilter) (*domain.MemberPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultMemberPageSize
	}
	if filter.PageSize > maxMemberPageSize {
		filter.PageSize = maxMemberPageSize
	}
	if filter.Standing != "" {
		if err := domain.ValidateStanding(filter.Standing); err != nil {
			return nil, err
		}
	}
	if filter.Category != "" {
		if err := domain.ValidateCategory(filter.Category); err != nil {
			return nil, err
		}
	}

	members, total, err := s.memberRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	pages := int(math.Ceil(float64(total) / float64(filter.PageSize)))
	if pages < 1 {
		pages = 1
	}

	if members == nil {
		members = []domain.Member{}
	}

	return &domain.MemberPage{
		Data:  members,
		Total: total,
		Page:  filter.Page,
		Pages: pages,
	}, nil
}

func (s *MemberService) SuspendMember(ctx context.Context, id, reason, actor string) (*domain.Member, error) {
	return s.changeStanding(ctx, id, domain.StandingSuspended, reason, actor)
}

func (s *MemberService) ReactivateMember(ctx context.Context, id, reason, actor string) (*domain.Member, error) {
	return s.changeStanding(ctx, id, domain.StandingActive, reason, actor)
}

func (s *MemberService) changeStanding(ctx context.Context, id, standing, reason, actor string) (*domain.Member, error) {
	if id == "" {
		return nil, fmt.Errorf("member ID is required")
	}

	member, err := s.memberRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := &domain.MemberUpdate{Standing: &standing}
	if err := s.memberRepository.Update(ctx, id, fields); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"member_id": id,
			"standing":  standing,
		}).Error("Failed to change member standing")
		return nil, err
	}

	s.appendHistory(ctx, id, standing, reason, actor)

	log.WithFields(log.Fields{
		"member_id": id,
		"standing":  standing,
	}).Info("Member standing successfully changed")

	member.Standing = standing
	return member, nil
}

func (s *MemberService) ChangeCategory(ctx context.Context, id, category string) (*domain.Member, error) {
	if id == "" {
		return nil, fmt.Errorf("member ID is required")
	}
	if err := domain.ValidateCategory(category); err != nil {
		return nil, err
	}

	member, err := s.memberRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := &domain.MemberUpdate{Category: &category}
	if err := s.memberRepository.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	member.Category = category
	return member, nil
}

// PayDues extends the dues expiry by the given number of months. The
// extension base is whichever is later, the current expiry or today, so a
// payment never covers months already in the past. Paying also clears a
// Delinquent standing back to Active.
func (s *MemberService) PayDues(ctx context.Context, id string, months int) (*domain.Member, error) {
	if id == "" {
		return nil, fmt.Errorf("member ID is required")
	}
	if months <= 0 {
		return nil, domain.ErrInvalidMonths
	}

	member, err := s.memberRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	today := s.now()
	base := member.DuesExpiryDate
	if base.Before(today) {
		base = today
	}
	newExpiry := base.AddDate(0, months, 0)

	fields := &domain.MemberUpdate{DuesExpiryDate: &newExpiry}

	standing := member.Standing
	if member.Standing == domain.StandingDelinquent {
		standing = domain.StandingActive
		fields.Standing = &standing
	}

	if err := s.memberRepository.Update(ctx, id, fields); err != nil {
		log.WithError(err).WithField("member_id", id).Error("Failed to apply dues payment")
		return nil, err
	}

	s.appendHistory(ctx, id, standing, fmt.Sprintf("payment of %d installment(s)", months), "payments")

	log.WithFields(log.Fields{
		"member_id":  id,
		"months":     months,
		"new_expiry": newExpiry.Format("2006-01-02"),
	}).Info("Dues payment successfully applied")

	member.Standing = standing
	member.DuesExpiryDate = newExpiry
	return member, nil
}

func (s *MemberService) Stats(ctx context.Context) (*domain.MemberStats, error) {
	stats, err := s.memberRepository.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member stats: %w", err)
	}
	return stats, nil
}

func (s *MemberService) ListOverdue(ctx context.Context) ([]domain.Member, error) {
	members, err := s.memberRepository.ListOverdue(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue members: %w", err)
	}
	return members, nil
}

func (s *MemberService) SeniorityRanking(ctx context.Context) ([]domain.Member, error) {
	members, err := s.memberRepository.ListOldest(ctx, seniorityRankingSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seniority ranking: %w", err)
	}
	return members, nil
}

func (s *MemberService) ExportCSV(ctx context.Context, standing, category string) ([]byte, error) {
	members, err := s.memberRepository.ListForExport(ctx, standing, category)
	if err != nil {
		return nil, fmt.Errorf("failed to export members: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Member Number", "First Name", "Last Name", "DNI", "Email",
		"Category", "Standing", "Joined", "Dues Expiry",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, m := range members {
		record := []string{
			m.MemberNumber,
			m.FirstName,
			m.LastName,
			m.DNI,
			m.Email,
			m.Category,
			m.Standing,
			m.JoinedAt.Format("2006-01-02"),
			m.DuesExpiryDate.Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	log.WithField("count", len(members)).Info("Members exported to CSV")
	return buf.Bytes(), nil
}

// appendHistory records a standing-history entry. History is supporting
// detail, so a write failure is logged and does not fail the operation.
func (s *MemberService) appendHistory(ctx context.Context, memberID, standing, reason, actor string) {
	change := &domain.StatusChange{
		MemberID:  memberID,
		Standing:  standing,
		Reason:    reason,
		ChangedBy: actor,
		ChangedAt: s.now(),
	}
	if err := s.memberRepository.AppendStatusChange(ctx, change); err != nil {
		log.WithError(err).WithField("member_id", memberID).Warn("Failed to append status history entry")
	}
}
