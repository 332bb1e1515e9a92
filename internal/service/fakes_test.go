package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"socio-service/internal/domain"
)

var errStorageDown = errors.New("storage unavailable")

// memberRepoFake is an in-memory MemberRepository for service tests.
type memberRepoFake struct {
	members map[string]*domain.Member
	history []domain.StatusChange
	failAll bool
}

func newMemberRepoFake() *memberRepoFake {
	return &memberRepoFake{members: make(map[string]*domain.Member)}
}

func (f *memberRepoFake) put(m *domain.Member) {
	copied := *m
	f.members[m.ID] = &copied
}

func (f *memberRepoFake) Create(ctx context.Context, member *domain.Member) error {
	if f.failAll {
		return errStorageDown
	}
	f.put(member)
	return nil
}

func (f *memberRepoFake) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	if f.failAll {
		return nil, errStorageDown
	}
	member, ok := f.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (f *memberRepoFake) GetByDNI(ctx context.Context, dni string) (*domain.Member, error) {
	if f.failAll {
		return nil, errStorageDown
	}
	for _, m := range f.members {
		if m.DNI == dni {
			copied := *m
			return &copied, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (f *memberRepoFake) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	if f.failAll {
		return nil, errStorageDown
	}
	for _, m := range f.members {
		if m.Email == email {
			copied := *m
			return &copied, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (f *memberRepoFake) NextMemberNumber(ctx context.Context) (string, error) {
	if f.failAll {
		return "", errStorageDown
	}
	max := 999
	for _, m := range f.members {
		var n int
		fmt.Sscanf(m.MemberNumber, "%d", &n)
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%d", max+1), nil
}

func (f *memberRepoFake) Update(ctx context.Context, id string, fields *domain.MemberUpdate) error {
	if f.failAll {
		return errStorageDown
	}
	member, ok := f.members[id]
	if !ok {
		return domain.ErrMemberNotFound
	}
	if fields.FirstName != nil {
		member.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		member.LastName = *fields.LastName
	}
	if fields.DNI != nil {
		member.DNI = *fields.DNI
	}
	if fields.Email != nil {
		member.Email = *fields.Email
	}
	if fields.Phone != nil {
		member.Phone = *fields.Phone
	}
	if fields.Address != nil {
		member.Address = *fields.Address
	}
	if fields.Category != nil {
		member.Category = *fields.Category
	}
	if fields.Role != nil {
		member.Role = *fields.Role
	}
	if fields.Standing != nil {
		member.Standing = *fields.Standing
	}
	if fields.TerminatedAt != nil {
		t := *fields.TerminatedAt
		member.TerminatedAt = &t
	}
	if fields.DuesExpiryDate != nil {
		member.DuesExpiryDate = *fields.DuesExpiryDate
	}
	if fields.SeasonTicket != nil {
		member.SeasonTicket = *fields.SeasonTicket
	}
	if fields.PhotoURL != nil {
		member.PhotoURL = *fields.PhotoURL
	}
	member.UpdatedAt = time.Now()
	return nil
}

func (f *memberRepoFake) List(ctx context.Context, filter domain.MemberFilter) ([]domain.Member, int, error) {
	if f.failAll {
		return nil, 0, errStorageDown
	}
	var all []domain.Member
	for _, m := range f.members {
		if filter.Standing != "" && m.Standing != filter.Standing {
			continue
		}
		if filter.Category != "" && m.Category != filter.Category {
			continue
		}
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			if !strings.Contains(strings.ToLower(m.FirstName), q) &&
				!strings.Contains(strings.ToLower(m.LastName), q) &&
				!strings.Contains(m.DNI, filter.Query) &&
				!strings.Contains(m.MemberNumber, filter.Query) {
				continue
			}
		}
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].MemberNumber < all[j].MemberNumber
	})
	total := len(all)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *memberRepoFake) ListForExport(ctx context.Context, standing, category string) ([]domain.Member, error) {
	members, _, err := f.List(ctx, domain.MemberFilter{
		Standing: standing,
		Category: category,
		Page:     1,
		PageSize: 100000,
	})
	return members, err
}

func (f *memberRepoFake) ListOverdue(ctx context.Context, today time.Time) ([]domain.Member, error) {
	if f.failAll {
		return nil, errStorageDown
	}
	var overdue []domain.Member
	for _, m := range f.members {
		if m.Standing != domain.StandingTerminated && m.DuesExpiryDate.Before(today) {
			overdue = append(overdue, *m)
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].DuesExpiryDate.Before(overdue[j].DuesExpiryDate)
	})
	return overdue, nil
}

func (f *memberRepoFake) ListOldest(ctx context.Context, limit int) ([]domain.Member, error) {
	if f.failAll {
		return nil, errStorageDown
	}
	var all []domain.Member
	for _, m := range f.members {
		if m.Standing != domain.StandingTerminated {
			all = append(all, *m)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].JoinedAt.Before(all[j].JoinedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *memberRepoFake) Stats(ctx context.Context) (*domain.MemberStats, error) {
	if f.failAll {
		return nil, errStorageDown
	}
	stats := &domain.MemberStats{}
	for _, m := range f.members {
		stats.Total++
		switch m.Standing {
		case domain.StandingActive:
			stats.Active++
		case domain.StandingDelinquent:
			stats.Delinquent++
		case domain.StandingTerminated:
			stats.Terminated++
		}
		if m.Category == domain.CategoryLifetime {
			stats.Lifetime++
		}
	}
	return stats, nil
}

func (f *memberRepoFake) AppendStatusChange(ctx context.Context, change *domain.StatusChange) error {
	if f.failAll {
		return errStorageDown
	}
	f.history = append(f.history, *change)
	return nil
}

func (f *memberRepoFake) ListStatusHistory(ctx context.Context, memberID string) ([]domain.StatusChange, error) {
	if f.failAll {
		return nil, errStorageDown
	}
	var history []domain.StatusChange
	for _, change := range f.history {
		if change.MemberID == memberID {
			history = append(history, change)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].ChangedAt.After(history[j].ChangedAt)
	})
	return history, nil
}

// accessLogRepoFake is an in-memory AccessLogRepository. It resolves member
// display fields against a memberRepoFake the way the Postgres store joins
// against the members table.
type accessLogRepoFake struct {
	entries    []domain.AccessLogEntry
	members    *memberRepoFake
	failInsert bool
	failList   bool
}

func newAccessLogRepoFake(members *memberRepoFake) *accessLogRepoFake {
	return &accessLogRepoFake{members: members}
}

func (f *accessLogRepoFake) Insert(ctx context.Context, entry *domain.AccessLogEntry) error {
	if f.failInsert {
		return errStorageDown
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *accessLogRepoFake) List(ctx context.Context, filter domain.AccessLogFilter) ([]domain.AccessLogEntry, int, error) {
	if f.failList {
		return nil, 0, errStorageDown
	}
	var matched []domain.AccessLogEntry
	for _, entry := range f.entries {
		if filter.MemberID != "" && entry.MemberID != filter.MemberID {
			continue
		}
		if filter.From != nil && entry.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.CreatedAt.After(*filter.To) {
			continue
		}
		resolved := entry
		if member, ok := f.members.members[entry.MemberID]; ok {
			resolved.MemberName = member.FullName()
			resolved.MemberNumber = member.MemberNumber
		} else {
			resolved.MemberName = "Unknown"
		}
		matched = append(matched, resolved)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}
