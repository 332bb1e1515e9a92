package repository

import (
	"context"
	"time"

	"socio-service/internal/domain"
)

// queryTimeout bounds every single storage round trip.
const queryTimeout = 5 * time.Second

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByDNI(ctx context.Context, dni string) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	NextMemberNumber(ctx context.Context) (string, error)
	Update(ctx context.Context, id string, fields *domain.MemberUpdate) error
	List(ctx context.Context, filter domain.MemberFilter) ([]domain.Member, int, error)
	ListForExport(ctx context.Context, standing, category string) ([]domain.Member, error)
	ListOverdue(ctx context.Context, today time.Time) ([]domain.Member, error)
	ListOldest(ctx context.Context, limit int) ([]domain.Member, error)
	Stats(ctx context.Context) (*domain.MemberStats, error)
	AppendStatusChange(ctx context.Context, change *domain.StatusChange) error
	ListStatusHistory(ctx context.Context, memberID string) ([]domain.StatusChange, error)
}

type AccessLogRepository interface {
	Insert(ctx context.Context, entry *domain.AccessLogEntry) error
	List(ctx context.Context, filter domain.AccessLogFilter) ([]domain.AccessLogEntry, int, error)
}

type MatchRepository interface {
	Create(ctx context.Context, match *domain.Match) error
	GetByID(ctx context.Context, id string) (*domain.Match, error)
	List(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error)
	Update(ctx context.Context, id string, fields *domain.MatchUpdate) error
	Delete(ctx context.Context, id string) error
}

type StaffRepository interface {
	Create(ctx context.Context, user *domain.StaffUser) error
	GetByID(ctx context.Context, id string) (*domain.StaffUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error)
	CountAdmins(ctx context.Context) (int, error)
}
