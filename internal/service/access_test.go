package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"socio-service/internal/domain"

	"github.com/stretchr/testify/suite"
)

type AccessServiceTestSuite struct {
	suite.Suite
	members *memberRepoFake
	logs    *accessLogRepoFake
	service *AccessService
	now     time.Time
	ctx     context.Context
}

func (s *AccessServiceTestSuite) SetupTest() {
	s.members = newMemberRepoFake()
	s.logs = newAccessLogRepoFake(s.members)
	s.service = NewAccessService(s.members, s.logs, nil)
	s.now = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
	s.service.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func TestAccessServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccessServiceTestSuite))
}

func (s *AccessServiceTestSuite) seedMember(id, standing string, duesExpiry time.Time) *domain.Member {
	member := &domain.Member{
		ID:             id,
		MemberNumber:   "1000",
		FirstName:      "Marco",
		LastName:       "Ruben",
		DNI:            "30111222",
		Email:          "marco.ruben@club.local",
		Category:       domain.CategoryFull,
		Standing:       standing,
		JoinedAt:       s.now.AddDate(-5, 0, 0),
		DuesExpiryDate: duesExpiry,
		CreatedAt:      s.now,
		UpdatedAt:      s.now,
	}
	s.members.put(member)
	return member
}

func (s *AccessServiceTestSuite) TestCheckAccess_Eligible() {
	s.seedMember("m-1", domain.StandingActive, s.now.AddDate(0, 1, 0))

	resp, err := s.service.CheckAccess(s.ctx, "m-1", "gate-1")

	s.Require().NoError(err)
	s.True(resp.IsEligible)
	s.Equal("MAY ENTER THE STADIUM", resp.StatusMessage)
	s.Equal(domain.StandingActive, resp.StandingStatus)
	s.Equal(domain.DuesCurrent, resp.DuesStatus)
	s.Require().NotNil(resp.Member)
	s.Equal("1000", resp.Member.MemberNumber)
}

func (s *AccessServiceTestSuite) TestCheckAccess_SuspendedDenied() {
	s.seedMember("m-1", domain.StandingSuspended, s.now.AddDate(0, 1, 0))

	resp, err := s.service.CheckAccess(s.ctx, "m-1", "gate-1")

	s.Require().NoError(err)
	s.False(resp.IsEligible)
	s.Equal("MAY NOT ENTER", resp.StatusMessage)
	s.Equal(domain.StandingSuspended, resp.StandingStatus)
	s.Equal(domain.DuesCurrent, resp.DuesStatus)
}

func (s *AccessServiceTestSuite) TestCheckAccess_OverdueDenied() {
	s.seedMember("m-1", domain.StandingActive, s.now.AddDate(0, 0, -3))

	resp, err := s.service.CheckAccess(s.ctx, "m-1", "gate-1")

	s.Require().NoError(err)
	s.False(resp.IsEligible)
	s.Equal(domain.StandingActive, resp.StandingStatus)
	s.Equal(domain.DuesOverdue, resp.DuesStatus)
}

func (s *AccessServiceTestSuite) TestCheckAccess_UnknownMember() {
	resp, err := s.service.CheckAccess(s.ctx, "no-such-member", "gate-1")

	s.Require().NoError(err)
	s.False(resp.IsEligible)
	s.Equal("MAY NOT ENTER", resp.StatusMessage)
	s.Equal(domain.StatusNotApplicable, resp.StandingStatus)
	s.Equal(domain.StatusNotApplicable, resp.DuesStatus)
	s.Nil(resp.Member)

	// No audit entry for a lookup that found nobody.
	s.Empty(s.logs.entries)
}

func (s *AccessServiceTestSuite) TestCheckAccess_WritesExactlyOneAuditEntry() {
	s.seedMember("m-1", domain.StandingActive, s.now.AddDate(0, 1, 0))

	_, err := s.service.CheckAccess(s.ctx, "m-1", "operator-7")

	s.Require().NoError(err)
	s.Require().Len(s.logs.entries, 1)

	entry := s.logs.entries[0]
	s.Equal("m-1", entry.MemberID)
	s.True(entry.Granted)
	s.Equal("access granted", entry.Reason)
	s.Equal(domain.StandingActive, entry.StandingStatus)
	s.Equal(domain.DuesCurrent, entry.DuesStatus)
	s.Equal("operator-7", entry.CheckedBy)
	s.Equal(s.now.UTC(), entry.CreatedAt)
	s.NotEmpty(entry.ID)
}

func (s *AccessServiceTestSuite) TestCheckAccess_DeniedEntryRecordsBothStatuses() {
	s.seedMember("m-1", domain.StandingDelinquent, s.now.AddDate(0, -2, 0))

	resp, err := s.service.CheckAccess(s.ctx, "m-1", "")

	s.Require().NoError(err)
	s.False(resp.IsEligible)
	s.Require().Len(s.logs.entries, 1)

	entry := s.logs.entries[0]
	s.False(entry.Granted)
	s.Equal(domain.StandingDelinquent, entry.StandingStatus)
	s.Equal(domain.DuesOverdue, entry.DuesStatus)
	s.Contains(entry.Reason, domain.StandingDelinquent)
	s.Contains(entry.Reason, domain.DuesOverdue)
}

func (s *AccessServiceTestSuite) TestCheckAccess_AuditWriteFailureFailsTheCheck() {
	s.seedMember("m-1", domain.StandingActive, s.now.AddDate(0, 1, 0))
	s.logs.failInsert = true

	resp, err := s.service.CheckAccess(s.ctx, "m-1", "gate-1")

	s.Require().Error(err)
	s.Nil(resp)
	s.ErrorIs(err, errStorageDown)
}

func (s *AccessServiceTestSuite) TestCheckAccess_SnapshotSurvivesMemberChanges() {
	member := s.seedMember("m-1", domain.StandingActive, s.now.AddDate(0, 1, 0))

	_, err := s.service.CheckAccess(s.ctx, "m-1", "gate-1")
	s.Require().NoError(err)

	// Suspend the member after the check; the recorded entry keeps the
	// statuses as they were at check time.
	member.Standing = domain.StandingSuspended
	s.members.put(member)

	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{})
	s.Require().NoError(err)
	s.Require().Len(page.Data, 1)
	s.Equal(domain.StandingActive, page.Data[0].StandingStatus)
	s.True(page.Data[0].Granted)
}

func (s *AccessServiceTestSuite) TestCheckAccess_EmptyMemberID() {
	_, err := s.service.CheckAccess(s.ctx, "", "gate-1")
	s.Error(err)
}

func (s *AccessServiceTestSuite) seedEntries(count int, memberID string) {
	for i := 0; i < count; i++ {
		s.logs.entries = append(s.logs.entries, domain.AccessLogEntry{
			ID:             fmt.Sprintf("%s-entry-%d", memberID, i),
			MemberID:       memberID,
			Granted:        i%2 == 0,
			StandingStatus: domain.StandingActive,
			DuesStatus:     domain.DuesCurrent,
			CreatedAt:      s.now.Add(time.Duration(i) * time.Minute),
		})
	}
}

func (s *AccessServiceTestSuite) TestListLogs_NewestFirst() {
	s.seedMember("m-1", domain.StandingActive, s.now.AddDate(0, 1, 0))
	s.seedEntries(3, "m-1")

	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{})

	s.Require().NoError(err)
	s.Require().Len(page.Data, 3)
	s.True(page.Data[0].CreatedAt.After(page.Data[1].CreatedAt))
	s.True(page.Data[1].CreatedAt.After(page.Data[2].CreatedAt))
	s.Equal(3, page.Total)
	s.Equal(1, page.Pages)
}

func (s *AccessServiceTestSuite) TestListLogs_Pagination() {
	s.seedMember("m-1", domain.StandingActive, s.now.AddDate(0, 1, 0))
	s.seedEntries(45, "m-1")

	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{Page: 2, PageSize: 20})

	s.Require().NoError(err)
	s.Len(page.Data, 20)
	s.Equal(45, page.Total)
	s.Equal(2, page.Page)
	s.Equal(3, page.Pages)
}

func (s *AccessServiceTestSuite) TestListLogs_PageBeyondRangeIsEmpty() {
	s.seedMember("m-1", domain.StandingActive, s.now.AddDate(0, 1, 0))
	s.seedEntries(5, "m-1")

	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{Page: 9, PageSize: 20})

	s.Require().NoError(err)
	s.Empty(page.Data)
	s.NotNil(page.Data)
	s.Equal(5, page.Total)
	s.Equal(9, page.Page)
	s.Equal(1, page.Pages)
}

func (s *AccessServiceTestSuite) TestListLogs_EmptyLog() {
	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{})

	s.Require().NoError(err)
	s.NotNil(page.Data)
	s.Empty(page.Data)
	s.Equal(0, page.Total)
	s.Equal(1, page.Pages)
}

func (s *AccessServiceTestSuite) TestListLogs_ClampsPageSize() {
	s.seedEntries(150, "m-1")

	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{Page: 1, PageSize: 5000})

	s.Require().NoError(err)
	s.Len(page.Data, 100)
	s.Equal(2, page.Pages)
}

func (s *AccessServiceTestSuite) TestListLogs_DefaultsPageAndSize() {
	s.seedEntries(30, "m-1")

	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{Page: 0, PageSize: 0})

	s.Require().NoError(err)
	s.Len(page.Data, 20)
	s.Equal(1, page.Page)
	s.Equal(2, page.Pages)
}

func (s *AccessServiceTestSuite) TestListLogs_FilterByMember() {
	s.seedEntries(4, "m-1")
	s.seedEntries(2, "m-2")

	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{MemberID: "m-2"})

	s.Require().NoError(err)
	s.Len(page.Data, 2)
	s.Equal(2, page.Total)
	for _, entry := range page.Data {
		s.Equal("m-2", entry.MemberID)
	}
}

func (s *AccessServiceTestSuite) TestListLogs_FilterByDateRange() {
	s.seedEntries(10, "m-1")

	from := s.now.Add(3 * time.Minute)
	to := s.now.Add(6 * time.Minute)
	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{From: &from, To: &to})

	s.Require().NoError(err)
	s.Len(page.Data, 4)
	for _, entry := range page.Data {
		s.False(entry.CreatedAt.Before(from))
		s.False(entry.CreatedAt.After(to))
	}
}

func (s *AccessServiceTestSuite) TestListLogs_ResolvesMemberName() {
	s.seedMember("m-1", domain.StandingActive, s.now.AddDate(0, 1, 0))
	s.seedEntries(1, "m-1")
	s.seedEntries(1, "m-gone")

	page, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{})

	s.Require().NoError(err)
	s.Require().Len(page.Data, 2)

	names := map[string]string{}
	for _, entry := range page.Data {
		names[entry.MemberID] = entry.MemberName
	}
	s.Equal("Marco Ruben", names["m-1"])
	s.Equal("Unknown", names["m-gone"])
}

func (s *AccessServiceTestSuite) TestListLogs_StorageFailure() {
	s.logs.failList = true

	_, err := s.service.ListLogs(s.ctx, domain.AccessLogFilter{})

	s.Require().Error(err)
	s.ErrorIs(err, errStorageDown)
}
