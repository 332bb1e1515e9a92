package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"socio-service/internal/domain"

	"github.com/stretchr/testify/suite"
)

type MemberServiceTestSuite struct {
	suite.Suite
	members *memberRepoFake
	service *MemberService
	now     time.Time
	ctx     context.Context
}

func (s *MemberServiceTestSuite) SetupTest() {
	s.members = newMemberRepoFake()
	s.service = NewMemberService(s.members)
	s.now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s.service.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func TestMemberServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MemberServiceTestSuite))
}

func (s *MemberServiceTestSuite) createReq() domain.CreateMemberRequest {
	return domain.CreateMemberRequest{
		FirstName: "Gabriel",
		LastName:  "Heinze",
		DNI:       "26123456",
		Email:     "gabriel.heinze@club.local",
	}
}

func (s *MemberServiceTestSuite) TestCreateMember_Defaults() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())

	s.Require().NoError(err)
	s.NotEmpty(member.ID)
	s.Equal("1000", member.MemberNumber)
	s.Equal(domain.CategoryFull, member.Category)
	s.Equal(domain.StandingActive, member.Standing)
	s.Equal(s.now.AddDate(0, 1, 0), member.DuesExpiryDate)
	s.Equal(s.now, member.JoinedAt)
}

func (s *MemberServiceTestSuite) TestCreateMember_SequentialNumbers() {
	first, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	second := s.createReq()
	second.DNI = "27123456"
	second.Email = "other@club.local"
	member, err := s.service.CreateMember(s.ctx, second)

	s.Require().NoError(err)
	s.Equal("1000", first.MemberNumber)
	s.Equal("1001", member.MemberNumber)
}

func (s *MemberServiceTestSuite) TestCreateMember_LegacyCategoryBecomesRole() {
	req := s.createReq()
	req.Category = "Player"

	member, err := s.service.CreateMember(s.ctx, req)

	s.Require().NoError(err)
	s.Equal(domain.CategoryFull, member.Category)
	s.Equal("Player", member.Role)
}

func (s *MemberServiceTestSuite) TestCreateMember_DuplicateDNI() {
	_, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	dup := s.createReq()
	dup.Email = "different@club.local"
	_, err = s.service.CreateMember(s.ctx, dup)

	s.ErrorIs(err, domain.ErrDNIExists)
}

func (s *MemberServiceTestSuite) TestCreateMember_DuplicateEmail() {
	_, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	dup := s.createReq()
	dup.DNI = "28999888"
	_, err = s.service.CreateMember(s.ctx, dup)

	s.ErrorIs(err, domain.ErrEmailExists)
}

func (s *MemberServiceTestSuite) TestCreateMember_InvalidInput() {
	req := s.createReq()
	req.Email = "not-an-email"
	_, err := s.service.CreateMember(s.ctx, req)
	s.ErrorIs(err, domain.ErrInvalidEmail)

	req = s.createReq()
	req.DNI = "12"
	_, err = s.service.CreateMember(s.ctx, req)
	s.ErrorIs(err, domain.ErrInvalidDNI)

	req = s.createReq()
	req.FirstName = ""
	_, err = s.service.CreateMember(s.ctx, req)
	s.Error(err)
}

func (s *MemberServiceTestSuite) TestUpdateMember_PartialUpdate() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	phone := "+54 341 5550000"
	updated, err := s.service.UpdateMember(s.ctx, member.ID, domain.UpdateMemberRequest{Phone: &phone})

	s.Require().NoError(err)
	s.Equal(phone, updated.Phone)
	s.Equal(member.FirstName, updated.FirstName)
	s.Equal(member.DNI, updated.DNI)
}

func (s *MemberServiceTestSuite) TestUpdateMember_RejectsTakenDNI() {
	first, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	second := s.createReq()
	second.DNI = "27123456"
	second.Email = "other@club.local"
	other, err := s.service.CreateMember(s.ctx, second)
	s.Require().NoError(err)

	_, err = s.service.UpdateMember(s.ctx, other.ID, domain.UpdateMemberRequest{DNI: &first.DNI})
	s.ErrorIs(err, domain.ErrDNIExists)
}

func (s *MemberServiceTestSuite) TestUpdateMember_NotFound() {
	name := "Nobody"
	_, err := s.service.UpdateMember(s.ctx, "missing", domain.UpdateMemberRequest{FirstName: &name})
	s.ErrorIs(err, domain.ErrMemberNotFound)
}

func (s *MemberServiceTestSuite) TestDeleteMember_SoftDelete() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	err = s.service.DeleteMember(s.ctx, member.ID, "admin")
	s.Require().NoError(err)

	// The row survives, marked terminated.
	got, err := s.service.GetMember(s.ctx, member.ID)
	s.Require().NoError(err)
	s.Equal(domain.StandingTerminated, got.Standing)
	s.Require().NotNil(got.TerminatedAt)
	s.Equal(s.now, *got.TerminatedAt)

	history, err := s.service.GetStatusHistory(s.ctx, member.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal("membership terminated", history[0].Reason)
	s.Equal("admin", history[0].ChangedBy)
}

func (s *MemberServiceTestSuite) TestSuspendAndReactivate() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	suspended, err := s.service.SuspendMember(s.ctx, member.ID, "unpaid fine", "admin")
	s.Require().NoError(err)
	s.Equal(domain.StandingSuspended, suspended.Standing)

	reactivated, err := s.service.ReactivateMember(s.ctx, member.ID, "fine settled", "admin")
	s.Require().NoError(err)
	s.Equal(domain.StandingActive, reactivated.Standing)

	history, err := s.service.GetStatusHistory(s.ctx, member.ID)
	s.Require().NoError(err)
	s.Len(history, 2)
}

func (s *MemberServiceTestSuite) TestPayDues_ExtendsFromCurrentExpiry() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)
	expiry := member.DuesExpiryDate // one month out

	paid, err := s.service.PayDues(s.ctx, member.ID, 3)

	s.Require().NoError(err)
	s.Equal(expiry.AddDate(0, 3, 0), paid.DuesExpiryDate)
}

func (s *MemberServiceTestSuite) TestPayDues_ExtendsFromTodayWhenLapsed() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	// Push expiry far into the past; a payment must not cover dead months.
	lapsed := s.now.AddDate(0, -6, 0)
	s.Require().NoError(s.members.Update(s.ctx, member.ID, &domain.MemberUpdate{DuesExpiryDate: &lapsed}))

	paid, err := s.service.PayDues(s.ctx, member.ID, 2)

	s.Require().NoError(err)
	s.Equal(s.now.AddDate(0, 2, 0), paid.DuesExpiryDate)
}

func (s *MemberServiceTestSuite) TestPayDues_ClearsDelinquency() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	delinquent := domain.StandingDelinquent
	s.Require().NoError(s.members.Update(s.ctx, member.ID, &domain.MemberUpdate{Standing: &delinquent}))

	paid, err := s.service.PayDues(s.ctx, member.ID, 1)

	s.Require().NoError(err)
	s.Equal(domain.StandingActive, paid.Standing)

	history, err := s.service.GetStatusHistory(s.ctx, member.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Contains(history[0].Reason, "payment of 1 installment")
	s.Equal("payments", history[0].ChangedBy)
}

func (s *MemberServiceTestSuite) TestPayDues_RejectsNonPositiveMonths() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	_, err = s.service.PayDues(s.ctx, member.ID, 0)
	s.ErrorIs(err, domain.ErrInvalidMonths)

	_, err = s.service.PayDues(s.ctx, member.ID, -2)
	s.ErrorIs(err, domain.ErrInvalidMonths)
}

func (s *MemberServiceTestSuite) TestChangeCategory() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	changed, err := s.service.ChangeCategory(s.ctx, member.ID, domain.CategoryLifetime)
	s.Require().NoError(err)
	s.Equal(domain.CategoryLifetime, changed.Category)

	_, err = s.service.ChangeCategory(s.ctx, member.ID, "Platinum")
	s.ErrorIs(err, domain.ErrInvalidCategory)
}

func (s *MemberServiceTestSuite) seedMany(count int) {
	for i := 0; i < count; i++ {
		req := s.createReq()
		req.DNI = "3000" + padIndex(i)
		req.Email = "member" + padIndex(i) + "@club.local"
		_, err := s.service.CreateMember(s.ctx, req)
		s.Require().NoError(err)
	}
}

func padIndex(i int) string {
	digits := "0123456789"
	return string([]byte{digits[(i/100)%10], digits[(i/10)%10], digits[i%10]})
}

func (s *MemberServiceTestSuite) TestListMembers_Pagination() {
	s.seedMany(25)

	page, err := s.service.ListMembers(s.ctx, domain.MemberFilter{Page: 2, PageSize: 10})

	s.Require().NoError(err)
	s.Len(page.Data, 10)
	s.Equal(25, page.Total)
	s.Equal(3, page.Pages)
}

func (s *MemberServiceTestSuite) TestListMembers_InvalidFilter() {
	_, err := s.service.ListMembers(s.ctx, domain.MemberFilter{Standing: "Frozen"})
	s.ErrorIs(err, domain.ErrInvalidStanding)

	_, err = s.service.ListMembers(s.ctx, domain.MemberFilter{Category: "Platinum"})
	s.ErrorIs(err, domain.ErrInvalidCategory)
}

func (s *MemberServiceTestSuite) TestListOverdue() {
	member, err := s.service.CreateMember(s.ctx, s.createReq())
	s.Require().NoError(err)

	lapsed := s.now.AddDate(0, -1, 0)
	s.Require().NoError(s.members.Update(s.ctx, member.ID, &domain.MemberUpdate{DuesExpiryDate: &lapsed}))

	current := s.createReq()
	current.DNI = "27123456"
	current.Email = "current@club.local"
	_, err = s.service.CreateMember(s.ctx, current)
	s.Require().NoError(err)

	overdue, err := s.service.ListOverdue(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(overdue, 1)
	s.Equal(member.ID, overdue[0].ID)
}

func (s *MemberServiceTestSuite) TestStats() {
	s.seedMany(3)

	stats, err := s.service.Stats(s.ctx)

	s.Require().NoError(err)
	s.Equal(3, stats.Total)
	s.Equal(3, stats.Active)
	s.Equal(0, stats.Terminated)
}

func (s *MemberServiceTestSuite) TestExportCSV() {
	s.seedMany(2)

	out, err := s.service.ExportCSV(s.ctx, "", "")

	s.Require().NoError(err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	s.Require().Len(lines, 3)
	s.Contains(lines[0], "Member Number")
	s.Contains(lines[1], "1000")
	s.Contains(lines[1], "Heinze")
}
