package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
	"github.com/AhilyaKokare/visitor-pass-service/internal/dto"
	"github.com/AhilyaKokare/visitor-pass-service/internal/queue"
	"github.com/AhilyaKokare/visitor-pass-service/internal/repository"
)

type passServiceFixture struct {
	svc       PassService
	passRepo  *repository.MemoryPassRepository
	userRepo  *repository.MemoryUserRepository
	publisher *queue.MemoryPublisher
}

func newPassServiceFixture(t *testing.T) *passServiceFixture {
	t.Helper()

	passRepo := repository.NewMemoryPassRepository()
	userRepo := repository.NewMemoryUserRepository()
	tenantRepo := repository.NewMemoryTenantRepository()
	publisher := queue.NewMemoryPublisher()

	tenantRepo.Add(&domain.Tenant{ID: "tenant-1", Name: "Acme HQ", CreatedBy: "root", CreatedAt: time.Now()})
	tenantRepo.Add(&domain.Tenant{ID: "tenant-2", Name: "Globex", CreatedBy: "root", CreatedAt: time.Now()})

	userRepo.Add(&domain.User{ID: "employee-1", TenantID: "tenant-1", Name: "Emma Employee", Email: "emma@acme.test", Role: domain.RoleEmployee, IsActive: true, CreatedAt: time.Now()})
	userRepo.Add(&domain.User{ID: "approver-1", TenantID: "tenant-1", Name: "Aaron Approver", Email: "aaron@acme.test", Role: domain.RoleApprover, IsActive: true, CreatedAt: time.Now()})
	userRepo.Add(&domain.User{ID: "security-1", TenantID: "tenant-1", Name: "Sam Security", Email: "sam@acme.test", Role: domain.RoleSecurity, IsActive: true, CreatedAt: time.Now()})
	userRepo.Add(&domain.User{ID: "admin-1", TenantID: "tenant-1", Name: "Ada Admin", Email: "ada@acme.test", Role: domain.RoleTenantAdmin, IsActive: true, CreatedAt: time.Now()})
	userRepo.Add(&domain.User{ID: "outsider-1", TenantID: "tenant-2", Name: "Otto Outsider", Email: "otto@globex.test", Role: domain.RoleTenantAdmin, IsActive: true, CreatedAt: time.Now()})

	svc := NewPassService(passRepo, userRepo, tenantRepo, passRepo, publisher, PassServiceOpts{})
	return &passServiceFixture{
		svc:       svc,
		passRepo:  passRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

func createRequest() *dto.CreatePassRequest {
	return &dto.CreatePassRequest{
		VisitorName:   "Vera Visitor",
		VisitorEmail:  "vera@example.com",
		VisitorPhone:  "+1-555-0100",
		Purpose:       "Quarterly audit",
		VisitDateTime: time.Now().Add(24 * time.Hour),
	}
}

func (f *passServiceFixture) createPass(t *testing.T) *dto.PassResponse {
	t.Helper()
	pass, err := f.svc.Create(context.Background(), "tenant-1", "employee-1", createRequest())
	require.NoError(t, err)
	return pass
}

func (f *passServiceFixture) createApprovedPass(t *testing.T) *dto.PassResponse {
	t.Helper()
	pass := f.createPass(t)
	approved, err := f.svc.Approve(context.Background(), "tenant-1", pass.ID, "approver-1")
	require.NoError(t, err)
	return approved
}

func TestPassService_Create(t *testing.T) {
	f := newPassServiceFixture(t)

	pass := f.createPass(t)
	assert.Equal(t, domain.PassStatusPending, pass.Status)
	assert.Equal(t, "tenant-1", pass.TenantID)
	assert.Equal(t, "employee-1", pass.CreatedByID)
	assert.Len(t, pass.PassCode, domain.PassCodeLength)

	logs := f.passRepo.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditPassCreated, logs[0].Action)
	require.NotNil(t, logs[0].ActorID)
	assert.Equal(t, "employee-1", *logs[0].ActorID)

	// creation alone publishes nothing
	assert.Empty(t, f.publisher.Events())
}

func TestPassService_Create_Errors(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()

	t.Run("past visit time", func(t *testing.T) {
		req := createRequest()
		req.VisitDateTime = time.Now().Add(-time.Hour)
		_, err := f.svc.Create(ctx, "tenant-1", "employee-1", req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := f.svc.Create(ctx, "tenant-404", "employee-1", createRequest())
		assert.ErrorIs(t, err, ErrTenantNotFound)
	})

	t.Run("unknown creator", func(t *testing.T) {
		_, err := f.svc.Create(ctx, "tenant-1", "nobody", createRequest())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("creator from another tenant", func(t *testing.T) {
		_, err := f.svc.Create(ctx, "tenant-1", "outsider-1", createRequest())
		assert.ErrorIs(t, err, ErrTenantAccessDenied)
	})

	t.Run("approver cannot create", func(t *testing.T) {
		_, err := f.svc.Create(ctx, "tenant-1", "approver-1", createRequest())
		assert.ErrorIs(t, err, ErrForbiddenAction)
	})

	t.Run("tenant admin can create", func(t *testing.T) {
		_, err := f.svc.Create(ctx, "tenant-1", "admin-1", createRequest())
		assert.NoError(t, err)
	})
}

func TestPassService_Approve(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()
	pass := f.createPass(t)

	approved, err := f.svc.Approve(ctx, "tenant-1", pass.ID, "approver-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PassStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, "approver-1", *approved.ApprovedByID)

	events := f.publisher.EventsForTopic(dto.TopicPassApproved)
	require.Len(t, events, 1)
	evt := events[0].Event.(*dto.PassApprovedEvent)
	assert.Equal(t, pass.ID, evt.PassID)
	assert.Equal(t, "tenant-1", evt.TenantID)
	assert.Equal(t, "Vera Visitor", evt.VisitorName)
	assert.Equal(t, "vera@example.com", evt.VisitorEmail)
	assert.Equal(t, "emma@acme.test", evt.EmployeeEmail)
	assert.Equal(t, pass.PassCode, evt.PassCode)

	// approving again is rejected by the lifecycle
	_, err = f.svc.Approve(ctx, "tenant-1", pass.ID, "approver-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPassService_Approve_Authorization(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()
	pass := f.createPass(t)

	t.Run("employee cannot approve", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, "tenant-1", pass.ID, "employee-1")
		assert.ErrorIs(t, err, ErrForbiddenAction)
	})

	t.Run("pass from another tenant looks missing", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, "tenant-2", pass.ID, "outsider-1")
		assert.ErrorIs(t, err, ErrPassNotFound)
	})

	t.Run("unknown pass", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, "tenant-1", "no-such-pass", "approver-1")
		assert.ErrorIs(t, err, ErrPassNotFound)
	})

	assert.Empty(t, f.publisher.Events())
}

func TestPassService_Reject(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()
	pass := f.createPass(t)

	_, err := f.svc.Reject(ctx, "tenant-1", pass.ID, "approver-1", &dto.RejectPassRequest{Reason: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	rejected, err := f.svc.Reject(ctx, "tenant-1", pass.ID, "approver-1", &dto.RejectPassRequest{Reason: "host unavailable"})
	require.NoError(t, err)
	assert.Equal(t, domain.PassStatusRejected, rejected.Status)
	assert.Equal(t, "host unavailable", rejected.RejectionReason)

	events := f.publisher.EventsForTopic(dto.TopicPassRejected)
	require.Len(t, events, 1)
	evt := events[0].Event.(*dto.PassRejectedEvent)
	assert.Equal(t, pass.ID, evt.PassID)
	assert.Equal(t, "emma@acme.test", evt.EmployeeEmail)
	assert.Equal(t, "host unavailable", evt.RejectionReason)
}

func TestPassService_CheckInAndOut(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()
	pass := f.createApprovedPass(t)

	found, err := f.svc.FindByPassCode(ctx, "tenant-1", pass.PassCode)
	require.NoError(t, err)
	assert.Equal(t, pass.ID, found.ID)

	checkedIn, err := f.svc.CheckIn(ctx, "tenant-1", pass.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PassStatusCheckedIn, checkedIn.Status)

	checkedOut, err := f.svc.CheckOut(ctx, "tenant-1", pass.ID, "security-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PassStatusCheckedOut, checkedOut.Status)

	logs, err := f.passRepo.ListByPass(ctx, pass.ID)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	assert.Equal(t, domain.AuditPassCheckedIn, logs[2].Action)
	assert.Nil(t, logs[2].ActorID)
	assert.Equal(t, domain.AuditPassCheckedOut, logs[3].Action)
	require.NotNil(t, logs[3].ActorID)
	assert.Equal(t, "security-1", *logs[3].ActorID)
}

func TestPassService_CheckIn_Errors(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()

	t.Run("unknown pass", func(t *testing.T) {
		_, err := f.svc.CheckIn(ctx, "tenant-1", "no-such-pass")
		assert.ErrorIs(t, err, ErrPassNotFound)
	})

	t.Run("pending pass cannot check in", func(t *testing.T) {
		pass := f.createPass(t)
		_, err := f.svc.CheckIn(ctx, "tenant-1", pass.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("pass from another tenant looks missing", func(t *testing.T) {
		pass := f.createApprovedPass(t)
		_, err := f.svc.CheckIn(ctx, "tenant-2", pass.ID)
		assert.ErrorIs(t, err, ErrPassNotFound)
	})

	t.Run("employee cannot check out", func(t *testing.T) {
		pass := f.createApprovedPass(t)
		_, err := f.svc.CheckIn(ctx, "tenant-1", pass.ID)
		require.NoError(t, err)
		_, err = f.svc.CheckOut(ctx, "tenant-1", pass.ID, "employee-1")
		assert.ErrorIs(t, err, ErrForbiddenAction)
	})
}

func TestPassService_Expire(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()
	pass := f.createApprovedPass(t)

	// not overdue yet
	err := f.svc.Expire(ctx, pass.ID, pass.VisitDateTime.Add(-time.Minute))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, f.svc.Expire(ctx, pass.ID, pass.VisitDateTime.Add(time.Hour)))

	stored, err := f.svc.GetByID(ctx, "tenant-1", pass.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PassStatusExpired, stored.Status)

	events := f.publisher.EventsForTopic(dto.TopicPassExpired)
	require.Len(t, events, 1)
	evt := events[0].Event.(*dto.PassExpiredEvent)
	assert.Equal(t, pass.ID, evt.PassID)
	assert.Equal(t, "emma@acme.test", evt.EmployeeEmail)
	require.NotNil(t, evt.TenantAdminEmail)
	assert.Equal(t, "ada@acme.test", *evt.TenantAdminEmail)

	logs, err := f.passRepo.ListByPass(ctx, pass.ID)
	require.NoError(t, err)
	last := logs[len(logs)-1]
	assert.Equal(t, domain.AuditPassExpiredSystem, last.Action)
	assert.Nil(t, last.ActorID)
}

func TestPassService_Expire_NoTenantAdmin(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()

	// demote the only admin so the lookup finds nobody
	f.userRepo.Add(&domain.User{ID: "admin-1", TenantID: "tenant-1", Name: "Ada Admin", Email: "ada@acme.test", Role: domain.RoleTenantAdmin, IsActive: false, CreatedAt: time.Now()})

	pass := f.createApprovedPass(t)
	require.NoError(t, f.svc.Expire(ctx, pass.ID, pass.VisitDateTime.Add(time.Hour)))

	events := f.publisher.EventsForTopic(dto.TopicPassExpired)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Event.(*dto.PassExpiredEvent).TenantAdminEmail)
}

func TestPassService_PublishFailureDoesNotRollBack(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()
	pass := f.createPass(t)

	f.publisher.Fail = true
	approved, err := f.svc.Approve(ctx, "tenant-1", pass.ID, "approver-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PassStatusApproved, approved.Status)

	stored, err := f.svc.GetByID(ctx, "tenant-1", pass.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PassStatusApproved, stored.Status)
	assert.Empty(t, f.publisher.Events())
}

func TestPassService_ListAndHistory(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.createPass(t)
	}
	decided := f.createApprovedPass(t)

	list, err := f.svc.List(ctx, "tenant-1", &dto.ListPassesQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.Len(t, list.Passes, 2)

	approvedOnly, err := f.svc.List(ctx, "tenant-1", &dto.ListPassesQuery{Status: string(domain.PassStatusApproved)})
	require.NoError(t, err)
	assert.Equal(t, 1, approvedOnly.TotalCount)

	_, err = f.svc.List(ctx, "tenant-1", &dto.ListPassesQuery{Status: "BOGUS"})
	assert.ErrorIs(t, err, ErrValidation)

	mine, err := f.svc.ListMine(ctx, "tenant-1", "employee-1", &dto.ListPassesQuery{})
	require.NoError(t, err)
	assert.Equal(t, 4, mine.TotalCount)

	history, err := f.svc.History(ctx, "tenant-1", decided.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.AuditPassCreated, history[0].Action)
	assert.Equal(t, domain.AuditPassApproved, history[1].Action)

	// history does not reveal another tenant's pass
	_, err = f.svc.History(ctx, "tenant-2", decided.ID)
	assert.ErrorIs(t, err, ErrPassNotFound)
}

func TestPassService_TodayDashboard(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()

	// anchor the dashboard day at a fixed morning hour so relative visit
	// times stay inside or outside the window deterministically
	real := time.Now()
	now := time.Date(real.Year(), real.Month(), real.Day(), 8, 0, 0, 0, real.Location())

	// one approved for today, one checked in for today, one for tomorrow
	today := f.createApprovedPass(t)
	adjustVisitTime(t, f.passRepo, today.ID, now.Add(2*time.Hour))

	inside := f.createApprovedPass(t)
	adjustVisitTime(t, f.passRepo, inside.ID, now.Add(time.Hour))
	_, err := f.svc.CheckIn(ctx, "tenant-1", inside.ID)
	require.NoError(t, err)

	tomorrow := f.createApprovedPass(t)
	adjustVisitTime(t, f.passRepo, tomorrow.ID, now.Add(30*time.Hour))

	dashboard, err := f.svc.TodayDashboard(ctx, "tenant-1", now)
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.ExpectedCount)
	assert.Equal(t, 1, dashboard.CheckedInCount)
	assert.Len(t, dashboard.Passes, 2)
}

// adjustVisitTime rewrites a stored pass's visit time, bypassing the
// service so fixtures can place visits relative to now
func adjustVisitTime(t *testing.T, repo *repository.MemoryPassRepository, passID string, visitAt time.Time) {
	t.Helper()
	pass, err := repo.GetByID(context.Background(), passID)
	require.NoError(t, err)
	pass.VisitDateTime = visitAt
	require.NoError(t, repo.Update(context.Background(), pass, nil))
}

func TestPassService_ConcurrentApprove(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()
	pass := f.createPass(t)

	const writers = 2
	errs := make(chan error, writers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Approve(ctx, "tenant-1", pass.ID, "approver-1")
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, repository.ErrVersionConflict), errors.Is(err, domain.ErrInvalidTransition):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, conflicted)

	// the winner published exactly one event
	assert.Len(t, f.publisher.EventsForTopic(dto.TopicPassApproved), 1)
}

// collidingPassRepo fails Create with ErrDuplicatePassCode a fixed number of
// times before delegating, recording every code the service attempted.
type collidingPassRepo struct {
	*repository.MemoryPassRepository
	remaining int
	codes     []string
}

func (r *collidingPassRepo) Create(ctx context.Context, pass *domain.VisitorPass, audit *domain.AuditLog) error {
	r.codes = append(r.codes, pass.PassCode)
	if r.remaining > 0 {
		r.remaining--
		return repository.ErrDuplicatePassCode
	}
	return r.MemoryPassRepository.Create(ctx, pass, audit)
}

func newCollidingFixture(t *testing.T, collisions int) (PassService, *collidingPassRepo) {
	t.Helper()

	repo := &collidingPassRepo{MemoryPassRepository: repository.NewMemoryPassRepository(), remaining: collisions}
	userRepo := repository.NewMemoryUserRepository()
	tenantRepo := repository.NewMemoryTenantRepository()

	tenantRepo.Add(&domain.Tenant{ID: "tenant-1", Name: "Acme HQ", CreatedBy: "root", CreatedAt: time.Now()})
	userRepo.Add(&domain.User{ID: "employee-1", TenantID: "tenant-1", Name: "Emma Employee", Email: "emma@acme.test", Role: domain.RoleEmployee, IsActive: true, CreatedAt: time.Now()})

	svc := NewPassService(repo, userRepo, tenantRepo, repo, queue.NewMemoryPublisher(), PassServiceOpts{})
	return svc, repo
}

func TestPassService_CreateRetriesOnDuplicateCode(t *testing.T) {
	ctx := context.Background()

	t.Run("regenerates the code after a collision", func(t *testing.T) {
		svc, repo := newCollidingFixture(t, 1)

		pass, err := svc.Create(ctx, "tenant-1", "employee-1", createRequest())
		require.NoError(t, err)
		require.Len(t, repo.codes, 2)
		assert.NotEqual(t, repo.codes[0], repo.codes[1])
		assert.Equal(t, repo.codes[1], pass.PassCode)
	})

	t.Run("gives up after exhausting attempts", func(t *testing.T) {
		svc, repo := newCollidingFixture(t, passCodeCreateAttempts)

		_, err := svc.Create(ctx, "tenant-1", "employee-1", createRequest())
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrDuplicatePassCode)
		assert.Len(t, repo.codes, passCodeCreateAttempts)
	})
}

func TestPassService_GetInternal(t *testing.T) {
	f := newPassServiceFixture(t)
	ctx := context.Background()
	pass := f.createPass(t)

	got, err := f.svc.GetInternal(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, pass.ID, got.ID)

	_, err = f.svc.GetInternal(ctx, "missing")
	assert.ErrorIs(t, err, ErrPassNotFound)
}
