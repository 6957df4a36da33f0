package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
	"github.com/AhilyaKokare/visitor-pass-service/internal/dto"
	"github.com/AhilyaKokare/visitor-pass-service/internal/queue"
	"github.com/AhilyaKokare/visitor-pass-service/internal/repository"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/logger"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/telemetry"
)

// PassService errors
var (
	ErrPassNotFound    = errors.New("pass not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrValidation      = errors.New("validation failed")
	ErrForbiddenAction = errors.New("user role cannot perform this action")
)

// passCodeCreateAttempts bounds pass code regeneration on collision
const passCodeCreateAttempts = 3

// PassService defines the visitor pass workflow operations. Every
// tenant-scoped method re-checks that the loaded pass belongs to the
// requested tenant, so a transport-level guard bypass still cannot cross
// tenants.
type PassService interface {
	// Create creates a PENDING pass on behalf of the creating user
	Create(ctx context.Context, tenantID, creatorID string, req *dto.CreatePassRequest) (*dto.PassResponse, error)
	// GetByID retrieves one pass within a tenant
	GetByID(ctx context.Context, tenantID, passID string) (*dto.PassResponse, error)
	// GetInternal retrieves one pass by ID without tenant scoping, for
	// trusted service-to-service callers
	GetInternal(ctx context.Context, passID string) (*dto.PassResponse, error)
	// List retrieves a tenant's passes with pagination
	List(ctx context.Context, tenantID string, query *dto.ListPassesQuery) (*dto.ListPassesResponse, error)
	// ListMine retrieves passes created by the calling user
	ListMine(ctx context.Context, tenantID, creatorID string, query *dto.ListPassesQuery) (*dto.ListPassesResponse, error)
	// History retrieves a pass's audit trail, oldest-first
	History(ctx context.Context, tenantID, passID string) ([]*dto.AuditLogResponse, error)
	// Approve moves a PENDING pass to APPROVED and notifies downstream
	Approve(ctx context.Context, tenantID, passID, approverID string) (*dto.PassResponse, error)
	// Reject moves a PENDING pass to REJECTED with a reason
	Reject(ctx context.Context, tenantID, passID, approverID string, req *dto.RejectPassRequest) (*dto.PassResponse, error)
	// FindByPassCode retrieves a pass by its gate code within a tenant
	FindByPassCode(ctx context.Context, tenantID, passCode string) (*dto.PassResponse, error)
	// CheckIn moves an APPROVED pass to CHECKED_IN
	CheckIn(ctx context.Context, tenantID, passID string) (*dto.PassResponse, error)
	// CheckOut moves a CHECKED_IN pass to CHECKED_OUT
	CheckOut(ctx context.Context, tenantID, passID, securityUserID string) (*dto.PassResponse, error)
	// TodayDashboard summarizes a tenant's gate activity for the day
	// containing the given instant
	TodayDashboard(ctx context.Context, tenantID string, now time.Time) (*dto.TodayDashboardResponse, error)
	// Expire moves one overdue APPROVED pass to EXPIRED on behalf of the
	// system sweep
	Expire(ctx context.Context, passID string, now time.Time) error
}

// passService implements PassService
type passService struct {
	passRepo   repository.PassRepository
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	auditRepo  repository.AuditRepository
	publisher  queue.Publisher
	cache      *redis.Client
	cacheTTL   time.Duration
	metrics    *telemetry.PassMetrics
}

// PassServiceOpts holds optional collaborators of the pass service. Cache
// and Metrics may be nil.
type PassServiceOpts struct {
	Cache    *redis.Client
	CacheTTL time.Duration
	Metrics  *telemetry.PassMetrics
}

// NewPassService creates a new PassService
func NewPassService(
	passRepo repository.PassRepository,
	userRepo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	auditRepo repository.AuditRepository,
	publisher queue.Publisher,
	opts PassServiceOpts,
) PassService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 15 * time.Minute
	}
	return &passService{
		passRepo:   passRepo,
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		auditRepo:  auditRepo,
		publisher:  publisher,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		metrics:    opts.Metrics,
	}
}

// Create creates a PENDING pass on behalf of the creating user
func (s *passService) Create(ctx context.Context, tenantID, creatorID string, req *dto.CreatePassRequest) (*dto.PassResponse, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, fmt.Errorf("%w: %s", ErrValidation, msg)
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrUserNotFound
	}
	if err := AuthorizeTenantAccess(creator.TenantID, tenantID); err != nil {
		return nil, err
	}
	if !creator.CanCreatePass() {
		return nil, ErrForbiddenAction
	}

	pass, err := domain.NewVisitorPass(
		tenantID,
		req.VisitorName,
		req.VisitorEmail,
		req.VisitorPhone,
		req.Purpose,
		req.VisitDateTime,
		creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	audit := s.newAudit(pass, domain.AuditPassCreated, &creatorID, "")
	for attempt := 0; ; attempt++ {
		err = s.passRepo.Create(ctx, pass, audit)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicatePassCode) && attempt < passCodeCreateAttempts-1 {
			pass.PassCode = domain.GeneratePassCode()
			continue
		}
		return nil, err
	}

	s.metrics.RecordTransition(ctx, string(domain.PassStatusPending))
	logger.WithContext(ctx).Info("pass created",
		zap.String("pass_id", pass.ID),
		zap.String("tenant_id", tenantID),
		zap.String("pass_code", pass.PassCode),
	)
	return dto.FromPass(pass), nil
}

// GetByID retrieves one pass within a tenant
func (s *passService) GetByID(ctx context.Context, tenantID, passID string) (*dto.PassResponse, error) {
	pass, err := s.loadTenantPass(ctx, tenantID, passID)
	if err != nil {
		return nil, err
	}
	return dto.FromPass(pass), nil
}

// GetInternal retrieves one pass by ID without tenant scoping
func (s *passService) GetInternal(ctx context.Context, passID string) (*dto.PassResponse, error) {
	pass, err := s.passRepo.GetByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	if pass == nil {
		return nil, ErrPassNotFound
	}
	return dto.FromPass(pass), nil
}

// List retrieves a tenant's passes with pagination
func (s *passService) List(ctx context.Context, tenantID string, query *dto.ListPassesQuery) (*dto.ListPassesResponse, error) {
	query.SetDefaults()
	if valid, msg := query.Validate(); !valid {
		return nil, fmt.Errorf("%w: %s", ErrValidation, msg)
	}

	passes, total, err := s.passRepo.ListByTenant(ctx, tenantID, domain.PassStatus(query.Status), query.Page, query.Limit)
	if err != nil {
		return nil, err
	}
	return buildListResponse(passes, total, query), nil
}

// ListMine retrieves passes created by the calling user
func (s *passService) ListMine(ctx context.Context, tenantID, creatorID string, query *dto.ListPassesQuery) (*dto.ListPassesResponse, error) {
	query.SetDefaults()

	passes, total, err := s.passRepo.ListByCreator(ctx, tenantID, creatorID, query.Page, query.Limit)
	if err != nil {
		return nil, err
	}
	return buildListResponse(passes, total, query), nil
}

// History retrieves a pass's audit trail, oldest-first
func (s *passService) History(ctx context.Context, tenantID, passID string) ([]*dto.AuditLogResponse, error) {
	if _, err := s.loadTenantPass(ctx, tenantID, passID); err != nil {
		return nil, err
	}
	logs, err := s.auditRepo.ListByPass(ctx, passID)
	if err != nil {
		return nil, err
	}
	return dto.FromAuditLogs(logs), nil
}

// Approve moves a PENDING pass to APPROVED and notifies downstream
func (s *passService) Approve(ctx context.Context, tenantID, passID, approverID string) (*dto.PassResponse, error) {
	approver, err := s.loadActor(ctx, tenantID, approverID)
	if err != nil {
		return nil, err
	}
	if !approver.CanDecidePass() {
		return nil, ErrForbiddenAction
	}

	pass, err := s.loadTenantPass(ctx, tenantID, passID)
	if err != nil {
		return nil, err
	}
	if err := pass.Approve(approverID); err != nil {
		return nil, err
	}

	audit := s.newAudit(pass, domain.AuditPassApproved, &approverID, "")
	if err := s.passRepo.Update(ctx, pass, audit); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(ctx, string(domain.PassStatusApproved))

	s.publish(ctx, dto.TopicPassApproved, &dto.PassApprovedEvent{
		PassID:        pass.ID,
		TenantID:      pass.TenantID,
		VisitorName:   pass.VisitorName,
		VisitorEmail:  pass.VisitorEmail,
		EmployeeEmail: s.creatorEmail(ctx, pass),
		PassCode:      pass.PassCode,
		VisitDateTime: pass.VisitDateTime,
	})
	return dto.FromPass(pass), nil
}

// Reject moves a PENDING pass to REJECTED with a reason
func (s *passService) Reject(ctx context.Context, tenantID, passID, approverID string, req *dto.RejectPassRequest) (*dto.PassResponse, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, fmt.Errorf("%w: %s", ErrValidation, msg)
	}

	approver, err := s.loadActor(ctx, tenantID, approverID)
	if err != nil {
		return nil, err
	}
	if !approver.CanDecidePass() {
		return nil, ErrForbiddenAction
	}

	pass, err := s.loadTenantPass(ctx, tenantID, passID)
	if err != nil {
		return nil, err
	}
	if err := pass.Reject(approverID, req.Reason); err != nil {
		return nil, err
	}

	audit := s.newAudit(pass, domain.AuditPassRejected, &approverID, req.Reason)
	if err := s.passRepo.Update(ctx, pass, audit); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(ctx, string(domain.PassStatusRejected))

	s.publish(ctx, dto.TopicPassRejected, &dto.PassRejectedEvent{
		PassID:          pass.ID,
		VisitorName:     pass.VisitorName,
		EmployeeEmail:   s.creatorEmail(ctx, pass),
		RejectionReason: req.Reason,
	})
	return dto.FromPass(pass), nil
}

// FindByPassCode retrieves a pass by its gate code within a tenant
func (s *passService) FindByPassCode(ctx context.Context, tenantID, passCode string) (*dto.PassResponse, error) {
	pass, err := s.findByCode(ctx, tenantID, passCode)
	if err != nil {
		return nil, err
	}
	return dto.FromPass(pass), nil
}

// CheckIn moves an APPROVED pass to CHECKED_IN. Check-ins are audited
// without an actor; the gate scan is not attributable to a user account.
// Unlike CheckOut there is no role check here, the route layer restricts
// the endpoint to gate-operating roles.
func (s *passService) CheckIn(ctx context.Context, tenantID, passID string) (*dto.PassResponse, error) {
	pass, err := s.loadTenantPass(ctx, tenantID, passID)
	if err != nil {
		return nil, err
	}
	if err := pass.CheckIn(); err != nil {
		return nil, err
	}

	audit := s.newAudit(pass, domain.AuditPassCheckedIn, nil, "")
	if err := s.passRepo.Update(ctx, pass, audit); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(ctx, string(domain.PassStatusCheckedIn))
	return dto.FromPass(pass), nil
}

// CheckOut moves a CHECKED_IN pass to CHECKED_OUT, recording the security
// user in the audit trail
func (s *passService) CheckOut(ctx context.Context, tenantID, passID, securityUserID string) (*dto.PassResponse, error) {
	security, err := s.loadActor(ctx, tenantID, securityUserID)
	if err != nil {
		return nil, err
	}
	if !security.CanOperateGate() {
		return nil, ErrForbiddenAction
	}

	pass, err := s.loadTenantPass(ctx, tenantID, passID)
	if err != nil {
		return nil, err
	}
	if err := pass.CheckOut(); err != nil {
		return nil, err
	}

	audit := s.newAudit(pass, domain.AuditPassCheckedOut, &securityUserID, "")
	if err := s.passRepo.Update(ctx, pass, audit); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(ctx, string(domain.PassStatusCheckedOut))
	return dto.FromPass(pass), nil
}

// TodayDashboard summarizes a tenant's gate activity for the current day
func (s *passService) TodayDashboard(ctx context.Context, tenantID string, now time.Time) (*dto.TodayDashboardResponse, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	passes, err := s.passRepo.ListByTenantAndVisitDate(ctx, tenantID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	dashboard := &dto.TodayDashboardResponse{
		Date:   dayStart.Format("2006-01-02"),
		Passes: dto.FromPasses(passes),
	}
	for _, p := range passes {
		switch p.Status {
		case domain.PassStatusApproved:
			dashboard.ExpectedCount++
		case domain.PassStatusCheckedIn:
			dashboard.CheckedInCount++
		}
	}
	return dashboard, nil
}

// Expire moves one overdue APPROVED pass to EXPIRED on behalf of the system
// sweep. The audit entry carries no actor.
func (s *passService) Expire(ctx context.Context, passID string, now time.Time) error {
	pass, err := s.passRepo.GetByID(ctx, passID)
	if err != nil {
		return err
	}
	if pass == nil {
		return ErrPassNotFound
	}
	if err := pass.Expire(now); err != nil {
		return err
	}

	audit := s.newAudit(pass, domain.AuditPassExpiredSystem, nil, "")
	if err := s.passRepo.Update(ctx, pass, audit); err != nil {
		return err
	}
	s.metrics.RecordTransition(ctx, string(domain.PassStatusExpired))

	var adminEmail *string
	admin, err := s.userRepo.FindFirstActiveByTenantAndRole(ctx, pass.TenantID, domain.RoleTenantAdmin)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to resolve tenant admin for expiry notification",
			zap.String("tenant_id", pass.TenantID),
			zap.Error(err),
		)
	} else if admin != nil {
		adminEmail = &admin.Email
	}

	s.publish(ctx, dto.TopicPassExpired, &dto.PassExpiredEvent{
		PassID:           pass.ID,
		TenantID:         pass.TenantID,
		VisitorName:      pass.VisitorName,
		VisitDateTime:    pass.VisitDateTime,
		EmployeeEmail:    s.creatorEmail(ctx, pass),
		TenantAdminEmail: adminEmail,
	})
	return nil
}

// loadTenantPass loads a pass and verifies it belongs to the requested
// tenant. A pass owned by another tenant is reported as missing so a denial
// never reveals that the id exists.
func (s *passService) loadTenantPass(ctx context.Context, tenantID, passID string) (*domain.VisitorPass, error) {
	pass, err := s.passRepo.GetByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	if pass == nil || AuthorizeTenantAccess(pass.TenantID, tenantID) != nil {
		return nil, ErrPassNotFound
	}
	return pass, nil
}

func (s *passService) loadActor(ctx context.Context, tenantID, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := AuthorizeTenantAccess(user.TenantID, tenantID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *passService) findByCode(ctx context.Context, tenantID, passCode string) (*domain.VisitorPass, error) {
	if id := s.cachedPassID(ctx, tenantID, passCode); id != "" {
		pass, err := s.passRepo.GetByID(ctx, id)
		if err == nil && pass != nil && pass.TenantID == tenantID && pass.PassCode == passCode {
			return pass, nil
		}
	}

	pass, err := s.passRepo.GetByTenantAndCode(ctx, tenantID, passCode)
	if err != nil {
		return nil, err
	}
	if pass == nil {
		return nil, ErrPassNotFound
	}
	s.cachePassID(ctx, tenantID, passCode, pass.ID)
	return pass, nil
}

func passCodeCacheKey(tenantID, passCode string) string {
	return "passcode:" + tenantID + ":" + passCode
}

// cachedPassID returns the cached pass ID for a gate code, or "" on miss.
// Cache errors fail open to the database.
func (s *passService) cachedPassID(ctx context.Context, tenantID, passCode string) string {
	if s.cache == nil {
		return ""
	}
	id, err := s.cache.Get(ctx, passCodeCacheKey(tenantID, passCode)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WithContext(ctx).Warn("pass code cache read failed", zap.Error(err))
		}
		return ""
	}
	return id
}

func (s *passService) cachePassID(ctx context.Context, tenantID, passCode, passID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, passCodeCacheKey(tenantID, passCode), passID, s.cacheTTL).Err(); err != nil {
		logger.WithContext(ctx).Warn("pass code cache write failed", zap.Error(err))
	}
}

// publish hands one event to the broker after the owning transaction has
// committed. Failures are logged and counted but never surfaced: the state
// change already happened and must not be rolled back.
func (s *passService) publish(ctx context.Context, topic string, event queue.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		logger.WithContext(ctx).Error("event publish failed",
			zap.String("topic", topic),
			zap.String("key", event.Key()),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.PublishFailures.Inc(ctx)
		}
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.Inc(ctx)
	}
}

// creatorEmail resolves the hosting employee's email for event payloads.
// A missing creator degrades to an empty email rather than failing the
// transition.
func (s *passService) creatorEmail(ctx context.Context, pass *domain.VisitorPass) string {
	creator, err := s.userRepo.GetByID(ctx, pass.CreatedByID)
	if err != nil || creator == nil {
		logger.WithContext(ctx).Warn("failed to resolve pass creator",
			zap.String("pass_id", pass.ID),
			zap.String("creator_id", pass.CreatedByID),
		)
		return ""
	}
	return creator.Email
}

func (s *passService) newAudit(pass *domain.VisitorPass, action string, actorID *string, details string) *domain.AuditLog {
	return &domain.AuditLog{
		ID:        uuid.New().String(),
		TenantID:  pass.TenantID,
		PassID:    pass.ID,
		Action:    action,
		ActorID:   actorID,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
}

func buildListResponse(passes []*domain.VisitorPass, total int, query *dto.ListPassesQuery) *dto.ListPassesResponse {
	return &dto.ListPassesResponse{
		Passes:     dto.FromPasses(passes),
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}
}
