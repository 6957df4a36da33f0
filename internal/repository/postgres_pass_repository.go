package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
)

// PostgresPassRepository implements PassRepository using PostgreSQL
type PostgresPassRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPassRepository creates a new PostgresPassRepository
func NewPostgresPassRepository(pool *pgxpool.Pool) *PostgresPassRepository {
	return &PostgresPassRepository{pool: pool}
}

const passColumns = `id, tenant_id, visitor_name, visitor_email, visitor_phone, purpose,
	visit_date_time, pass_code, status, created_by_id, approved_by_id,
	COALESCE(rejection_reason, '') as rejection_reason, version, created_at, updated_at`

func scanPass(row pgx.Row) (*domain.VisitorPass, error) {
	pass := &domain.VisitorPass{}
	err := row.Scan(
		&pass.ID,
		&pass.TenantID,
		&pass.VisitorName,
		&pass.VisitorEmail,
		&pass.VisitorPhone,
		&pass.Purpose,
		&pass.VisitDateTime,
		&pass.PassCode,
		&pass.Status,
		&pass.CreatedByID,
		&pass.ApprovedByID,
		&pass.RejectionReason,
		&pass.Version,
		&pass.CreatedAt,
		&pass.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pass, nil
}

// Create persists a new pass together with its creation audit record
func (r *PostgresPassRepository) Create(ctx context.Context, pass *domain.VisitorPass, audit *domain.AuditLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO visitor_passes (id, tenant_id, visitor_name, visitor_email, visitor_phone, purpose,
			visit_date_time, pass_code, status, created_by_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Exec(ctx, query,
		pass.ID,
		pass.TenantID,
		pass.VisitorName,
		pass.VisitorEmail,
		pass.VisitorPhone,
		pass.Purpose,
		pass.VisitDateTime,
		pass.PassCode,
		pass.Status,
		pass.CreatedByID,
		pass.Version,
		pass.CreatedAt,
		pass.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation, the per-tenant pass code index
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePassCode
		}
		return err
	}

	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID retrieves a pass by ID
func (r *PostgresPassRepository) GetByID(ctx context.Context, id string) (*domain.VisitorPass, error) {
	query := `SELECT ` + passColumns + ` FROM visitor_passes WHERE id = $1`
	pass, err := scanPass(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return pass, nil
}

// GetByTenantAndCode retrieves a pass by tenant and pass code
func (r *PostgresPassRepository) GetByTenantAndCode(ctx context.Context, tenantID, passCode string) (*domain.VisitorPass, error) {
	query := `SELECT ` + passColumns + ` FROM visitor_passes WHERE tenant_id = $1 AND pass_code = $2`
	pass, err := scanPass(r.pool.QueryRow(ctx, query, tenantID, passCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return pass, nil
}

// ListByTenant retrieves a tenant's passes newest-first with pagination
func (r *PostgresPassRepository) ListByTenant(ctx context.Context, tenantID string, status domain.PassStatus, page, limit int) ([]*domain.VisitorPass, int, error) {
	countQuery := `SELECT COUNT(*) FROM visitor_passes WHERE tenant_id = $1 AND ($2 = '' OR status = $2)`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, tenantID, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + passColumns + `
		FROM visitor_passes
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, tenantID, string(status), limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	passes, err := collectPasses(rows)
	if err != nil {
		return nil, 0, err
	}
	return passes, total, nil
}

// ListByCreator retrieves passes created by one user, newest-first
func (r *PostgresPassRepository) ListByCreator(ctx context.Context, tenantID, creatorID string, page, limit int) ([]*domain.VisitorPass, int, error) {
	countQuery := `SELECT COUNT(*) FROM visitor_passes WHERE tenant_id = $1 AND created_by_id = $2`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, tenantID, creatorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + passColumns + `
		FROM visitor_passes
		WHERE tenant_id = $1 AND created_by_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, tenantID, creatorID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	passes, err := collectPasses(rows)
	if err != nil {
		return nil, 0, err
	}
	return passes, total, nil
}

// ListByTenantAndVisitDate retrieves a tenant's passes within [from, to)
func (r *PostgresPassRepository) ListByTenantAndVisitDate(ctx context.Context, tenantID string, from, to time.Time) ([]*domain.VisitorPass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM visitor_passes
		WHERE tenant_id = $1 AND visit_date_time >= $2 AND visit_date_time < $3
		ORDER BY visit_date_time ASC
	`
	rows, err := r.pool.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPasses(rows)
}

// FindOverdueApproved retrieves APPROVED passes whose visit time has passed
func (r *PostgresPassRepository) FindOverdueApproved(ctx context.Context, before time.Time) ([]*domain.VisitorPass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM visitor_passes
		WHERE status = $1 AND visit_date_time < $2
		ORDER BY visit_date_time ASC
	`
	rows, err := r.pool.Query(ctx, query, domain.PassStatusApproved, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPasses(rows)
}

// Update persists a modified pass and its audit record atomically.
// The UPDATE is guarded by the previous version; zero rows affected means
// another writer won the race.
func (r *PostgresPassRepository) Update(ctx context.Context, pass *domain.VisitorPass, audit *domain.AuditLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	prevVersion := pass.Version
	query := `
		UPDATE visitor_passes
		SET status = $3, approved_by_id = $4, rejection_reason = NULLIF($5, ''),
			version = $6, updated_at = $7
		WHERE id = $1 AND version = $2
	`
	tag, err := tx.Exec(ctx, query,
		pass.ID,
		prevVersion,
		pass.Status,
		pass.ApprovedByID,
		pass.RejectionReason,
		prevVersion+1,
		pass.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	pass.Version = prevVersion + 1

	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func collectPasses(rows pgx.Rows) ([]*domain.VisitorPass, error) {
	passes := make([]*domain.VisitorPass, 0)
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}
	return passes, rows.Err()
}

func insertAudit(ctx context.Context, tx pgx.Tx, audit *domain.AuditLog) error {
	if audit == nil {
		return nil
	}
	query := `
		INSERT INTO audit_logs (id, tenant_id, pass_id, action, actor_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, query,
		audit.ID,
		audit.TenantID,
		audit.PassID,
		audit.Action,
		audit.ActorID,
		audit.Details,
		audit.CreatedAt,
	)
	return err
}
