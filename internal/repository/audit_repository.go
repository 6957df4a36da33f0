package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
)

// AuditRepository defines read access to the append-only audit trail.
// Writes happen inside the pass repository's transactions so that a
// transition and its audit record commit together.
type AuditRepository interface {
	// ListByPass retrieves a pass's audit entries, oldest-first
	ListByPass(ctx context.Context, passID string) ([]*domain.AuditLog, error)
}

// PostgresAuditRepository implements AuditRepository using PostgreSQL
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository
func NewPostgresAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{pool: pool}
}

// ListByPass retrieves a pass's audit entries, oldest-first
func (r *PostgresAuditRepository) ListByPass(ctx context.Context, passID string) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, tenant_id, pass_id, action, actor_id, COALESCE(details, '') as details, created_at
		FROM audit_logs
		WHERE pass_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, passID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.AuditLog, 0)
	for rows.Next() {
		entry := &domain.AuditLog{}
		err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.PassID,
			&entry.Action,
			&entry.ActorID,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// ListByPass retrieves a pass's audit entries from the in-memory store,
// oldest-first, letting MemoryPassRepository double as the audit reader in
// tests
func (r *MemoryPassRepository) ListByPass(ctx context.Context, passID string) ([]*domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := make([]*domain.AuditLog, 0)
	for _, a := range r.audits {
		if a.PassID == passID {
			logs = append(logs, copyAudit(a))
		}
	}
	return logs, nil
}
