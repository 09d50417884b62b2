package repository

import (
	"context"

	"github.com/campuspay/ms-go-billing/app/entity"
)

// AuditLogRepository is the audit sink. Writes are best-effort: callers
// must never let an audit failure abort a primary transaction, so the
// service layer always writes audit records outside of transactions.
type AuditLogRepository struct {
	db DBTX
}

func NewAuditLogRepository(db DBTX) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, record *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (actor_id, action, detail, created_at)
		VALUES (?, ?, ?, ?)
	`
	var actor interface{}
	if record.ActorID != nil {
		actor = *record.ActorID
	}

	result, err := r.db.ExecContext(ctx, query, actor, record.Action, record.Detail, record.CreatedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = uint64(id)
	return nil
}
