package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lampoon-ads/backend/internal/db"
	"github.com/lampoon-ads/backend/internal/models"
)

const auditColumns = `id, actor_user_id, actor_type, action, entity_type, entity_id, meta, created_at`

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Log inserts one entry. Inside a transaction the entry commits or rolls
// back with the change it describes.
func (r *AuditRepo) Log(ctx context.Context, entry models.AuditLog) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO audit_log (actor_user_id, actor_type, action, entity_type, entity_id, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ActorUserID, entry.ActorType, entry.Action, entry.EntityType, entry.EntityID, entry.Meta)
	return translate(err)
}

// ForEntity returns the latest entries recorded against one entity.
func (r *AuditRepo) ForEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.query(ctx, `
		SELECT `+auditColumns+`
		FROM audit_log WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC LIMIT $3
	`, entityType, entityID, limit)
}

// Recent returns the latest entries across all entities.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.query(ctx, `
		SELECT `+auditColumns+`
		FROM audit_log ORDER BY created_at DESC LIMIT $1
	`, limit)
}

func (r *AuditRepo) query(ctx context.Context, sql string, args ...any) ([]models.AuditLog, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.ActorUserID, &l.ActorType, &l.Action, &l.EntityType, &l.EntityID, &l.Meta, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
