package postgres

import (
	"context"

	"github.com/adeyemi/marketplace-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type auditLogsRepo struct{ pool *pgxpool.Pool }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs(id, entity_type, entity_id, action, details) VALUES($1,$2,$3,$4,$5)`,
		l.ID, l.EntityType, l.EntityID, l.Action, l.Details,
	)
	return mapErr(err)
}

func (r *auditLogsRepo) ListByEntity(ctx context.Context, entityType string, limit int) ([]models.AuditLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, entity_type, entity_id, action, details, created_at
		   FROM audit_logs
		  WHERE entity_type=$1
		  ORDER BY created_at DESC
		  LIMIT $2`,
		entityType, limit,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.EntityType, &l.EntityID, &l.Action, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
