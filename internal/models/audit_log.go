package models

import "time"

// AuditLog is an operator-facing trail of notable state changes: committed
// purchases, failed compensations, funding sweeps. Rows are written
// best-effort and never block the operation they describe.
type AuditLog struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   *string        `json:"entity_id"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}
