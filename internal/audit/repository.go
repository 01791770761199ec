package audit

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository records one row per proxied Shopify mutation or archive
// download. A nil *Repository is valid and records nothing, so the server
// can run without a database.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Record is best-effort: audit failures are logged, never surfaced, so a
// handler can't fail because auditing failed.
func (r *Repository) Record(ctx context.Context, action, actor, draftOrderID string, metadata any) {
	if r == nil {
		return
	}

	var meta *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		s := string(b)
		meta = &s
	}

	const q = `
INSERT INTO audit_logs (action, actor, draft_order_id, metadata)
VALUES ($1, $2, $3, CAST($4 AS jsonb))
`
	if _, err := r.db.Exec(ctx, q, action, actor, draftOrderID, meta); err != nil {
		log.Printf("audit: record %s failed: %v", action, err)
	}
}
