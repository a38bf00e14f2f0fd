package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// AppendAudit appends one entry to the append-only audit log. Every
// state-changing operation of the shift engine goes through here.
func (r *Repository) AppendAudit(ctx context.Context, actor, action, entity string, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	_, err = r.db.Exec(ctx, AppendAuditSQL, actor, action, entity, raw)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}
