package models

import "time"

// AuditEntry is one append-only audit log row. The core only ever writes
// this table; it is never updated or deleted here.
type AuditEntry struct {
	ID      int64          // Monotonically increasing identifier
	At      time.Time      // Timestamp of the mutation
	Actor   string         // Actor tag, "tg:<user_id>" or "admin:<id>"
	Action  string         // Action name, e.g. submit_plan or start_lunch
	Entity  string         // Entity reference, e.g. "shift:<uuid>"
	Payload map[string]any // Free-form context for the mutation
}
