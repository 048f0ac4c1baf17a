package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is a row in the remote audit trail. Body is the opaque record a
// caller attached to the action.
type AuditEntry struct {
	ID         uuid.UUID
	Scope      string
	ActionKind string
	Actor      string
	Body       json.RawMessage
	CreatedAt  time.Time
}
