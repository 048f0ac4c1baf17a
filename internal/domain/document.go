package domain

import (
	"encoding/json"
	"time"
)

// LedgerDocument is the persisted aggregate of one scope. Version increases
// by one on every successful write and guards against lost updates.
type LedgerDocument struct {
	Scope     string
	Body      json.RawMessage
	Version   int64
	UpdatedAt time.Time
}
