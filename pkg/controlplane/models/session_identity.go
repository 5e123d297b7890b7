package models

import "time"

// SessionIdentity is the durable row backing spec.md §3's identifying
// tuple -> session_id mapping: the control plane's record of which
// protocol-specific identity a numeric session_id was assigned to, read by
// the store's by-id and by-tuple lookups. The Framer and
// enginelib.Registry neither write nor read these rows.
type SessionIdentity struct {
	SessionID uint64 `gorm:"primaryKey"`
	Protocol  string `gorm:"not null;index"`

	// FIX identity fields.
	SenderCompID     string `gorm:"index:idx_fix_identity"`
	TargetCompID     string `gorm:"index:idx_fix_identity"`
	SenderSubID      string
	TargetSubID      string
	SenderLocationID string
	TargetLocationID string

	// iLink3 identity fields.
	SessionIDStr string `gorm:"index:idx_ilink3_identity"`
	FirmID       string `gorm:"index:idx_ilink3_identity"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name so a schema migration written by hand
// (pkg/controlplane/store/migrations/0001_init.up.sql) agrees with GORM's
// AutoMigrate path.
func (SessionIdentity) TableName() string { return "session_identities" }
