package models

import "time"

// LibraryRecord is the durable row of the registered-library roster,
// written by store.UpsertLibrary. The in-memory enginelib.Registry tracks
// only currently-live libraries; gatefixctl shows that snapshot and does
// not read these rows.
type LibraryRecord struct {
	LibraryID     int `gorm:"primaryKey"`
	FirstSeenAt   time.Time
	LastHeartbeat time.Time
	SessionCount  int
}

func (LibraryRecord) TableName() string { return "library_records" }
