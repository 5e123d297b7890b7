// Package models defines the gorm.io/gorm models backing the control-plane
// database (pkg/controlplane/store): the durable identifying-tuple <->
// session_id mapping and the registered-library roster named in
// SPEC_FULL.md §6, grounded on the teacher's pkg/controlplane/models
// package layout (one file per model, an AllModels() for AutoMigrate).
package models

// AllModels returns every model for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&SessionIdentity{},
		&LibraryRecord{},
	}
}
