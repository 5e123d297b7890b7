package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/coriolisfix/gatefix/internal/logger"
	"github.com/coriolisfix/gatefix/pkg/controlplane/models"
)

// ErrNotFound is returned by the lookup methods below when no row matches.
var ErrNotFound = errors.New("store: not found")

// UpsertSessionIdentity records or updates the identity a session_id was
// assigned to. Nothing outside this package calls it; the Framer does not
// write identity rows.
func (s *Store) UpsertSessionIdentity(rec models.SessionIdentity) error {
	rec.UpdatedAt = time.Now()
	result := s.db.Save(&rec)
	if result.Error != nil {
		logger.Error("store: upsert session identity failed", "session_id", rec.SessionID, "error", result.Error)
	}
	return result.Error
}

// LookupSessionIdentityByID returns the identity tuple for sessionID.
func (s *Store) LookupSessionIdentityByID(sessionID uint64) (models.SessionIdentity, error) {
	var rec models.SessionIdentity
	err := s.db.First(&rec, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, ErrNotFound
	}
	return rec, err
}

// LookupSessionIdentityByFIXTuple resolves a FIX (SenderCompID,
// TargetCompID) pair to its session_id. Nothing outside this package calls
// it; REQUEST_SESSION identifies a session by numeric id only.
func (s *Store) LookupSessionIdentityByFIXTuple(senderCompID, targetCompID string) (models.SessionIdentity, error) {
	var rec models.SessionIdentity
	err := s.db.First(&rec, "protocol = ? AND sender_comp_id = ? AND target_comp_id = ?", "FIX", senderCompID, targetCompID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, ErrNotFound
	}
	return rec, err
}

// LookupSessionIdentityByILink3Tuple resolves an iLink3 (session_id_str,
// firm_id) pair to its session_id.
func (s *Store) LookupSessionIdentityByILink3Tuple(sessionIDStr, firmID string) (models.SessionIdentity, error) {
	var rec models.SessionIdentity
	err := s.db.First(&rec, "protocol = ? AND session_id_str = ? AND firm_id = ?", "ILINK3", sessionIDStr, firmID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, ErrNotFound
	}
	return rec, err
}

// DeleteSessionIdentity removes the persisted identity row, mirroring
// resetSessionIds erasing seqstore's record.
func (s *Store) DeleteSessionIdentity(sessionID uint64) error {
	return s.db.Delete(&models.SessionIdentity{}, "session_id = ?", sessionID).Error
}

// UpsertLibrary records or updates a library's roster row. Nothing outside
// this package calls it; CONNECT and APPLICATION_HEARTBEAT handling does
// not write roster rows.
func (s *Store) UpsertLibrary(libraryID int, sessionCount int, now time.Time) error {
	var existing models.LibraryRecord
	err := s.db.First(&existing, "library_id = ?", libraryID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		existing = models.LibraryRecord{LibraryID: libraryID, FirstSeenAt: now}
	case err != nil:
		return err
	}
	existing.LastHeartbeat = now
	existing.SessionCount = sessionCount
	return s.db.Save(&existing).Error
}

// ListLibraries returns every library row in the store, ordered by
// library_id. gatefixctl's library list does not read these rows; it
// shows the live enginelib.Registry snapshot.
func (s *Store) ListLibraries() ([]models.LibraryRecord, error) {
	var recs []models.LibraryRecord
	err := s.db.Order("library_id").Find(&recs).Error
	return recs, err
}
