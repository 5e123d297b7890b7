// Package enginelib implements the Engine↔Library handoff protocol (C9):
// ownership transfer of sessions between the I/O-owning Engine process and
// one or more logic-owning Library processes, liveness via heartbeats, and
// the administrative notifications spec.md §4.7 names.
package enginelib

import "time"

// Kind discriminates the message envelope's payload type.
type Kind string

const (
	// Library -> Engine
	KindConnect              Kind = "CONNECT"
	KindRequestSession       Kind = "REQUEST_SESSION"
	KindReleaseSession       Kind = "RELEASE_SESSION"
	KindApplicationHeartbeat Kind = "APPLICATION_HEARTBEAT"

	// Engine -> Library
	KindManageSession       Kind = "MANAGE_SESSION"
	KindReleaseComplete     Kind = "RELEASE_COMPLETE"
	KindDisconnect          Kind = "DISCONNECT"
	KindControlNotification Kind = "CONTROL_NOTIFICATION"
)

// Connect is a Library process's opening handoff request, authenticated by
// Token (a golang-jwt/jwt/v5 HS256 token, per SPEC_FULL.md §6's Library
// authentication supplement).
type Connect struct {
	LibraryID int    `json:"library_id"`
	Token     string `json:"token"`
}

// RequestSession asks the Engine to hand off ownership of a session,
// identified either by its locally-assigned id (SessionID != 0) or by its
// protocol-specific identity tuple.
type RequestSession struct {
	LibraryID    int    `json:"library_id"`
	SessionID    uint64 `json:"session_id,omitempty"`
	Protocol     string `json:"protocol,omitempty"`
	SenderCompID string `json:"sender_comp_id,omitempty"`
	TargetCompID string `json:"target_comp_id,omitempty"`
	SessionIDStr string `json:"session_id_str,omitempty"`
	FirmID       string `json:"firm_id,omitempty"`
}

// ReleaseSession returns a session to the Engine's unowned pool.
type ReleaseSession struct {
	LibraryID int    `json:"library_id"`
	SessionID uint64 `json:"session_id"`
}

// ApplicationHeartbeat is the Library's liveness signal; its absence past
// library_timeout_ms triggers DISCONNECT of every session the library
// owns, per spec.md §4.7.
type ApplicationHeartbeat struct {
	LibraryID int       `json:"library_id"`
	SentAt    time.Time `json:"sent_at"`
}

// ManageSession hands ownership of a session to a Library, carrying enough
// state for the Library to resume administering it.
type ManageSession struct {
	SessionID uint64 `json:"session_id"`
	Protocol  string `json:"protocol"`
	State     string `json:"state"`
	NextSentSeq uint64 `json:"next_sent_seq"`
	NextRecvSeq uint64 `json:"next_recv_seq"`
}

// ReleaseComplete acknowledges a ReleaseSession request.
type ReleaseComplete struct {
	SessionID uint64 `json:"session_id"`
}

// Disconnect tells a Library it no longer owns a session (e.g. the
// Library's heartbeat lapsed and the Engine reclaimed it).
type Disconnect struct {
	SessionID uint64 `json:"session_id"`
	Reason    string `json:"reason"`
}

// LibraryInfo is one row of the registered-library roster, supplemented
// (per SPEC_FULL.md §4.7) with each library's current session-ownership
// count for gatefixctl's libraries table.
type LibraryInfo struct {
	LibraryID     int       `json:"library_id"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	SessionCount  int       `json:"session_count"`
}

// ControlNotification is the Engine's periodic/event-driven snapshot of
// the library roster, answering the libraries() administrative request.
type ControlNotification struct {
	Libraries []LibraryInfo `json:"libraries"`
}
