package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coriolisfix/gatefix/internal/enginelib"
	"github.com/coriolisfix/gatefix/internal/framer"
	"github.com/coriolisfix/gatefix/internal/reply"
	"github.com/coriolisfix/gatefix/internal/session"
	"github.com/coriolisfix/gatefix/pkg/controlplane/store"
	"github.com/coriolisfix/gatefix/pkg/gateway"
)

// Handlers implements the admin REST surface's HTTP handlers over one
// Library's Gateway. It keeps its own map of the Replies it has submitted
// so a caller can poll a correlation id across separate HTTP requests --
// a *reply.Reply is a native Go value, not itself transportable, so this
// is the bridge an out-of-process client needs.
type Handlers struct {
	gw      *gateway.Gateway
	store   *store.Store
	mu      sync.Mutex
	replies map[string]*reply.Reply
}

// NewHandlers creates Handlers over gw, optionally backed by a control
// plane store that Readiness pings (store may be nil).
func NewHandlers(gw *gateway.Gateway, st *store.Store) *Handlers {
	return &Handlers{gw: gw, store: st, replies: make(map[string]*reply.Reply)}
}

func (h *Handlers) track(rep *reply.Reply) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replies[rep.ID()] = rep
}

// Liveness handles GET /health.
func (h *Handlers) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{"service": "gatefix"}))
}

// Readiness handles GET /health/ready: the gateway and (if configured) the
// control-plane database must both be reachable.
func (h *Handlers) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.gw == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("gateway not initialized"))
		return
	}
	if h.store != nil {
		if err := h.store.Health(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("control plane unreachable: "+err.Error()))
			return
		}
	}
	writeJSON(w, http.StatusOK, healthyResponse(nil))
}

// initiateRequest is the JSON body for POST /api/v1/sessions.
type initiateRequest struct {
	Protocol     string `json:"protocol"`
	SenderCompID string `json:"sender_comp_id,omitempty"`
	TargetCompID string `json:"target_comp_id,omitempty"`
	SessionIDStr string `json:"session_id_str,omitempty"`
	FirmID       string `json:"firm_id,omitempty"`
	Addr         string `json:"addr"`
}

// replyAccepted is the response body for every endpoint below that
// submits an asynchronous operation: the correlation id to poll.
type replyAccepted struct {
	ReplyID string `json:"reply_id"`
}

// CreateSession handles POST /api/v1/sessions: initiate a new outbound
// session, returning a reply_id the caller polls via GetReply.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("malformed request body: "+err.Error()))
		return
	}

	rep, err := h.gw.Initiate(
		sessionIdentityFromRequest(req),
		sessionConfigDefaults(),
		protocolFromString(req.Protocol),
		req.Addr, 0, 0,
	)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse(err.Error()))
		return
	}
	h.track(rep)
	writeJSON(w, http.StatusAccepted, okResponse(replyAccepted{ReplyID: rep.ID()}))
}

// GetReply handles GET /api/v1/replies/{id}: poll a previously-submitted
// operation's current state and, once COMPLETED, its result.
func (h *Handlers) GetReply(w http.ResponseWriter, r *http.Request, id string) {
	h.mu.Lock()
	rep, ok := h.replies[id]
	h.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("unknown reply id"))
		return
	}

	body := map[string]any{
		"id":        rep.ID(),
		"operation": rep.Op(),
		"state":     rep.State().String(),
	}
	if err := rep.Err(); err != nil {
		body["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, okResponse(body))
}

// Libraries handles GET /api/v1/libraries: submits the libraries()
// administrative request and waits briefly for its reply, since the
// roster snapshot is cheap and operators expect a synchronous response
// from a table-rendering command.
func (h *Handlers) Libraries(w http.ResponseWriter, r *http.Request) {
	rep, err := h.gw.Libraries()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := gateway.Await(ctx, rep, 5*time.Millisecond); err != nil {
		writeJSON(w, http.StatusGatewayTimeout, errorResponse(err.Error()))
		return
	}

	snapshot, _ := reply.Result[enginelib.ControlNotification](rep)
	writeJSON(w, http.StatusOK, okResponse(snapshot))
}

func protocolFromString(s string) framer.Protocol {
	if s == "ILINK3" {
		return framer.ProtocolILink3
	}
	return framer.ProtocolFIX
}

func sessionIdentityFromRequest(req initiateRequest) session.Identity {
	return session.Identity{
		SenderCompID: req.SenderCompID,
		TargetCompID: req.TargetCompID,
		SessionIDStr: req.SessionIDStr,
		FirmID:       req.FirmID,
	}
}

func sessionConfigDefaults() session.Config {
	return session.Config{
		KeepAliveInterval:  30 * time.Second,
		NegotiateResendMax: 2,
	}
}
