package apiclient

// CreateSessionRequest mirrors pkg/api's initiateRequest.
type CreateSessionRequest struct {
	Protocol     string `json:"protocol"`
	SenderCompID string `json:"sender_comp_id,omitempty"`
	TargetCompID string `json:"target_comp_id,omitempty"`
	SessionIDStr string `json:"session_id_str,omitempty"`
	FirmID       string `json:"firm_id,omitempty"`
	Addr         string `json:"addr"`
}

// ReplyAccepted is returned by CreateSession: the correlation id to poll
// via Reply.
type ReplyAccepted struct {
	ReplyID string `json:"reply_id"`
}

// CreateSession initiates a new outbound session.
func (c *Client) CreateSession(req CreateSessionRequest) (ReplyAccepted, error) {
	var result ReplyAccepted
	err := c.post("/api/v1/sessions", req, &result)
	return result, err
}

// ReplyStatus is the response body of GET /api/v1/replies/{id}.
type ReplyStatus struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
	State     string `json:"state"`
	Error     string `json:"error,omitempty"`
}

// Reply polls a previously-submitted operation's current state.
func (c *Client) Reply(id string) (ReplyStatus, error) {
	var result ReplyStatus
	err := c.get("/api/v1/replies/"+id, &result)
	return result, err
}
