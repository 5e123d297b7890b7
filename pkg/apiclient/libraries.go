package apiclient

import "github.com/coriolisfix/gatefix/internal/enginelib"

// Libraries fetches the current registered-library roster.
func (c *Client) Libraries() (enginelib.ControlNotification, error) {
	var result enginelib.ControlNotification
	err := c.get("/api/v1/libraries", &result)
	return result, err
}
