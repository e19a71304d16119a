package api

import "time"

// StatusResponse is the entitlement lookup response.
type StatusResponse struct {
	Email     string     `json:"email"`
	Active    bool       `json:"active"`
	Found     bool       `json:"found"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
