// Package api defines the JSON bodies returned by the HTTP API.
package api

// ErrorResponse is the body of every non-2xx response.
// Code is a stable kind name clients can switch on (e.g. "CodeExpired").
type ErrorResponse struct {
	Status  int      `json:"status"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	PublicID string `json:"public_id"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}

// TokenResponse carries a signed access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
}
