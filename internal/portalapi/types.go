package portalapi

import (
	"encoding/json"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/projects/domain"
)

// ProjectsResponse is the envelope of GET /projects
type ProjectsResponse struct {
	Success bool                 `json:"success"`
	Data    []domain.ProjectIdea `json:"data"`
	Error   string               `json:"error,omitempty"`
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the envelope of POST /login. User is kept raw so the
// profile can be stored verbatim.
type LoginResponse struct {
	Success bool            `json:"success"`
	Token   string          `json:"token,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

// UploadResponse is the envelope of POST /upload
type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   *int   `json:"count,omitempty"`
}

// errorEnvelope picks the human text out of any failed response body.
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errorEnvelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
