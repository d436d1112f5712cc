package http

import (
	"context"
	"encoding/json"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/auth"
)

// Handler serves the faculty session endpoints.
type Handler struct {
	manager *auth.Manager
	// onChange runs after a successful login or logout.
	onChange func(ctx context.Context)
}

func New(manager *auth.Manager, onChange func(ctx context.Context)) *Handler {
	return &Handler{manager: manager, onChange: onChange}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResp struct {
	Authenticated bool            `json:"authenticated"`
	Department    string          `json:"department,omitempty"`
	Profile       json.RawMessage `json:"profile,omitempty"`
}
