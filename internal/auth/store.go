package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Storage keys shared with the browser build of the portal.
const (
	TokenKey = "faculty_token"
	UserKey  = "faculty_user"
)

var (
	ErrInvalidLoginInput = errors.New("invalid login input")
	ErrNoSession         = errors.New("no stored session")
)

// CredentialStore holds the faculty session between invocations.
// Only the login flow writes it and only logout clears it; controllers read.
type CredentialStore interface {
	// Token returns the stored bearer token; ok is false when none is stored.
	Token(ctx context.Context) (token string, ok bool, err error)
	// User returns the stored profile; ok is false when none is stored.
	User(ctx context.Context) (user User, ok bool, err error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// Session is what a successful login leaves behind.
type Session struct {
	Token string
	User  User
}

// User is the faculty profile returned by the login endpoint. Only the
// department is interpreted; the rest is kept verbatim in Profile.
type User struct {
	Department string
	Profile    json.RawMessage
}

// ParseUser reads a stored or served profile. An empty or null profile yields
// the zero User.
func ParseUser(raw []byte) (User, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return User{}, nil
	}
	var fields struct {
		Department string `json:"department"`
	}
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return User{}, fmt.Errorf("decode user profile: %w", err)
	}
	return User{
		Department: fields.Department,
		Profile:    json.RawMessage(trimmed),
	}, nil
}

// profileBytes is the on-store form of the user.
func (u User) profileBytes() []byte {
	if len(u.Profile) > 0 {
		return u.Profile
	}
	if u.Department == "" {
		return []byte("null")
	}
	b, _ := json.Marshal(map[string]string{"department": u.Department})
	return b
}
