package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/logging"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/portalapi"
)

// Authenticator is the part of the portal API the login flow needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*portalapi.LoginResponse, error)
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Manager runs the login and logout flows, the only writers of the store.
type Manager struct {
	api      Authenticator
	store    CredentialStore
	validate *validator.Validate
}

func NewManager(api Authenticator, store CredentialStore) *Manager {
	return &Manager{
		api:      api,
		store:    store,
		validate: validator.New(),
	}
}

func (m *Manager) Store() CredentialStore {
	return m.store
}

// Login checks the input locally, asks the API for a token and persists the
// session. Nothing is stored unless the API accepted the credentials.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	logger := logging.NewLogger(ctx)
	in := loginInput{Email: strings.TrimSpace(email), Password: password}
	if err := m.validate.Struct(in); err != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrInvalidLoginInput, describeValidation(err))
	}

	resp, err := m.api.Login(ctx, in.Email, in.Password)
	if err != nil {
		return Session{}, err
	}

	user, err := ParseUser(resp.User)
	if err != nil {
		return Session{}, err
	}
	sess := Session{Token: resp.Token, User: user}
	if err := m.store.Save(ctx, sess); err != nil {
		logger.LogError("login", err)
		return Session{}, fmt.Errorf("persist session: %w", err)
	}

	logger.LogInfof("login", "session stored department=%s", user.Department)
	return sess, nil
}

// Logout drops the stored session. Logging out twice is not an error.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		logging.NewLogger(ctx).LogError("logout", err)
		return err
	}
	return nil
}

// Current returns the stored session, or ErrNoSession when no token is stored.
func (m *Manager) Current(ctx context.Context) (Session, error) {
	token, ok, err := m.store.Token(ctx)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrNoSession
	}
	user, _, err := m.store.User(ctx)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email address")
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, ", ")
}
