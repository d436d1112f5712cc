package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/logging"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/projects/domain"
)

// Options tunes a Client. Zero values fall back to the package defaults.
type Options struct {
	Timeout           time.Duration
	UploadTimeout     time.Duration
	RequestsPerSecond float64
	Burst             int
	// Transport is the base round tripper; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the faculty portal REST API
type Client struct {
	baseURL       string
	defaultClient *http.Client
	uploadTimeout time.Duration
	transport     http.RoundTripper
	limiter       *rate.Limiter
}

// NewClient creates a new portal API client
func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = UploadTimeout
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		defaultClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		uploadTimeout: opts.UploadTimeout,
		transport:     opts.Transport,
		limiter:       rate.NewLimiter(limit, opts.Burst),
	}
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProjectsByDepartment fetches every project idea filed under department.
func (c *Client) ProjectsByDepartment(ctx context.Context, department domain.Department) (projects []domain.ProjectIdea, err error) {
	const op = "fetch_projects"
	logger := logging.NewLogger(ctx)
	start := time.Now()
	defer func() {
		recordCall(op, start, err)
		if err != nil {
			logger.LogError(op, err)
		}
	}()

	u, err := url.Parse(c.baseURL + "/projects")
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("department", department.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.do(ctx, op, c.defaultClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(op, resp)
	}

	var body ProjectsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, malformedBody(op, resp.StatusCode, err)
	}
	if !body.Success {
		msg := body.Error
		if msg == "" {
			msg = "Failed to fetch projects"
		}
		return nil, &ApplicationError{Op: op, Message: msg}
	}

	logger.LogInfof(op, "department=%s count=%d", department, len(body.Data))
	if body.Data == nil {
		return []domain.ProjectIdea{}, nil
	}
	return body.Data, nil
}

// Login exchanges faculty credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (result *LoginResponse, err error) {
	const op = "login"
	logger := logging.NewLogger(ctx)
	start := time.Now()
	defer func() {
		recordCall(op, start, err)
		if err != nil {
			logger.LogError(op, err)
		}
	}()

	payload, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, op, c.defaultClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	// The login endpoint answers rejected credentials with a JSON envelope
	// and a 4xx status; prefer the envelope's message when it parses.
	var body LoginResponse
	if jsonErr := json.Unmarshal(raw, &body); jsonErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &HTTPError{Op: op, Status: resp.StatusCode}
		}
		return nil, malformedBody(op, resp.StatusCode, jsonErr)
	}
	if !body.Success || body.Token == "" {
		msg := body.Message
		if msg == "" {
			msg = "Login failed"
		}
		return nil, &ApplicationError{Op: op, Message: msg}
	}

	logger.LogInfo(op, "login accepted")
	return &body, nil
}

// UploadFile posts a spreadsheet as multipart field "file", authenticated
// with token as a bearer credential.
func (c *Client) UploadFile(ctx context.Context, token, filename string, content io.Reader) (result *UploadResponse, err error) {
	const op = "upload_file"
	logger := logging.NewLogger(ctx)
	start := time.Now()
	defer func() {
		recordCall(op, start, err)
		if err != nil {
			logger.LogError(op, err)
		}
	}()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(FileField, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	n, err := io.Copy(part, content)
	if err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	logger.LogInfof(op, "uploading file=%s bytes=%d", filename, n)
	resp, err := c.do(ctx, op, c.bearerClient(token), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(op, resp)
	}

	var body UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, malformedBody(op, resp.StatusCode, err)
	}
	if !body.Success {
		msg := body.Message
		if msg == "" {
			msg = "Upload failed"
		}
		return nil, &ApplicationError{Op: op, Message: msg}
	}

	return &body, nil
}

// bearerClient wraps the base transport so every request carries
// "Authorization: Bearer <token>".
func (c *Client) bearerClient(token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &http.Client{
		Timeout: c.uploadTimeout,
		Transport: &oauth2.Transport{
			Source: src,
			Base:   c.transport,
		},
	}
}

func (c *Client) do(ctx context.Context, op string, hc *http.Client, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	return resp, nil
}

func httpError(op string, resp *http.Response) *HTTPError {
	e := &HTTPError{Op: op, Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return e
	}
	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil {
		e.Message = env.text()
	}
	return e
}
