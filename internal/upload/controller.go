package upload

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/auth"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/logging"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/portalapi"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/projects/domain"
)

// Uploader sends one spreadsheet to the portal API.
type Uploader interface {
	UploadFile(ctx context.Context, token, filename string, content io.Reader) (*portalapi.UploadResponse, error)
}

// State is the lifecycle of one upload attempt.
type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StateValidating   State = "validating"
	StateUploading    State = "uploading"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
)

// user-visible texts
const (
	msgInvalidFileType = "Please select an Excel (.xlsx) or CSV (.csv) file"
	msgNoFileSelected  = "Please select a file first"
	msgUnauthenticated = "Authentication token not found. Please login again."
	msgUploadFailed    = "Failed to upload file"
	msgUploaded        = "Successfully uploaded projects!"
)

const (
	DefaultProgressInterval = 500 * time.Millisecond
	DefaultMessageTTL       = 5 * time.Second
)

// Options tunes a Controller. Zero values use the defaults above.
type Options struct {
	ProgressInterval time.Duration
	MessageTTL       time.Duration
	// OnSuccess and OnFailure receive the user-visible message once an
	// attempt settles. They run outside the controller lock.
	OnSuccess func(message string)
	OnFailure func(message string)
	// Rand returns values in [0,1) for the progress estimate.
	Rand func() float64
}

// Snapshot is the upload panel as the rendering layer sees it.
type Snapshot struct {
	SelectedFile *FileInfo `json:"selected_file,omitempty"`
	Department   string    `json:"department"`
	State        State     `json:"state"`
	Progress     float64   `json:"progress"`
	Message      string    `json:"message,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	AttemptID    string    `json:"attempt_id,omitempty"`
}

// Controller drives the faculty upload panel: file choice, the upload
// request and the cosmetic progress estimate.
type Controller struct {
	uploader Uploader
	store    auth.CredentialStore
	opts     Options

	mu        sync.Mutex
	file      *File
	snap      Snapshot
	attempt   uint64
	dismiss   *time.Timer
	version   uint64
	listeners []func(Snapshot)

	notifyMu  sync.Mutex
	delivered uint64
}

// NewController builds the panel. The department defaults to General and is
// taken from the stored faculty profile when one is present.
func NewController(ctx context.Context, uploader Uploader, store auth.CredentialStore, opts Options) *Controller {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.MessageTTL <= 0 {
		opts.MessageTTL = DefaultMessageTTL
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}

	c := &Controller{
		uploader: uploader,
		store:    store,
		opts:     opts,
		snap: Snapshot{
			Department: domain.DepartmentGeneral.String(),
			State:      StateIdle,
		},
	}

	c.snap.Department = c.storedDepartment(ctx)
	return c
}

// ReloadDepartment re-reads the stored faculty profile, e.g. after a login
// or logout, and reports the department now shown.
func (c *Controller) ReloadDepartment(ctx context.Context) string {
	department := c.storedDepartment(ctx)

	c.mu.Lock()
	if c.snap.Department == department {
		c.mu.Unlock()
		return department
	}
	c.snap.Department = department
	c.commitLocked()
	return department
}

func (c *Controller) storedDepartment(ctx context.Context) string {
	user, ok, err := c.store.User(ctx)
	if err != nil {
		logging.NewLogger(ctx).LogWarnf("upload_mount", "failed to load user department: %v", err)
		return domain.DepartmentGeneral.String()
	}
	if !ok || user.Department == "" {
		return domain.DepartmentGeneral.String()
	}
	return user.Department
}

// Subscribe registers fn to be called with a snapshot after every change.
// Deliveries are serialized and in order; a snapshot overtaken by a newer
// one is skipped. fn must not call back into the controller.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SelectFile stores f for the next upload if its name ends in .xlsx or .csv.
// A rejected file leaves nothing selected.
func (c *Controller) SelectFile(f File) error {
	c.mu.Lock()
	if c.snap.State == StateUploading || c.snap.State == StateValidating {
		c.mu.Unlock()
		return ErrUploadInProgress
	}

	if !hasAcceptedExtension(f.Name) {
		c.file = nil
		c.snap.State = StateIdle
		c.snap.Message = msgInvalidFileType
		c.snap.ErrorKind = KindInvalidFileType
		c.commitLocked()
		return fmt.Errorf("%w: %s", ErrInvalidFileType, f.Name)
	}

	c.file = &f
	c.snap.State = StateFileSelected
	if c.snap.ErrorKind != "" {
		c.snap.Message = ""
		c.snap.ErrorKind = ""
	}
	c.commitLocked()
	return nil
}

// ClearFile drops the current selection.
func (c *Controller) ClearFile() {
	c.mu.Lock()
	if c.snap.State == StateUploading || c.snap.State == StateValidating {
		c.mu.Unlock()
		return
	}
	c.file = nil
	c.snap.State = StateIdle
	c.commitLocked()
}

// SubmitUpload sends the selected file with the stored bearer token and
// blocks until the attempt settles. Every failure is also reflected in the
// snapshot; no retry is made.
func (c *Controller) SubmitUpload(ctx context.Context) error {
	logger := logging.NewLogger(ctx)

	c.mu.Lock()
	if c.snap.State == StateUploading || c.snap.State == StateValidating {
		c.mu.Unlock()
		return ErrUploadInProgress
	}
	c.attempt++
	attempt := c.attempt
	c.stopDismissLocked()
	c.snap.AttemptID = uuid.NewString()
	c.snap.State = StateValidating
	c.snap.Message = ""
	c.snap.ErrorKind = ""
	file := c.file
	c.commitLocked()

	if file == nil {
		return c.fail(ctx, attempt, ErrNoFileSelected, msgNoFileSelected)
	}

	token, ok, err := c.store.Token(ctx)
	if err != nil {
		logger.LogError("submit_upload", err)
		return c.fail(ctx, attempt, fmt.Errorf("%w: %v", ErrUnauthenticated, err), msgUnauthenticated)
	}
	if !ok {
		return c.fail(ctx, attempt, ErrUnauthenticated, msgUnauthenticated)
	}

	c.mu.Lock()
	c.snap.State = StateUploading
	c.snap.Progress = 0
	c.commitLocked()

	resp, err := c.send(ctx, attempt, token, *file)
	if err != nil {
		return c.fail(ctx, attempt, err, portalapi.UserMessage(err, msgUploadFailed))
	}

	message := msgUploaded
	if resp.Count != nil {
		message = fmt.Sprintf("Successfully uploaded %d projects!", *resp.Count)
	}
	logger.LogInfof("submit_upload", "file=%s department=%s settled ok", file.Name, c.Snapshot().Department)

	c.mu.Lock()
	c.snap.Progress = progressCompleted
	c.snap.State = StateSucceeded
	c.snap.Message = message
	c.file = nil
	c.dismiss = time.AfterFunc(c.opts.MessageTTL, func() { c.dismissMessage(attempt, message) })
	c.commitLocked()

	if c.opts.OnSuccess != nil {
		c.opts.OnSuccess(message)
	}
	return nil
}

// send runs the request with the estimator ticking. The estimator is stopped
// before send returns, on every path.
func (c *Controller) send(ctx context.Context, attempt uint64, token string, f File) (resp *portalapi.UploadResponse, err error) {
	stop := startEstimator(c.opts.ProgressInterval, func() { c.nudge(attempt) })
	defer stop()
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("upload aborted: %v", r)
		}
	}()

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	return c.uploader.UploadFile(ctx, token, f.Name, rc)
}

func (c *Controller) nudge(attempt uint64) {
	c.mu.Lock()
	if attempt != c.attempt || c.snap.State != StateUploading {
		c.mu.Unlock()
		return
	}
	next := nextProgress(c.snap.Progress, c.opts.Rand())
	if next == c.snap.Progress {
		c.mu.Unlock()
		return
	}
	c.snap.Progress = next
	c.commitLocked()
}

func (c *Controller) fail(ctx context.Context, attempt uint64, err error, message string) error {
	logging.NewLogger(ctx).LogWarnf("submit_upload", "attempt failed kind=%s error=%v", ErrorKind(err), err)

	c.mu.Lock()
	if attempt == c.attempt {
		c.snap.State = StateFailed
		c.snap.Progress = 0
		c.snap.Message = message
		c.snap.ErrorKind = ErrorKind(err)
	}
	c.commitLocked()

	if c.opts.OnFailure != nil {
		c.opts.OnFailure(message)
	}
	return err
}

func (c *Controller) dismissMessage(attempt uint64, message string) {
	c.mu.Lock()
	if attempt != c.attempt || c.snap.Message != message {
		c.mu.Unlock()
		return
	}
	c.snap.Message = ""
	c.commitLocked()
}

// Close stops the pending auto-dismiss timer, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopDismissLocked()
}

func (c *Controller) stopDismissLocked() {
	if c.dismiss != nil {
		c.dismiss.Stop()
		c.dismiss = nil
	}
}

// commitLocked releases c.mu and notifies listeners. c.notifyMu is never
// taken while c.mu is held.
func (c *Controller) commitLocked() {
	c.version++
	version := c.version
	snap := c.snapshotLocked()
	listeners := make([]func(Snapshot), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if version <= c.delivered {
		return
	}
	c.delivered = version
	for _, fn := range listeners {
		fn(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := c.snap
	if c.file != nil {
		info := c.file.Info()
		s.SelectedFile = &info
	}
	return s
}
