package browse

import (
	"context"
	"sync"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/logging"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/portalapi"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/projects/domain"
)

// Fetcher loads the projects of one department.
type Fetcher interface {
	ProjectsByDepartment(ctx context.Context, department domain.Department) ([]domain.ProjectIdea, error)
}

// State is the browse view as the rendering layer sees it.
type State struct {
	Department  domain.Department    `json:"department"`
	Projects    []domain.ProjectIdea `json:"projects"`
	SearchQuery string               `json:"search_query"`
	Loading     bool                 `json:"loading"`
	Error       string               `json:"error,omitempty"`
}

// VisibleProjects is Projects narrowed by SearchQuery.
func (s State) VisibleProjects() []domain.ProjectIdea {
	return FilterProjects(s.Projects, s.SearchQuery)
}

// Controller owns the department selection, the fetched list and the search
// query. Fetches run in the background; each one is tagged with a sequence
// number and its result is applied only if no newer selection happened since.
type Controller struct {
	fetcher Fetcher

	mu        sync.Mutex
	state     State
	seq       uint64
	version   uint64
	listeners []func(State)

	notifyMu  sync.Mutex
	delivered uint64
}

func NewController(fetcher Fetcher) *Controller {
	return &Controller{
		fetcher: fetcher,
		state:   State{Projects: []domain.ProjectIdea{}},
	}
}

// Subscribe registers fn to be called with a fresh snapshot after every
// state change. Listeners run on the goroutine that made the change and must
// not call back into the controller synchronously. Deliveries are serialized
// and never go backwards: when two changes race, a listener may miss the
// older snapshot but never sees it after the newer one.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// VisibleProjects returns the current list filtered by the current query.
func (c *Controller) VisibleProjects() []domain.ProjectIdea {
	return c.Snapshot().VisibleProjects()
}

// SelectDepartment switches the selection to department and starts loading
// its projects. The returned channel is closed once that load has settled,
// whether its result was applied or discarded. An empty department clears
// the list synchronously without touching the network.
func (c *Controller) SelectDepartment(ctx context.Context, department domain.Department) <-chan struct{} {
	done := make(chan struct{})
	if department != "" {
		if d, err := domain.ParseDepartment(department.String()); err == nil {
			department = d
		}
	}

	c.mu.Lock()
	c.seq++
	tag := c.seq
	c.state.Department = department

	if department == "" {
		c.state.Projects = []domain.ProjectIdea{}
		c.state.Error = ""
		c.state.Loading = false
		c.commitLocked()
		close(done)
		return done
	}
	if !department.Valid() {
		c.state.Projects = []domain.ProjectIdea{}
		c.state.Error = domain.ErrUnknownDepartment.Error() + ": " + department.String()
		c.state.Loading = false
		c.commitLocked()
		close(done)
		return done
	}

	c.state.Loading = true
	c.state.Error = ""
	c.commitLocked()

	// the load outlives the caller's request; keep its values, drop its deadline
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		projects, err := c.fetcher.ProjectsByDepartment(fetchCtx, department)
		c.apply(fetchCtx, tag, department, projects, err)
	}()
	return done
}

// Refresh reloads the currently selected department, if any.
func (c *Controller) Refresh(ctx context.Context) <-chan struct{} {
	c.mu.Lock()
	department := c.state.Department
	c.mu.Unlock()
	if department == "" {
		done := make(chan struct{})
		close(done)
		return done
	}
	return c.SelectDepartment(ctx, department)
}

// SetSearchQuery updates the filter. It never fetches.
func (c *Controller) SetSearchQuery(query string) {
	c.mu.Lock()
	c.state.SearchQuery = query
	c.commitLocked()
}

func (c *Controller) apply(ctx context.Context, tag uint64, department domain.Department, projects []domain.ProjectIdea, err error) {
	logger := logging.NewLogger(ctx)

	c.mu.Lock()
	if tag != c.seq {
		c.mu.Unlock()
		logger.LogDebugf("select_department", "discarding stale result department=%s tag=%d current=%d", department, tag, c.seq)
		return
	}

	c.state.Loading = false
	if err != nil {
		c.state.Error = portalapi.UserMessage(err, "Failed to load projects")
		c.state.Projects = []domain.ProjectIdea{}
		logger.LogWarnf("select_department", "department=%s error=%q", department, c.state.Error)
	} else {
		if projects == nil {
			projects = []domain.ProjectIdea{}
		}
		c.state.Projects = projects
		c.state.Error = ""
	}
	c.commitLocked()
}

// commitLocked releases c.mu and notifies listeners with a snapshot taken
// under the lock. c.notifyMu is never taken while c.mu is held.
func (c *Controller) commitLocked() {
	c.version++
	version := c.version
	snap := c.snapshotLocked()
	listeners := make([]func(State), len(c.listeners))
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

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Projects = append([]domain.ProjectIdea(nil), c.state.Projects...)
	if s.Projects == nil {
		s.Projects = []domain.ProjectIdea{}
	}
	return s
}
