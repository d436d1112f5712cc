package http

import (
	"github.com/igmoiiz/Project-Portal-AUMC/internal/browse"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/projects/domain"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/upload"
)

// DefaultMaxUploadBytes caps spreadsheets accepted by the bridge.
const DefaultMaxUploadBytes = 10 << 20

// Handler bundles the dependencies for the project browse and upload endpoints.
type Handler struct {
	browse         *browse.Controller
	upload         *upload.Controller
	validatorBase  string
	maxUploadBytes int64
}

// New builds the handler. An empty validatorBase uses the public validator.
func New(b *browse.Controller, u *upload.Controller, validatorBase string, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		browse:         b,
		upload:         u,
		validatorBase:  validatorBase,
		maxUploadBytes: maxUploadBytes,
	}
}

type departmentReq struct {
	Department string `json:"department"`
	// Wait holds the response until the fetch settles.
	Wait bool `json:"wait"`
}

type searchReq struct {
	Query string `json:"query"`
}

type browseResp struct {
	browse.State
	VisibleProjects []domain.ProjectIdea `json:"visible_projects"`
}

func newBrowseResp(s browse.State) browseResp {
	return browseResp{State: s, VisibleProjects: s.VisibleProjects()}
}
