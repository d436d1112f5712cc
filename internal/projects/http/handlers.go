package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/browse"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/projects/domain"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/validation"
)

func (h *Handler) departments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "departments": domain.Departments()})
}

func (h *Handler) state(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "browse": newBrowseResp(h.browse.Snapshot())})
}

func (h *Handler) selectDepartment(c *gin.Context) {
	var req departmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	var department domain.Department
	if strings.TrimSpace(req.Department) != "" {
		d, err := domain.ParseDepartment(req.Department)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		department = d
	}

	done := h.browse.SelectDepartment(c.Request.Context(), department)
	if req.Wait {
		if !wait(c, done) {
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "browse": newBrowseResp(h.browse.Snapshot())})
}

func (h *Handler) search(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	h.browse.SetSearchQuery(req.Query)
	c.JSON(http.StatusOK, gin.H{"ok": true, "browse": newBrowseResp(h.browse.Snapshot())})
}

func (h *Handler) refresh(c *gin.Context) {
	done := h.browse.Refresh(c.Request.Context())
	if c.Query("wait") == "true" {
		if !wait(c, done) {
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "browse": newBrowseResp(h.browse.Snapshot())})
}

// copyText returns the clipboard text for one visible project.
func (h *Handler) copyText(c *gin.Context) {
	id := c.Param("id")
	for _, p := range h.browse.VisibleProjects() {
		if p.ID == id {
			c.JSON(http.StatusOK, gin.H{"ok": true, "text": browse.CopyText(p)})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
}

func (h *Handler) validationURL(c *gin.Context) {
	title := c.Query("title")
	area := c.Query("area")
	supervisor := c.Query("supervisor")

	var link string
	if h.validatorBase != "" {
		link = validation.BuildURLWithBase(h.validatorBase, title, area, supervisor)
	} else {
		link = validation.BuildURL(title, area, supervisor)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "url": link})
}

// wait blocks until done closes. It answers the request itself and reports
// false when the client went away first.
func wait(c *gin.Context, done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	case <-c.Request.Context().Done():
		err := c.Request.Context().Err()
		status := http.StatusRequestTimeout
		if errors.Is(err, context.Canceled) {
			status = 499
		}
		c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": err.Error()})
		return false
	}
}
