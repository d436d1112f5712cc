package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/auth"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/portalapi"
)

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	sess, err := h.manager.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		msg := portalapi.UserMessage(err, "Login failed")
		if errors.Is(err, auth.ErrInvalidLoginInput) {
			msg = err.Error()
		}
		c.JSON(loginStatus(err), gin.H{"ok": false, "error": msg})
		return
	}
	h.changed(c)

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": describe(sess)})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.manager.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	h.changed(c)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) current(c *gin.Context) {
	sess, err := h.manager.Current(c.Request.Context())
	if errors.Is(err, auth.ErrNoSession) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "session": sessionResp{}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": describe(sess)})
}

func (h *Handler) changed(c *gin.Context) {
	if h.onChange != nil {
		h.onChange(c.Request.Context())
	}
}

// describe never exposes the token itself.
func describe(sess auth.Session) sessionResp {
	return sessionResp{
		Authenticated: sess.Token != "",
		Department:    sess.User.Department,
		Profile:       sess.User.Profile,
	}
}

func loginStatus(err error) int {
	var (
		appErr  *portalapi.ApplicationError
		httpErr *portalapi.HTTPError
		netErr  *portalapi.NetworkError
	)
	switch {
	case errors.Is(err, auth.ErrInvalidLoginInput):
		return http.StatusBadRequest
	case errors.As(err, &appErr):
		return http.StatusUnauthorized
	case errors.As(err, &httpErr), errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
