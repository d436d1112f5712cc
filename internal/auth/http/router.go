package http

import "github.com/gin-gonic/gin"

// Register attaches session routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.current)
	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
}
