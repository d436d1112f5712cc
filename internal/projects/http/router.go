package http

import "github.com/gin-gonic/gin"

// Register attaches the browse, upload and validator routes to the given
// router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/departments", h.departments)
	rg.GET("/validation-url", h.validationURL)

	b := rg.Group("/browse")
	b.GET("", h.state)
	b.PUT("/department", h.selectDepartment)
	b.PUT("/search", h.search)
	b.POST("/refresh", h.refresh)
	b.GET("/projects/:id/copy-text", h.copyText)

	u := rg.Group("/upload")
	u.GET("", h.uploadState)
	u.POST("/file", h.selectFile)
	u.DELETE("/file", h.clearFile)
	u.POST("/submit", h.submit)
}
