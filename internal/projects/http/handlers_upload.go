package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/logging"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/portalapi"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/upload"
)

func (h *Handler) uploadState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "upload": h.upload.Snapshot()})
}

// selectFile takes the spreadsheet as multipart field "file" and makes it the
// current selection.
func (h *Handler) selectFile(c *gin.Context) {
	header, err := c.FormFile(portalapi.FileField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing file"})
		return
	}
	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes),
		})
		return
	}

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxUploadBytes+1))
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("select_file", err)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "failed to read file"})
		return
	}

	err = h.upload.SelectFile(upload.FileFromBytes(header.Filename, data))
	snap := h.upload.Snapshot()
	switch {
	case errors.Is(err, upload.ErrUploadInProgress):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error(), "upload": snap})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": snap.Message, "upload": snap})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true, "upload": snap})
	}
}

func (h *Handler) clearFile(c *gin.Context) {
	h.upload.ClearFile()
	c.JSON(http.StatusOK, gin.H{"ok": true, "upload": h.upload.Snapshot()})
}

// submit blocks until the attempt settles; progress is observable meanwhile
// through GET /upload.
func (h *Handler) submit(c *gin.Context) {
	err := h.upload.SubmitUpload(c.Request.Context())
	snap := h.upload.Snapshot()
	if err != nil {
		msg := snap.Message
		if errors.Is(err, upload.ErrUploadInProgress) {
			msg = err.Error()
		}
		c.JSON(submitStatus(err), gin.H{"ok": false, "error": msg, "upload": snap})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "upload": snap})
}

func submitStatus(err error) int {
	if errors.Is(err, upload.ErrUploadInProgress) {
		return http.StatusConflict
	}
	switch upload.ErrorKind(err) {
	case upload.KindNoFileSelected, upload.KindInvalidFileType:
		return http.StatusBadRequest
	case upload.KindUnauthenticated:
		return http.StatusUnauthorized
	case upload.KindServerRejected:
		return http.StatusUnprocessableEntity
	case upload.KindNetwork, upload.KindHTTP:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
