package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"userhub/internal/domain"
	"userhub/internal/service"
)

func (h *Handler) uploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.abortWithError(c, domain.NewValidationError("no file uploaded"))
		return
	}
	src, err := header.Open()
	if err != nil {
		h.abortWithError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer src.Close()

	// One byte past the limit lets the service report the oversize.
	data, err := io.ReadAll(io.LimitReader(src, h.deps.MaxUploadSize+1))
	if err != nil {
		h.abortWithError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	res, err := h.files.Upload(c.Request.Context(), service.UploadInput{
		Data:         data,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		UserID:       currentUserID(c),
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, res)
}

func (h *Handler) listFiles(c *gin.Context) {
	files, err := h.files.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, files)
}

func (h *Handler) getFile(c *gin.Context) {
	res, err := h.files.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (h *Handler) downloadFile(c *gin.Context) {
	file, obj, err := h.files.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.Size, file.MimeType, obj.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(file.OriginalName)),
	})
}

func (h *Handler) deleteFile(c *gin.Context) {
	if err := h.files.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}
