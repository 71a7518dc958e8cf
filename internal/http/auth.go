package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	UserID       any    `json:"userId"`
	ClientSecret string `json:"clientSecret" binding:"required"`
}

func (h *Handler) issueToken(c *gin.Context) {
	var req tokenRequest
	if !h.bindJSON(c, &req) {
		return
	}
	token, err := h.auth.IssueToken(c.Request.Context(), req.UserID, req.ClientSecret)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, token)
}
