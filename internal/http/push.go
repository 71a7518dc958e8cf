package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"userhub/internal/service"
)

type pushRequest struct {
	Token string            `json:"token" binding:"required"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

func (h *Handler) enqueuePush(c *gin.Context) {
	var req pushRequest
	if !h.bindJSON(c, &req) {
		return
	}
	msg, err := h.push.Enqueue(c.Request.Context(), service.EnqueuePushInput{
		Token: req.Token,
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusAccepted, msg)
}
