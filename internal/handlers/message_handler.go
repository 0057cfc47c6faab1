package handlers

import (
	"net/http"

	"quiz-app/internal/apperr"
	"quiz-app/internal/auth"

	"github.com/gin-gonic/gin"
)

// ListMessages returns the caller's pending messages, oldest first. The
// first one is what the client should show.
func (h *Handler) ListMessages(c *gin.Context) {
	owner := auth.UserID(c)
	resp := gin.H{"messages": h.inbox.List(owner)}
	if head, ok := h.inbox.Head(owner); ok {
		resp["head"] = head
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ClearMessage(c *gin.Context) {
	if !h.inbox.Clear(auth.UserID(c), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": apperr.KindNotFound, "message": "message not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
