package handlers

import (
	"net/http"

	"quiz-app/internal/auth"
	"quiz-app/internal/models"
	"quiz-app/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetUserDetails(c *gin.Context) {
	details, err := h.uc.GetUserDetails.Run(c.Request.Context(), service.Unit{})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) SaveUserDetails(c *gin.Context) {
	var details models.UserDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		h.badRequest(c, err)
		return
	}

	fields, err := h.uc.ValidateUserDetails.Run(c.Request.Context(), details)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(fields) > 0 {
		invalidFields(c, fields)
		return
	}

	if _, err := h.uc.SaveUserDetails.Run(c.Request.Context(), details); err != nil {
		h.fail(c, err)
		return
	}
	details.UserID = auth.UserID(c)
	c.JSON(http.StatusOK, details)
}
