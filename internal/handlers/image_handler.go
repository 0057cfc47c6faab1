package handlers

import (
	"fmt"
	"io"
	"net/http"

	"quiz-app/internal/apperr"
	"quiz-app/internal/service"

	"github.com/gin-gonic/gin"
)

// UploadImage stores the multipart field "image" and returns the new id.
func (h *Handler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if header.Size > h.maxUpload {
		h.fail(c, apperr.Newf(apperr.KindValidation, "image exceeds %d bytes", h.maxUpload))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.KindFailedToUploadFile, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.KindFailedToUploadFile, fmt.Errorf("read upload: %w", err)))
		return
	}
	if int64(len(data)) > h.maxUpload {
		h.fail(c, apperr.Newf(apperr.KindValidation, "image exceeds %d bytes", h.maxUpload))
		return
	}

	id, appErr := h.uc.UploadImage.Run(c.Request.Context(), service.UploadImageParams{Data: data})
	if appErr != nil {
		h.fail(c, appErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) GetImageLink(c *gin.Context) {
	link, err := h.uc.GetImageLink.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "url": link})
}

func (h *Handler) DeleteImage(c *gin.Context) {
	if _, err := h.uc.DeleteImage.Run(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
