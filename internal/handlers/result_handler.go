package handlers

import (
	"net/http"

	"quiz-app/internal/models"
	"quiz-app/internal/service"

	"github.com/gin-gonic/gin"
)

type resultRequest struct {
	Answers []models.QuestionAnswer `json:"answers" binding:"required,dive"`
}

func (h *Handler) SaveTestResult(c *gin.Context) {
	var req resultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result := models.TestResult{TestID: c.Param("id"), Answers: req.Answers}
	if _, err := h.uc.SaveTestResult.Run(c.Request.Context(), result); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTestResult returns the caller's result for a test with its score.
func (h *Handler) GetTestResult(c *gin.Context) {
	ctx := c.Request.Context()

	test, err := h.uc.GetTest.Run(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	result, err := h.uc.GetTestResult.Run(ctx, test.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ScoreResults(&test, []models.TestResult{result})[0])
}

// ListTestResults returns one page of the results of one of the caller's
// tests.
func (h *Handler) ListTestResults(c *gin.Context) {
	size, err := h.pageSize(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, appErr := h.uc.PageTestResults.Run(c.Request.Context(), service.TestResultsPageParams{
		TestID:   c.Param("id"),
		Cursor:   c.Query("cursor"),
		PageSize: size,
	})
	if appErr != nil {
		h.fail(c, appErr)
		return
	}
	c.JSON(http.StatusOK, page)
}
