package handlers

import (
	"net/http"

	"quiz-app/internal/auth"
	"quiz-app/internal/models"
	"quiz-app/internal/service"

	"github.com/gin-gonic/gin"
)

type testRequest struct {
	ImageID   *string           `json:"image_id"`
	Title     string            `json:"title"`
	Questions []models.Question `json:"questions"`
}

func testsParams(c *gin.Context) service.PagedTestsParams {
	return service.PagedTestsParams{
		Sort:    models.ParseTestsSortOption(c.Query("sort")),
		Search:  c.Query("search"),
		Teacher: c.Query("teacher"),
	}
}

// ListTests returns one page of tests. Pass next_cursor back as cursor for
// the following page.
func (h *Handler) ListTests(c *gin.Context) {
	size, err := h.pageSize(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, appErr := h.uc.PageTests.Run(c.Request.Context(), service.TestsPageParams{
		PagedTestsParams: testsParams(c),
		Cursor:           c.Query("cursor"),
		PageSize:         size,
	})
	if appErr != nil {
		h.fail(c, appErr)
		return
	}
	page.Items = viewTests(page.Items, auth.UserID(c))
	c.JSON(http.StatusOK, page)
}

// viewTests hides the correct answers of tests the viewer does not own.
func viewTests(tests []models.Test, viewerID string) []models.Test {
	views := make([]models.Test, len(tests))
	for i := range tests {
		views[i] = tests[i].ViewFor(viewerID)
	}
	return views
}

func (h *Handler) CreateTest(c *gin.Context) {
	h.saveTest(c, "", http.StatusCreated)
}

func (h *Handler) UpdateTest(c *gin.Context) {
	h.saveTest(c, c.Param("id"), http.StatusOK)
}

func (h *Handler) saveTest(c *gin.Context, id string, status int) {
	var req testRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	test := models.Test{ID: id, ImageID: req.ImageID, Title: req.Title, Questions: req.Questions}

	validation, err := h.uc.ValidateTest.Run(c.Request.Context(), test)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !validation.Valid {
		invalidFields(c, validation.Errors)
		return
	}

	savedID, err := h.uc.SaveTest.Run(c.Request.Context(), test)
	if err != nil {
		h.fail(c, err)
		return
	}

	saved, err := h.uc.GetTest.Run(c.Request.Context(), savedID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, saved)
}

// GetTest returns a test. Students receive the shuffled view without the
// correct answers.
func (h *Handler) GetTest(c *gin.Context) {
	test, err := h.uc.GetTest.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	details, err := h.uc.GetUserDetails.Run(c.Request.Context(), service.Unit{})
	if err != nil {
		h.fail(c, err)
		return
	}
	if details.Role == models.RoleStudent {
		test = test.ForStudent(nil)
	} else {
		test = test.ViewFor(auth.UserID(c))
	}
	c.JSON(http.StatusOK, test)
}

func (h *Handler) DeleteTest(c *gin.Context) {
	if _, err := h.uc.DeleteTest.Run(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
