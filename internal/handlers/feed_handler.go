package handlers

import (
	"net/http"

	"quiz-app/internal/auth"
	"quiz-app/internal/models"
	"quiz-app/internal/service"

	"github.com/gin-gonic/gin"
)

type testFeedRequest struct {
	Sort    string `json:"sort"`
	Search  string `json:"search"`
	Teacher string `json:"teacher"`
}

func (r testFeedRequest) params() service.PagedTestsParams {
	return service.PagedTestsParams{
		Sort:    models.ParseTestsSortOption(r.Sort),
		Search:  r.Search,
		Teacher: r.Teacher,
	}
}

type resultFeedRequest struct {
	TestID string `json:"test_id" binding:"required"`
}

type feedResponse[T any] struct {
	FeedID string `json:"feed_id"`
	Items  []T    `json:"items"`
	Done   bool   `json:"done"`
}

func (h *Handler) CreateTestFeed(c *gin.Context) {
	var req testFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	f := h.testFeeds.Create(c.Request.Context(), auth.UserID(c), req.params())
	c.JSON(http.StatusCreated, gin.H{"feed_id": f.ID})
}

// UpdateTestFeed replaces the feed's parameters. The next page pulled comes
// from the start of the new listing.
func (h *Handler) UpdateTestFeed(c *gin.Context) {
	var req testFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	f, err := h.testFeeds.Get(c.Param("id"), auth.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	f.Update(req.params())
	c.Status(http.StatusNoContent)
}

func (h *Handler) NextTestFeedPage(c *gin.Context) {
	f, err := h.testFeeds.Get(c.Param("id"), auth.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := f.Next(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feedResponse[models.Test]{
		FeedID: f.ID,
		Items:  viewTests(page.Items, auth.UserID(c)),
		Done:   page.NextCursor == nil,
	})
}

func (h *Handler) DeleteTestFeed(c *gin.Context) {
	if err := h.testFeeds.Delete(c.Param("id"), auth.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateResultFeed opens a feed over the results of one of the caller's
// tests.
func (h *Handler) CreateResultFeed(c *gin.Context) {
	var req resultFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	// ownership check; the feed itself pages without one
	if _, err := h.uc.PageTestResults.Run(c.Request.Context(), service.TestResultsPageParams{TestID: req.TestID, PageSize: 1}); err != nil {
		h.fail(c, err)
		return
	}

	f := h.resultFeeds.Create(c.Request.Context(), auth.UserID(c), service.PagedTestResultsParams{TestID: req.TestID})
	c.JSON(http.StatusCreated, gin.H{"feed_id": f.ID})
}

func (h *Handler) NextResultFeedPage(c *gin.Context) {
	f, err := h.resultFeeds.Get(c.Param("id"), auth.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	test, appErr := h.uc.GetTest.Run(c.Request.Context(), f.Params().TestID)
	if appErr != nil {
		h.fail(c, appErr)
		return
	}

	page, err := f.Next(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feedResponse[service.ScoredResult]{
		FeedID: f.ID,
		Items:  service.ScoreResults(&test, page.Items),
		Done:   page.NextCursor == nil,
	})
}

func (h *Handler) DeleteResultFeed(c *gin.Context) {
	if err := h.resultFeeds.Delete(c.Param("id"), auth.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
