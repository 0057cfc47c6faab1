// Package handlers exposes the use cases over HTTP. Handlers hold no state of
// their own beyond the message inbox and the live feeds.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"quiz-app/internal/apperr"
	"quiz-app/internal/auth"
	"quiz-app/internal/feed"
	"quiz-app/internal/models"
	"quiz-app/internal/notify"
	"quiz-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type (
	TestFeeds   = feed.Registry[service.PagedTestsParams, models.Test]
	ResultFeeds = feed.Registry[service.PagedTestResultsParams, models.TestResult]
)

func NewTestFeeds(uc *service.UseCases, idle time.Duration) *TestFeeds {
	return feed.NewRegistry[service.PagedTestsParams, models.Test]("tests", uc.ObservePagedTests, idle)
}

func NewResultFeeds(uc *service.UseCases, idle time.Duration) *ResultFeeds {
	return feed.NewRegistry[service.PagedTestResultsParams, models.TestResult]("results", uc.ObservePagedTestResults, idle)
}

type Handler struct {
	uc          *service.UseCases
	inbox       *notify.Inbox
	tokens      *auth.TokenManager
	testFeeds   *TestFeeds
	resultFeeds *ResultFeeds
	maxPageSize int
	maxUpload   int64
}

type Options struct {
	MaxPageSize int
	// MaxUploadBytes limits image uploads.
	MaxUploadBytes int64
}

func NewHandler(uc *service.UseCases, inbox *notify.Inbox, tokens *auth.TokenManager, testFeeds *TestFeeds, resultFeeds *ResultFeeds, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	return &Handler{
		uc:          uc,
		inbox:       inbox,
		tokens:      tokens,
		testFeeds:   testFeeds,
		resultFeeds: resultFeeds,
		maxPageSize: opts.MaxPageSize,
		maxUpload:   opts.MaxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, mw *auth.Middleware) {
	r.Use(mw.Authenticate())

	authGroup := r.Group("/auth")
	authGroup.POST("/signup", h.SignUp)
	authGroup.POST("/login", h.LogIn)
	authGroup.POST("/logout", h.LogOut)
	authGroup.GET("/state", h.AuthState)

	private := r.Group("", auth.RequireUser())

	private.GET("/users/me", h.GetUserDetails)
	private.PUT("/users/me", h.SaveUserDetails)

	private.GET("/tests", h.ListTests)
	private.POST("/tests", h.CreateTest)
	private.GET("/tests/:id", h.GetTest)
	private.PUT("/tests/:id", h.UpdateTest)
	private.DELETE("/tests/:id", h.DeleteTest)

	private.POST("/tests/:id/results", h.SaveTestResult)
	private.GET("/tests/:id/results/me", h.GetTestResult)
	private.GET("/tests/:id/results", h.ListTestResults)

	private.POST("/feeds/tests", h.CreateTestFeed)
	private.PUT("/feeds/tests/:id", h.UpdateTestFeed)
	private.GET("/feeds/tests/:id", h.NextTestFeedPage)
	private.DELETE("/feeds/tests/:id", h.DeleteTestFeed)

	private.POST("/feeds/results", h.CreateResultFeed)
	private.GET("/feeds/results/:id", h.NextResultFeedPage)
	private.DELETE("/feeds/results/:id", h.DeleteResultFeed)

	private.POST("/images", h.UploadImage)
	private.GET("/images/:id", h.GetImageLink)
	private.DELETE("/images/:id", h.DeleteImage)

	private.GET("/messages", h.ListMessages)
	private.DELETE("/messages/:id", h.ClearMessage)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindInvalidCredential:
		return http.StatusUnauthorized
	case apperr.KindUserDoesNotExist, apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUserAlreadyExists:
		return http.StatusConflict
	case apperr.KindNetwork:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes err as the response. Failures other than validation are also
// queued in the caller's inbox.
func (h *Handler) fail(c *gin.Context, err error) {
	e := apperr.Coerce(err)
	status := statusFor(e.Kind)
	body := gin.H{"error": e.Kind, "message": e.Message}

	if status >= http.StatusInternalServerError {
		logrus.WithError(e).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
	}

	if e.Kind != apperr.KindValidation {
		if owner := auth.UserID(c); owner != "" {
			body["message_id"] = h.inbox.Push(owner, e.Kind, e.Message).ID
		}
	}
	c.JSON(status, body)
}

// badRequest reports a malformed request body or query.
func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": apperr.KindValidation, "message": err.Error()})
}

// invalidFields reports per-field validation failures inline.
func invalidFields(c *gin.Context, fields any) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": apperr.KindValidation, "fields": fields})
}

// pageSize reads the page_size query parameter, capped at the configured
// maximum. Zero selects the default.
func (h *Handler) pageSize(c *gin.Context) (int, error) {
	raw := c.Query("page_size")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Newf(apperr.KindValidation, "page_size must be a non-negative integer")
	}
	if h.maxPageSize > 0 && n > h.maxPageSize {
		n = h.maxPageSize
	}
	return n, nil
}
