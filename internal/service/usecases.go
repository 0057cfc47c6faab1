// Package service holds the application's use cases. Each one wraps a single
// repository operation in an interactor so handlers get a uniform status
// stream, timeout and error taxonomy.
package service

import (
	"context"
	"time"

	"quiz-app/internal/apperr"
	"quiz-app/internal/event"
	"quiz-app/internal/interactor"
	"quiz-app/internal/models"
	"quiz-app/internal/paging"
	"quiz-app/internal/repository"

	"github.com/sirupsen/logrus"
)

type Deps struct {
	Auth    *repository.UserAuthRepository
	Users   *repository.UserDetailsRepository
	Tests   *repository.TestRepository
	Results *repository.TestResultRepository
	Images  *repository.ImageRepository
	Events  event.Publisher

	Dispatcher *interactor.Dispatcher
	// Timeout overrides the default use case timeout when set.
	Timeout  time.Duration
	PageSize int
}

type Unit = struct{}

type UploadImageParams struct {
	// ID is generated when empty.
	ID   string
	Data []byte
}

type UseCases struct {
	deps Deps

	SignUp *interactor.Interactor[models.Credential, models.Session]
	LogIn  *interactor.Interactor[models.Credential, models.Session]
	LogOut *interactor.Interactor[Unit, Unit]

	ValidateEmail       *interactor.Interactor[string, bool]
	ValidatePassword    *interactor.Interactor[string, bool]
	ValidateName        *interactor.Interactor[string, bool]
	ValidateTest        *interactor.Interactor[models.Test, TestValidation]
	ValidateUserDetails *interactor.Interactor[models.UserDetails, []FieldError]

	SaveTest   *interactor.Interactor[models.Test, string]
	GetTest    *interactor.Interactor[string, models.Test]
	DeleteTest *interactor.Interactor[string, Unit]

	SaveTestResult *interactor.Interactor[models.TestResult, Unit]
	GetTestResult  *interactor.Interactor[string, models.TestResult]

	GetUserDetails  *interactor.Interactor[Unit, models.UserDetails]
	SaveUserDetails *interactor.Interactor[models.UserDetails, Unit]

	PageTests       *interactor.Interactor[TestsPageParams, paging.Page[models.Test]]
	PageTestResults *interactor.Interactor[TestResultsPageParams, paging.Page[ScoredResult]]

	UploadImage  *interactor.Interactor[UploadImageParams, string]
	DeleteImage  *interactor.Interactor[string, Unit]
	GetImageLink *interactor.Interactor[string, string]
	// PurgeImage deletes without an ownership check, for event-driven cleanup.
	PurgeImage *interactor.Interactor[string, Unit]
}

func register[P, R any](deps Deps, name string, work interactor.Func[P, R]) *interactor.Interactor[P, R] {
	return interactor.New(name, deps.Dispatcher, work).WithTimeout(deps.Timeout)
}

func New(deps Deps) *UseCases {
	if deps.Events == nil {
		deps.Events = event.NopPublisher{}
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = interactor.NewDispatcher(64)
	}

	u := &UseCases{deps: deps}

	u.SignUp = register(deps, "sign_up", u.signUp)
	u.LogIn = register(deps, "log_in", u.logIn)
	u.LogOut = register(deps, "log_out", u.logOut)

	u.ValidateEmail = register(deps, "validate_email", func(_ context.Context, email string) (bool, error) {
		return IsValidEmail(email), nil
	})
	u.ValidatePassword = register(deps, "validate_password", func(_ context.Context, password string) (bool, error) {
		return IsValidPassword(password), nil
	})
	u.ValidateName = register(deps, "validate_name", func(_ context.Context, name string) (bool, error) {
		return IsValidName(name), nil
	})
	u.ValidateTest = register(deps, "validate_test", func(_ context.Context, test models.Test) (TestValidation, error) {
		return CheckTest(&test), nil
	})
	u.ValidateUserDetails = register(deps, "validate_user_details", func(_ context.Context, details models.UserDetails) ([]FieldError, error) {
		return CheckUserDetails(&details), nil
	})

	u.SaveTest = register(deps, "save_test", u.saveTest)
	u.GetTest = register(deps, "get_test", u.getTest)
	u.DeleteTest = register(deps, "delete_test", u.deleteTest)

	u.SaveTestResult = register(deps, "save_test_result", u.saveTestResult)
	u.GetTestResult = register(deps, "get_test_result", u.getTestResult)

	u.GetUserDetails = register(deps, "get_user_details", u.getUserDetails)
	u.SaveUserDetails = register(deps, "save_user_details", u.saveUserDetails)

	u.PageTests = register(deps, "page_tests", u.pageTests)
	u.PageTestResults = register(deps, "page_test_results", u.pageTestResults)

	u.UploadImage = register(deps, "upload_image", u.uploadImage)
	u.DeleteImage = register(deps, "delete_image", u.deleteImage)
	u.PurgeImage = register(deps, "purge_image", u.purgeImage)
	u.GetImageLink = register(deps, "get_image_link", u.getImageLink)

	return u
}

// publish reports a domain event. Failures are logged and never fail the
// use case.
func (u *UseCases) publish(ctx context.Context, eventType event.EventType, payload any) {
	if err := u.deps.Events.Publish(ctx, eventType, payload); err != nil {
		logrus.WithError(err).WithField("event", eventType).Warn("Failed to publish event")
	}
}

// currentUserID resolves the caller. A request without a live session is
// an unexpected state for every use case that needs one.
func (u *UseCases) currentUserID(ctx context.Context) (string, error) {
	userID, err := u.deps.Auth.UserID(ctx)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", apperr.Newf(apperr.KindUnexpected, "no user is logged in")
	}
	return userID, nil
}
