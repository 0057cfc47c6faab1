// Package dao holds the accessors for remote and local storage. Accessors
// return raw storage errors (wrapped with context) and the sentinels below;
// translating them is the repositories' job.
package dao

import (
	"context"
	"errors"

	"quiz-app/internal/models"
	"quiz-app/internal/paging"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrAccountNotFound = errors.New("account not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoSession       = errors.New("no session in context")
	ErrImageNotFound   = errors.New("image not found")
)

// TestQuery selects and orders a paged listing of tests.
type TestQuery struct {
	Sort models.TestsSortOption
	// Search is a title prefix; when set it takes over the ordering.
	Search    string
	TeacherID string
}

type TestDAO interface {
	// Save inserts the test when its id is empty and replaces it otherwise.
	// It returns the stored id.
	Save(ctx context.Context, test *models.Test) (string, error)
	Delete(ctx context.Context, id string) error
	// Get returns nil without error when the test does not exist.
	Get(ctx context.Context, id string) (*models.Test, error)
	Page(ctx context.Context, query TestQuery, params paging.LoadParams) (paging.Page[models.Test], error)
}

// ResultRecord is a stored answer sheet: one per test and respondent.
type ResultRecord struct {
	TestID  string                         `bson:"test_id"`
	UserID  string                         `bson:"user_id"`
	Answers map[string]models.AnswerOption `bson:"answers"`
}

type TestResultDAO interface {
	Save(ctx context.Context, record *ResultRecord) error
	// Get returns nil without error when there is no result.
	Get(ctx context.Context, testID, userID string) (*ResultRecord, error)
	Page(ctx context.Context, testID string, params paging.LoadParams) (paging.Page[ResultRecord], error)
}

type UserDetailsDAO interface {
	// Get returns nil without error when the user has no details.
	Get(ctx context.Context, userID string) (*models.UserDetails, error)
	Save(ctx context.Context, details *models.UserDetails) error
}

// LocalUserDetailsDAO is the cache of user profiles kept next to the app.
type LocalUserDetailsDAO interface {
	UserDetailsDAO
	Delete(ctx context.Context, userID string) error
	// Observe emits the current value, then every change. Absent or
	// unreadable records are emitted as nil.
	Observe(ctx context.Context, userID string) (<-chan *models.UserDetails, error)
}

type UserAuthDAO interface {
	SignUp(ctx context.Context, credential models.Credential) (models.Session, error)
	LogIn(ctx context.Context, credential models.Credential) (models.Session, error)
	LogOut(ctx context.Context, sessionID string) error
	// CurrentUserID resolves the session carried by ctx. It returns an empty
	// id when the session is missing or revoked.
	CurrentUserID(ctx context.Context) (string, error)
	// ObserveUserID emits the user id of the session carried by ctx, and an
	// empty id once the session is revoked.
	ObserveUserID(ctx context.Context) (<-chan string, error)
}

type ImageDAO interface {
	// Upload stores the image and records who uploaded it.
	Upload(ctx context.Context, id, owner string, data []byte) error
	// Owner returns the uploader of a stored image, or ErrImageNotFound.
	Owner(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
	Link(ctx context.Context, id string) (string, error)
}

type sessionCtxKey struct{}

// ContextWithSession returns a copy of ctx carrying the session.
func ContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

func SessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(models.Session)
	return session, ok && session.ID != ""
}

var (
	_ TestDAO             = (*MongoTestDAO)(nil)
	_ TestResultDAO       = (*MongoTestResultDAO)(nil)
	_ UserDetailsDAO      = (*MongoUserDetailsDAO)(nil)
	_ LocalUserDetailsDAO = (*RedisLocalUserDetailsDAO)(nil)
	_ ImageDAO            = (*MinioImageDAO)(nil)
	_ UserAuthDAO         = (*MongoUserAuthDAO)(nil)
)
