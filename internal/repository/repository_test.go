package repository

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"quiz-app/internal/apperr"
	"quiz-app/internal/dao"
	"quiz-app/internal/dao/memdao"
	"quiz-app/internal/models"
	"quiz-app/internal/paging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNetwork = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

func TestTranslate(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		fallback apperr.Kind
		want     apperr.Kind
	}{
		{"network error", errNetwork, apperr.KindUnexpected, apperr.KindNetwork},
		{"deadline", context.DeadlineExceeded, apperr.KindUnexpected, apperr.KindNetwork},
		{"invalid cursor", paging.ErrInvalidCursor, apperr.KindUnexpected, apperr.KindValidation},
		{"other", errors.New("disk full"), apperr.KindUnexpected, apperr.KindUnexpected},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, translate("op", tc.err, tc.fallback).Kind)
		})
	}
}

func TestTestRepositorySaveFailureKinds(t *testing.T) {
	tests := memdao.NewTests()
	repo := NewTestRepository(tests)

	tests.Err = errNetwork
	_, err := repo.Save(context.Background(), &models.Test{Title: "t"})
	assert.ErrorIs(t, err, apperr.ErrFailedToSaveTest)

	err = repo.Delete(context.Background(), "x")
	assert.ErrorIs(t, err, apperr.ErrNetwork)

	tests.Err = errors.New("boom")
	_, err = repo.Get(context.Background(), "x")
	assert.ErrorIs(t, err, apperr.ErrUnexpected)
}

func TestTestRepositoryRoundTrip(t *testing.T) {
	repo := NewTestRepository(memdao.NewTests())
	ctx := context.Background()

	id, err := repo.Save(ctx, &models.Test{Title: "Capitals", TeacherID: "u1", Questions: []models.Question{{Question: "q"}}})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Capitals", got.Title)
	assert.NotEmpty(t, got.Questions[0].ID)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Delete(ctx, id))
	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTestRepositoryPagingSource(t *testing.T) {
	repo := NewTestRepository(memdao.NewTests())
	ctx := context.Background()
	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := repo.Save(ctx, &models.Test{Title: title, TeacherID: "u1"})
		require.NoError(t, err)
	}

	pager := paging.NewPager(repo.PagingSource(dao.TestQuery{Sort: models.SortOldest}), 2)

	first, err := pager.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, "Alpha", first.Items[0].Title)

	second, err := pager.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, second.NextCursor)
	assert.Len(t, second.Items, 1)
	assert.Equal(t, "Gamma", second.Items[0].Title)
}

func details(id string) *models.UserDetails {
	return &models.UserDetails{UserID: id, Role: models.RoleStudent, GivenName: "Given " + id, FamilyName: "Family"}
}

func TestUserDetailsGetIsLocalFirstAndBackfills(t *testing.T) {
	remote := memdao.NewUserDetails()
	local := memdao.NewLocalUserDetails()
	repo := NewUserDetailsRepository(remote, local)
	ctx := context.Background()

	require.NoError(t, remote.Save(ctx, details("u1")))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 1, remote.Gets)

	cached, err := local.Get(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, cached)

	_, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, remote.Gets)

	none, err := repo.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserDetailsSaveWritesRemoteThenLocal(t *testing.T) {
	remote := memdao.NewUserDetails()
	local := memdao.NewLocalUserDetails()
	repo := NewUserDetailsRepository(remote, local)
	ctx := context.Background()

	remote.Err = errNetwork
	err := repo.Save(ctx, details("u1"))
	assert.ErrorIs(t, err, apperr.ErrNetwork)
	cached, _ := local.Get(ctx, "u1")
	assert.Nil(t, cached)

	remote.Err = nil
	require.NoError(t, repo.Save(ctx, details("u1")))
	cached, _ = local.Get(ctx, "u1")
	assert.NotNil(t, cached)
}

func TestUserDetailsObserve(t *testing.T) {
	remote := memdao.NewUserDetails()
	local := memdao.NewLocalUserDetails()
	repo := NewUserDetailsRepository(remote, local)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := repo.Observe(ctx, "u1")

	assert.Nil(t, receive(t, stream))

	require.NoError(t, repo.Save(ctx, details("u1")))
	got := receive(t, stream)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("nothing received")
	}
	var zero T
	return zero
}

func TestTestResultRepository(t *testing.T) {
	remote := memdao.NewUserDetails()
	users := NewUserDetailsRepository(remote, memdao.NewLocalUserDetails())
	repo := NewTestResultRepository(memdao.NewResults(), users)
	ctx := context.Background()

	require.NoError(t, users.Save(ctx, details("u1")))
	require.NoError(t, users.Save(ctx, details("u3")))

	for _, uid := range []string{"u1", "u2", "u3"} {
		err := repo.Save(ctx, &models.TestResult{
			TestID:      "t1",
			UserDetails: models.UserDetails{UserID: uid},
			Answers:     []models.QuestionAnswer{{QuestionID: "q2", Answer: models.AnswerA2}, {QuestionID: "q1", Answer: models.AnswerA1}},
		})
		require.NoError(t, err)
	}

	got, err := repo.Get(ctx, "t1", "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Given u1", got.UserDetails.GivenName)
	assert.Equal(t, []models.QuestionAnswer{{QuestionID: "q1", Answer: models.AnswerA1}, {QuestionID: "q2", Answer: models.AnswerA2}}, got.Answers)

	noDetails, err := repo.Get(ctx, "t1", "u2")
	require.NoError(t, err)
	assert.Nil(t, noDetails)

	page, err := repo.PagingSource("t1").Load(ctx, paging.LoadParams{LoadSize: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "u1", page.Items[0].UserDetails.UserID)
	assert.Equal(t, "u3", page.Items[1].UserDetails.UserID)
	assert.NotNil(t, page.NextCursor)
}

func TestTestResultRepositorySaveFailure(t *testing.T) {
	results := memdao.NewResults()
	results.Err = errors.New("write conflict")
	repo := NewTestResultRepository(results, NewUserDetailsRepository(memdao.NewUserDetails(), memdao.NewLocalUserDetails()))

	err := repo.Save(context.Background(), &models.TestResult{TestID: "t1"})
	assert.ErrorIs(t, err, apperr.ErrFailedToSaveTest)
}

func TestUserAuthRepositoryErrorKinds(t *testing.T) {
	auth := memdao.NewUserAuth()
	repo := NewUserAuthRepository(auth)
	ctx := context.Background()
	cred := models.Credential{Email: "a@b.co", Password: "Passw0rd"}

	session, err := repo.SignUp(ctx, cred)
	require.NoError(t, err)
	assert.NotEmpty(t, session.UserID)

	_, err = repo.SignUp(ctx, cred)
	assert.ErrorIs(t, err, apperr.ErrUserAlreadyExists)

	_, err = repo.LogIn(ctx, models.Credential{Email: "x@y.co", Password: "Passw0rd"})
	assert.ErrorIs(t, err, apperr.ErrUserDoesNotExist)

	_, err = repo.LogIn(ctx, models.Credential{Email: "a@b.co", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredential)

	auth.Err = errNetwork
	_, err = repo.LogIn(ctx, cred)
	assert.ErrorIs(t, err, apperr.ErrNetwork)

	auth.Err = errors.New("boom")
	_, err = repo.SignUp(ctx, models.Credential{Email: "n@b.co", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrUnexpected)
}

func TestUserAuthRepositorySession(t *testing.T) {
	repo := NewUserAuthRepository(memdao.NewUserAuth())
	ctx := context.Background()

	uid, err := repo.UserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, uid)

	session, err := repo.SignUp(ctx, models.Credential{Email: "a@b.co", Password: "Passw0rd"})
	require.NoError(t, err)
	sctx := dao.ContextWithSession(ctx, session)

	uid, err = repo.UserID(sctx)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, uid)

	require.NoError(t, repo.LogOut(sctx, session.ID))
	uid, err = repo.UserID(sctx)
	require.NoError(t, err)
	assert.Empty(t, uid)
}

func TestImageRepositoryErrorKinds(t *testing.T) {
	images := memdao.NewImages()
	repo := NewImageRepository(images)
	ctx := context.Background()

	require.NoError(t, repo.Upload(ctx, "i1", "u1", []byte{1, 2}))
	link, err := repo.Link(ctx, "i1")
	require.NoError(t, err)
	assert.Contains(t, link, "i1")

	owner, err := repo.Owner(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)
	_, err = repo.Owner(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	images.Err = errors.New("bucket gone")
	assert.ErrorIs(t, repo.Upload(ctx, "i2", "u1", nil), apperr.ErrFailedToUpload)
	_, err = repo.Owner(ctx, "i1")
	assert.ErrorIs(t, err, apperr.ErrUnexpected)
	assert.ErrorIs(t, repo.Delete(ctx, "i1"), apperr.ErrUnexpected)
	_, err = repo.Link(ctx, "i1")
	assert.ErrorIs(t, err, apperr.ErrUnexpected)
}
