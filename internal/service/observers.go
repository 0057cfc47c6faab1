package service

import (
	"context"

	"quiz-app/internal/dao"
	"quiz-app/internal/interactor"
	"quiz-app/internal/models"
	"quiz-app/internal/paging"

	"github.com/sirupsen/logrus"
)

// TeacherMe selects the caller's own tests.
const TeacherMe = "me"

type PagedTestsParams struct {
	Sort   models.TestsSortOption
	Search string
	// Teacher filters by owner: empty for everyone, TeacherMe for the caller,
	// otherwise a user id.
	Teacher string
}

type PagedTestResultsParams struct {
	TestID string
}

// ObserveUserAuthState follows the session in ctx and the user's details.
// The stream emits LOGGED_OUT, USER_DETAILS_REQUIRED or LOGGED_IN whenever
// the state changes.
func (u *UseCases) ObserveUserAuthState() *interactor.Subject[Unit, models.UserAuthState] {
	return interactor.NewSubject(func(ctx context.Context, _ Unit) <-chan models.UserAuthState {
		out := make(chan models.UserAuthState)

		go func() {
			defer close(out)

			ids, err := u.deps.Auth.ObserveUserID(ctx)
			if err != nil {
				select {
				case out <- models.AuthLoggedOut:
				case <-ctx.Done():
				}
				return
			}

			// switch to the newest user id, dropping the previous details stream
			perUser := interactor.NewSubject(func(ctx context.Context, userID string) <-chan models.UserAuthState {
				if userID == "" {
					return interactor.Single(models.AuthLoggedOut)
				}
				states := make(chan models.UserAuthState)
				go func() {
					defer close(states)
					for details := range u.deps.Users.Observe(ctx, userID) {
						state := models.AuthLoggedIn
						if details == nil {
							state = models.AuthUserDetailsRequired
						}
						select {
						case states <- state:
						case <-ctx.Done():
							return
						}
					}
				}()
				return states
			}, nil)

			flow := perUser.Flow(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case userID, ok := <-ids:
					if !ok {
						ids = nil
						continue
					}
					perUser.Invoke(userID)
				case state, ok := <-flow:
					if !ok {
						return
					}
					select {
					case out <- state:
					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return out
	}, func(a, b models.UserAuthState) bool { return a == b })
}

// testQuery resolves the listing parameters for the caller. It reports false
// when the caller asked for their own tests without being logged in.
func (u *UseCases) testQuery(ctx context.Context, params PagedTestsParams) (dao.TestQuery, bool) {
	teacherID := params.Teacher
	if teacherID == TeacherMe {
		userID, err := u.deps.Auth.UserID(ctx)
		if err != nil {
			logrus.WithError(err).Warn("Failed to resolve the caller for a test listing")
		}
		// an anonymous "me" must not widen the listing to every teacher
		if userID == "" {
			return dao.TestQuery{}, false
		}
		teacherID = userID
	}
	return dao.TestQuery{Sort: params.Sort, Search: params.Search, TeacherID: teacherID}, true
}

// ObservePagedTests produces a fresh pager for every distinct parameter set.
func (u *UseCases) ObservePagedTests() *interactor.Subject[PagedTestsParams, *paging.Pager[models.Test]] {
	return interactor.NewSubject(func(ctx context.Context, params PagedTestsParams) <-chan *paging.Pager[models.Test] {
		query, ok := u.testQuery(ctx, params)
		if !ok {
			return interactor.Single(paging.NewPager(paging.SourceFunc[models.Test](emptyTestsPage), u.deps.PageSize))
		}
		return interactor.Single(paging.NewPager(u.deps.Tests.PagingSource(query), u.deps.PageSize))
	}, nil)
}

func emptyTestsPage(context.Context, paging.LoadParams) (paging.Page[models.Test], error) {
	return paging.Page[models.Test]{Items: []models.Test{}}, nil
}

func (u *UseCases) ObservePagedTestResults() *interactor.Subject[PagedTestResultsParams, *paging.Pager[models.TestResult]] {
	return interactor.NewSubject(func(_ context.Context, params PagedTestResultsParams) <-chan *paging.Pager[models.TestResult] {
		return interactor.Single(paging.NewPager(u.deps.Results.PagingSource(params.TestID), u.deps.PageSize))
	}, nil)
}
