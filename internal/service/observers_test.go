package service

import (
	"context"
	"testing"
	"time"

	"quiz-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a value")
	}
	var zero T
	return zero
}

func TestObserveUserAuthState(t *testing.T) {
	f := newFixture(t)
	session, _ := f.login(t, "a@b.co", "")

	ctx, cancel := context.WithCancel(session)
	defer cancel()

	states := f.uc.ObserveUserAuthState()
	flow := states.Flow(ctx)
	states.Invoke(Unit{})

	assert.Equal(t, models.AuthUserDetailsRequired, receive(t, flow))

	_, err := f.uc.SaveUserDetails.Run(session, models.UserDetails{Role: models.RoleStudent, GivenName: "A", FamilyName: "B"})
	require.Nil(t, err)
	assert.Equal(t, models.AuthLoggedIn, receive(t, flow))

	_, err = f.uc.LogOut.Run(session, Unit{})
	require.Nil(t, err)
	assert.Equal(t, models.AuthLoggedOut, receive(t, flow))
}

func TestObserveUserAuthStateAnonymous(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states := f.uc.ObserveUserAuthState()
	flow := states.Flow(ctx)
	states.Invoke(Unit{})

	assert.Equal(t, models.AuthLoggedOut, receive(t, flow))
}

func TestObservePagedTestsForCaller(t *testing.T) {
	f := newFixture(t)
	teacher, uid := f.login(t, "teacher@school.edu", models.RoleTeacher)
	other, _ := f.login(t, "other@school.edu", models.RoleTeacher)

	for _, title := range []string{"Algebra", "Biology", "Chemistry"} {
		test := sampleTest()
		test.Title = title
		_, err := f.uc.SaveTest.Run(teacher, test)
		require.Nil(t, err)
	}
	_, err := f.uc.SaveTest.Run(other, sampleTest())
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(teacher)
	defer cancel()

	pagers := f.uc.ObservePagedTests()
	flow := pagers.Flow(ctx)
	pagers.Invoke(PagedTestsParams{Sort: models.SortOldest, Teacher: TeacherMe})
	pager := receive(t, flow)

	first, nextErr := pager.Next(ctx)
	require.NoError(t, nextErr)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Algebra", first.Items[0].Title)
	assert.Equal(t, "Biology", first.Items[1].Title)

	second, nextErr := pager.Next(ctx)
	require.NoError(t, nextErr)
	require.Len(t, second.Items, 1)
	assert.Equal(t, uid, second.Items[0].TeacherID)
	assert.True(t, pager.Done())

	pagers.Invoke(PagedTestsParams{Sort: models.SortOldest})
	all := receive(t, flow)
	total := 0
	for !all.Done() {
		page, err := all.Next(ctx)
		require.NoError(t, err)
		total += len(page.Items)
	}
	assert.Equal(t, 4, total)
}

func TestObservePagedTestsAnonymousCaller(t *testing.T) {
	f := newFixture(t)
	teacher, _ := f.login(t, "teacher@school.edu", models.RoleTeacher)
	_, err := f.uc.SaveTest.Run(teacher, sampleTest())
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pagers := f.uc.ObservePagedTests()
	flow := pagers.Flow(ctx)
	pagers.Invoke(PagedTestsParams{Teacher: TeacherMe})

	page, nextErr := receive(t, flow).Next(ctx)
	require.NoError(t, nextErr)
	assert.Empty(t, page.Items)
}

func TestObservePagedTestResults(t *testing.T) {
	f := newFixture(t)
	teacher, _ := f.login(t, "teacher@school.edu", models.RoleTeacher)
	testID, err := f.uc.SaveTest.Run(teacher, sampleTest())
	require.Nil(t, err)

	for _, email := range []string{"s1@school.edu", "s2@school.edu"} {
		student, _ := f.login(t, email, models.RoleStudent)
		_, err := f.uc.SaveTestResult.Run(student, models.TestResult{
			TestID:  testID,
			Answers: []models.QuestionAnswer{{QuestionID: "q1", Answer: models.AnswerA1}},
		})
		require.Nil(t, err)
	}

	ctx, cancel := context.WithCancel(teacher)
	defer cancel()

	pagers := f.uc.ObservePagedTestResults()
	flow := pagers.Flow(ctx)
	pagers.Invoke(PagedTestResultsParams{TestID: testID})

	page, nextErr := receive(t, flow).Next(ctx)
	require.NoError(t, nextErr)
	require.Len(t, page.Items, 2)
	for _, r := range page.Items {
		assert.Equal(t, models.RoleStudent, r.UserDetails.Role)
	}
}
