package dao

import (
	"context"
	"testing"
	"time"

	"quiz-app/internal/models"
	"quiz-app/internal/paging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestTestsSort(t *testing.T) {
	testCases := []struct {
		name  string
		query TestQuery
		want  bson.D
	}{
		{"newest by default", TestQuery{}, bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}},
		{"oldest", TestQuery{Sort: models.SortOldest}, bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}},
		{"search ignores sort option", TestQuery{Sort: models.SortOldest, Search: "Cap"}, bson.D{{Key: "search_title", Value: -1}, {Key: "_id", Value: -1}}},
		{"blank search is no search", TestQuery{Search: "   "}, bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, testsSort(tc.query))
		})
	}
}

func TestTestsFilterFirstPage(t *testing.T) {
	filter, err := testsFilter(TestQuery{}, nil)
	require.NoError(t, err)
	assert.Equal(t, bson.D{}, filter)

	filter, err = testsFilter(TestQuery{TeacherID: "u1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "teacher_id", Value: "u1"}}, filter)

	filter, err = testsFilter(TestQuery{Search: " Cap "}, nil)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "search_title", Value: bson.D{
		{Key: "$gte", Value: "cap"},
		{Key: "$lte", Value: "cap" + searchUpperBound},
	}}}, filter)
}

func TestTestsFilterAfterCursor(t *testing.T) {
	after := &paging.Key{Sort: int64(1000), ID: "t9"}

	filter, err := testsFilter(TestQuery{Sort: models.SortOldest, TeacherID: "u1"}, after)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "teacher_id", Value: "u1"}},
		keysetAfter("timestamp", int64(1000), "t9", "$gt"),
	}}}, filter)

	filter, err = testsFilter(TestQuery{}, after)
	require.NoError(t, err)
	assert.Equal(t, keysetAfter("timestamp", int64(1000), "t9", "$lt"), filter)

	_, err = testsFilter(TestQuery{Search: "cap"}, after)
	assert.ErrorIs(t, err, paging.ErrInvalidCursor)
}

func TestTestCursorKeyRoundTripsThroughFilter(t *testing.T) {
	test := models.Test{ID: "t1", Timestamp: 1700000000000, SearchTitle: "capitals"}

	for _, q := range []TestQuery{{}, {Search: "cap"}} {
		c, err := paging.EncodeCursor(testCursorKey(q, test))
		require.NoError(t, err)
		after, err := decodeAfter(c)
		require.NoError(t, err)
		_, err = testsFilter(q, after)
		assert.NoError(t, err)
	}
}

func TestResultsFilter(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "test_id", Value: "t1"}}, resultsFilter("t1", nil))
	assert.Equal(t, bson.D{
		{Key: "test_id", Value: "t1"},
		{Key: "user_id", Value: bson.D{{Key: "$gt", Value: "u5"}}},
	}, resultsFilter("t1", &paging.Key{Sort: "u5", ID: "u5"}))
	assert.Equal(t, bson.D{{Key: "user_id", Value: 1}}, resultsSort())
}

func TestPrepareTest(t *testing.T) {
	now := time.UnixMilli(5000)
	in := models.Test{
		Title:     "World Capitals",
		Questions: []models.Question{{Question: "France?"}, {ID: "keep", Question: "Italy?"}},
	}

	fresh := prepareTest(in, 0, now)
	assert.NotEmpty(t, fresh.ID)
	assert.Equal(t, "world capitals", fresh.SearchTitle)
	assert.Equal(t, int64(5000), fresh.Timestamp)
	assert.NotEmpty(t, fresh.Questions[0].ID)
	assert.Equal(t, "keep", fresh.Questions[1].ID)
	assert.Empty(t, in.Questions[0].ID)

	in.ID = "t1"
	edited := prepareTest(in, 1234, now)
	assert.Equal(t, "t1", edited.ID)
	assert.Equal(t, int64(1234), edited.Timestamp)
}

func TestDecodeUserDetails(t *testing.T) {
	assert.Nil(t, decodeUserDetails([]byte("{not json")))
	assert.Nil(t, decodeUserDetails([]byte(`{"role":"TEACHER"}`)))

	d := decodeUserDetails([]byte(`{"user_id":"u1","role":"STUDENT","given_name":"Ann","family_name":"Lee"}`))
	require.NotNil(t, d)
	assert.Equal(t, models.RoleStudent, d.Role)
}

func TestImageObjectName(t *testing.T) {
	name, err := imageObjectName("abc")
	require.NoError(t, err)
	assert.Equal(t, "images/abc.jpg", name)

	for _, id := range []string{"", "../x", "a/b"} {
		_, err := imageObjectName(id)
		assert.Error(t, err, id)
	}
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithSession(context.Background(), models.Session{ID: "s1", UserID: "u1"})
	s, ok := SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", s.UserID)
}
