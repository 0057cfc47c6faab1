package models

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTest() Test {
	cover := "cover"
	img := "q2-img"
	return Test{
		ID:      "t1",
		ImageID: &cover,
		Title:   "Capitals",
		Questions: []Question{
			{ID: "q1", Question: "France?", Answer1: "Paris", Answer2: "Rome", Answer3: "Oslo", Answer4: "Bern", CorrectAnswer: AnswerA1},
			{ID: "q2", ImageID: &img, Question: "Italy?", Answer1: "Paris", Answer2: "Rome", Answer3: "Oslo", Answer4: "Bern", CorrectAnswer: AnswerA2},
			{ID: "q3", Question: "Norway?", Answer1: "Paris", Answer2: "Rome", Answer3: "Oslo", Answer4: "Bern", CorrectAnswer: AnswerA3},
		},
	}
}

func TestScore(t *testing.T) {
	test := sampleTest()

	testCases := []struct {
		name    string
		answers []QuestionAnswer
		want    int
	}{
		{"all correct", []QuestionAnswer{{"q1", AnswerA1}, {"q2", AnswerA2}, {"q3", AnswerA3}}, 3},
		{"one wrong", []QuestionAnswer{{"q1", AnswerA1}, {"q2", AnswerA4}, {"q3", AnswerA3}}, 2},
		{"unknown question ignored", []QuestionAnswer{{"q9", AnswerA1}}, 0},
		{"no answers", nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := TestResult{TestID: test.ID, Answers: tc.answers}
			score, total := result.Score(&test)
			assert.Equal(t, tc.want, score)
			assert.Equal(t, 3, total)
		})
	}
}

func TestUnknownQuestions(t *testing.T) {
	test := sampleTest()
	result := TestResult{Answers: []QuestionAnswer{{"q1", AnswerA1}, {"x", AnswerA2}}}

	assert.Equal(t, []string{"x"}, result.UnknownQuestions(&test))
}

func TestImageIDs(t *testing.T) {
	test := sampleTest()
	assert.Equal(t, []string{"cover", "q2-img"}, test.ImageIDs())
}

func TestForStudentHidesAnswersAndKeepsOriginal(t *testing.T) {
	test := sampleTest()

	view := test.ForStudent(rand.New(rand.NewPCG(1, 2)))

	assert.Len(t, view.Questions, 3)
	for _, q := range view.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}
	assert.Equal(t, AnswerA1, test.Questions[0].CorrectAnswer)

	ids := map[string]bool{}
	for _, q := range view.Questions {
		ids[q.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestViewForShowsAnswersOnlyToTeacher(t *testing.T) {
	test := sampleTest()
	test.TeacherID = "teacher-1"

	testCases := []struct {
		name        string
		viewer      string
		wantAnswers bool
	}{
		{"owner", "teacher-1", true},
		{"other user", "student-1", false},
		{"anonymous", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			view := test.ViewFor(tc.viewer)
			require.Len(t, view.Questions, len(test.Questions))
			for i, q := range view.Questions {
				assert.Equal(t, test.Questions[i].ID, q.ID)
				if tc.wantAnswers {
					assert.Equal(t, test.Questions[i].CorrectAnswer, q.CorrectAnswer)
				} else {
					assert.Empty(t, q.CorrectAnswer)
				}
			}
		})
	}
	assert.Equal(t, AnswerA1, test.Questions[0].CorrectAnswer)
}

func TestParseTestsSortOption(t *testing.T) {
	assert.Equal(t, SortOldest, ParseTestsSortOption("oldest"))
	assert.Equal(t, SortNewest, ParseTestsSortOption("NEWEST"))
	assert.Equal(t, SortNewest, ParseTestsSortOption(""))
}

func TestAnswerOption(t *testing.T) {
	q := sampleTest().Questions[0]
	assert.Equal(t, "Bern", q.Answer(AnswerA4))
	assert.True(t, AnswerA3.Valid())
	assert.False(t, AnswerOption("A5").Valid())
}
