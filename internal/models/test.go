package models

import (
	"math/rand/v2"
	"strings"
)

// MaxQuestions caps the number of questions a teacher can put in one test.
const MaxQuestions = 50

type Test struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	TeacherID string     `bson:"teacher_id" json:"teacher_id"`
	ImageID   *string    `bson:"image_id,omitempty" json:"image_id,omitempty"`
	Title     string     `bson:"title" json:"title"`
	Questions []Question `bson:"questions" json:"questions"`
	// Timestamp is the creation time in epoch milliseconds.
	Timestamp   int64  `bson:"timestamp" json:"timestamp"`
	SearchTitle string `bson:"search_title" json:"-"`
}

func SearchKey(title string) string {
	return strings.ToLower(title)
}

// QuestionIDs returns the set of ids of the test's questions.
func (t *Test) QuestionIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(t.Questions))
	for _, q := range t.Questions {
		ids[q.ID] = struct{}{}
	}
	return ids
}

// ImageIDs lists the cover image and every question image referenced by the test.
func (t *Test) ImageIDs() []string {
	var ids []string
	if t.ImageID != nil && *t.ImageID != "" {
		ids = append(ids, *t.ImageID)
	}
	for _, q := range t.Questions {
		if q.ImageID != nil && *q.ImageID != "" {
			ids = append(ids, *q.ImageID)
		}
	}
	return ids
}

// WithoutAnswers returns a copy whose questions carry no correct answers.
func (t Test) WithoutAnswers() Test {
	questions := make([]Question, len(t.Questions))
	copy(questions, t.Questions)
	for i := range questions {
		questions[i].CorrectAnswer = ""
	}
	t.Questions = questions
	return t
}

// ViewFor returns the test as userID may see it: only its teacher gets the
// correct answers.
func (t Test) ViewFor(userID string) Test {
	if userID != "" && userID == t.TeacherID {
		return t
	}
	return t.WithoutAnswers()
}

// ForStudent returns a copy with shuffled questions and without correct answers.
func (t Test) ForStudent(r *rand.Rand) Test {
	questions := t.WithoutAnswers().Questions
	shuffle := rand.Shuffle
	if r != nil {
		shuffle = r.Shuffle
	}
	shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	t.Questions = questions
	return t
}

type TestsSortOption string

const (
	SortNewest TestsSortOption = "NEWEST"
	SortOldest TestsSortOption = "OLDEST"
)

func ParseTestsSortOption(s string) TestsSortOption {
	if strings.EqualFold(s, string(SortOldest)) {
		return SortOldest
	}
	return SortNewest
}
