package models

type AnswerOption string

const (
	AnswerA1 AnswerOption = "A1"
	AnswerA2 AnswerOption = "A2"
	AnswerA3 AnswerOption = "A3"
	AnswerA4 AnswerOption = "A4"
)

var AnswerOptions = []AnswerOption{AnswerA1, AnswerA2, AnswerA3, AnswerA4}

func (o AnswerOption) Valid() bool {
	switch o {
	case AnswerA1, AnswerA2, AnswerA3, AnswerA4:
		return true
	}
	return false
}

type Question struct {
	ID            string       `bson:"id" json:"id"`
	ImageID       *string      `bson:"image_id,omitempty" json:"image_id,omitempty"`
	Question      string       `bson:"question" json:"question"`
	Answer1       string       `bson:"answer1" json:"answer1"`
	Answer2       string       `bson:"answer2" json:"answer2"`
	Answer3       string       `bson:"answer3" json:"answer3"`
	Answer4       string       `bson:"answer4" json:"answer4"`
	CorrectAnswer AnswerOption `bson:"correct_answer" json:"correct_answer,omitempty"`
}

// Answer returns the text stored for the given option.
func (q *Question) Answer(option AnswerOption) string {
	switch option {
	case AnswerA1:
		return q.Answer1
	case AnswerA2:
		return q.Answer2
	case AnswerA3:
		return q.Answer3
	case AnswerA4:
		return q.Answer4
	}
	return ""
}
