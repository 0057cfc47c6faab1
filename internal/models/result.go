package models

type QuestionAnswer struct {
	QuestionID string       `json:"question_id" binding:"required"`
	Answer     AnswerOption `json:"answer" binding:"required"`
}

type TestResult struct {
	TestID      string           `json:"test_id"`
	UserDetails UserDetails      `json:"user_details"`
	Answers     []QuestionAnswer `json:"answers"`
}

// Score counts the answers that pick the question's correct option. The
// second value is the number of questions in the test.
func (r *TestResult) Score(test *Test) (int, int) {
	correct := make(map[string]AnswerOption, len(test.Questions))
	for _, q := range test.Questions {
		correct[q.ID] = q.CorrectAnswer
	}

	score := 0
	for _, a := range r.Answers {
		if option, ok := correct[a.QuestionID]; ok && option == a.Answer {
			score++
		}
	}
	return score, len(test.Questions)
}

// UnknownQuestions returns the ids answered in r that the test does not contain.
func (r *TestResult) UnknownQuestions(test *Test) []string {
	ids := test.QuestionIDs()
	var unknown []string
	for _, a := range r.Answers {
		if _, ok := ids[a.QuestionID]; !ok {
			unknown = append(unknown, a.QuestionID)
		}
	}
	return unknown
}
