package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"quiz-app/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	passwordCharset = regexp.MustCompile(`^[a-zA-Z0-9]{8,32}$`)
)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword accepts 8 to 32 ASCII letters and digits with at least one
// digit, one lowercase and one uppercase letter.
func IsValidPassword(password string) bool {
	if !passwordCharset.MatchString(password) {
		return false
	}
	var digit, lower, upper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	return digit && lower && upper
}

func IsValidName(name string) bool {
	return name != ""
}

type TestErrorCode string

const (
	TestEmptyTitle           TestErrorCode = "EMPTY_TITLE"
	TestEmptyQuestion        TestErrorCode = "EMPTY_QUESTION"
	TestEmptyAnswer          TestErrorCode = "EMPTY_ANSWER"
	TestNoQuestions          TestErrorCode = "NO_QUESTIONS"
	TestTooManyQuestions     TestErrorCode = "TOO_MANY_QUESTIONS"
	TestInvalidCorrectAnswer TestErrorCode = "INVALID_CORRECT_ANSWER"
)

type TestValidationError struct {
	Code TestErrorCode `json:"code"`
	// QuestionIndex is nil for errors about the test as a whole.
	QuestionIndex *int                `json:"question_index,omitempty"`
	Answer        models.AnswerOption `json:"answer,omitempty"`
}

type TestValidation struct {
	Valid  bool                  `json:"valid"`
	Errors []TestValidationError `json:"errors,omitempty"`
}

// CheckTest lists every problem of the test in field order.
func CheckTest(test *models.Test) TestValidation {
	var errs []TestValidationError
	add := func(code TestErrorCode, index int, answer models.AnswerOption) {
		e := TestValidationError{Code: code, Answer: answer}
		if index >= 0 {
			i := index
			e.QuestionIndex = &i
		}
		errs = append(errs, e)
	}

	if test.Title == "" {
		add(TestEmptyTitle, -1, "")
	}
	switch {
	case len(test.Questions) == 0:
		add(TestNoQuestions, -1, "")
	case len(test.Questions) > models.MaxQuestions:
		add(TestTooManyQuestions, -1, "")
	}

	for i := range test.Questions {
		q := &test.Questions[i]
		if q.Question == "" {
			add(TestEmptyQuestion, i, "")
		}
		for _, option := range models.AnswerOptions {
			if q.Answer(option) == "" {
				add(TestEmptyAnswer, i, option)
			}
		}
		if !q.CorrectAnswer.Valid() {
			add(TestInvalidCorrectAnswer, i, "")
		}
	}

	return TestValidation{Valid: len(errs) == 0, Errors: errs}
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CheckUserDetails returns the fields of details that break their rules.
func CheckUserDetails(details *models.UserDetails) []FieldError {
	err := validate.Struct(details)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Rule: err.Error()}}
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return fields
}
