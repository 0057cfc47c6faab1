package service

import (
	"context"
	"strings"

	"quiz-app/internal/apperr"
	"quiz-app/internal/event"
	"quiz-app/internal/models"
)

// saveTestResult stores the caller's answers to a test.
func (u *UseCases) saveTestResult(ctx context.Context, result models.TestResult) (Unit, error) {
	details, err := u.GetUserDetails.ExecuteSync(ctx, Unit{})
	if err != nil {
		return Unit{}, err
	}

	test, err := u.deps.Tests.Get(ctx, result.TestID)
	if err != nil {
		return Unit{}, err
	}
	if test == nil {
		return Unit{}, apperr.New(apperr.KindNotFound)
	}
	if unknown := result.UnknownQuestions(test); len(unknown) > 0 {
		return Unit{}, apperr.Newf(apperr.KindValidation, "unknown questions: %s", strings.Join(unknown, ", "))
	}
	for _, a := range result.Answers {
		if !a.Answer.Valid() {
			return Unit{}, apperr.Newf(apperr.KindValidation, "invalid answer %q for question %s", a.Answer, a.QuestionID)
		}
	}

	result.UserDetails = details
	if err := u.deps.Results.Save(ctx, &result); err != nil {
		return Unit{}, err
	}

	score, total := result.Score(test)
	u.publish(ctx, event.EventTypeTestResultSaved, event.TestResultEvent{
		TestID: result.TestID,
		UserID: details.UserID,
		Score:  score,
		Total:  total,
	})
	return Unit{}, nil
}

// getTestResult returns the caller's own result for a test.
func (u *UseCases) getTestResult(ctx context.Context, testID string) (models.TestResult, error) {
	details, err := u.GetUserDetails.ExecuteSync(ctx, Unit{})
	if err != nil {
		return models.TestResult{}, err
	}

	result, err := u.deps.Results.Get(ctx, testID, details.UserID)
	if err != nil {
		return models.TestResult{}, err
	}
	if result == nil {
		return models.TestResult{}, apperr.New(apperr.KindNotFound)
	}
	return *result, nil
}
