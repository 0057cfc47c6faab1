package repository

import (
	"context"
	"sort"

	"quiz-app/internal/apperr"
	"quiz-app/internal/dao"
	"quiz-app/internal/models"
	"quiz-app/internal/paging"

	"golang.org/x/sync/errgroup"
)

// joinLimit bounds the concurrent user details lookups of one page.
const joinLimit = 8

type TestResultRepository struct {
	results dao.TestResultDAO
	users   *UserDetailsRepository
}

func NewTestResultRepository(results dao.TestResultDAO, users *UserDetailsRepository) *TestResultRepository {
	return &TestResultRepository{results: results, users: users}
}

func toRecord(result *models.TestResult) *dao.ResultRecord {
	answers := make(map[string]models.AnswerOption, len(result.Answers))
	for _, a := range result.Answers {
		answers[a.QuestionID] = a.Answer
	}
	return &dao.ResultRecord{
		TestID:  result.TestID,
		UserID:  result.UserDetails.UserID,
		Answers: answers,
	}
}

func fromRecord(record *dao.ResultRecord, details models.UserDetails) models.TestResult {
	answers := make([]models.QuestionAnswer, 0, len(record.Answers))
	for questionID, option := range record.Answers {
		answers = append(answers, models.QuestionAnswer{QuestionID: questionID, Answer: option})
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].QuestionID < answers[j].QuestionID })
	return models.TestResult{TestID: record.TestID, UserDetails: details, Answers: answers}
}

func (r *TestResultRepository) Save(ctx context.Context, result *models.TestResult) error {
	if err := r.results.Save(ctx, toRecord(result)); err != nil {
		logFailure("save_test_result", err)
		return apperr.Wrap(apperr.KindFailedToSaveTest, err)
	}
	return nil
}

// Get returns nil when there is no result or the respondent has no details.
func (r *TestResultRepository) Get(ctx context.Context, testID, userID string) (*models.TestResult, error) {
	details, err := r.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, nil
	}

	record, err := r.results.Get(ctx, testID, userID)
	if err != nil {
		return nil, translate("get_test_result", err, apperr.KindUnexpected)
	}
	if record == nil {
		return nil, nil
	}
	result := fromRecord(record, *details)
	return &result, nil
}

// PagingSource pages through a test's results, joining each respondent's
// details. Results of respondents without details are left out.
func (r *TestResultRepository) PagingSource(testID string) paging.Source[models.TestResult] {
	return paging.SourceFunc[models.TestResult](func(ctx context.Context, params paging.LoadParams) (paging.Page[models.TestResult], error) {
		page, err := r.results.Page(ctx, testID, params)
		if err != nil {
			return paging.Page[models.TestResult]{}, translate("page_test_results", err, apperr.KindUnexpected)
		}

		joined := make([]*models.TestResult, len(page.Items))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(joinLimit)
		for i := range page.Items {
			record := &page.Items[i]
			g.Go(func() error {
				details, err := r.users.Get(gctx, record.UserID)
				if err != nil {
					return err
				}
				if details != nil {
					result := fromRecord(record, *details)
					joined[i] = &result
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return paging.Page[models.TestResult]{}, apperr.Coerce(err)
		}

		items := make([]models.TestResult, 0, len(joined))
		for _, result := range joined {
			if result != nil {
				items = append(items, *result)
			}
		}
		return paging.Page[models.TestResult]{Items: items, NextCursor: page.NextCursor}, nil
	})
}
