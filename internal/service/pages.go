package service

import (
	"context"

	"quiz-app/internal/models"
	"quiz-app/internal/paging"
)

// TestsPageParams selects one page of a test listing by cursor.
type TestsPageParams struct {
	PagedTestsParams
	Cursor   string
	PageSize int
}

type TestResultsPageParams struct {
	TestID   string
	Cursor   string
	PageSize int
}

// ScoredResult is a respondent's result with its score against the test.
type ScoredResult struct {
	models.TestResult
	Score int `json:"score"`
	Total int `json:"total"`
}

func (u *UseCases) loadParams(cursor string, pageSize int) paging.LoadParams {
	if pageSize <= 0 {
		pageSize = u.deps.PageSize
	}
	if pageSize <= 0 {
		pageSize = paging.DefaultPageSize
	}
	return paging.LoadParams{Cursor: cursor, LoadSize: pageSize}
}

func (u *UseCases) pageTests(ctx context.Context, params TestsPageParams) (paging.Page[models.Test], error) {
	query, ok := u.testQuery(ctx, params.PagedTestsParams)
	if !ok {
		return emptyTestsPage(ctx, paging.LoadParams{})
	}
	return u.deps.Tests.PagingSource(query).Load(ctx, u.loadParams(params.Cursor, params.PageSize))
}

// pageTestResults lists the results of one of the caller's tests.
func (u *UseCases) pageTestResults(ctx context.Context, params TestResultsPageParams) (paging.Page[ScoredResult], error) {
	userID, err := u.currentTeacherID(ctx)
	if err != nil {
		return paging.Page[ScoredResult]{}, err
	}
	test, err := u.ownedTest(ctx, params.TestID, userID)
	if err != nil {
		return paging.Page[ScoredResult]{}, err
	}

	page, err := u.deps.Results.PagingSource(params.TestID).Load(ctx, u.loadParams(params.Cursor, params.PageSize))
	if err != nil {
		return paging.Page[ScoredResult]{}, err
	}
	return paging.Page[ScoredResult]{Items: ScoreResults(test, page.Items), NextCursor: page.NextCursor}, nil
}

// ScoreResults pairs every result with its score against test.
func ScoreResults(test *models.Test, results []models.TestResult) []ScoredResult {
	scored := make([]ScoredResult, len(results))
	for i := range results {
		score, total := results[i].Score(test)
		scored[i] = ScoredResult{TestResult: results[i], Score: score, Total: total}
	}
	return scored
}
