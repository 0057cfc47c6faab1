package repository

import (
	"context"

	"quiz-app/internal/apperr"
	"quiz-app/internal/dao"
	"quiz-app/internal/models"
	"quiz-app/internal/paging"
)

type TestRepository struct {
	tests dao.TestDAO
}

func NewTestRepository(tests dao.TestDAO) *TestRepository {
	return &TestRepository{tests: tests}
}

// Save stores the test and returns its id. Every storage failure is reported
// as a failed save.
func (r *TestRepository) Save(ctx context.Context, test *models.Test) (string, error) {
	id, err := r.tests.Save(ctx, test)
	if err != nil {
		logFailure("save_test", err)
		return "", apperr.Wrap(apperr.KindFailedToSaveTest, err)
	}
	return id, nil
}

func (r *TestRepository) Delete(ctx context.Context, id string) error {
	if err := r.tests.Delete(ctx, id); err != nil {
		return translate("delete_test", err, apperr.KindUnexpected)
	}
	return nil
}

// Get returns nil when the test does not exist.
func (r *TestRepository) Get(ctx context.Context, id string) (*models.Test, error) {
	test, err := r.tests.Get(ctx, id)
	if err != nil {
		return nil, translate("get_test", err, apperr.KindUnexpected)
	}
	return test, nil
}

func (r *TestRepository) PagingSource(query dao.TestQuery) paging.Source[models.Test] {
	return paging.SourceFunc[models.Test](func(ctx context.Context, params paging.LoadParams) (paging.Page[models.Test], error) {
		page, err := r.tests.Page(ctx, query, params)
		if err != nil {
			return paging.Page[models.Test]{}, translate("page_tests", err, apperr.KindUnexpected)
		}
		return page, nil
	})
}
