package service

import (
	"context"

	"quiz-app/internal/apperr"
	"quiz-app/internal/event"
	"quiz-app/internal/models"
)

// ownedTest loads a test the caller may change. Tests of other teachers
// are reported as missing.
func (u *UseCases) ownedTest(ctx context.Context, id, userID string) (*models.Test, error) {
	test, err := u.deps.Tests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if test == nil || test.TeacherID != userID {
		return nil, apperr.New(apperr.KindNotFound)
	}
	return test, nil
}

// currentTeacherID returns the caller's id when the caller is a teacher.
// Only teachers author tests and review their results.
func (u *UseCases) currentTeacherID(ctx context.Context) (string, error) {
	userID, err := u.currentUserID(ctx)
	if err != nil {
		return "", err
	}
	details, err := u.deps.Users.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if details == nil || details.Role != models.RoleTeacher {
		return "", apperr.Newf(apperr.KindValidation, "only teachers can manage tests")
	}
	return userID, nil
}

// saveTest stores the test with the caller as its teacher and returns its id.
func (u *UseCases) saveTest(ctx context.Context, test models.Test) (string, error) {
	userID, err := u.currentTeacherID(ctx)
	if err != nil {
		return "", err
	}
	if test.ID != "" {
		existing, err := u.deps.Tests.Get(ctx, test.ID)
		if err != nil {
			return "", err
		}
		if existing != nil && existing.TeacherID != userID {
			return "", apperr.New(apperr.KindNotFound)
		}
	}

	test.TeacherID = userID
	id, err := u.deps.Tests.Save(ctx, &test)
	if err != nil {
		return "", err
	}

	u.publish(ctx, event.EventTypeTestSaved, event.TestEvent{
		TestID:    id,
		TeacherID: userID,
		Title:     test.Title,
		ImageIDs:  test.ImageIDs(),
	})
	return id, nil
}

func (u *UseCases) getTest(ctx context.Context, id string) (models.Test, error) {
	test, err := u.deps.Tests.Get(ctx, id)
	if err != nil {
		return models.Test{}, err
	}
	if test == nil {
		return models.Test{}, apperr.New(apperr.KindNotFound)
	}
	return *test, nil
}

// deleteTest removes one of the caller's tests. Its images are cleaned up by
// the test.deleted event consumer.
func (u *UseCases) deleteTest(ctx context.Context, id string) (Unit, error) {
	userID, err := u.currentTeacherID(ctx)
	if err != nil {
		return Unit{}, err
	}
	test, err := u.ownedTest(ctx, id, userID)
	if err != nil {
		return Unit{}, err
	}
	if err := u.deps.Tests.Delete(ctx, id); err != nil {
		return Unit{}, err
	}

	u.publish(ctx, event.EventTypeTestDeleted, event.TestEvent{
		TestID:    id,
		TeacherID: userID,
		Title:     test.Title,
		ImageIDs:  test.ImageIDs(),
	})
	return Unit{}, nil
}
