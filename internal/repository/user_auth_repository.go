package repository

import (
	"context"
	"errors"

	"quiz-app/internal/apperr"
	"quiz-app/internal/dao"
	"quiz-app/internal/models"
)

type UserAuthRepository struct {
	auth dao.UserAuthDAO
}

func NewUserAuthRepository(auth dao.UserAuthDAO) *UserAuthRepository {
	return &UserAuthRepository{auth: auth}
}

func (r *UserAuthRepository) SignUp(ctx context.Context, credential models.Credential) (models.Session, error) {
	session, err := r.auth.SignUp(ctx, credential)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, dao.ErrEmailTaken):
		return models.Session{}, apperr.Wrap(apperr.KindUserAlreadyExists, err)
	}
	return models.Session{}, translate("sign_up", err, apperr.KindUnexpected)
}

func (r *UserAuthRepository) LogIn(ctx context.Context, credential models.Credential) (models.Session, error) {
	session, err := r.auth.LogIn(ctx, credential)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, dao.ErrAccountNotFound):
		return models.Session{}, apperr.Wrap(apperr.KindUserDoesNotExist, err)
	case errors.Is(err, dao.ErrWrongPassword):
		return models.Session{}, apperr.Wrap(apperr.KindInvalidCredential, err)
	}
	return models.Session{}, translate("log_in", err, apperr.KindUnexpected)
}

func (r *UserAuthRepository) LogOut(ctx context.Context, sessionID string) error {
	if err := r.auth.LogOut(ctx, sessionID); err != nil {
		return translate("log_out", err, apperr.KindUnexpected)
	}
	return nil
}

// UserID returns the id of the user whose session ctx carries, or an empty
// id when there is none.
func (r *UserAuthRepository) UserID(ctx context.Context) (string, error) {
	userID, err := r.auth.CurrentUserID(ctx)
	if err != nil {
		return "", translate("current_user", err, apperr.KindUnexpected)
	}
	return userID, nil
}

func (r *UserAuthRepository) ObserveUserID(ctx context.Context) (<-chan string, error) {
	ids, err := r.auth.ObserveUserID(ctx)
	if err != nil {
		return nil, translate("observe_user", err, apperr.KindUnexpected)
	}
	return ids, nil
}
