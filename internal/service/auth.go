package service

import (
	"context"

	"quiz-app/internal/dao"
	"quiz-app/internal/event"
	"quiz-app/internal/models"
)

func (u *UseCases) signUp(ctx context.Context, credential models.Credential) (models.Session, error) {
	session, err := u.deps.Auth.SignUp(ctx, credential)
	if err != nil {
		return models.Session{}, err
	}
	u.publish(ctx, event.EventTypeUserSignedUp, event.UserEvent{UserID: session.UserID})
	return session, nil
}

func (u *UseCases) logIn(ctx context.Context, credential models.Credential) (models.Session, error) {
	return u.deps.Auth.LogIn(ctx, credential)
}

// logOut revokes the session carried by ctx. Without one there is nothing
// to do.
func (u *UseCases) logOut(ctx context.Context, _ Unit) (Unit, error) {
	session, ok := dao.SessionFromContext(ctx)
	if !ok {
		return Unit{}, nil
	}
	return Unit{}, u.deps.Auth.LogOut(ctx, session.ID)
}
