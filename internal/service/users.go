package service

import (
	"context"

	"quiz-app/internal/apperr"
	"quiz-app/internal/event"
	"quiz-app/internal/models"
)

// getUserDetails returns the caller's details. A user without details is an
// unexpected state here; the auth state stream reports it separately.
func (u *UseCases) getUserDetails(ctx context.Context, _ Unit) (models.UserDetails, error) {
	userID, err := u.currentUserID(ctx)
	if err != nil {
		return models.UserDetails{}, err
	}
	details, err := u.deps.Users.Get(ctx, userID)
	if err != nil {
		return models.UserDetails{}, err
	}
	if details == nil {
		return models.UserDetails{}, apperr.Newf(apperr.KindUnexpected, "user details are missing")
	}
	return *details, nil
}

func (u *UseCases) saveUserDetails(ctx context.Context, details models.UserDetails) (Unit, error) {
	userID, err := u.currentUserID(ctx)
	if err != nil {
		return Unit{}, err
	}
	details.UserID = userID
	if err := u.deps.Users.Save(ctx, &details); err != nil {
		return Unit{}, err
	}
	u.publish(ctx, event.EventTypeUserDetailsSaved, event.UserEvent{UserID: userID, Role: string(details.Role)})
	return Unit{}, nil
}
