package service

import (
	"context"

	"quiz-app/internal/apperr"

	"github.com/google/uuid"
)

// uploadImage stores an image owned by the caller and returns its id.
func (u *UseCases) uploadImage(ctx context.Context, params UploadImageParams) (string, error) {
	userID, err := u.currentUserID(ctx)
	if err != nil {
		return "", err
	}
	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := u.deps.Images.Upload(ctx, id, userID, params.Data); err != nil {
		return "", err
	}
	return id, nil
}

// deleteImage removes one of the caller's images. Images of other users are
// reported as missing.
func (u *UseCases) deleteImage(ctx context.Context, id string) (Unit, error) {
	userID, err := u.currentUserID(ctx)
	if err != nil {
		return Unit{}, err
	}
	owner, err := u.deps.Images.Owner(ctx, id)
	if err != nil {
		return Unit{}, err
	}
	if owner != userID {
		return Unit{}, apperr.New(apperr.KindNotFound)
	}
	return Unit{}, u.deps.Images.Delete(ctx, id)
}

// purgeImage removes an image regardless of its owner. It backs the cleanup
// of deleted tests and is not exposed over HTTP.
func (u *UseCases) purgeImage(ctx context.Context, id string) (Unit, error) {
	return Unit{}, u.deps.Images.Delete(ctx, id)
}

func (u *UseCases) getImageLink(ctx context.Context, id string) (string, error) {
	return u.deps.Images.Link(ctx, id)
}
