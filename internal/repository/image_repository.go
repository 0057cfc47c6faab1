package repository

import (
	"context"
	"errors"

	"quiz-app/internal/apperr"
	"quiz-app/internal/dao"
)

type ImageRepository struct {
	images dao.ImageDAO
}

func NewImageRepository(images dao.ImageDAO) *ImageRepository {
	return &ImageRepository{images: images}
}

func (r *ImageRepository) Upload(ctx context.Context, id, owner string, data []byte) error {
	if err := r.images.Upload(ctx, id, owner, data); err != nil {
		logFailure("upload_image", err)
		return apperr.Wrap(apperr.KindFailedToUploadFile, err)
	}
	return nil
}

// Owner returns the uploader of an image. Missing images are not-found.
func (r *ImageRepository) Owner(ctx context.Context, id string) (string, error) {
	owner, err := r.images.Owner(ctx, id)
	if errors.Is(err, dao.ErrImageNotFound) {
		return "", apperr.New(apperr.KindNotFound)
	}
	if err != nil {
		return "", translate("image_owner", err, apperr.KindUnexpected)
	}
	return owner, nil
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	if err := r.images.Delete(ctx, id); err != nil {
		return translate("delete_image", err, apperr.KindUnexpected)
	}
	return nil
}

func (r *ImageRepository) Link(ctx context.Context, id string) (string, error) {
	link, err := r.images.Link(ctx, id)
	if err != nil {
		return "", translate("image_link", err, apperr.KindUnexpected)
	}
	return link, nil
}
