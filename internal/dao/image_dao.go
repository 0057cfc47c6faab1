package dao

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

var errInvalidImageID = errors.New("invalid image id")

// imageOwnerKey is the object metadata entry naming the uploader.
const imageOwnerKey = "Owner"

type MinioImageDAO struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewMinioImageDAO(client *minio.Client, bucket string, linkExpiry time.Duration) *MinioImageDAO {
	return &MinioImageDAO{client: client, bucket: bucket, expiry: linkExpiry}
}

func imageObjectName(id string) (string, error) {
	if id == "" || strings.Contains(id, "..") || strings.Contains(id, "/") {
		return "", errInvalidImageID
	}
	return "images/" + id + ".jpg", nil
}

func (d *MinioImageDAO) Upload(ctx context.Context, id, owner string, data []byte) error {
	name, err := imageObjectName(id)
	if err != nil {
		return err
	}
	_, err = d.client.PutObject(ctx, d.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "image/jpeg",
		UserMetadata: map[string]string{imageOwnerKey: owner},
	})
	if err != nil {
		return fmt.Errorf("upload image %s: %w", id, err)
	}
	return nil
}

func (d *MinioImageDAO) Owner(ctx context.Context, id string) (string, error) {
	name, err := imageObjectName(id)
	if err != nil {
		return "", err
	}
	info, err := d.client.StatObject(ctx, d.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrImageNotFound
		}
		return "", fmt.Errorf("stat image %s: %w", id, err)
	}
	return info.UserMetadata[imageOwnerKey], nil
}

func (d *MinioImageDAO) Delete(ctx context.Context, id string) error {
	name, err := imageObjectName(id)
	if err != nil {
		return err
	}
	if err := d.client.RemoveObject(ctx, d.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}
	return nil
}

func (d *MinioImageDAO) Link(ctx context.Context, id string) (string, error) {
	name, err := imageObjectName(id)
	if err != nil {
		return "", err
	}
	u, err := d.client.PresignedGetObject(ctx, d.bucket, name, d.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign image %s: %w", id, err)
	}
	return u.String(), nil
}
