package repository

import (
	"context"
	"errors"
	"net"

	"quiz-app/internal/apperr"
	"quiz-app/internal/paging"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func isNetworkError(err error) bool {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func logFailure(operation string, err error) {
	logrus.WithError(err).WithField("operation", operation).Error("Repository operation failed")
}

// translate logs a storage failure and maps it onto the domain taxonomy.
// Connectivity problems always surface as network errors; anything else
// becomes fallback.
func translate(operation string, err error, fallback apperr.Kind) *apperr.Error {
	logFailure(operation, err)

	switch {
	case errors.Is(err, paging.ErrInvalidCursor):
		return apperr.Newf(apperr.KindValidation, "invalid cursor")
	case isNetworkError(err):
		return apperr.Wrap(apperr.KindNetwork, err)
	}
	return apperr.Wrap(fallback, err)
}
