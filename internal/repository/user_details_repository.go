package repository

import (
	"context"

	"quiz-app/internal/apperr"
	"quiz-app/internal/dao"
	"quiz-app/internal/models"

	"github.com/sirupsen/logrus"
)

// UserDetailsRepository reads through the local cache and writes through to
// the remote store.
type UserDetailsRepository struct {
	remote dao.UserDetailsDAO
	local  dao.LocalUserDetailsDAO
}

func NewUserDetailsRepository(remote dao.UserDetailsDAO, local dao.LocalUserDetailsDAO) *UserDetailsRepository {
	return &UserDetailsRepository{remote: remote, local: local}
}

// Get returns nil when the user has no details. A remote hit is copied into
// the local cache.
func (r *UserDetailsRepository) Get(ctx context.Context, userID string) (*models.UserDetails, error) {
	cached, err := r.local.Get(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Local user details read failed, falling back to remote")
	}
	if cached != nil {
		return cached, nil
	}

	details, err := r.remote.Get(ctx, userID)
	if err != nil {
		return nil, translate("get_user_details", err, apperr.KindUnexpected)
	}
	if details == nil {
		return nil, nil
	}

	if err := r.local.Save(ctx, details); err != nil {
		return nil, translate("cache_user_details", err, apperr.KindUnexpected)
	}
	return details, nil
}

func (r *UserDetailsRepository) Save(ctx context.Context, details *models.UserDetails) error {
	if err := r.remote.Save(ctx, details); err != nil {
		return translate("save_user_details", err, apperr.KindUnexpected)
	}
	if err := r.local.Save(ctx, details); err != nil {
		return translate("cache_user_details", err, apperr.KindUnexpected)
	}
	return nil
}

// Observe follows the local cache. An absent cached value is resolved
// through Get; failures are emitted as nil.
func (r *UserDetailsRepository) Observe(ctx context.Context, userID string) <-chan *models.UserDetails {
	out := make(chan *models.UserDetails)

	go func() {
		defer close(out)

		emit := func(details *models.UserDetails) bool {
			select {
			case out <- details:
				return true
			case <-ctx.Done():
				return false
			}
		}

		changes, err := r.local.Observe(ctx, userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to observe user details")
			emit(nil)
			return
		}

		for details := range changes {
			if details == nil {
				details, err = r.Get(ctx, userID)
				if err != nil {
					details = nil
				}
			}
			if !emit(details) {
				return
			}
		}
	}()

	return out
}
