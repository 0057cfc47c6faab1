package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quiz-app/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisLocalUserDetailsDAO caches one profile per user as JSON.
type RedisLocalUserDetailsDAO struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocalUserDetailsDAO(client *redis.Client, ttl time.Duration) *RedisLocalUserDetailsDAO {
	return &RedisLocalUserDetailsDAO{client: client, ttl: ttl}
}

func userDetailsKey(userID string) string {
	return "user-details:" + userID
}

func userDetailsChannel(userID string) string {
	return "user-details-events:" + userID
}

// decodeUserDetails treats a corrupt record as absent.
func decodeUserDetails(raw []byte) *models.UserDetails {
	var details models.UserDetails
	if err := json.Unmarshal(raw, &details); err != nil || details.UserID == "" {
		return nil
	}
	return &details
}

func (d *RedisLocalUserDetailsDAO) Get(ctx context.Context, userID string) (*models.UserDetails, error) {
	raw, err := d.client.Get(ctx, userDetailsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached user details: %w", err)
	}
	return decodeUserDetails(raw), nil
}

func (d *RedisLocalUserDetailsDAO) Save(ctx context.Context, details *models.UserDetails) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode user details: %w", err)
	}
	if err := d.client.Set(ctx, userDetailsKey(details.UserID), raw, d.ttl).Err(); err != nil {
		return fmt.Errorf("cache user details: %w", err)
	}
	d.announce(ctx, details.UserID)
	return nil
}

func (d *RedisLocalUserDetailsDAO) Delete(ctx context.Context, userID string) error {
	if err := d.client.Del(ctx, userDetailsKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete cached user details: %w", err)
	}
	d.announce(ctx, userID)
	return nil
}

func (d *RedisLocalUserDetailsDAO) announce(ctx context.Context, userID string) {
	if err := d.client.Publish(ctx, userDetailsChannel(userID), "changed").Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to announce user details change")
	}
}

func (d *RedisLocalUserDetailsDAO) Observe(ctx context.Context, userID string) (<-chan *models.UserDetails, error) {
	return observeChannel(ctx, d.client, userDetailsChannel(userID), func(ctx context.Context) *models.UserDetails {
		details, err := d.Get(ctx, userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Failed to read cached user details")
			return nil
		}
		return details
	}, nil)
}
