package dao

import (
	"context"
	"errors"
	"fmt"

	"quiz-app/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoUserDetailsDAO struct {
	Col *mongo.Collection
}

func NewMongoUserDetailsDAO(db *mongo.Database) *MongoUserDetailsDAO {
	return &MongoUserDetailsDAO{Col: db.Collection("users")}
}

func (d *MongoUserDetailsDAO) Get(ctx context.Context, userID string) (*models.UserDetails, error) {
	var details models.UserDetails
	err := d.Col.FindOne(ctx, bson.D{{Key: "user_id", Value: userID}}).Decode(&details)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user details %s: %w", userID, err)
	}
	return &details, nil
}

func (d *MongoUserDetailsDAO) Save(ctx context.Context, details *models.UserDetails) error {
	_, err := d.Col.ReplaceOne(ctx, bson.D{{Key: "user_id", Value: details.UserID}}, details, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save user details %s: %w", details.UserID, err)
	}
	return nil
}
