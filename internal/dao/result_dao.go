package dao

import (
	"context"
	"errors"
	"fmt"

	"quiz-app/internal/paging"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoTestResultDAO struct {
	Col *mongo.Collection
}

func NewMongoTestResultDAO(db *mongo.Database) *MongoTestResultDAO {
	return &MongoTestResultDAO{Col: db.Collection("results")}
}

func resultKey(testID, userID string) bson.D {
	return bson.D{{Key: "test_id", Value: testID}, {Key: "user_id", Value: userID}}
}

// Save stores the answer sheet, replacing an earlier one by the same user.
func (d *MongoTestResultDAO) Save(ctx context.Context, record *ResultRecord) error {
	_, err := d.Col.ReplaceOne(ctx, resultKey(record.TestID, record.UserID), record, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save result %s/%s: %w", record.TestID, record.UserID, err)
	}
	return nil
}

func (d *MongoTestResultDAO) Get(ctx context.Context, testID, userID string) (*ResultRecord, error) {
	var record ResultRecord
	err := d.Col.FindOne(ctx, resultKey(testID, userID)).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get result %s/%s: %w", testID, userID, err)
	}
	return &record, nil
}

func (d *MongoTestResultDAO) Page(ctx context.Context, testID string, params paging.LoadParams) (paging.Page[ResultRecord], error) {
	after, err := decodeAfter(params.Cursor)
	if err != nil {
		return paging.Page[ResultRecord]{}, err
	}

	opts := options.Find().SetSort(resultsSort()).SetLimit(int64(params.LoadSize))
	cur, err := d.Col.Find(ctx, resultsFilter(testID, after), opts)
	if err != nil {
		return paging.Page[ResultRecord]{}, fmt.Errorf("find results: %w", err)
	}
	defer cur.Close(ctx)

	records := []ResultRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return paging.Page[ResultRecord]{}, fmt.Errorf("decode results: %w", err)
	}

	next, err := paging.NextCursor(records, params.LoadSize, func(r ResultRecord) (string, error) {
		return paging.EncodeCursor(paging.Key{Sort: r.UserID, ID: r.UserID})
	})
	if err != nil {
		return paging.Page[ResultRecord]{}, err
	}
	return paging.Page[ResultRecord]{Items: records, NextCursor: next}, nil
}
