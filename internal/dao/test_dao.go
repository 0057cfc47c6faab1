package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-app/internal/models"
	"quiz-app/internal/paging"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoTestDAO struct {
	Col *mongo.Collection
	now func() time.Time
}

func NewMongoTestDAO(db *mongo.Database) *MongoTestDAO {
	return &MongoTestDAO{Col: db.Collection("tests"), now: time.Now}
}

// prepareTest fills the derived fields of a test about to be stored.
// storedTimestamp is zero for tests that were never stored.
func prepareTest(test models.Test, storedTimestamp int64, now time.Time) models.Test {
	if test.ID == "" {
		test.ID = uuid.NewString()
	}
	test.SearchTitle = models.SearchKey(test.Title)
	if storedTimestamp != 0 {
		test.Timestamp = storedTimestamp
	} else {
		test.Timestamp = now.UnixMilli()
	}

	questions := make([]models.Question, len(test.Questions))
	copy(questions, test.Questions)
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
	}
	test.Questions = questions
	return test
}

func (d *MongoTestDAO) Save(ctx context.Context, test *models.Test) (string, error) {
	if test.ID == "" {
		doc := prepareTest(*test, 0, d.now())
		if _, err := d.Col.InsertOne(ctx, doc); err != nil {
			return "", fmt.Errorf("insert test: %w", err)
		}
		return doc.ID, nil
	}

	var stored struct {
		Timestamp int64 `bson:"timestamp"`
	}
	err := d.Col.FindOne(ctx, bson.D{{Key: "_id", Value: test.ID}},
		options.FindOne().SetProjection(bson.D{{Key: "timestamp", Value: 1}})).Decode(&stored)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("load test %s: %w", test.ID, err)
	}

	doc := prepareTest(*test, stored.Timestamp, d.now())
	_, err = d.Col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("replace test %s: %w", doc.ID, err)
	}
	return doc.ID, nil
}

func (d *MongoTestDAO) Delete(ctx context.Context, id string) error {
	if _, err := d.Col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("delete test %s: %w", id, err)
	}
	return nil
}

func (d *MongoTestDAO) Get(ctx context.Context, id string) (*models.Test, error) {
	var test models.Test
	err := d.Col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&test)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get test %s: %w", id, err)
	}
	return &test, nil
}

func (d *MongoTestDAO) Page(ctx context.Context, query TestQuery, params paging.LoadParams) (paging.Page[models.Test], error) {
	after, err := decodeAfter(params.Cursor)
	if err != nil {
		return paging.Page[models.Test]{}, err
	}
	filter, err := testsFilter(query, after)
	if err != nil {
		return paging.Page[models.Test]{}, err
	}

	opts := options.Find().SetSort(testsSort(query)).SetLimit(int64(params.LoadSize))
	cur, err := d.Col.Find(ctx, filter, opts)
	if err != nil {
		return paging.Page[models.Test]{}, fmt.Errorf("find tests: %w", err)
	}
	defer cur.Close(ctx)

	tests := []models.Test{}
	if err := cur.All(ctx, &tests); err != nil {
		return paging.Page[models.Test]{}, fmt.Errorf("decode tests: %w", err)
	}

	next, err := paging.NextCursor(tests, params.LoadSize, func(t models.Test) (string, error) {
		return paging.EncodeCursor(testCursorKey(query, t))
	})
	if err != nil {
		return paging.Page[models.Test]{}, err
	}
	return paging.Page[models.Test]{Items: tests, NextCursor: next}, nil
}
