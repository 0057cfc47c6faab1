package dao

import (
	"strings"

	"quiz-app/internal/models"
	"quiz-app/internal/paging"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// searchUpperBound closes a prefix range on search_title.
const searchUpperBound = "\uf7ff"

func (q TestQuery) normalized() TestQuery {
	q.Search = models.SearchKey(strings.TrimSpace(q.Search))
	if q.Sort != models.SortOldest {
		q.Sort = models.SortNewest
	}
	return q
}

// testsFilter builds the filter for one page of tests. after is the position
// of the last test of the previous page, nil for the first page.
func testsFilter(q TestQuery, after *paging.Key) (bson.D, error) {
	q = q.normalized()

	var clauses bson.A
	if q.TeacherID != "" {
		clauses = append(clauses, bson.D{{Key: "teacher_id", Value: q.TeacherID}})
	}

	if q.Search != "" {
		clauses = append(clauses, bson.D{{Key: "search_title", Value: bson.D{
			{Key: "$gte", Value: q.Search},
			{Key: "$lte", Value: q.Search + searchUpperBound},
		}}})
		if after != nil {
			title, err := after.Text()
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, keysetAfter("search_title", title, after.ID, "$lt"))
		}
	} else if after != nil {
		ts, err := after.Int64()
		if err != nil {
			return nil, err
		}
		op := "$lt"
		if q.Sort == models.SortOldest {
			op = "$gt"
		}
		clauses = append(clauses, keysetAfter("timestamp", ts, after.ID, op))
	}

	switch len(clauses) {
	case 0:
		return bson.D{}, nil
	case 1:
		return clauses[0].(bson.D), nil
	}
	return bson.D{{Key: "$and", Value: clauses}}, nil
}

func testsSort(q TestQuery) bson.D {
	q = q.normalized()
	if q.Search != "" {
		return bson.D{{Key: "search_title", Value: -1}, {Key: "_id", Value: -1}}
	}
	if q.Sort == models.SortOldest {
		return bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}
}

// testCursorKey is the keyset position of t under q's ordering.
func testCursorKey(q TestQuery, t models.Test) paging.Key {
	if q.normalized().Search != "" {
		return paging.Key{Sort: t.SearchTitle, ID: t.ID}
	}
	return paging.Key{Sort: t.Timestamp, ID: t.ID}
}

func keysetAfter(field string, value any, id string, op string) bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: field, Value: bson.D{{Key: op, Value: value}}}},
		bson.D{
			{Key: field, Value: value},
			{Key: "_id", Value: bson.D{{Key: op, Value: id}}},
		},
	}}}
}

func resultsFilter(testID string, after *paging.Key) bson.D {
	filter := bson.D{{Key: "test_id", Value: testID}}
	if after != nil {
		filter = append(filter, bson.E{Key: "user_id", Value: bson.D{{Key: "$gt", Value: after.ID}}})
	}
	return filter
}

func resultsSort() bson.D {
	return bson.D{{Key: "user_id", Value: 1}}
}

// decodeAfter turns a client cursor into a keyset position.
func decodeAfter(cursor string) (*paging.Key, error) {
	if cursor == "" {
		return nil, nil
	}
	k, err := paging.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	return &k, nil
}
