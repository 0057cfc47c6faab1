package paging

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Key is the position of the last document of a page: the value of the sort
// field plus the document id as tie-breaker.
type Key struct {
	Sort any    `json:"s"`
	ID   string `json:"id"`
}

func EncodeCursor(k Key) (string, error) {
	raw, err := json.Marshal(k)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeCursor(cursor string) (Key, error) {
	var k Key
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return k, ErrInvalidCursor
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&k); err != nil || k.ID == "" {
		return Key{}, ErrInvalidCursor
	}
	return k, nil
}

// Int64 reads a numeric sort value decoded from a cursor.
func (k Key) Int64() (int64, error) {
	switch v := k.Sort.(type) {
	case json.Number:
		return v.Int64()
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	}
	return 0, ErrInvalidCursor
}

// Text reads a string sort value decoded from a cursor.
func (k Key) Text() (string, error) {
	s, ok := k.Sort.(string)
	if !ok {
		return "", ErrInvalidCursor
	}
	return s, nil
}
