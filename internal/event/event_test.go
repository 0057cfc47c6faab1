package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWrapsPayload(t *testing.T) {
	body, err := encode(EventTypeTestSaved, TestEvent{TestID: "t1", TeacherID: "u1"})
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, EventTypeTestSaved, envelope.Type)
	assert.NotZero(t, envelope.Timestamp)
	assert.JSONEq(t, `{"test_id":"t1","teacher_id":"u1"}`, string(envelope.Payload))
}

func TestDisabledPublisherAndConsumer(t *testing.T) {
	p, err := NewPublisher("", "quiz.events")
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), EventTypeTestSaved, nil))
	p.Close()

	c, err := NewConsumer("", "quiz.events", "q", nil)
	require.NoError(t, err)
	assert.NoError(t, c.Start())
	assert.NoError(t, c.Close())
}

func TestConsumerDeletesImagesOfDeletedTest(t *testing.T) {
	var deleted []string
	c, err := NewConsumer("", "quiz.events", "q", func(_ context.Context, id string) error {
		deleted = append(deleted, id)
		if id == "bad" {
			return errors.New("gone")
		}
		return nil
	})
	require.NoError(t, err)

	body, err := encode(EventTypeTestDeleted, TestEvent{TestID: "t1", ImageIDs: []string{"cover", "q1"}})
	require.NoError(t, err)
	require.NoError(t, c.processMessage(string(EventTypeTestDeleted), body))
	assert.Equal(t, []string{"cover", "q1"}, deleted)

	body, err = encode(EventTypeTestDeleted, TestEvent{TestID: "t2", ImageIDs: []string{"bad"}})
	require.NoError(t, err)
	assert.Error(t, c.processMessage(string(EventTypeTestDeleted), body))

	assert.Error(t, c.processMessage(string(EventTypeTestDeleted), []byte("{")))
	assert.NoError(t, c.processMessage(string(EventTypeTestSaved), body))
}
