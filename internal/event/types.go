package event

import "encoding/json"

type EventType string

const (
	EventTypeTestSaved        EventType = "test.saved"
	EventTypeTestDeleted      EventType = "test.deleted"
	EventTypeTestResultSaved  EventType = "test_result.saved"
	EventTypeUserSignedUp     EventType = "user.signed_up"
	EventTypeUserDetailsSaved EventType = "user_details.saved"
)

// Envelope is the body of every message on the exchange.
type Envelope struct {
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type TestEvent struct {
	TestID    string   `json:"test_id"`
	TeacherID string   `json:"teacher_id"`
	Title     string   `json:"title,omitempty"`
	ImageIDs  []string `json:"image_ids,omitempty"`
}

type TestResultEvent struct {
	TestID string `json:"test_id"`
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Total  int    `json:"total"`
}

type UserEvent struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}
