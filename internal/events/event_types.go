package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded       EventType = "login_succeeded"
	EventLoginFailed          EventType = "login_failed"
	EventLoginThrottled       EventType = "login_throttled"
	EventAccessTokenRefreshed EventType = "access_token_refreshed"
	EventUserRegistered       EventType = "user_registered"
)

// AuthEventTypes lists every event the auth service publishes.
func AuthEventTypes() []EventType {
	return []EventType{
		EventLoginSucceeded,
		EventLoginFailed,
		EventLoginThrottled,
		EventAccessTokenRefreshed,
		EventUserRegistered,
	}
}

// Event is an authentication audit record. It never carries secrets or tokens.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
