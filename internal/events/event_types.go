package events

import (
	"time"

	"github.com/spec-kit/account-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventUserLoggedIn    EventType = "user_logged_in"
	EventLoginFailed     EventType = "login_failed"
	EventTokenRefreshed  EventType = "token_refreshed"
	EventProfileUpdated  EventType = "profile_updated"
	EventPasswordChanged EventType = "password_changed"
	EventUserDeleted     EventType = "user_deleted"
)

// Event represents a security-relevant account event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// LoginFailedPayload payload. Identifier is the name or email the caller
// supplied; it may not match any account.
type LoginFailedPayload struct {
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}

// ProfileUpdatedPayload payload.
type ProfileUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	ByAdmin bool `json:"by_admin"`
}
