package profiles

import "time"

// EventType names a profile domain event
type EventType string

const (
	EventFriendAdded   EventType = "FRIEND_ADDED"
	EventFriendRemoved EventType = "FRIEND_REMOVED"
	EventUserBlocked   EventType = "USER_BLOCKED"
	EventUserUnblocked EventType = "USER_UNBLOCKED"
)

// Event is returned by UserProfile relationship mutators
type Event interface {
	EventType() EventType
	OccurredAt() time.Time
	AggregateID() string
	profileEvent()
}

type FriendAdded struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"userId"`
	FriendID  string    `json:"friendId"`
}

type FriendRemoved struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"userId"`
	FriendID  string    `json:"friendId"`
}

type UserBlocked struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	UserID        string    `json:"userId"`
	BlockedUserID string    `json:"blockedUserId"`
}

type UserUnblocked struct {
	Timestamp       time.Time `json:"timestamp"`
	Type            EventType `json:"type"`
	UserID          string    `json:"userId"`
	UnblockedUserID string    `json:"unblockedUserId"`
}

func (e FriendAdded) EventType() EventType  { return e.Type }
func (e FriendAdded) OccurredAt() time.Time { return e.Timestamp }
func (e FriendAdded) AggregateID() string   { return e.UserID }
func (FriendAdded) profileEvent()           {}

func (e FriendRemoved) EventType() EventType  { return e.Type }
func (e FriendRemoved) OccurredAt() time.Time { return e.Timestamp }
func (e FriendRemoved) AggregateID() string   { return e.UserID }
func (FriendRemoved) profileEvent()           {}

func (e UserBlocked) EventType() EventType  { return e.Type }
func (e UserBlocked) OccurredAt() time.Time { return e.Timestamp }
func (e UserBlocked) AggregateID() string   { return e.UserID }
func (UserBlocked) profileEvent()           {}

func (e UserUnblocked) EventType() EventType  { return e.Type }
func (e UserUnblocked) OccurredAt() time.Time { return e.Timestamp }
func (e UserUnblocked) AggregateID() string   { return e.UserID }
func (UserUnblocked) profileEvent()           {}
