package publications

import "time"

// EventType names a publication domain event
type EventType string

const (
	EventCommentAdded       EventType = "COMMENT_ADDED"
	EventCommentEdited      EventType = "COMMENT_EDITED"
	EventCommentDeleted     EventType = "COMMENT_DELETED"
	EventCommentHidden      EventType = "COMMENT_HIDDEN"
	EventPublicationLiked   EventType = "PUBLICATION_LIKED"
	EventPublicationUnliked EventType = "PUBLICATION_UNLIKED"
	EventMediaItemAdded     EventType = "MEDIA_ITEM_ADDED"
	EventMediaItemRemoved   EventType = "MEDIA_ITEM_REMOVED"
)

// Event is returned by Publication mutators. The set of implementations is
// closed; callers switch on the concrete type.
type Event interface {
	EventType() EventType
	OccurredAt() time.Time
	AggregateID() string
	publicationEvent()
}

type CommentAdded struct {
	Timestamp       time.Time `json:"timestamp"`
	Type            EventType `json:"type"`
	PublicationID   string    `json:"publicationId"`
	CommentID       string    `json:"commentId"`
	AuthorID        string    `json:"authorId"`
	ParentCommentID string    `json:"parentCommentId,omitempty"`
}

type CommentEdited struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	PublicationID string    `json:"publicationId"`
	CommentID     string    `json:"commentId"`
	EditedBy      string    `json:"editedBy"`
}

type CommentDeleted struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	PublicationID string    `json:"publicationId"`
	CommentID     string    `json:"commentId"`
	DeletedBy     string    `json:"deletedBy"`
}

type CommentHidden struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	PublicationID string    `json:"publicationId"`
	CommentID     string    `json:"commentId"`
	HiddenBy      string    `json:"hiddenBy"`
}

type PublicationLiked struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	PublicationID string    `json:"publicationId"`
	UserID        string    `json:"userId"`
}

type PublicationUnliked struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	PublicationID string    `json:"publicationId"`
	UserID        string    `json:"userId"`
}

type MediaItemAdded struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	PublicationID string    `json:"publicationId"`
	MediaItemID   string    `json:"mediaItemId"`
	MediaType     MediaType `json:"mediaType"`
}

type MediaItemRemoved struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	PublicationID string    `json:"publicationId"`
	MediaItemID   string    `json:"mediaItemId"`
}

func (e CommentAdded) EventType() EventType       { return EventCommentAdded }
func (e CommentEdited) EventType() EventType      { return EventCommentEdited }
func (e CommentDeleted) EventType() EventType     { return EventCommentDeleted }
func (e CommentHidden) EventType() EventType      { return EventCommentHidden }
func (e PublicationLiked) EventType() EventType   { return EventPublicationLiked }
func (e PublicationUnliked) EventType() EventType { return EventPublicationUnliked }
func (e MediaItemAdded) EventType() EventType     { return EventMediaItemAdded }
func (e MediaItemRemoved) EventType() EventType   { return EventMediaItemRemoved }

func (e CommentAdded) OccurredAt() time.Time       { return e.Timestamp }
func (e CommentEdited) OccurredAt() time.Time      { return e.Timestamp }
func (e CommentDeleted) OccurredAt() time.Time     { return e.Timestamp }
func (e CommentHidden) OccurredAt() time.Time      { return e.Timestamp }
func (e PublicationLiked) OccurredAt() time.Time   { return e.Timestamp }
func (e PublicationUnliked) OccurredAt() time.Time { return e.Timestamp }
func (e MediaItemAdded) OccurredAt() time.Time     { return e.Timestamp }
func (e MediaItemRemoved) OccurredAt() time.Time   { return e.Timestamp }

func (e CommentAdded) AggregateID() string       { return e.PublicationID }
func (e CommentEdited) AggregateID() string      { return e.PublicationID }
func (e CommentDeleted) AggregateID() string     { return e.PublicationID }
func (e CommentHidden) AggregateID() string      { return e.PublicationID }
func (e PublicationLiked) AggregateID() string   { return e.PublicationID }
func (e PublicationUnliked) AggregateID() string { return e.PublicationID }
func (e MediaItemAdded) AggregateID() string     { return e.PublicationID }
func (e MediaItemRemoved) AggregateID() string   { return e.PublicationID }

func (CommentAdded) publicationEvent()       {}
func (CommentEdited) publicationEvent()      {}
func (CommentDeleted) publicationEvent()     {}
func (CommentHidden) publicationEvent()      {}
func (PublicationLiked) publicationEvent()   {}
func (PublicationUnliked) publicationEvent() {}
func (MediaItemAdded) publicationEvent()     {}
func (MediaItemRemoved) publicationEvent()   {}
