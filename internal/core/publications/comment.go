package publications

import (
	"strings"
	"time"

	"github.com/rivo/uniseg"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

// MaxCommentChars is the comment text limit, counted in grapheme clusters
const MaxCommentChars = 1000

// CommentStatus is the soft-delete lifecycle of a comment
type CommentStatus string

const (
	CommentActive        CommentStatus = "active"
	CommentStatusDeleted CommentStatus = "deleted"
	CommentStatusHidden  CommentStatus = "hidden"
)

func (s CommentStatus) valid() bool {
	return s == CommentActive || s == CommentStatusDeleted || s == CommentStatusHidden
}

// Comment is owned by exactly one Publication. Comments are never physically
// removed; MarkAsDeleted and Hide only move them out of the active state.
type Comment struct {
	createdAt       time.Time
	updatedAt       time.Time
	id              string
	authorID        string
	text            string
	publicationID   string
	parentCommentID string
	status          CommentStatus
	likesCount      int
	isEdited        bool
}

// NewComment validates and creates an active comment.
// parentCommentID is empty for top level comments.
func NewComment(id, authorID, text, publicationID, parentCommentID string, now time.Time) (*Comment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.Detail(ErrInvalidComment, "id is required")
	}
	if strings.TrimSpace(authorID) == "" {
		return nil, errs.Detail(ErrInvalidComment, "author id is required")
	}
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	if strings.TrimSpace(publicationID) == "" {
		return nil, errs.Detail(ErrInvalidComment, "publication id is required")
	}

	return &Comment{
		id:              id,
		authorID:        authorID,
		text:            text,
		publicationID:   publicationID,
		parentCommentID: parentCommentID,
		createdAt:       now,
		updatedAt:       now,
		status:          CommentActive,
	}, nil
}

func validateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrCommentTextRequired
	}
	if n := uniseg.GraphemeClusterCount(text); n > MaxCommentChars {
		return errs.Detail(ErrCommentTooLong, "got %d", n)
	}
	return nil
}

func (c *Comment) ID() string                 { return c.id }
func (c *Comment) AuthorID() string           { return c.authorID }
func (c *Comment) Text() string               { return c.text }
func (c *Comment) PublicationID() string      { return c.publicationID }
func (c *Comment) ParentCommentID() string    { return c.parentCommentID }
func (c *Comment) CreatedAt() time.Time       { return c.createdAt }
func (c *Comment) UpdatedAt() time.Time       { return c.updatedAt }
func (c *Comment) LikesCount() int            { return c.likesCount }
func (c *Comment) IsEdited() bool             { return c.isEdited }
func (c *Comment) Status() CommentStatus      { return c.status }
func (c *Comment) IsReply() bool              { return c.parentCommentID != "" }
func (c *Comment) IsActive() bool             { return c.status == CommentActive }
func (c *Comment) Equals(other *Comment) bool { return other != nil && c.id == other.id }

// UpdateText replaces the text and marks the comment as edited
func (c *Comment) UpdateText(text string, now time.Time) error {
	if err := validateCommentText(text); err != nil {
		return err
	}
	c.text = text
	c.isEdited = true
	c.updatedAt = now
	return nil
}

func (c *Comment) IncrementLikes() {
	c.likesCount++
}

// DecrementLikes never goes below zero
func (c *Comment) DecrementLikes() {
	if c.likesCount > 0 {
		c.likesCount--
	}
}

// MarkAsDeleted soft-deletes the comment. Repeat calls are no-ops.
func (c *Comment) MarkAsDeleted(now time.Time) {
	if c.status == CommentStatusDeleted {
		return
	}
	c.status = CommentStatusDeleted
	c.updatedAt = now
}

// Hide moves an active comment to hidden. Deleted or hidden comments are left as is.
func (c *Comment) Hide(now time.Time) {
	if c.status != CommentActive {
		return
	}
	c.status = CommentStatusHidden
	c.updatedAt = now
}

func (c *Comment) clone() *Comment {
	cp := *c
	return &cp
}
