package timeline

import (
	"context"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// MaxTimelineAuthors bounds the explicit friend set of a timeline request
const MaxTimelineAuthors = 100

// Repository defines feed data access. Implementations return published
// publications newest first. A friends-only publication is included when the
// viewer is its author or the author has friended the viewer.
type Repository interface {
	// GetFeedForUser returns publications by the user and the user's friends,
	// excluding authors the user blocked
	GetFeedForUser(ctx context.Context, userID string, page paging.Request) (*publications.PublicationPage, error)

	// GetTimeline returns publications by the given authors
	GetTimeline(ctx context.Context, viewerID string, authorIDs []string, page paging.Request) (*publications.PublicationPage, error)
}

// Service defines feed business logic
type Service interface {
	GetFeed(ctx context.Context, req GetFeedRequest) (*publications.PublicationPage, error)
	GetTimeline(ctx context.Context, req GetTimelineRequest) (*publications.PublicationPage, error)
}

// GetFeedRequest is the input for the authenticated user's feed
type GetFeedRequest struct {
	UserID string `json:"-"` // Extracted from auth, not from query params
	Page   paging.Request
}

// GetTimelineRequest is the input for a timeline over an explicit friend set
type GetTimelineRequest struct {
	UserID    string `json:"-"`
	FriendIDs []string
	Page      paging.Request
}

var (
	ErrUnauthorized     = errs.Forbidden("authentication required")
	ErrFriendIDsMissing = errs.Validation("friendIds must list at least one user")
	ErrTooManyFriendIDs = errs.Validation("friendIds must not exceed 100 users")
)
