package timeline

import (
	"context"
	"strings"

	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

type timelineService struct {
	repo Repository
}

// NewTimelineService creates a new timeline service
func NewTimelineService(repo Repository) Service {
	return &timelineService{
		repo: repo,
	}
}

// GetFeed retrieves publications by the user and everyone they friended
func (s *timelineService) GetFeed(ctx context.Context, req GetFeedRequest) (*publications.PublicationPage, error) {
	// UserID must be set (from auth middleware)
	if req.UserID == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.GetFeedForUser(ctx, req.UserID, req.Page.Normalize())
}

// GetTimeline retrieves publications by an explicit set of friends
func (s *timelineService) GetTimeline(ctx context.Context, req GetTimelineRequest) (*publications.PublicationPage, error) {
	if req.UserID == "" {
		return nil, ErrUnauthorized
	}
	authors, err := normalizeAuthors(req.FriendIDs)
	if err != nil {
		return nil, err
	}
	return s.repo.GetTimeline(ctx, req.UserID, authors, req.Page.Normalize())
}

// normalizeAuthors trims, drops blanks and de-duplicates ids, keeping order
func normalizeAuthors(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, ErrFriendIDsMissing
	}
	if len(out) > MaxTimelineAuthors {
		return nil, ErrTooManyFriendIDs
	}
	return out, nil
}

// ParseFriendIDs splits a comma separated query value
func ParseFriendIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

