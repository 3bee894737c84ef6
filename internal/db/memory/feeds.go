package memory

import (
	"context"
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/discover"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
	"github.com/wilber023/poust-microservicio/internal/core/timeline"
)

type timelineRepo struct {
	s *Store
}

var _ timeline.Repository = (*timelineRepo)(nil)

// NewTimelineRepository creates an in-memory timeline repository
func NewTimelineRepository(s *Store) timeline.Repository {
	return &timelineRepo{s: s}
}

func (r *timelineRepo) GetFeedForUser(ctx context.Context, userID string, page paging.Request) (*publications.PublicationPage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.page(func(p publications.Snapshot) bool {
		if p.Status != publications.StatusPublished || r.s.isBlocked(userID, p.AuthorID) {
			return false
		}
		if p.AuthorID != userID && !r.s.isFriend(userID, p.AuthorID) {
			return false
		}
		return r.s.visibleTo(p, userID)
	}, nil, page), nil
}

func (r *timelineRepo) GetTimeline(ctx context.Context, viewerID string, authorIDs []string, page paging.Request) (*publications.PublicationPage, error) {
	authors := make(map[string]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = struct{}{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.page(func(p publications.Snapshot) bool {
		if _, ok := authors[p.AuthorID]; !ok || p.Status != publications.StatusPublished {
			return false
		}
		return r.s.visibleTo(p, viewerID)
	}, nil, page), nil
}

type discoverRepo struct {
	s *Store
}

var _ discover.Repository = (*discoverRepo)(nil)

// NewDiscoverRepository creates an in-memory discover repository
func NewDiscoverRepository(s *Store) discover.Repository {
	return &discoverRepo{s: s}
}

func (r *discoverRepo) GetPopular(ctx context.Context, since *time.Time, page paging.Request) (*publications.PublicationPage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.page(func(p publications.Snapshot) bool {
		if !publicListing(p) {
			return false
		}
		return since == nil || !p.CreatedAt.Before(*since)
	}, mostEngaged, page), nil
}

func (r *discoverRepo) GetRecent(ctx context.Context, page paging.Request) (*publications.PublicationPage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.page(publicListing, nil, page), nil
}

func publicListing(p publications.Snapshot) bool {
	return p.Status == publications.StatusPublished && p.Visibility == publications.VisibilityPublic
}

func mostEngaged(a, b publications.Snapshot) bool {
	ea := len(a.Likes) + activeComments(a)
	eb := len(b.Likes) + activeComments(b)
	if ea != eb {
		return ea > eb
	}
	return newestFirst(a, b)
}
