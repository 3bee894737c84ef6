package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
	"github.com/wilber023/poust-microservicio/internal/core/timeline"
)

type postgresTimelineRepo struct {
	*feedRepoBase
}

var _ timeline.Repository = (*postgresTimelineRepo)(nil)

// NewTimelineRepository creates a new PostgreSQL timeline repository
func NewTimelineRepository(db *sql.DB) timeline.Repository {
	return &postgresTimelineRepo{feedRepoBase: newFeedRepoBase(db)}
}

// GetFeedForUser lists publications by the user and everyone in the user's
// friends set, minus authors the user blocked
func (r *postgresTimelineRepo) GetFeedForUser(ctx context.Context, userID string, page paging.Request) (*publications.PublicationPage, error) {
	q := newListQuery("recent")
	q.published()
	u := q.bind(userID)
	q.filter(`(p.author_id = %[1]s OR p.author_id IN (
		SELECT f.friend_id FROM friendships f WHERE f.user_id::text = %[1]s
	))`, u)
	q.filter(`NOT EXISTS (
		SELECT 1 FROM blocked_users b WHERE b.user_id::text = %[1]s AND b.blocked_user_id = p.author_id
	)`, u)
	q.visibleTo(userID)
	return r.listPublications(ctx, q, page)
}

// GetTimeline lists publications by an explicit author set
func (r *postgresTimelineRepo) GetTimeline(ctx context.Context, viewerID string, authorIDs []string, page paging.Request) (*publications.PublicationPage, error) {
	q := newListQuery("recent")
	q.published()
	q.filter("p.author_id = ANY(%s)", q.bind(pq.Array(authorIDs)))
	q.visibleTo(viewerID)
	return r.listPublications(ctx, q, page)
}
