package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/discover"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

type postgresDiscoverRepo struct {
	*feedRepoBase
}

var _ discover.Repository = (*postgresDiscoverRepo)(nil)

// NewDiscoverRepository creates a new PostgreSQL discover repository
func NewDiscoverRepository(db *sql.DB) discover.Repository {
	return &postgresDiscoverRepo{feedRepoBase: newFeedRepoBase(db)}
}

// GetPopular ranks public publications by engagement
func (r *postgresDiscoverRepo) GetPopular(ctx context.Context, since *time.Time, page paging.Request) (*publications.PublicationPage, error) {
	q := newListQuery("popular")
	q.published()
	q.filter("p.visibility = 'public'")
	if since != nil {
		q.filter("p.created_at >= %s", q.bind(*since))
	}
	return r.listPublications(ctx, q, page)
}

// GetRecent lists public publications newest first
func (r *postgresDiscoverRepo) GetRecent(ctx context.Context, page paging.Request) (*publications.PublicationPage, error) {
	q := newListQuery("recent")
	q.published()
	q.filter("p.visibility = 'public'")
	return r.listPublications(ctx, q, page)
}
