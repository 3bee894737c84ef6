package discover

import (
	"context"
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// Repository defines discover data access. Only published, public
// publications are returned.
type Repository interface {
	// GetPopular orders by likes_count + comments_count, then newest first.
	// A nil since means no lower bound.
	GetPopular(ctx context.Context, since *time.Time, page paging.Request) (*publications.PublicationPage, error)

	// GetRecent orders newest first
	GetRecent(ctx context.Context, page paging.Request) (*publications.PublicationPage, error)
}

// Service defines discover business logic interface
type Service interface {
	GetPopular(ctx context.Context, req GetPopularRequest) (*publications.PublicationPage, error)
	GetRecent(ctx context.Context, req GetRecentRequest) (*publications.PublicationPage, error)
}

// Timeframe bounds the popular listing
type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeAll   Timeframe = "all"

	DefaultTimeframe = TimeframeWeek
)

// GetPopularRequest is the input for the popular listing
type GetPopularRequest struct {
	Timeframe Timeframe `json:"timeframe"`
	Page      paging.Request
}

// GetRecentRequest is the input for the recent listing
type GetRecentRequest struct {
	Page paging.Request
}

var ErrInvalidTimeframe = errs.Validation("timeframe must be one of: day, week, month, all")
