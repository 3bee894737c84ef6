package discover

import (
	"context"
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

type discoverService struct {
	repo Repository
	now  func() time.Time
}

// NewDiscoverService creates a new discover service
func NewDiscoverService(repo Repository) Service {
	return &discoverService{
		repo: repo,
		now:  time.Now,
	}
}

// GetPopular retrieves the most engaged public publications within a timeframe
func (s *discoverService) GetPopular(ctx context.Context, req GetPopularRequest) (*publications.PublicationPage, error) {
	since, err := s.since(req.Timeframe)
	if err != nil {
		return nil, err
	}
	return s.repo.GetPopular(ctx, since, req.Page.Normalize())
}

// GetRecent retrieves the newest public publications
func (s *discoverService) GetRecent(ctx context.Context, req GetRecentRequest) (*publications.PublicationPage, error) {
	return s.repo.GetRecent(ctx, req.Page.Normalize())
}

// since converts a timeframe to a lower bound; all yields nil
func (s *discoverService) since(tf Timeframe) (*time.Time, error) {
	if tf == "" {
		tf = DefaultTimeframe
	}

	var window time.Duration
	switch tf {
	case TimeframeDay:
		window = 24 * time.Hour
	case TimeframeWeek:
		window = 7 * 24 * time.Hour
	case TimeframeMonth:
		window = 30 * 24 * time.Hour
	case TimeframeAll:
		return nil, nil
	default:
		return nil, ErrInvalidTimeframe
	}

	t := s.now().UTC().Add(-window)
	return &t, nil
}
