package profiles

import (
	"context"
	"log/slog"
	"strings"

	"github.com/wilber023/poust-microservicio/internal/core/paging"
)

type profileService struct {
	repo    Repository
	queries QueryRepository
	logger  *slog.Logger
	opts    []Option
}

// NewProfileService creates a new profile service
func NewProfileService(repo Repository, queries QueryRepository, logger *slog.Logger, opts ...Option) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{
		repo:    repo,
		queries: queries,
		logger:  logger,
		opts:    opts,
	}
}

// CreateProfile creates the profile for the authenticated user
// Flow:
// 1. Validate the id and username format
// 2. Reject an existing profile or a taken username
// 3. Build the aggregate with optional interests and save
func (s *profileService) CreateProfile(ctx context.Context, req CreateProfileRequest) (*ProfileView, error) {
	id, err := ParseUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	if err := ValidateUsername(req.Username); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrProfileExists
	}
	available, err := s.queries.IsUsernameAvailable(ctx, req.Username, "")
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrUsernameTaken
	}

	u, err := NewUserProfile(id.String(), req.Username, req.Bio, s.opts...)
	if err != nil {
		return nil, err
	}
	if len(req.Interests) > 0 {
		if err := u.UpdateInterests(req.Interests); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("profile created", "user_id", id.String(), "username", u.Username())
	return u.View(), nil
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.View(), nil
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*ProfileView, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return u.View(), nil
}

// UpdateProfile changes username and/or bio; a new username must be free
func (s *profileService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*ProfileView, error) {
	u, err := s.load(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != "" && *req.Username != u.Username() {
		if err := ValidateUsername(*req.Username); err != nil {
			return nil, err
		}
		available, err := s.queries.IsUsernameAvailable(ctx, *req.Username, u.ID().String())
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, ErrUsernameTaken
		}
	}

	if err := u.UpdateProfile(req.Username, req.Bio); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", u.ID().String())
	return u.View(), nil
}

// UpdateInterests replaces the interest set
func (s *profileService) UpdateInterests(ctx context.Context, userID string, names []string) (*ProfileView, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.UpdateInterests(names); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("profile interests replaced", "user_id", u.ID().String(), "count", u.InterestsCount())
	return u.View(), nil
}

// AddFriend requires the target profile to exist
func (s *profileService) AddFriend(ctx context.Context, userID, friendID string) (*RelationshipResult, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTarget(ctx, u, friendID); err != nil {
		return nil, err
	}

	ev, err := u.AddFriend(friendID)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, u, ev)
}

func (s *profileService) RemoveFriend(ctx context.Context, userID, friendID string) (*RelationshipResult, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	ev, err := u.RemoveFriend(friendID)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, u, ev)
}

// BlockUser requires the target profile to exist
func (s *profileService) BlockUser(ctx context.Context, userID, targetID string) (*RelationshipResult, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTarget(ctx, u, targetID); err != nil {
		return nil, err
	}

	ev, err := u.BlockUser(targetID)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, u, ev)
}

func (s *profileService) UnblockUser(ctx context.Context, userID, targetID string) (*RelationshipResult, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	ev, err := u.UnblockUser(targetID)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, u, ev)
}

func (s *profileService) GetFriends(ctx context.Context, userID string, page paging.Request) (*ProfilePage, error) {
	if err := s.ensureExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.queries.GetFriends(ctx, userID, page.Normalize())
}

func (s *profileService) GetBlockedUsers(ctx context.Context, userID string, page paging.Request) (*ProfilePage, error) {
	if err := s.ensureExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.queries.GetBlockedUsers(ctx, userID, page.Normalize())
}

func (s *profileService) SearchProfiles(ctx context.Context, query string, page paging.Request) (*ProfilePage, error) {
	return s.queries.Search(ctx, strings.TrimSpace(query), page.Normalize())
}

func (s *profileService) GetFriendSuggestions(ctx context.Context, userID string, limit int) ([]*Suggestion, error) {
	if err := s.ensureExists(ctx, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > paging.MaxLimit {
		limit = paging.MaxLimit
	}
	return s.queries.GetFriendSuggestions(ctx, userID, limit)
}

func (s *profileService) GetProfileStats(ctx context.Context, userID string) (*ProfileStats, error) {
	if err := s.ensureExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.queries.GetProfileStats(ctx, userID)
}

func (s *profileService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	if err := ValidateUsername(username); err != nil {
		return false, err
	}
	return s.queries.IsUsernameAvailable(ctx, username, "")
}

func (s *profileService) load(ctx context.Context, userID string) (*UserProfile, error) {
	id, err := ParseUserID(userID)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Configure(s.opts...)
	return u, nil
}

func (s *profileService) ensureExists(ctx context.Context, userID string) error {
	id, err := ParseUserID(userID)
	if err != nil {
		return err
	}
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrProfileNotFound
	}
	return nil
}

// ensureTarget checks that targetID names another existing profile. Self
// targets are left to the aggregate so they fail as invariant violations.
func (s *profileService) ensureTarget(ctx context.Context, u *UserProfile, targetID string) error {
	if strings.TrimSpace(targetID) == "" {
		return ErrTargetRequired
	}
	if CanonicalUserID(targetID) == u.ID().String() {
		return nil
	}
	return s.ensureExists(ctx, targetID)
}

func (s *profileService) commit(ctx context.Context, u *UserProfile, ev Event) (*RelationshipResult, error) {
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("profile event",
		"event_type", ev.EventType(),
		"user_id", ev.AggregateID(),
		"occurred_at", ev.OccurredAt(),
		"target_id", targetOf(ev))

	return &RelationshipResult{
		Event:             ev,
		UserID:            u.ID().String(),
		FriendsCount:      u.FriendsCount(),
		BlockedUsersCount: u.BlockedUsersCount(),
	}, nil
}

func targetOf(ev Event) string {
	switch e := ev.(type) {
	case FriendAdded:
		return e.FriendID
	case FriendRemoved:
		return e.FriendID
	case UserBlocked:
		return e.BlockedUserID
	case UserUnblocked:
		return e.UnblockedUserID
	}
	return ""
}
