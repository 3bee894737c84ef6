package profiles

import (
	"context"

	"github.com/wilber023/poust-microservicio/internal/core/paging"
)

// Repository persists UserProfile aggregates
type Repository interface {
	// FindByID returns ErrProfileNotFound when absent
	FindByID(ctx context.Context, id UserID) (*UserProfile, error)
	FindByUsername(ctx context.Context, username string) (*UserProfile, error)

	// Save upserts the root and reconciles interests, friends and blocked
	// users in one transaction. A stale version fails with
	// ErrConcurrentModification and a duplicate username with ErrUsernameTaken.
	Save(ctx context.Context, u *UserProfile) error

	Delete(ctx context.Context, id UserID) error
	Exists(ctx context.Context, id UserID) (bool, error)
}

// QueryRepository serves profile read models
type QueryRepository interface {
	// IsUsernameAvailable ignores the profile identified by excludeUserID
	IsUsernameAvailable(ctx context.Context, username, excludeUserID string) (bool, error)
	IsFriend(ctx context.Context, ownerID, friendID string) (bool, error)
	GetFriends(ctx context.Context, userID string, page paging.Request) (*ProfilePage, error)
	GetBlockedUsers(ctx context.Context, userID string, page paging.Request) (*ProfilePage, error)
	Search(ctx context.Context, query string, page paging.Request) (*ProfilePage, error)

	// GetFriendSuggestions excludes the user, their friends and users they blocked
	GetFriendSuggestions(ctx context.Context, userID string, limit int) ([]*Suggestion, error)
	GetProfileStats(ctx context.Context, userID string) (*ProfileStats, error)
}

// Service defines profile use cases
type Service interface {
	CreateProfile(ctx context.Context, req CreateProfileRequest) (*ProfileView, error)
	GetProfile(ctx context.Context, userID string) (*ProfileView, error)
	GetProfileByUsername(ctx context.Context, username string) (*ProfileView, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*ProfileView, error)
	UpdateInterests(ctx context.Context, userID string, names []string) (*ProfileView, error)

	AddFriend(ctx context.Context, userID, friendID string) (*RelationshipResult, error)
	RemoveFriend(ctx context.Context, userID, friendID string) (*RelationshipResult, error)
	BlockUser(ctx context.Context, userID, targetID string) (*RelationshipResult, error)
	UnblockUser(ctx context.Context, userID, targetID string) (*RelationshipResult, error)

	GetFriends(ctx context.Context, userID string, page paging.Request) (*ProfilePage, error)
	GetBlockedUsers(ctx context.Context, userID string, page paging.Request) (*ProfilePage, error)
	SearchProfiles(ctx context.Context, query string, page paging.Request) (*ProfilePage, error)
	GetFriendSuggestions(ctx context.Context, userID string, limit int) ([]*Suggestion, error)
	GetProfileStats(ctx context.Context, userID string) (*ProfileStats, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
}
