package profiles

import (
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/paging"
)

// ProfileSummary is the list projection of a profile
type ProfileSummary struct {
	CreatedAt      time.Time `json:"createdAt"`
	Bio            *string   `json:"bio"`
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FriendsCount   int       `json:"friendsCount"`
	InterestsCount int       `json:"interestsCount"`
}

// ProfilePage is a page of summaries
type ProfilePage struct {
	Profiles   []*ProfileSummary `json:"profiles"`
	Pagination paging.Info       `json:"pagination"`
}

// Suggestion is a friend suggestion ranked by mutual friends and shared interests
type Suggestion struct {
	ProfileSummary
	MutualFriends   int `json:"mutualFriends"`
	SharedInterests int `json:"sharedInterests"`
}

// ProfileStats summarizes a profile and its activity
type ProfileStats struct {
	UserID            string `json:"userId"`
	FriendsCount      int    `json:"friendsCount"`
	BlockedUsersCount int    `json:"blockedUsersCount"`
	InterestsCount    int    `json:"interestsCount"`
	PublicationsCount int    `json:"publicationsCount"`
	LikesReceived     int    `json:"likesReceived"`
}

// DefaultSuggestionLimit applies when GetFriendSuggestions gets no limit
const DefaultSuggestionLimit = 10

type CreateProfileRequest struct {
	UserID    string   `json:"-"`
	Username  string   `json:"username"`
	Bio       string   `json:"bio,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// UpdateProfileRequest changes username and/or bio. A nil field is left
// alone; an empty bio clears it.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	UserID   string  `json:"-"`
}

// RelationshipResult is the output of friend and block mutations
type RelationshipResult struct {
	Event             Event  `json:"event"`
	UserID            string `json:"userId"`
	FriendsCount      int    `json:"friendsCount"`
	BlockedUsersCount int    `json:"blockedUsersCount"`
}
