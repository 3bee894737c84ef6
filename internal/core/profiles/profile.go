package profiles

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/moderation"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateUsername checks length and charset
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength || !usernamePattern.MatchString(username) {
		return errs.Detail(ErrInvalidUsername, "got %q", username)
	}
	return nil
}

// Option configures a UserProfile at construction or restore time
type Option func(*UserProfile)

// WithBioPolicy replaces the default bio denylist
func WithBioPolicy(policy moderation.Policy) Option {
	return func(u *UserProfile) {
		if policy != nil {
			u.policy = policy
		}
	}
}

// WithClock replaces time.Now for timestamps
func WithClock(clock func() time.Time) Option {
	return func(u *UserProfile) {
		if clock != nil {
			u.clock = clock
		}
	}
}

// UserProfile is the aggregate root for a user's public identity, interests
// and relationships. Friends and blocked users are weak references by id.
type UserProfile struct {
	createdAt    time.Time
	updatedAt    time.Time
	policy       moderation.Policy
	clock        func() time.Time
	interests    map[string]*Interest
	friends      map[string]struct{}
	blockedUsers map[string]struct{}
	id           UserID
	username     string
	bio          Bio
	version      int64
}

func newEmptyProfile(opts []Option) *UserProfile {
	u := &UserProfile{
		policy:       moderation.DefaultBioPolicy(),
		clock:        time.Now,
		interests:    make(map[string]*Interest),
		friends:      make(map[string]struct{}),
		blockedUsers: make(map[string]struct{}),
	}
	u.Configure(opts...)
	return u
}

// NewUserProfile creates a profile. An empty bio means none.
func NewUserProfile(id, username, bio string, opts ...Option) (*UserProfile, error) {
	userID, err := ParseUserID(id)
	if err != nil {
		return nil, err
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	u := newEmptyProfile(opts)
	b, err := NewBio(bio, u.policy)
	if err != nil {
		return nil, err
	}

	now := u.now()
	u.id = userID
	u.username = username
	u.bio = b
	u.createdAt = now
	u.updatedAt = now
	return u, nil
}

// Configure applies options to a loaded aggregate
func (u *UserProfile) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(u)
	}
}

func (u *UserProfile) now() time.Time {
	return u.clock().UTC()
}

func (u *UserProfile) touch() time.Time {
	u.updatedAt = u.now()
	return u.updatedAt
}

func (u *UserProfile) ID() UserID                         { return u.id }
func (u *UserProfile) Username() string                   { return u.username }
func (u *UserProfile) Bio() Bio                           { return u.bio }
func (u *UserProfile) CreatedAt() time.Time               { return u.createdAt }
func (u *UserProfile) UpdatedAt() time.Time               { return u.updatedAt }
func (u *UserProfile) Version() int64                     { return u.version }
func (u *UserProfile) FriendsCount() int                  { return len(u.friends) }
func (u *UserProfile) BlockedUsersCount() int             { return len(u.blockedUsers) }
func (u *UserProfile) InterestsCount() int                { return len(u.interests) }
func (u *UserProfile) CanInteractWith(userID string) bool { return !u.IsBlocked(userID) }

// MarkSaved records the version assigned by the repository
func (u *UserProfile) MarkSaved(version int64) {
	u.version = version
}

func (u *UserProfile) IsFriend(userID string) bool {
	_, ok := u.friends[CanonicalUserID(userID)]
	return ok
}

func (u *UserProfile) IsBlocked(userID string) bool {
	_, ok := u.blockedUsers[CanonicalUserID(userID)]
	return ok
}

// Friends returns friend ids sorted
func (u *UserProfile) Friends() []string {
	return sortedKeys(u.friends)
}

// BlockedUsers returns blocked ids sorted
func (u *UserProfile) BlockedUsers() []string {
	return sortedKeys(u.blockedUsers)
}

// Interests returns copies sorted by createdAt, then name, then id
func (u *UserProfile) Interests() []*Interest {
	out := make([]*Interest, 0, len(u.interests))
	for _, i := range u.interests {
		out = append(out, i.clone())
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].createdAt.Equal(out[b].createdAt) {
			return out[a].createdAt.Before(out[b].createdAt)
		}
		if out[a].name != out[b].name {
			return out[a].name < out[b].name
		}
		return out[a].id < out[b].id
	})
	return out
}

// UpdateProfile changes username and/or bio. A nil field is left alone; an
// empty username means no change, while an empty bio clears it.
func (u *UserProfile) UpdateProfile(username, bio *string) error {
	newUsername := u.username
	if username != nil && *username != "" && *username != u.username {
		if err := ValidateUsername(*username); err != nil {
			return err
		}
		newUsername = *username
	}

	newBio := u.bio
	if bio != nil {
		b, err := NewBio(*bio, u.policy)
		if err != nil {
			return err
		}
		newBio = b
	}

	u.username = newUsername
	u.bio = newBio
	u.touch()
	return nil
}

// UpdateInterests replaces the whole interest set. Names are validated before
// anything changes; duplicate names are kept as separate interests.
func (u *UserProfile) UpdateInterests(names []string) error {
	if len(names) > MaxInterests {
		return errs.Detail(ErrTooManyInterests, "got %d", len(names))
	}

	now := u.now()
	next := make(map[string]*Interest, len(names))
	for _, name := range names {
		interest, err := NewInterest(uuid.NewString(), name, u.id.String(), now)
		if err != nil {
			return err
		}
		next[interest.id] = interest
	}

	u.interests = next
	u.updatedAt = now
	return nil
}

// AddFriend adds friendID to the friends set
func (u *UserProfile) AddFriend(friendID string) (FriendAdded, error) {
	if strings.TrimSpace(friendID) == "" {
		return FriendAdded{}, ErrTargetRequired
	}
	friendID = CanonicalUserID(friendID)
	if friendID == u.id.String() {
		return FriendAdded{}, ErrSelfFriend
	}
	if u.IsBlocked(friendID) {
		return FriendAdded{}, ErrFriendIsBlocked
	}
	if u.IsFriend(friendID) {
		return FriendAdded{}, ErrAlreadyFriends
	}

	u.friends[friendID] = struct{}{}
	now := u.touch()

	return FriendAdded{
		Type:      EventFriendAdded,
		UserID:    u.id.String(),
		FriendID:  friendID,
		Timestamp: now,
	}, nil
}

// RemoveFriend removes friendID from the friends set
func (u *UserProfile) RemoveFriend(friendID string) (FriendRemoved, error) {
	friendID = CanonicalUserID(friendID)
	if !u.IsFriend(friendID) {
		return FriendRemoved{}, ErrNotFriends
	}

	delete(u.friends, friendID)
	now := u.touch()

	return FriendRemoved{
		Type:      EventFriendRemoved,
		UserID:    u.id.String(),
		FriendID:  friendID,
		Timestamp: now,
	}, nil
}

// BlockUser blocks targetID, removing them from friends first
func (u *UserProfile) BlockUser(targetID string) (UserBlocked, error) {
	if strings.TrimSpace(targetID) == "" {
		return UserBlocked{}, ErrTargetRequired
	}
	targetID = CanonicalUserID(targetID)
	if targetID == u.id.String() {
		return UserBlocked{}, ErrSelfBlock
	}
	if u.IsBlocked(targetID) {
		return UserBlocked{}, ErrAlreadyBlocked
	}

	delete(u.friends, targetID)
	u.blockedUsers[targetID] = struct{}{}
	now := u.touch()

	return UserBlocked{
		Type:          EventUserBlocked,
		UserID:        u.id.String(),
		BlockedUserID: targetID,
		Timestamp:     now,
	}, nil
}

// UnblockUser removes targetID from the blocked set
func (u *UserProfile) UnblockUser(targetID string) (UserUnblocked, error) {
	targetID = CanonicalUserID(targetID)
	if !u.IsBlocked(targetID) {
		return UserUnblocked{}, ErrNotBlocked
	}

	delete(u.blockedUsers, targetID)
	now := u.touch()

	return UserUnblocked{
		Type:            EventUserUnblocked,
		UserID:          u.id.String(),
		UnblockedUserID: targetID,
		Timestamp:       now,
	}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
