package profiles

import (
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

// Snapshot is the storage form of a UserProfile
type Snapshot struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ID           string
	Username     string
	Bio          string
	Interests    []InterestSnapshot
	Friends      []string
	BlockedUsers []string
	Version      int64
}

type InterestSnapshot struct {
	CreatedAt time.Time
	ID        string
	Name      string
}

// Snapshot captures the aggregate state. The result shares no memory with u.
func (u *UserProfile) Snapshot() Snapshot {
	s := Snapshot{
		ID:           u.id.String(),
		Username:     u.username,
		Bio:          u.bio.Text(),
		Friends:      u.Friends(),
		BlockedUsers: u.BlockedUsers(),
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
		Version:      u.version,
	}
	for _, i := range u.Interests() {
		s.Interests = append(s.Interests, InterestSnapshot{ID: i.id, Name: i.name, CreatedAt: i.createdAt})
	}
	return s
}

// RestoreUserProfile rebuilds an aggregate from stored state without
// re-running bio moderation.
func RestoreUserProfile(s Snapshot, opts ...Option) (*UserProfile, error) {
	id, err := ParseUserID(s.ID)
	if err != nil {
		return nil, err
	}
	if s.Username == "" {
		return nil, errs.Detail(ErrInvalidUsername, "username is empty")
	}

	u := newEmptyProfile(opts)
	u.id = id
	u.username = s.Username
	u.bio = Bio{text: s.Bio}
	u.createdAt = s.CreatedAt
	u.updatedAt = s.UpdatedAt
	u.version = s.Version

	for _, is := range s.Interests {
		interest, err := NewInterest(is.ID, is.Name, id.String(), is.CreatedAt)
		if err != nil {
			return nil, err
		}
		u.interests[interest.id] = interest
	}
	for _, f := range s.Friends {
		u.friends[CanonicalUserID(f)] = struct{}{}
	}
	for _, b := range s.BlockedUsers {
		u.blockedUsers[CanonicalUserID(b)] = struct{}{}
	}
	return u, nil
}
