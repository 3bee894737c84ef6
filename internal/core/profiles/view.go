package profiles

import (
	"encoding/json"
	"time"
)

// ProfileView is the serialized form of a UserProfile. Relationship sets are
// exposed as counts only.
type ProfileView struct {
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Bio            *string         `json:"bio"`
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Interests      []*InterestView `json:"interests"`
	FriendsCount   int             `json:"friendsCount"`
	InterestsCount int             `json:"interestsCount"`
}

type InterestView struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}

func (u *UserProfile) View() *ProfileView {
	v := &ProfileView{
		ID:             u.id.String(),
		Username:       u.username,
		FriendsCount:   u.FriendsCount(),
		InterestsCount: u.InterestsCount(),
		CreatedAt:      u.createdAt,
		UpdatedAt:      u.updatedAt,
		Interests:      make([]*InterestView, 0, len(u.interests)),
	}
	if !u.bio.IsEmpty() {
		bio := u.bio.Text()
		v.Bio = &bio
	}
	for _, i := range u.Interests() {
		v.Interests = append(v.Interests, &InterestView{ID: i.id, Name: i.name, CreatedAt: i.createdAt})
	}
	return v
}

func (u *UserProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.View())
}
