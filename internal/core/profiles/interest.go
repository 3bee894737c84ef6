package profiles

import (
	"strings"
	"time"

	"github.com/rivo/uniseg"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

const (
	// MaxInterestChars is the interest name limit, counted in grapheme clusters
	MaxInterestChars = 100

	// MaxInterests bounds the interest set of one profile
	MaxInterests = 20
)

// Interest is a topic on a profile. It is owned by exactly one UserProfile.
type Interest struct {
	createdAt time.Time
	id        string
	name      string
	userID    string
}

// NewInterest trims and validates name
func NewInterest(id, name, userID string, now time.Time) (*Interest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInterestNameRequired
	}
	if n := uniseg.GraphemeClusterCount(name); n > MaxInterestChars {
		return nil, errs.Detail(ErrInterestTooLong, "got %d", n)
	}
	if strings.TrimSpace(id) == "" || strings.TrimSpace(userID) == "" {
		return nil, errs.Detail(ErrInterestNameRequired, "interest id and user id are required")
	}
	return &Interest{id: id, name: name, userID: userID, createdAt: now}, nil
}

func (i *Interest) ID() string           { return i.id }
func (i *Interest) Name() string         { return i.name }
func (i *Interest) UserID() string       { return i.userID }
func (i *Interest) CreatedAt() time.Time { return i.createdAt }

func (i *Interest) clone() *Interest {
	cp := *i
	return &cp
}
