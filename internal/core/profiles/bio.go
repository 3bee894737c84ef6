package profiles

import (
	"github.com/rivo/uniseg"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/moderation"
)

// MaxBioChars is the bio limit, counted in grapheme clusters
const MaxBioChars = 500

// Bio is the optional self description on a profile. The zero value is "no bio".
type Bio struct {
	text string
}

// NewBio validates text. A nil policy means moderation.DefaultBioPolicy.
func NewBio(text string, policy moderation.Policy) (Bio, error) {
	if n := uniseg.GraphemeClusterCount(text); n > MaxBioChars {
		return Bio{}, errs.Detail(ErrBioTooLong, "got %d", n)
	}
	if policy == nil {
		policy = moderation.DefaultBioPolicy()
	}
	if !policy.IsAppropriate(text) {
		return Bio{}, ErrInappropriateBio
	}
	return Bio{text: text}, nil
}

func (b Bio) Text() string          { return b.text }
func (b Bio) String() string        { return b.text }
func (b Bio) IsEmpty() bool         { return b.text == "" }
func (b Bio) Equals(other Bio) bool { return b.text == other.text }
