package publications

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// PublicationID identifies a publication. The zero value is invalid.
type PublicationID struct {
	value string
}

// ParsePublicationID validates s as an 8-4-4-4-12 UUID and keeps the
// lowercase form
func ParsePublicationID(s string) (PublicationID, error) {
	if !uuidPattern.MatchString(s) {
		return PublicationID{}, errs.Detail(ErrInvalidPublicationID, "%q", s)
	}
	return PublicationID{value: strings.ToLower(s)}, nil
}

// NewPublicationID generates a random identifier
func NewPublicationID() PublicationID {
	return PublicationID{value: uuid.NewString()}
}

func (id PublicationID) String() string {
	return id.value
}

// Equals compares wrapped values
func (id PublicationID) Equals(other PublicationID) bool {
	return id.value == other.value
}

// IsZero reports whether the id was never set
func (id PublicationID) IsZero() bool {
	return id.value == ""
}

// newEntityID generates ids for child entities
func newEntityID() string {
	return uuid.NewString()
}
