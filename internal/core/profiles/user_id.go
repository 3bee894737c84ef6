package profiles

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// UserID identifies a profile. It is the external identity's subject.
type UserID struct {
	value string
}

// ParseUserID accepts a UUID in any letter case and keeps the lowercase form
func ParseUserID(s string) (UserID, error) {
	if !uuidPattern.MatchString(s) {
		return UserID{}, errs.Detail(ErrInvalidUserID, "%q", s)
	}
	return UserID{value: strings.ToLower(s)}, nil
}

// CanonicalUserID lowercases s when it is a UUID and returns anything else
// unchanged. Relationship sets store ids in this form.
func CanonicalUserID(s string) string {
	if uuidPattern.MatchString(s) {
		return strings.ToLower(s)
	}
	return s
}

func NewUserID() UserID {
	return UserID{value: uuid.NewString()}
}

func (id UserID) String() string           { return id.value }
func (id UserID) Equals(other UserID) bool { return id.value == other.value }
func (id UserID) IsZero() bool             { return id.value == "" }
