package profiles

import (
	"errors"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

var (
	ErrProfileNotFound = errs.NotFound("profile not found")

	ErrInvalidUserID   = errs.Validation("user id must be a valid UUID")
	ErrInvalidUsername = errs.Validation("username must be 3-30 characters of letters, digits, '.', '_' or '-'")
	ErrTargetRequired  = errs.Validation("target user id is required")

	ErrBioTooLong       = errs.Validation("bio exceeds 500 characters")
	ErrInappropriateBio = errs.Validation("bio contains inappropriate language")

	ErrInterestNameRequired = errs.Validation("interest name is required")
	ErrInterestTooLong      = errs.Validation("interest name exceeds 100 characters")
	ErrTooManyInterests     = errs.Validation("at most 20 interests are allowed")

	// Relationship rules
	ErrSelfFriend      = errs.Invariant("cannot add yourself as a friend")
	ErrSelfBlock       = errs.Invariant("cannot block yourself")
	ErrAlreadyFriends  = errs.Invariant("already friends with this user")
	ErrNotFriends      = errs.Invariant("not friends with this user")
	ErrFriendIsBlocked = errs.Invariant("cannot add a blocked user as a friend")
	ErrAlreadyBlocked  = errs.Invariant("user is already blocked")
	ErrNotBlocked      = errs.Invariant("user is not blocked")

	ErrNotAuthorized = errs.Forbidden("not authorized to modify this profile")

	ErrProfileExists          = errs.Conflict("profile already exists")
	ErrUsernameTaken          = errs.Conflict("username is already taken")
	ErrConcurrentModification = errs.Conflict("profile was modified by another operation")
)

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrProfileExists) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrConcurrentModification)
}
