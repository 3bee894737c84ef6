package publications

import (
	"errors"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

// Sentinel errors for publication operations
var (
	// ErrPublicationNotFound is returned when no publication exists with the given id
	ErrPublicationNotFound = errs.NotFound("publication not found")

	// ErrInvalidPublicationID is returned when an id is not a canonical UUID
	ErrInvalidPublicationID = errs.Validation("publication id must be a valid UUID")

	// ErrAuthorRequired is returned when an author id is missing
	ErrAuthorRequired = errs.Validation("author id is required")

	// ErrUserRequired is returned when an acting user id is missing
	ErrUserRequired = errs.Validation("user id is required")

	// ErrContentTooLong is returned when publication text exceeds MaxContentChars
	ErrContentTooLong = errs.Validation("content exceeds 5000 characters")

	// ErrInappropriateContent is returned when the moderation policy rejects text
	ErrInappropriateContent = errs.Validation("content contains inappropriate language")

	// ErrInvalidType, ErrInvalidStatus and ErrInvalidVisibility reject unknown enum values
	ErrInvalidType       = errs.Validation("invalid publication type")
	ErrInvalidStatus     = errs.Validation("invalid publication status")
	ErrInvalidVisibility = errs.Validation("visibility must be one of: public, private, friends")

	// ErrInvalidStatusTransition is returned by Publish and Archive from the wrong state
	ErrInvalidStatusTransition = errs.Invariant("invalid publication status transition")

	// ErrSelfLike is returned when an author likes their own publication
	ErrSelfLike = errs.Invariant("cannot like your own publication")

	// ErrAlreadyLiked is returned when the user already liked the publication
	ErrAlreadyLiked = errs.Invariant("already liked this publication")

	// ErrNotLiked is returned by unlike when there is no like to remove
	ErrNotLiked = errs.Invariant("have not liked this publication")

	// ErrCommentNotFound is returned when a comment id is unknown to the publication
	ErrCommentNotFound = errs.NotFound("comment not found")

	// ErrParentCommentNotFound is returned when a reply targets a missing comment
	ErrParentCommentNotFound = errs.Invariant("parent comment not found")

	// ErrCommentAlreadyDeleted is returned when deleting a comment twice
	ErrCommentAlreadyDeleted = errs.Invariant("comment already deleted")

	// ErrCommentNotActive is returned when editing or hiding a deleted or hidden comment
	ErrCommentNotActive = errs.Invariant("comment is not active")

	// ErrCommentTextRequired and ErrCommentTooLong validate comment text
	ErrCommentTextRequired = errs.Validation("comment text is required")
	ErrCommentTooLong      = errs.Validation("comment exceeds 1000 characters")

	// ErrInvalidComment is returned when a comment is missing its identity fields
	ErrInvalidComment = errs.Validation("invalid comment")

	// ErrMediaItemNotFound is returned when a media item id is unknown to the publication
	ErrMediaItemNotFound = errs.NotFound("media item not found")

	// ErrInvalidMediaItem covers missing url, filename, size or a bad order
	ErrInvalidMediaItem = errs.Validation("invalid media item")

	// ErrInvalidMediaType is returned for media other than image or video
	ErrInvalidMediaType = errs.Validation("media type must be image or video")

	// ErrMediaTypeMismatch is returned by SetDimensions on video or SetDuration on image
	ErrMediaTypeMismatch = errs.Invariant("operation not valid for this media type")

	// ErrPublicIDRequired is returned by SetStorageData without a remote id
	ErrPublicIDRequired = errs.Validation("media public id is required")

	// ErrNotAuthorized is returned when the acting user may not perform the operation
	ErrNotAuthorized = errs.Forbidden("not authorized to modify this publication")

	// ErrCommentDeleteNotAuthorized is returned when neither comment nor publication author deletes
	ErrCommentDeleteNotAuthorized = errs.Forbidden("not authorized to delete this comment")

	// ErrNotVisible is returned when the viewer may not see the publication
	ErrNotVisible = errs.Forbidden("not authorized to view this publication")

	// ErrEmptyPublication is returned when creating a publication without text or files
	ErrEmptyPublication = errs.Validation("publication requires text or at least one file")

	// ErrTooManyFiles is returned when a request carries more files than allowed
	ErrTooManyFiles = errs.Validation("too many files")

	// ErrPublicationExists is returned when saving a new aggregate whose id is taken
	ErrPublicationExists = errs.Conflict("publication already exists")

	// ErrConcurrentModification is returned when the stored version moved since load
	ErrConcurrentModification = errs.Conflict("publication was modified by another operation")
)

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPublicationNotFound) ||
		errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrMediaItemNotFound)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrPublicationExists) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsValidationError checks if an error is a validation failure
func IsValidationError(err error) bool {
	return errs.Is(err, errs.KindValidation)
}
