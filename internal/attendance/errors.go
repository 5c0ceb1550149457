package attendance

import "errors"

// Hard failures surface to the caller with no state change. The two "soft"
// conditions (unresolved institution, no verified premises) are not returned
// as errors at all: they force the event into pending_approval instead.
var (
	ErrPersonNotFound     = errors.New("person not found")
	ErrInvalidLocation    = errors.New("valid location coordinates are required")
	ErrAlreadyCheckedIn   = errors.New("already checked in for today")
	ErrAlreadyCheckedOut  = errors.New("already checked out for today")
	ErrNotCheckedInYet    = errors.New("must check in before checking out")
	ErrStorageUnavailable = errors.New("attendance storage unavailable")
)
