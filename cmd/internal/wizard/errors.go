package wizard

import "errors"

var (
	ErrMissingGuestName  = errors.New("guest name is required")
	ErrMissingCampus     = errors.New("campus is required")
	ErrUnknownTime       = errors.New("service time is not offered by the campus")
	ErrMissingDesign     = errors.New("flyer design is required")
	ErrInvalidTransition = errors.New("action not allowed in current state")
	ErrNothingToRetry    = errors.New("no failed invitation to retry")
	ErrTokenTaken        = errors.New("invitation token belongs to another member")
	ErrNotFound          = errors.New("wizard not found")
)
