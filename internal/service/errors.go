package service

import "errors"

// Business errors returned to the HTTP layer. Handlers map these onto
// response codes; anything else is treated as an internal error.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")

	// ErrClassroomNotFound covers both a genuinely absent join code and a
	// classroom the caller is not a member of. The two are deliberately
	// indistinguishable from the outside.
	ErrClassroomNotFound = errors.New("classroom does not exist")
	ErrAlreadyJoined     = errors.New("you have already joined this classroom")
	ErrNotAuthorized     = errors.New("you are not authorized to perform this action")
	ErrInternalServer    = errors.New("internal server error")
)
