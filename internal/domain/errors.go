package domain

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrPendingApproval    = errors.New("application pending review")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("not enough permissions")
	ErrUserNotFound       = errors.New("user not found")
	ErrDraftNotFound      = errors.New("email not found")
	ErrInvalidStatus      = errors.New("invalid status")
)
