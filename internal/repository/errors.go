package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity type or record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the site rejects the script credentials or access token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRemote is returned for any other failed call to the site
	ErrRemote = errors.New("remote call failed")

	// ErrInvalidInput is returned when a request is rejected before it is sent
	ErrInvalidInput = errors.New("invalid input")
)
