package site

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials indicates a site has no script name or key.
var ErrMissingCredentials = errors.New("bad or missing script credentials")

// ConnectError records a site that could not be connected.
type ConnectError struct {
	URL string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.URL, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
