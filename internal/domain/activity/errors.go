package activity

import "errors"

// ErrInvalidInput indicates an entry is missing or incomplete.
var ErrInvalidInput = errors.New("invalid journal entry")
