package datapoint

import "errors"

// ErrSchemaMismatch indicates the site named a created field differently than requested.
var ErrSchemaMismatch = errors.New("schema mismatch")
