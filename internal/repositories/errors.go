package repositories

import "errors"

// ErrNotFound is returned by any repository when the requested record
// does not exist. Implementations wrap it with the record's identity.
var ErrNotFound = errors.New("record not found")
