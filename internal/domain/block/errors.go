package block

import "errors"

// ErrNotFound indicates the focus block doesn't exist.
var ErrNotFound = errors.New("focus block not found")
