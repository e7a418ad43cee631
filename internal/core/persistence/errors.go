package persistence

import "errors"

var (
	// ErrBadSnapshot is returned for snapshots that cannot be decoded or do not
	// fit the world they are restored into.
	ErrBadSnapshot = errors.New("bad snapshot")
)
