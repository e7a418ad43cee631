package world

import "errors"

var (
	ErrSectorNotFound = errors.New("sector not found")
	ErrLineNotFound   = errors.New("line not found")
	ErrEntityNotFound = errors.New("entity not found")
	ErrEntityUnlinked = errors.New("entity is not linked to any sector")
)
