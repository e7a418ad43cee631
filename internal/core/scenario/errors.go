package scenario

import "errors"

var (
	ErrInvalidScenario = errors.New("invalid scenario")
)
