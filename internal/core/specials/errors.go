package specials

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSpecial = errors.New("unknown line special")
	ErrPlaneBusy      = errors.New("plane already has an active mover")
	ErrInvalidRecord  = errors.New("invalid mover record")
)

// LifetimeViolation is the panic value raised when a mover outlives the sector
// it animates. It always points at a bug in whoever destroyed the sector.
type LifetimeViolation struct {
	SectorID int
	Kind     string
}

func (v LifetimeViolation) Error() string {
	return fmt.Sprintf("specials: %s mover references destroyed sector %d", v.Kind, v.SectorID)
}
