package specials

import "github.com/zeusync/sectorsim/internal/core/observability/log"

// CompoundSpecial groups the movers spawned by one stair or donut activation.
// The children move independently; whichever ends last finishes the group.
type CompoundSpecial struct {
	reg       *Registry
	id        int
	kind      string
	children  []*SectorMoveSpecial
	remaining int
}

func (c *CompoundSpecial) ID() int      { return c.id }
func (c *CompoundSpecial) Kind() string { return c.kind }

// Children returns the movers of the group in creation order, finished ones
// included.
func (c *CompoundSpecial) Children() []*SectorMoveSpecial {
	return append([]*SectorMoveSpecial(nil), c.children...)
}

// Remaining is the number of children still registered.
func (c *CompoundSpecial) Remaining() int { return c.remaining }

func (c *CompoundSpecial) Done() bool { return c.remaining == 0 }

func (c *CompoundSpecial) adopt(m *SectorMoveSpecial) {
	m.owner = c
	c.children = append(c.children, m)
	c.remaining++
}

func (c *CompoundSpecial) childEnded(*SectorMoveSpecial) {
	if c.remaining == 0 {
		return
	}
	c.remaining--
	if c.remaining > 0 {
		return
	}
	c.reg.log.Debug("compound special finished", log.String("kind", c.kind), log.Int("group", c.id), log.Int("movers", len(c.children)))
	c.reg.metrics.SpecialFinished(c.kind)
	c.reg.dropCompound(c)
}
