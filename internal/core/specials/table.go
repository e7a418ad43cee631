package specials

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeusync/sectorsim/internal/core/systems/physics"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// Trigger is how a line was activated.
type Trigger uint8

const (
	TriggerCross Trigger = iota
	TriggerUse
	TriggerShoot
)

func (t Trigger) String() string {
	switch t {
	case TriggerCross:
		return "cross"
	case TriggerUse:
		return "use"
	case TriggerShoot:
		return "shoot"
	}
	return "unknown"
}

// ParseTrigger reads the names produced by Trigger.String.
func ParseTrigger(s string) (Trigger, error) {
	switch strings.ToLower(s) {
	case "cross", "walk":
		return TriggerCross, nil
	case "use", "push", "switch":
		return TriggerUse, nil
	case "shoot", "gun":
		return TriggerShoot, nil
	}
	return 0, fmt.Errorf("unknown trigger %q", s)
}

// Action selects the spawner of a line special.
type Action uint8

const (
	ActionDoor Action = iota
	ActionFloor
	ActionCeiling
	ActionCrusher
	ActionPlat
	ActionPerpetualPlat
	ActionStairs
	ActionDonut
	ActionLight
	ActionStopCrusher
	ActionStopPlat
)

func (a Action) String() string {
	return [...]string{"door", "floor", "ceiling", "crusher", "plat", "perpetual_plat", "stairs", "donut", "light", "stop_crusher", "stop_plat"}[a]
}

// Target is the rule used to compute a destination height.
type Target uint8

const (
	TargetNone Target = iota
	// TargetDoorTop is the lowest neighboring ceiling minus 4.
	TargetDoorTop
	TargetOwnFloor
	TargetOwnCeiling
	TargetLowestNeighborCeiling
	TargetHighestNeighborCeiling
	TargetHighestNeighborFloor
	TargetLowestNeighborFloor
	TargetNextHigherFloor
	TargetShortestLowerTexture
	// TargetRelative is the current height plus Offset.
	TargetRelative
)

// ChangeRule selects where a texture change comes from.
type ChangeRule uint8

const (
	ChangeNone ChangeRule = iota
	// ChangeFromModel copies the neighbor whose floor sits at the destination,
	// on arrival.
	ChangeFromModel
	// ChangeFromFront copies the floor of the activating line's front sector
	// immediately.
	ChangeFromFront
	// ChangeFromFrontClearDamage is ChangeFromFront that also clears the sector
	// damage special.
	ChangeFromFrontClearDamage
)

// LineSpecial describes what a line special code does.
type LineSpecial struct {
	Code    int
	Name    string
	Action  Action
	Trigger Trigger
	Repeat  bool
	// Monster allows monsters to trigger the special.
	Monster bool
	// Manual specials act on the sector behind the line instead of a tag.
	Manual bool
	Lock   world.KeyFlags

	Speed      float64
	Delay      int
	Target     Target
	Offset     float64
	Direction  MoveDirection
	Repetition MoveRepetition
	Blocked    BlockBehavior
	Crush      bool
	CrushMode  physics.CrushMode
	Change     ChangeRule
	// Light is the level set by light specials; -1 means the brightest
	// neighbor.
	Light  int16
	Silent bool
}

// Table maps line special codes to their descriptors.
type Table map[int]LineSpecial

// Lookup returns the descriptor of code.
func (t Table) Lookup(code int) (LineSpecial, error) {
	ls, ok := t[code]
	if !ok {
		return LineSpecial{}, fmt.Errorf("%w: %d", ErrUnknownSpecial, code)
	}
	return ls, nil
}

// Codes returns the known codes in ascending order.
func (t Table) Codes() []int {
	codes := make([]int, 0, len(t))
	for c := range t {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

func (t Table) add(specials ...LineSpecial) {
	for _, ls := range specials {
		t[ls.Code] = ls
	}
}

// Doom timing constants, in ticks and units per tick.
const (
	DoorSpeed      = 2.0
	BlazeDoorSpeed = 8.0
	DoorWait       = 150
	FloorSpeed     = 1.0
	CeilingSpeed   = 1.0
	PlatSpeed      = 1.0
	PlatWait       = 105
	StairSpeed     = 0.25
	TurboStairs    = 4.0
	DonutSpeed     = 0.5
	CrusherGap     = 8.0
	DoorTopGap     = 4.0
	closeWaitTics  = 30 * 35
)

type doorKind uint8

const (
	doorRaise doorKind = iota
	doorOpen
	doorClose
	doorCloseWaitOpen
)

func door(code int, name string, trig Trigger, repeat bool, kind doorKind, speed float64) LineSpecial {
	ls := LineSpecial{Code: code, Name: name, Action: ActionDoor, Trigger: trig, Repeat: repeat, Speed: speed}
	switch kind {
	case doorRaise:
		ls.Direction, ls.Repetition, ls.Delay, ls.Blocked = Up, RepeatDelayReturn, DoorWait, BlockReverse
	case doorOpen:
		ls.Direction, ls.Repetition = Up, RepeatNone
	case doorClose:
		ls.Direction, ls.Repetition, ls.Blocked = Down, RepeatNone, BlockRetry
	case doorCloseWaitOpen:
		ls.Direction, ls.Repetition, ls.Delay, ls.Blocked = Down, RepeatDelayReturn, closeWaitTics, BlockReverse
	}
	return ls
}

func manual(ls LineSpecial, lock world.KeyFlags) LineSpecial {
	ls.Manual = true
	ls.Lock = lock
	return ls
}

func locked(ls LineSpecial, lock world.KeyFlags) LineSpecial {
	ls.Lock = lock
	return ls
}

func monster(ls LineSpecial) LineSpecial {
	ls.Monster = true
	return ls
}

func floor(code int, name string, trig Trigger, repeat bool, target Target, dir MoveDirection, speed float64) LineSpecial {
	return LineSpecial{Code: code, Name: name, Action: ActionFloor, Trigger: trig, Repeat: repeat, Target: target, Direction: dir, Speed: speed}
}

func withOffset(ls LineSpecial, off float64) LineSpecial {
	ls.Offset = off
	return ls
}

func withChange(ls LineSpecial, c ChangeRule) LineSpecial {
	ls.Change = c
	return ls
}

func crushing(ls LineSpecial, mode physics.CrushMode) LineSpecial {
	ls.Crush = true
	ls.CrushMode = mode
	return ls
}

func ceiling(code int, name string, trig Trigger, repeat bool, target Target, dir MoveDirection, speed float64) LineSpecial {
	return LineSpecial{Code: code, Name: name, Action: ActionCeiling, Trigger: trig, Repeat: repeat, Target: target, Direction: dir, Speed: speed}
}

func crusher(code int, name string, trig Trigger, repeat bool, speed float64, mode physics.CrushMode, silent bool) LineSpecial {
	return LineSpecial{
		Code: code, Name: name, Action: ActionCrusher, Trigger: trig, Repeat: repeat,
		Speed: speed, Direction: Down, Repetition: RepeatPerpetual,
		Crush: true, CrushMode: mode, Silent: silent,
	}
}

func plat(code int, name string, trig Trigger, repeat bool, speed float64) LineSpecial {
	return LineSpecial{
		Code: code, Name: name, Action: ActionPlat, Trigger: trig, Repeat: repeat,
		Speed: speed, Delay: PlatWait, Target: TargetLowestNeighborFloor,
		Direction: Down, Repetition: RepeatDelayReturn, Blocked: BlockReverse,
	}
}

func raisePlat(code int, name string, trig Trigger, repeat bool, target Target, offset float64) LineSpecial {
	return LineSpecial{
		Code: code, Name: name, Action: ActionPlat, Trigger: trig, Repeat: repeat,
		Speed: PlatSpeed / 2, Target: target, Offset: offset, Direction: Up,
		Change: ChangeFromFrontClearDamage,
	}
}

func light(code int, name string, trig Trigger, repeat bool, level int16) LineSpecial {
	return LineSpecial{Code: code, Name: name, Action: ActionLight, Trigger: trig, Repeat: repeat, Light: level}
}

// DoomTable returns the Doom line specials.
func DoomTable() Table {
	t := make(Table)

	t.add(
		monster(manual(door(1, "DR door open wait close", TriggerUse, true, doorRaise, DoorSpeed), 0)),
		manual(door(26, "DR blue door", TriggerUse, true, doorRaise, DoorSpeed), world.KeyBlue),
		manual(door(27, "DR yellow door", TriggerUse, true, doorRaise, DoorSpeed), world.KeyYellow),
		manual(door(28, "DR red door", TriggerUse, true, doorRaise, DoorSpeed), world.KeyRed),
		manual(door(31, "D1 door open stay", TriggerUse, false, doorOpen, DoorSpeed), 0),
		manual(door(32, "D1 blue door open stay", TriggerUse, false, doorOpen, DoorSpeed), world.KeyBlue),
		manual(door(33, "D1 red door open stay", TriggerUse, false, doorOpen, DoorSpeed), world.KeyRed),
		manual(door(34, "D1 yellow door open stay", TriggerUse, false, doorOpen, DoorSpeed), world.KeyYellow),
		manual(door(117, "DR blazing door", TriggerUse, true, doorRaise, BlazeDoorSpeed), 0),
		manual(door(118, "D1 blazing door open stay", TriggerUse, false, doorOpen, BlazeDoorSpeed), 0),

		door(2, "W1 door open stay", TriggerCross, false, doorOpen, DoorSpeed),
		door(3, "W1 door close", TriggerCross, false, doorClose, DoorSpeed),
		monster(door(4, "W1 door open wait close", TriggerCross, false, doorRaise, DoorSpeed)),
		door(16, "W1 door close wait open", TriggerCross, false, doorCloseWaitOpen, DoorSpeed),
		door(29, "S1 door open wait close", TriggerUse, false, doorRaise, DoorSpeed),
		door(42, "SR door close", TriggerUse, true, doorClose, DoorSpeed),
		monster(door(46, "GR door open stay", TriggerShoot, true, doorOpen, DoorSpeed)),
		door(50, "S1 door close", TriggerUse, false, doorClose, DoorSpeed),
		door(61, "SR door open stay", TriggerUse, true, doorOpen, DoorSpeed),
		door(63, "SR door open wait close", TriggerUse, true, doorRaise, DoorSpeed),
		door(75, "WR door close", TriggerCross, true, doorClose, DoorSpeed),
		door(76, "WR door close wait open", TriggerCross, true, doorCloseWaitOpen, DoorSpeed),
		door(86, "WR door open stay", TriggerCross, true, doorOpen, DoorSpeed),
		door(90, "WR door open wait close", TriggerCross, true, doorRaise, DoorSpeed),
		door(103, "S1 door open stay", TriggerUse, false, doorOpen, DoorSpeed),
		door(105, "WR blazing door open wait close", TriggerCross, true, doorRaise, BlazeDoorSpeed),
		door(106, "WR blazing door open stay", TriggerCross, true, doorOpen, BlazeDoorSpeed),
		door(107, "WR blazing door close", TriggerCross, true, doorClose, BlazeDoorSpeed),
		door(108, "W1 blazing door open wait close", TriggerCross, false, doorRaise, BlazeDoorSpeed),
		door(109, "W1 blazing door open stay", TriggerCross, false, doorOpen, BlazeDoorSpeed),
		door(110, "W1 blazing door close", TriggerCross, false, doorClose, BlazeDoorSpeed),
		door(111, "S1 blazing door open wait close", TriggerUse, false, doorRaise, BlazeDoorSpeed),
		door(112, "S1 blazing door open stay", TriggerUse, false, doorOpen, BlazeDoorSpeed),
		door(113, "S1 blazing door close", TriggerUse, false, doorClose, BlazeDoorSpeed),
		door(114, "SR blazing door open wait close", TriggerUse, true, doorRaise, BlazeDoorSpeed),
		door(115, "SR blazing door open stay", TriggerUse, true, doorOpen, BlazeDoorSpeed),
		door(116, "SR blazing door close", TriggerUse, true, doorClose, BlazeDoorSpeed),
		locked(door(99, "SR blue blazing door open stay", TriggerUse, true, doorOpen, BlazeDoorSpeed), world.KeyBlue),
		locked(door(133, "S1 blue blazing door open stay", TriggerUse, false, doorOpen, BlazeDoorSpeed), world.KeyBlue),
		locked(door(134, "SR red blazing door open stay", TriggerUse, true, doorOpen, BlazeDoorSpeed), world.KeyRed),
		locked(door(135, "S1 red blazing door open stay", TriggerUse, false, doorOpen, BlazeDoorSpeed), world.KeyRed),
		locked(door(136, "SR yellow blazing door open stay", TriggerUse, true, doorOpen, BlazeDoorSpeed), world.KeyYellow),
		locked(door(137, "S1 yellow blazing door open stay", TriggerUse, false, doorOpen, BlazeDoorSpeed), world.KeyYellow),
	)

	t.add(
		floor(5, "W1 floor raise to lowest ceiling", TriggerCross, false, TargetLowestNeighborCeiling, Up, FloorSpeed),
		floor(91, "WR floor raise to lowest ceiling", TriggerCross, true, TargetLowestNeighborCeiling, Up, FloorSpeed),
		floor(101, "S1 floor raise to lowest ceiling", TriggerUse, false, TargetLowestNeighborCeiling, Up, FloorSpeed),
		floor(64, "SR floor raise to lowest ceiling", TriggerUse, true, TargetLowestNeighborCeiling, Up, FloorSpeed),
		floor(24, "G1 floor raise to lowest ceiling", TriggerShoot, false, TargetLowestNeighborCeiling, Up, FloorSpeed),

		floor(19, "W1 floor lower to highest floor", TriggerCross, false, TargetHighestNeighborFloor, Down, FloorSpeed),
		floor(83, "WR floor lower to highest floor", TriggerCross, true, TargetHighestNeighborFloor, Down, FloorSpeed),
		floor(102, "S1 floor lower to highest floor", TriggerUse, false, TargetHighestNeighborFloor, Down, FloorSpeed),
		floor(45, "SR floor lower to highest floor", TriggerUse, true, TargetHighestNeighborFloor, Down, FloorSpeed),

		floor(38, "W1 floor lower to lowest floor", TriggerCross, false, TargetLowestNeighborFloor, Down, FloorSpeed),
		floor(82, "WR floor lower to lowest floor", TriggerCross, true, TargetLowestNeighborFloor, Down, FloorSpeed),
		floor(23, "S1 floor lower to lowest floor", TriggerUse, false, TargetLowestNeighborFloor, Down, FloorSpeed),
		floor(60, "SR floor lower to lowest floor", TriggerUse, true, TargetLowestNeighborFloor, Down, FloorSpeed),

		withOffset(floor(36, "W1 floor turbo lower to highest floor", TriggerCross, false, TargetHighestNeighborFloor, Down, FloorSpeed*4), 8),
		withOffset(floor(98, "WR floor turbo lower to highest floor", TriggerCross, true, TargetHighestNeighborFloor, Down, FloorSpeed*4), 8),
		withOffset(floor(71, "S1 floor turbo lower to highest floor", TriggerUse, false, TargetHighestNeighborFloor, Down, FloorSpeed*4), 8),
		withOffset(floor(70, "SR floor turbo lower to highest floor", TriggerUse, true, TargetHighestNeighborFloor, Down, FloorSpeed*4), 8),

		crushing(floor(56, "W1 floor raise and crush", TriggerCross, false, TargetLowestNeighborCeiling, Up, FloorSpeed), physics.CrushDoom),
		crushing(floor(94, "WR floor raise and crush", TriggerCross, true, TargetLowestNeighborCeiling, Up, FloorSpeed), physics.CrushDoom),
		crushing(floor(55, "S1 floor raise and crush", TriggerUse, false, TargetLowestNeighborCeiling, Up, FloorSpeed), physics.CrushDoom),
		crushing(floor(65, "SR floor raise and crush", TriggerUse, true, TargetLowestNeighborCeiling, Up, FloorSpeed), physics.CrushDoom),

		withOffset(floor(58, "W1 floor raise 24", TriggerCross, false, TargetRelative, Up, FloorSpeed), 24),
		withOffset(floor(92, "WR floor raise 24", TriggerCross, true, TargetRelative, Up, FloorSpeed), 24),
		withChange(withOffset(floor(59, "W1 floor raise 24 and change", TriggerCross, false, TargetRelative, Up, FloorSpeed), 24), ChangeFromFront),
		withChange(withOffset(floor(93, "WR floor raise 24 and change", TriggerCross, true, TargetRelative, Up, FloorSpeed), 24), ChangeFromFront),
		withOffset(floor(140, "S1 floor raise 512", TriggerUse, false, TargetRelative, Up, FloorSpeed*4), 512),

		floor(119, "W1 floor raise to next floor", TriggerCross, false, TargetNextHigherFloor, Up, FloorSpeed),
		floor(128, "WR floor raise to next floor", TriggerCross, true, TargetNextHigherFloor, Up, FloorSpeed),
		floor(18, "S1 floor raise to next floor", TriggerUse, false, TargetNextHigherFloor, Up, FloorSpeed),
		floor(69, "SR floor raise to next floor", TriggerUse, true, TargetNextHigherFloor, Up, FloorSpeed),
		floor(130, "W1 floor turbo raise to next floor", TriggerCross, false, TargetNextHigherFloor, Up, FloorSpeed*4),
		floor(129, "WR floor turbo raise to next floor", TriggerCross, true, TargetNextHigherFloor, Up, FloorSpeed*4),
		floor(131, "S1 floor turbo raise to next floor", TriggerUse, false, TargetNextHigherFloor, Up, FloorSpeed*4),
		floor(132, "SR floor turbo raise to next floor", TriggerUse, true, TargetNextHigherFloor, Up, FloorSpeed*4),

		floor(30, "W1 floor raise by shortest lower texture", TriggerCross, false, TargetShortestLowerTexture, Up, FloorSpeed),
		floor(96, "WR floor raise by shortest lower texture", TriggerCross, true, TargetShortestLowerTexture, Up, FloorSpeed),

		withChange(floor(37, "W1 floor lower to lowest floor and change", TriggerCross, false, TargetLowestNeighborFloor, Down, FloorSpeed), ChangeFromModel),
		withChange(floor(84, "WR floor lower to lowest floor and change", TriggerCross, true, TargetLowestNeighborFloor, Down, FloorSpeed), ChangeFromModel),
	)

	t.add(
		ceiling(40, "W1 ceiling raise to highest ceiling", TriggerCross, false, TargetHighestNeighborCeiling, Up, CeilingSpeed),
		ceiling(41, "S1 ceiling lower to floor", TriggerUse, false, TargetOwnFloor, Down, CeilingSpeed),
		ceiling(43, "SR ceiling lower to floor", TriggerUse, true, TargetOwnFloor, Down, CeilingSpeed),
		crushing(withOffset(ceiling(44, "W1 ceiling lower and crush", TriggerCross, false, TargetOwnFloor, Down, CeilingSpeed), CrusherGap), physics.CrushDoomWithSlowDown),
		crushing(withOffset(ceiling(72, "WR ceiling lower and crush", TriggerCross, true, TargetOwnFloor, Down, CeilingSpeed), CrusherGap), physics.CrushDoomWithSlowDown),

		crusher(6, "W1 fast crusher", TriggerCross, false, CeilingSpeed*2, physics.CrushDoom, false),
		crusher(25, "W1 crusher", TriggerCross, false, CeilingSpeed, physics.CrushDoomWithSlowDown, false),
		crusher(73, "WR crusher", TriggerCross, true, CeilingSpeed, physics.CrushDoomWithSlowDown, false),
		crusher(77, "WR fast crusher", TriggerCross, true, CeilingSpeed*2, physics.CrushDoom, false),
		crusher(141, "W1 silent crusher", TriggerCross, false, CeilingSpeed, physics.CrushDoomWithSlowDown, true),

		LineSpecial{Code: 57, Name: "W1 crusher stop", Action: ActionStopCrusher, Trigger: TriggerCross},
		LineSpecial{Code: 74, Name: "WR crusher stop", Action: ActionStopCrusher, Trigger: TriggerCross, Repeat: true},
	)

	t.add(
		monster(plat(10, "W1 lift", TriggerCross, false, PlatSpeed*4)),
		plat(21, "S1 lift", TriggerUse, false, PlatSpeed*4),
		plat(62, "SR lift", TriggerUse, true, PlatSpeed*4),
		monster(plat(88, "WR lift", TriggerCross, true, PlatSpeed*4)),
		plat(120, "WR turbo lift", TriggerCross, true, PlatSpeed*8),
		plat(121, "W1 turbo lift", TriggerCross, false, PlatSpeed*8),
		plat(122, "S1 turbo lift", TriggerUse, false, PlatSpeed*8),
		plat(123, "SR turbo lift", TriggerUse, true, PlatSpeed*8),

		raisePlat(14, "S1 raise 32 and change", TriggerUse, false, TargetRelative, 32),
		raisePlat(15, "S1 raise 24 and change", TriggerUse, false, TargetRelative, 24),
		raisePlat(66, "SR raise 24 and change", TriggerUse, true, TargetRelative, 24),
		raisePlat(67, "SR raise 32 and change", TriggerUse, true, TargetRelative, 32),
		raisePlat(20, "S1 raise to next floor and change", TriggerUse, false, TargetNextHigherFloor, 0),
		raisePlat(22, "W1 raise to next floor and change", TriggerCross, false, TargetNextHigherFloor, 0),
		raisePlat(68, "SR raise to next floor and change", TriggerUse, true, TargetNextHigherFloor, 0),
		raisePlat(95, "WR raise to next floor and change", TriggerCross, true, TargetNextHigherFloor, 0),

		LineSpecial{Code: 53, Name: "W1 perpetual lift", Action: ActionPerpetualPlat, Trigger: TriggerCross, Speed: PlatSpeed, Delay: PlatWait, Repetition: RepeatPerpetual, Blocked: BlockReverse},
		LineSpecial{Code: 87, Name: "WR perpetual lift", Action: ActionPerpetualPlat, Trigger: TriggerCross, Repeat: true, Speed: PlatSpeed, Delay: PlatWait, Repetition: RepeatPerpetual, Blocked: BlockReverse},
		LineSpecial{Code: 54, Name: "W1 lift stop", Action: ActionStopPlat, Trigger: TriggerCross},
		LineSpecial{Code: 89, Name: "WR lift stop", Action: ActionStopPlat, Trigger: TriggerCross, Repeat: true},
	)

	t.add(
		LineSpecial{Code: 7, Name: "S1 build stairs 8", Action: ActionStairs, Trigger: TriggerUse, Speed: StairSpeed, Offset: 8, Direction: Up},
		LineSpecial{Code: 8, Name: "W1 build stairs 8", Action: ActionStairs, Trigger: TriggerCross, Speed: StairSpeed, Offset: 8, Direction: Up},
		LineSpecial{Code: 100, Name: "W1 build turbo stairs 16", Action: ActionStairs, Trigger: TriggerCross, Speed: TurboStairs, Offset: 16, Direction: Up},
		LineSpecial{Code: 127, Name: "S1 build turbo stairs 16", Action: ActionStairs, Trigger: TriggerUse, Speed: TurboStairs, Offset: 16, Direction: Up},

		LineSpecial{Code: 9, Name: "S1 donut", Action: ActionDonut, Trigger: TriggerUse, Speed: DonutSpeed},
		LineSpecial{Code: 191, Name: "SR donut", Action: ActionDonut, Trigger: TriggerUse, Repeat: true, Speed: DonutSpeed},
	)

	t.add(
		light(35, "W1 lights to 35", TriggerCross, false, 35),
		light(79, "WR lights to 35", TriggerCross, true, 35),
		light(139, "SR lights to 35", TriggerUse, true, 35),
		light(13, "W1 lights to 255", TriggerCross, false, 255),
		light(81, "WR lights to 255", TriggerCross, true, 255),
		light(138, "SR lights to 255", TriggerUse, true, 255),
		light(12, "W1 lights to brightest neighbor", TriggerCross, false, -1),
		light(80, "WR lights to brightest neighbor", TriggerCross, true, -1),
	)

	return t
}
