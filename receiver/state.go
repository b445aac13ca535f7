// Package receiver rebuilds controller state from a stream of snapshots:
// trails, tracked flags, trigger state and plot limits.
package receiver

import (
	"github.com/imakiri/vive/buffer"
	"github.com/imakiri/vive/pose"
	"github.com/imakiri/vive/snapshot"
	"gonum.org/v1/gonum/spatial/r3"
	"math"
	"sync"
	"time"
)

const (
	DefaultTrailLength = 50
	DefaultAxisLimit   = 2.0

	// analog trigger travel above which the trigger counts as pressed
	TriggerThreshold = 0.5

	minRange = 0.5
	padding  = 0.2
)

type hand struct {
	tracked        bool
	position       r3.Vec
	rotation       pose.Euler
	buttons        snapshot.Buttons
	triggerPressed bool
	trail          *buffer.Ring[r3.Vec]
}

type bounds struct {
	min r3.Vec
	max r3.Vec
}

func (b *bounds) extend(v r3.Vec) {
	b.min = r3.Vec{X: math.Min(b.min.X, v.X), Y: math.Min(b.min.Y, v.Y), Z: math.Min(b.min.Z, v.Z)}
	b.max = r3.Vec{X: math.Max(b.max.X, v.X), Y: math.Max(b.max.Y, v.Y), Z: math.Max(b.max.Z, v.Z)}
}

type State struct {
	mu *sync.Mutex

	hands      map[snapshot.Hand]*hand
	bounds     bounds
	autoScale  bool
	axisLimit  float64
	debug      bool
	lastUpdate time.Time
	updates    uint64
}

func NewState(trailLength int, axisLimit float64, now time.Time) *State {
	if trailLength <= 0 {
		trailLength = DefaultTrailLength
	}
	if axisLimit <= 0 {
		axisLimit = DefaultAxisLimit
	}

	var state = new(State)
	state.mu = new(sync.Mutex)
	state.hands = make(map[snapshot.Hand]*hand, len(snapshot.Hands))
	for _, h := range snapshot.Hands {
		state.hands[h] = &hand{
			buttons: snapshot.Buttons{},
			trail:   buffer.NewRing[r3.Vec](trailLength),
		}
	}
	state.autoScale = true
	state.axisLimit = axisLimit
	state.lastUpdate = now
	return state
}

// Apply folds one snapshot into the state. Hands missing from the snapshot
// keep what they had.
func (s *State) Apply(snap *snapshot.Snapshot, now time.Time) {
	if snap == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range snapshot.Hands {
		var c = snap.Controller(name)
		if c == nil {
			continue
		}
		s.apply(s.hands[name], c)
	}
	s.lastUpdate = now
	s.updates++
}

func (s *State) apply(h *hand, c *snapshot.Controller) {
	h.tracked = c.Tracked

	// buttons are taken even from untracked controllers
	if c.Buttons != nil {
		h.buttons = c.Buttons
		if trigger, ok := c.Buttons["trigger"]; ok && trigger.Form != snapshot.Null {
			h.triggerPressed = trigger.Pressed
		}
	}

	if !h.tracked {
		return
	}

	if position, ok := c.Position.Vec(); ok {
		h.position = position
		h.trail.Push(position)
		s.bounds.extend(position)
	}

	if rotation, ok := c.Rotation.Euler(); ok {
		h.rotation = rotation
	}

	if c.Analog.Trigger != nil {
		h.triggerPressed = *c.Analog.Trigger > TriggerThreshold
	}
}

// Range is a closed interval on one axis.
type Range struct {
	Min float64
	Max float64
}

// Limits are plot limits in tracking space. Y is up.
type Limits struct {
	X Range
	Y Range
	Z Range
}

func (s *State) Limits() Limits {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limits()
}

func (s *State) limits() Limits {
	if s.autoScale && s.bounds.min.X != s.bounds.max.X {
		return Limits{
			X: autoRange(s.bounds.min.X, s.bounds.max.X),
			Y: autoRange(s.bounds.min.Y, s.bounds.max.Y),
			Z: autoRange(s.bounds.min.Z, s.bounds.max.Z),
		}
	}
	return Limits{
		X: Range{Min: -s.axisLimit, Max: s.axisLimit},
		Y: Range{Min: 0, Max: 2 * s.axisLimit},
		Z: Range{Min: -s.axisLimit, Max: s.axisLimit},
	}
}

func autoRange(min, max float64) Range {
	var width = math.Max(minRange, max-min)
	var center = (min + max) / 2
	return Range{
		Min: center - width/2 - padding,
		Max: center + width/2 + padding,
	}
}

func (s *State) ToggleAutoScale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoScale = !s.autoScale
	return s.autoScale
}

func (s *State) ToggleDebug() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = !s.debug
	return s.debug
}

func (s *State) SetDebug(debug bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = debug
}

func (s *State) Debug() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debug
}

// HandView is a detached copy of one hand.
type HandView struct {
	Hand           snapshot.Hand
	Tracked        bool
	Position       r3.Vec
	Rotation       pose.Euler
	Buttons        snapshot.Buttons
	TriggerPressed bool
	Trail          []r3.Vec
}

type View struct {
	Hands     [2]HandView
	Limits    Limits
	AutoScale bool
	AxisLimit float64
	Debug     bool
	DataAge   time.Duration
	Updates   uint64
}

func (v View) Hand(name snapshot.Hand) HandView {
	for _, h := range v.Hands {
		if h.Hand == name {
			return h
		}
	}
	return HandView{Hand: name}
}

func (s *State) View(now time.Time) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view = View{
		Limits:    s.limits(),
		AutoScale: s.autoScale,
		AxisLimit: s.axisLimit,
		Debug:     s.debug,
		DataAge:   now.Sub(s.lastUpdate),
		Updates:   s.updates,
	}
	for i, name := range snapshot.Hands {
		var h = s.hands[name]
		var buttons = make(snapshot.Buttons, len(h.buttons))
		for k, b := range h.buttons {
			buttons[k] = b
		}
		view.Hands[i] = HandView{
			Hand:           name,
			Tracked:        h.tracked,
			Position:       h.position,
			Rotation:       h.rotation,
			Buttons:        buttons,
			TriggerPressed: h.triggerPressed,
			Trail:          h.trail.Values(),
		}
	}
	return view
}
