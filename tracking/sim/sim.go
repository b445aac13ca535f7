// Package sim is a simulated tracking runtime: a headset at index 0 and two
// controllers moving on smooth paths with periodic trigger pulls.
package sim

import (
	"github.com/imakiri/vive/pose"
	"github.com/imakiri/vive/snapshot"
	"github.com/imakiri/vive/tracking"
	"gonum.org/v1/gonum/spatial/r3"
	"math"
	"sync"
	"time"
)

const (
	hmdIndex   = 0
	leftIndex  = 1
	rightIndex = 2
)

type option func(s *System)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) option {
	return func(s *System) {
		s.now = now
	}
}

// WithHands limits which controllers are present.
func WithHands(hands ...snapshot.Hand) option {
	return func(s *System) {
		s.hands = make(map[snapshot.Hand]bool, len(hands))
		for _, hand := range hands {
			s.hands[hand] = true
		}
	}
}

// WithDropout makes controllers lose tracking for the last quarter of every period.
func WithDropout(period time.Duration) option {
	return func(s *System) {
		s.dropout = period
	}
}

type System struct {
	mu      sync.Mutex
	now     func() time.Time
	start   time.Time
	hands   map[snapshot.Hand]bool
	dropout time.Duration
	closed  bool
}

func NewSystem(opts ...option) *System {
	var s = new(System)
	s.now = time.Now
	s.hands = map[snapshot.Hand]bool{snapshot.Left: true, snapshot.Right: true}
	for _, opt := range opts {
		opt(s)
	}
	s.start = s.now()
	return s
}

func (s *System) hand(index uint32) (snapshot.Hand, bool) {
	switch index {
	case leftIndex:
		return snapshot.Left, s.hands[snapshot.Left]
	case rightIndex:
		return snapshot.Right, s.hands[snapshot.Right]
	default:
		return "", false
	}
}

func (s *System) DeviceClass(index uint32) tracking.DeviceClass {
	if index == hmdIndex {
		return tracking.ClassHMD
	}
	if _, ok := s.hand(index); ok {
		return tracking.ClassController
	}
	return tracking.ClassInvalid
}

func (s *System) ControllerRole(index uint32) tracking.ControllerRole {
	var hand, ok = s.hand(index)
	if !ok {
		return tracking.RoleInvalid
	}
	if hand == snapshot.Left {
		return tracking.RoleLeftHand
	}
	return tracking.RoleRightHand
}

func (s *System) elapsed() float64 {
	return s.now().Sub(s.start).Seconds()
}

func (s *System) tracked(elapsed float64) bool {
	if s.dropout <= 0 {
		return true
	}
	var period = s.dropout.Seconds()
	return math.Mod(elapsed, period) < 0.75*period
}

func (s *System) Poses() []tracking.TrackedPose {
	s.mu.Lock()
	defer s.mu.Unlock()

	var poses = make([]tracking.TrackedPose, tracking.MaxDeviceCount)
	if s.closed {
		return poses
	}

	var t = s.elapsed()
	poses[hmdIndex] = tracking.TrackedPose{
		Matrix:    pose.Compose(r3.Vec{Y: 1.7}, pose.Euler{Yaw: 10 * math.Sin(t/3)}),
		Valid:     true,
		Connected: true,
	}

	var valid = s.tracked(t)
	for _, index := range []uint32{leftIndex, rightIndex} {
		var hand, ok = s.hand(index)
		if !ok {
			continue
		}
		var side = -1.0
		var phase = 0.0
		if hand == snapshot.Right {
			side = 1
			phase = math.Pi / 2
		}

		var position = r3.Vec{
			X: side*0.3 + 0.2*math.Cos(t+phase),
			Y: 1.1 + 0.1*math.Sin(2*t+phase),
			Z: -0.3 + 0.2*math.Sin(t+phase),
		}
		var euler = pose.Euler{
			Roll:  20 * math.Sin(t+phase),
			Pitch: 15 * math.Cos(0.7*t+phase),
			Yaw:   math.Mod(30*t+side*45, 360) - 180,
		}
		poses[index] = tracking.TrackedPose{
			Matrix:    pose.Compose(position, euler),
			Valid:     valid,
			Connected: true,
		}
	}
	return poses
}

func (s *System) ControllerState(index uint32) (tracking.ControllerState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hand, ok = s.hand(index)
	if !ok || s.closed {
		return tracking.ControllerState{}, false
	}

	var t = s.elapsed()
	if hand == snapshot.Right {
		t += 1.5
	}

	var trigger = math.Max(0, math.Sin(t*1.3))
	var padX, padY = 0.8 * math.Cos(t), 0.8 * math.Sin(t)
	var state = tracking.ControllerState{
		Axes: []tracking.Axis{{X: padX, Y: padY}, {X: trigger}, {}, {}, {}},
	}
	if trigger > 0.5 {
		state.Touched |= tracking.ButtonTrigger.Mask()
	}
	if trigger > 0.9 {
		state.Pressed |= tracking.ButtonTrigger.Mask()
	}
	if math.Mod(t, 6) < 2 {
		state.Touched |= tracking.ButtonTouchpad.Mask()
	}
	if math.Mod(t, 10) < 0.5 {
		state.Pressed |= tracking.ButtonGrip.Mask()
	}
	return state, true
}

func (s *System) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
