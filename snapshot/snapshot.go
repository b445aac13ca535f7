// Package snapshot defines the per-frame controller snapshot carried in one
// datagram and its JSON codec.
package snapshot

import (
	"bytes"
	"encoding/json"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive/pose"
	"gonum.org/v1/gonum/spatial/r3"
	"math"
	"sort"
	"time"
)

type Hand string

const (
	Left  Hand = "left"
	Right Hand = "right"
)

// Hands lists hands in display order.
var Hands = [2]Hand{Left, Right}

type Snapshot struct {
	Left      *Controller `json:"left,omitempty"`
	Right     *Controller `json:"right,omitempty"`
	Timestamp float64     `json:"timestamp"`
}

func (s *Snapshot) Controller(hand Hand) *Controller {
	switch hand {
	case Left:
		return s.Left
	case Right:
		return s.Right
	default:
		return nil
	}
}

func (s *Snapshot) SetController(hand Hand, c *Controller) {
	switch hand {
	case Left:
		s.Left = c
	case Right:
		s.Right = c
	}
}

// Stamp sets the timestamp as fractional seconds since the epoch.
func (s *Snapshot) Stamp(t time.Time) {
	s.Timestamp = float64(t.UnixNano()) / float64(time.Second)
}

// Time converts the timestamp back. Zero timestamps yield the zero time.
func (s *Snapshot) Time() time.Time {
	if s.Timestamp == 0 {
		return time.Time{}
	}
	var sec, frac = math.Modf(s.Timestamp)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

type Controller struct {
	Tracked    bool        `json:"tracked"`
	Position   Position    `json:"position"`
	Rotation   Rotation    `json:"rotation"`
	Buttons    Buttons     `json:"buttons"`
	Analog     Analog      `json:"analog"`
	RawButtons *RawButtons `json:"raw_buttons,omitempty"`
}

// Untracked is the shape sent for a detected controller without a valid pose.
func Untracked() *Controller {
	return &Controller{Buttons: Buttons{}}
}

// Position components are pointers so a partial or empty object can be told
// apart from a real origin.
type Position struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
}

func NewPosition(v r3.Vec) Position {
	return Position{X: &v.X, Y: &v.Y, Z: &v.Z}
}

// Vec reports ok only when all three components are present.
func (p Position) Vec() (r3.Vec, bool) {
	if p.X == nil || p.Y == nil || p.Z == nil {
		return r3.Vec{}, false
	}
	return r3.Vec{X: *p.X, Y: *p.Y, Z: *p.Z}, true
}

// Get returns the component or 0, the way a missing key reads.
func (p Position) Get() r3.Vec {
	return r3.Vec{X: value(p.X), Y: value(p.Y), Z: value(p.Z)}
}

func (p Position) Empty() bool {
	return p.X == nil && p.Y == nil && p.Z == nil
}

type Rotation struct {
	Roll  *float64 `json:"roll,omitempty"`
	Pitch *float64 `json:"pitch,omitempty"`
	Yaw   *float64 `json:"yaw,omitempty"`
}

func NewRotation(e pose.Euler) Rotation {
	return Rotation{Roll: &e.Roll, Pitch: &e.Pitch, Yaw: &e.Yaw}
}

func (r Rotation) Euler() (pose.Euler, bool) {
	if r.Roll == nil || r.Pitch == nil || r.Yaw == nil {
		return pose.Euler{}, false
	}
	return pose.Euler{Roll: *r.Roll, Pitch: *r.Pitch, Yaw: *r.Yaw}, true
}

func (r Rotation) Get() pose.Euler {
	return pose.Euler{Roll: value(r.Roll), Pitch: value(r.Pitch), Yaw: value(r.Yaw)}
}

func (r Rotation) Empty() bool {
	return r.Roll == nil && r.Pitch == nil && r.Yaw == nil
}

type Buttons map[string]Button

func (b Buttons) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Button(b))
}

// Names returns button names in stable order.
func (b Buttons) Names() []string {
	var names = make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Axis struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Analog struct {
	Trigger  *float64 `json:"trigger,omitempty"`
	Trackpad *Axis    `json:"trackpad,omitempty"`
}

func (a Analog) Empty() bool {
	return a.Trigger == nil && a.Trackpad == nil
}

type RawButtons struct {
	Pressed uint64 `json:"pressed"`
	Touched uint64 `json:"touched"`
}

func Encode(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, errors.New("snapshot is nil")
	}
	var data, err = json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "json.Marshal")
	}
	return data, nil
}

// Decode is lenient about missing keys but rejects anything that is not a
// JSON object.
func Decode(data []byte) (*Snapshot, error) {
	var trimmed = bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("snapshot is not a json object")
	}

	var s = new(Snapshot)
	if err := json.Unmarshal(trimmed, s); err != nil {
		return nil, errors.Wrap(err, "json.Unmarshal")
	}
	return s, nil
}

// Indent pretty prints a raw payload for display.
func Indent(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
		return nil, errors.Wrap(err, "json.Indent")
	}
	return buf.Bytes(), nil
}

func Float(v float64) *float64 {
	return &v
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
