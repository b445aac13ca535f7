// Package tracking talks to the VR runtime through System and turns what it
// reports into snapshots.
package tracking

import (
	"github.com/imakiri/vive/pose"
)

const MaxDeviceCount = 64

type DeviceClass uint8

const (
	ClassInvalid DeviceClass = iota
	ClassHMD
	ClassController
	ClassGenericTracker
	ClassTrackingReference
)

type ControllerRole uint8

const (
	RoleInvalid ControllerRole = iota
	RoleLeftHand
	RoleRightHand
)

// ButtonID is a bit index into the pressed and touched masks.
type ButtonID uint8

const (
	ButtonSystem          ButtonID = 0
	ButtonApplicationMenu ButtonID = 1
	ButtonGrip            ButtonID = 2
	ButtonDPadLeft        ButtonID = 3
	ButtonDPadUp          ButtonID = 4
	ButtonDPadRight       ButtonID = 5
	ButtonDPadDown        ButtonID = 6
	ButtonA               ButtonID = 7
	ButtonTouchpad        ButtonID = 32
	ButtonTrigger         ButtonID = 33
)

func (id ButtonID) Mask() uint64 {
	return 1 << uint64(id)
}

type TrackedPose struct {
	Matrix    pose.Matrix
	Valid     bool
	Connected bool
}

type Axis struct {
	X float64
	Y float64
}

type ControllerState struct {
	Pressed uint64
	Touched uint64
	// Axes[0] is the trackpad, Axes[1] the trigger on wand controllers.
	Axes []Axis
}

func (s ControllerState) IsPressed(id ButtonID) bool {
	return s.Pressed&id.Mask() != 0
}

func (s ControllerState) IsTouched(id ButtonID) bool {
	return s.Touched&id.Mask() != 0
}

// System is the subset of the VR runtime the sender needs. A hardware binding
// lives outside this module; sim provides a stand-in.
type System interface {
	DeviceClass(index uint32) DeviceClass
	ControllerRole(index uint32) ControllerRole
	// Poses returns MaxDeviceCount poses in the standing universe.
	Poses() []TrackedPose
	ControllerState(index uint32) (ControllerState, bool)
	Close() error
}
