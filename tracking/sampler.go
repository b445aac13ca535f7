package tracking

import (
	"github.com/imakiri/vive/snapshot"
	"strings"
)

type NamedButton struct {
	ID   ButtonID
	Name string
}

// Key is the snapshot key: lower case, spaces replaced with underscores.
func (b NamedButton) Key() string {
	return strings.ReplaceAll(strings.ToLower(b.Name), " ", "_")
}

var NamedButtons = []NamedButton{
	{ButtonSystem, "System"},
	{ButtonApplicationMenu, "Menu"},
	{ButtonGrip, "Grip"},
	{ButtonDPadLeft, "Trackpad Left"},
	{ButtonDPadUp, "Trackpad Up"},
	{ButtonDPadRight, "Trackpad Right"},
	{ButtonDPadDown, "Trackpad Down"},
	{ButtonA, "A Button"},
	{ButtonTouchpad, "Trackpad Touch"},
	{ButtonTrigger, "Trigger"},
}

// Controllers maps a hand to its device index.
type Controllers map[snapshot.Hand]uint32

func Discover(system System) Controllers {
	var controllers = make(Controllers, 2)
	for i := uint32(0); i < MaxDeviceCount; i++ {
		if system.DeviceClass(i) != ClassController {
			continue
		}
		switch system.ControllerRole(i) {
		case RoleLeftHand:
			controllers[snapshot.Left] = i
		case RoleRightHand:
			controllers[snapshot.Right] = i
		}
	}
	return controllers
}

// Frame is one sample plus what the snapshot does not carry.
type Frame struct {
	Snapshot  *snapshot.Snapshot
	Connected map[snapshot.Hand]bool
}

func Sample(system System, controllers Controllers) Frame {
	var frame = Frame{
		Snapshot:  new(snapshot.Snapshot),
		Connected: make(map[snapshot.Hand]bool, 2),
	}

	var poses = system.Poses()
	for _, hand := range snapshot.Hands {
		var index, ok = controllers[hand]
		if !ok {
			continue
		}

		var controller = snapshot.Untracked()
		frame.Snapshot.SetController(hand, controller)

		if int(index) >= len(poses) || !poses[index].Valid {
			continue
		}
		var p = poses[index]
		frame.Connected[hand] = p.Connected

		controller.Tracked = true
		controller.Position = snapshot.NewPosition(p.Matrix.Position())
		controller.Rotation = snapshot.NewRotation(p.Matrix.Euler())

		state, ok := system.ControllerState(index)
		if !ok {
			continue
		}
		fillState(controller, state)
	}

	return frame
}

func fillState(controller *snapshot.Controller, state ControllerState) {
	controller.RawButtons = &snapshot.RawButtons{
		Pressed: state.Pressed,
		Touched: state.Touched,
	}

	var buttons = controller.Buttons
	buttons["system"] = snapshot.FlagButton(state.IsPressed(ButtonSystem))
	buttons["menu"] = snapshot.FlagButton(state.IsPressed(ButtonApplicationMenu))
	buttons["grip"] = snapshot.FlagButton(state.IsPressed(ButtonGrip))
	buttons["trigger"] = snapshot.FlagButton(state.IsPressed(ButtonTrigger))
	buttons["trackpad"] = snapshot.DetailedButton(state.IsPressed(ButtonTouchpad), state.IsTouched(ButtonTouchpad))

	// the full table wins over the flags above for names they share
	for _, b := range NamedButtons {
		buttons[b.Key()] = snapshot.DetailedButton(state.IsPressed(b.ID), state.IsTouched(b.ID))
	}

	var trigger float64
	if len(state.Axes) > 1 {
		trigger = state.Axes[1].X
	}
	controller.Analog.Trigger = snapshot.Float(trigger)

	if len(state.Axes) > 0 {
		controller.Analog.Trackpad = &snapshot.Axis{X: state.Axes[0].X, Y: state.Axes[0].Y}
	}
}
