package receiver

import (
	"github.com/imakiri/vive/pose"
	"github.com/imakiri/vive/snapshot"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"testing"
	"time"
)

var epoch = time.Unix(1700000000, 0)

func decode(t *testing.T, data string) *snapshot.Snapshot {
	t.Helper()
	var s, err = snapshot.Decode([]byte(data))
	require.NoError(t, err)
	return s
}

func TestInitialView(t *testing.T) {
	var state = NewState(0, 0, epoch)
	var view = state.View(epoch.Add(time.Second))

	require.Equal(t, time.Second, view.DataAge)
	require.True(t, view.AutoScale)
	require.EqualValues(t, DefaultAxisLimit, view.AxisLimit)
	require.Equal(t, snapshot.Left, view.Hands[0].Hand)
	require.Equal(t, snapshot.Right, view.Hands[1].Hand)
	require.False(t, view.Hand(snapshot.Left).Tracked)

	// no data yet: fixed limits
	require.Equal(t, Limits{
		X: Range{Min: -2, Max: 2},
		Y: Range{Min: 0, Max: 4},
		Z: Range{Min: -2, Max: 2},
	}, view.Limits)
}

func TestApplyTracked(t *testing.T) {
	var state = NewState(3, 2, epoch)
	state.Apply(decode(t, `{
		"left": {
			"tracked": true,
			"position": {"x": 1, "y": 1.5, "z": -1},
			"rotation": {"roll": 1, "pitch": 2, "yaw": 3},
			"buttons": {"trigger": true, "menu": {"pressed": false, "touched": true}},
			"analog": {}
		}
	}`), epoch.Add(time.Second))

	var view = state.View(epoch.Add(time.Second))
	var left = view.Hand(snapshot.Left)
	require.True(t, left.Tracked)
	require.Equal(t, r3.Vec{X: 1, Y: 1.5, Z: -1}, left.Position)
	require.Equal(t, pose.Euler{Roll: 1, Pitch: 2, Yaw: 3}, left.Rotation)
	require.True(t, left.TriggerPressed)
	require.Equal(t, []r3.Vec{{X: 1, Y: 1.5, Z: -1}}, left.Trail)
	require.Equal(t, snapshot.DetailedButton(false, true), left.Buttons["menu"])
	require.Zero(t, view.DataAge)
	require.EqualValues(t, 1, view.Updates)

	// right was absent and stays default
	require.False(t, view.Hand(snapshot.Right).Tracked)
	require.Empty(t, view.Hand(snapshot.Right).Trail)
}

func TestTriggerResolution(t *testing.T) {
	var cases = []struct {
		name string
		data string
		want bool
	}{
		{"flag pressed", `{"left": {"tracked": true, "buttons": {"trigger": true}}}`, true},
		{"flag released", `{"left": {"tracked": true, "buttons": {"trigger": false}}}`, false},
		{"object pressed", `{"left": {"tracked": true, "buttons": {"trigger": {"pressed": true, "touched": true}}}}`, true},
		{"object touched only", `{"left": {"tracked": true, "buttons": {"trigger": {"pressed": false, "touched": true}}}}`, false},
		{"analog overrides released button", `{"left": {"tracked": true, "buttons": {"trigger": false}, "analog": {"trigger": 0.8}}}`, true},
		{"analog overrides pressed button", `{"left": {"tracked": true, "buttons": {"trigger": true}, "analog": {"trigger": 0.2}}}`, false},
		{"analog at threshold", `{"left": {"tracked": true, "analog": {"trigger": 0.5}}}`, false},
		{"null released", `{"left": {"tracked": true, "buttons": {"trigger": null}}}`, false},
		{"untracked ignores analog", `{"left": {"tracked": false, "buttons": {"trigger": true}, "analog": {"trigger": 0.0}}}`, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var state = NewState(0, 0, epoch)
			state.Apply(decode(t, c.data), epoch)
			require.Equal(t, c.want, state.View(epoch).Hand(snapshot.Left).TriggerPressed)
		})
	}
}

func TestTriggerKeptWithoutButtons(t *testing.T) {
	var state = NewState(0, 0, epoch)
	state.Apply(decode(t, `{"left": {"tracked": false, "buttons": {"trigger": true}}}`), epoch)
	state.Apply(decode(t, `{"left": {"tracked": false}}`), epoch)

	var left = state.View(epoch).Hand(snapshot.Left)
	require.True(t, left.TriggerPressed)
	require.Contains(t, left.Buttons, "trigger")

	// null is no state
	state.Apply(decode(t, `{"left": {"tracked": false, "buttons": {"trigger": null}}}`), epoch)
	left = state.View(epoch).Hand(snapshot.Left)
	require.True(t, left.TriggerPressed)

	// an empty buttons object replaces the buttons but leaves the trigger
	state.Apply(decode(t, `{"left": {"tracked": false, "buttons": {}}}`), epoch)
	left = state.View(epoch).Hand(snapshot.Left)
	require.True(t, left.TriggerPressed)
	require.Empty(t, left.Buttons)
}

func TestUntrackedKeepsPose(t *testing.T) {
	var state = NewState(0, 0, epoch)
	state.Apply(decode(t, `{"right": {"tracked": true, "position": {"x": 0.5, "y": 1, "z": 0.5}, "rotation": {"roll": 10, "pitch": 0, "yaw": 0}}}`), epoch)
	state.Apply(decode(t, `{"right": {"tracked": false, "position": {}, "rotation": {}, "buttons": {}, "analog": {}}}`), epoch)

	var right = state.View(epoch).Hand(snapshot.Right)
	require.False(t, right.Tracked)
	require.Equal(t, r3.Vec{X: 0.5, Y: 1, Z: 0.5}, right.Position)
	require.Equal(t, pose.Euler{Roll: 10}, right.Rotation)
	require.Len(t, right.Trail, 1)
}

func TestPartialPositionIgnored(t *testing.T) {
	var state = NewState(0, 0, epoch)
	state.Apply(decode(t, `{"left": {"tracked": true, "position": {"x": 3, "y": 3}, "rotation": {"roll": 5}}}`), epoch)

	var left = state.View(epoch).Hand(snapshot.Left)
	require.True(t, left.Tracked)
	require.Equal(t, r3.Vec{}, left.Position)
	require.Equal(t, pose.Euler{}, left.Rotation)
	require.Empty(t, left.Trail)
}

func TestTrailBounded(t *testing.T) {
	var state = NewState(3, 0, epoch)
	for i := 1; i <= 5; i++ {
		var s = &snapshot.Snapshot{Left: &snapshot.Controller{
			Tracked:  true,
			Position: snapshot.NewPosition(r3.Vec{X: float64(i)}),
		}}
		state.Apply(s, epoch)
	}
	require.Equal(t, []r3.Vec{{X: 3}, {X: 4}, {X: 5}}, state.View(epoch).Hand(snapshot.Left).Trail)
}

func TestAutoScaleLimits(t *testing.T) {
	var state = NewState(0, 1, epoch)
	state.Apply(&snapshot.Snapshot{
		Left: &snapshot.Controller{
			Tracked:  true,
			Position: snapshot.NewPosition(r3.Vec{X: 2, Y: 1, Z: 0.1}),
		},
		Right: &snapshot.Controller{
			Tracked:  true,
			Position: snapshot.NewPosition(r3.Vec{X: -1, Y: 1.2, Z: -0.1}),
		},
	}, epoch)

	// bounds start at the origin
	// x: [-1, 2] range 3, center 0.5
	// y: [0, 1.2] range 1.2, center 0.6
	// z: [-0.1, 0.1] range 0.5 (minimum), center 0
	var limits = state.Limits()
	require.InDelta(t, -1.2, limits.X.Min, 1e-12)
	require.InDelta(t, 2.2, limits.X.Max, 1e-12)
	require.InDelta(t, -0.2, limits.Y.Min, 1e-12)
	require.InDelta(t, 1.4, limits.Y.Max, 1e-12)
	require.InDelta(t, -0.45, limits.Z.Min, 1e-12)
	require.InDelta(t, 0.45, limits.Z.Max, 1e-12)

	require.False(t, state.ToggleAutoScale())
	require.Equal(t, Limits{
		X: Range{Min: -1, Max: 1},
		Y: Range{Min: 0, Max: 2},
		Z: Range{Min: -1, Max: 1},
	}, state.Limits())
	require.True(t, state.ToggleAutoScale())
}

func TestAutoScaleNeedsSpreadOnX(t *testing.T) {
	var state = NewState(0, 1, epoch)
	state.Apply(&snapshot.Snapshot{Left: &snapshot.Controller{
		Tracked:  true,
		Position: snapshot.NewPosition(r3.Vec{X: 0, Y: 5, Z: 5}),
	}}, epoch)

	require.Equal(t, Range{Min: -1, Max: 1}, state.Limits().X)
}

func TestViewIsDetached(t *testing.T) {
	var state = NewState(0, 0, epoch)
	state.Apply(decode(t, `{"left": {"tracked": false, "buttons": {"grip": true}}}`), epoch)

	var view = state.View(epoch)
	view.Hands[0].Buttons["grip"] = snapshot.FlagButton(false)
	require.True(t, state.View(epoch).Hand(snapshot.Left).Buttons["grip"].Pressed)
}

func TestDebugToggle(t *testing.T) {
	var state = NewState(0, 0, epoch)
	require.False(t, state.Debug())
	require.True(t, state.ToggleDebug())
	state.SetDebug(false)
	require.False(t, state.View(epoch).Debug)
}
