package snapshot

import (
	"encoding/json"
	"github.com/google/go-cmp/cmp"
	"github.com/imakiri/vive/pose"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"testing"
	"time"
)

// payload as emitted by a sender with one tracked and one untracked controller
const payload = `{
  "left": {
    "tracked": true,
    "position": {"x": 0.1, "y": 1.2, "z": -0.3},
    "rotation": {"roll": 10.5, "pitch": -4.0, "yaw": 90.0},
    "buttons": {
      "system": {"pressed": false, "touched": false},
      "trigger": {"pressed": true, "touched": true},
      "trackpad": {"pressed": false, "touched": true},
      "grip": false
    },
    "analog": {"trigger": 0.87, "trackpad": {"x": 0.5, "y": -0.25}},
    "raw_buttons": {"pressed": 8589934592, "touched": 12884901888}
  },
  "right": {"tracked": false, "position": {}, "rotation": {}, "buttons": {}, "analog": {}},
  "timestamp": 1712345678.5
}`

func TestDecode(t *testing.T) {
	var s, err = Decode([]byte(payload))
	require.NoError(t, err)
	require.NotNil(t, s.Left)
	require.NotNil(t, s.Right)

	var pos, ok = s.Left.Position.Vec()
	require.True(t, ok)
	require.Equal(t, r3.Vec{X: 0.1, Y: 1.2, Z: -0.3}, pos)

	euler, ok := s.Left.Rotation.Euler()
	require.True(t, ok)
	require.Equal(t, pose.Euler{Roll: 10.5, Pitch: -4, Yaw: 90}, euler)

	var want = Buttons{
		"system":   DetailedButton(false, false),
		"trigger":  DetailedButton(true, true),
		"trackpad": DetailedButton(false, true),
		"grip":     FlagButton(false),
	}
	if diff := cmp.Diff(want, s.Left.Buttons); diff != "" {
		t.Fatalf("buttons mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, s.Left.Analog.Trigger)
	require.EqualValues(t, 0.87, *s.Left.Analog.Trigger)
	require.Equal(t, &Axis{X: 0.5, Y: -0.25}, s.Left.Analog.Trackpad)
	require.Equal(t, &RawButtons{Pressed: 1 << 33, Touched: 3 << 32}, s.Left.RawButtons)

	require.False(t, s.Right.Tracked)
	require.True(t, s.Right.Position.Empty())
	require.True(t, s.Right.Rotation.Empty())
	require.True(t, s.Right.Analog.Empty())
	require.NotNil(t, s.Right.Buttons)
	require.Len(t, s.Right.Buttons, 0)

	require.Equal(t, int64(1712345678), s.Time().Unix())
	require.Equal(t, 500*time.Millisecond, time.Duration(s.Time().Nanosecond()))
}

func TestDecodeLenient(t *testing.T) {
	var s, err = Decode([]byte(`{"left": {"position": {"x": 1, "y": 2}}, "extra": [1, 2]}`))
	require.NoError(t, err)
	require.Nil(t, s.Right)
	require.False(t, s.Left.Tracked)
	require.Nil(t, s.Left.Buttons)

	var _, ok = s.Left.Position.Vec()
	require.False(t, ok)
	require.Equal(t, r3.Vec{X: 1, Y: 2}, s.Left.Position.Get())
	require.Zero(t, s.Timestamp)
	require.True(t, s.Time().IsZero())
}

func TestDecodeInvalid(t *testing.T) {
	for _, data := range []string{
		``,
		`null`,
		`[1, 2, 3]`,
		`{"left": `,
		`not json`,
		`{"left": {"buttons": {"trigger": 1}}}`,
		`{"left": {"tracked": "yes"}}`,
	} {
		var _, err = Decode([]byte(data))
		require.Error(t, err, data)
	}
}

func TestEncodeUntracked(t *testing.T) {
	var s = &Snapshot{Right: Untracked(), Timestamp: 1.5}
	var data, err = Encode(s)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"right": {"tracked": false, "position": {}, "rotation": {}, "buttons": {}, "analog": {}}, "timestamp": 1.5}`,
		string(data))
}

func TestEncodeRoundTrip(t *testing.T) {
	var s = &Snapshot{
		Left: &Controller{
			Tracked:  true,
			Position: NewPosition(r3.Vec{X: 0, Y: 1, Z: 2}),
			Rotation: NewRotation(pose.Euler{Roll: 1, Pitch: 2, Yaw: 3}),
			Buttons: Buttons{
				"trigger":  FlagButton(true),
				"trackpad": DetailedButton(true, true),
			},
			Analog:     Analog{Trigger: Float(0.25)},
			RawButtons: &RawButtons{Pressed: 5},
		},
	}
	s.Stamp(time.Unix(100, int64(250*time.Millisecond)))

	var data, err = Encode(s)
	require.NoError(t, err)

	// zero components are still sent as present keys
	require.Contains(t, string(data), `"x":0`)

	decoded, err := Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(s, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	require.EqualValues(t, 100.25, decoded.Timestamp)
}

func TestButtonStatus(t *testing.T) {
	require.Equal(t, StatusPressed, FlagButton(true).Status())
	require.Equal(t, StatusReleased, FlagButton(false).Status())
	require.Equal(t, StatusPressed, DetailedButton(true, true).Status())
	require.Equal(t, StatusTouched, DetailedButton(false, true).Status())
	require.Equal(t, StatusReleased, DetailedButton(false, false).Status())
}

func TestButtonNull(t *testing.T) {
	var b Buttons
	require.NoError(t, json.Unmarshal([]byte(`{"menu": null}`), &b))
	require.Equal(t, Button{Form: Null}, b["menu"])
	require.Equal(t, StatusReleased, b["menu"].Status())

	var data, err = json.Marshal(b)
	require.NoError(t, err)
	require.JSONEq(t, `{"menu": null}`, string(data))

	require.Error(t, json.Unmarshal([]byte(`{"menu": nil}`), &b))
}

func TestIndent(t *testing.T) {
	var out, err = Indent([]byte(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": 1\n}", string(out))

	_, err = Indent([]byte(`{`))
	require.Error(t, err)
}
