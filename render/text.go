// Package render turns snapshots and receiver state into terminal text and
// plot images.
package render

import (
	"fmt"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive/receiver"
	"github.com/imakiri/vive/snapshot"
	"github.com/imakiri/vive/tracking"
	"gonum.org/v1/gonum/spatial/r3"
	"io"
	"strings"
	"time"
)

type Mode string

const (
	Simple Mode = "simple"
	Full   Mode = "full"
	Raw    Mode = "raw"
	// Status redraws the decoded receiver state on a timer instead of
	// printing each datagram.
	Status Mode = "status"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Simple, Full, Raw, Status:
		return m, nil
	default:
		return "", errors.Errorf("unknown display mode %q", s)
	}
}

const clockFormat = "15:04:05"

var mainButtons = []string{"system", "menu", "grip", "trigger"}

// Datagram prints one received datagram in a per-datagram mode.
func Datagram(w io.Writer, mode Mode, from string, at time.Time, raw []byte, snap *snapshot.Snapshot) error {
	fmt.Fprintln(w, "=== HTC Vive Controller Data ===")
	fmt.Fprintf(w, "From: %s\n", from)
	fmt.Fprintf(w, "Time: %s\n", at.Format(clockFormat))
	fmt.Fprintln(w, "-------------------------------")

	switch mode {
	case Simple:
		simple(w, snap)
	case Full:
		full(w, snap)
	case Raw:
		var indented, err = snapshot.Indent(raw)
		if err != nil {
			return errors.Wrap(err, "snapshot.Indent")
		}
		fmt.Fprintln(w, string(indented))
	default:
		return errors.Errorf("mode %q is not a datagram mode", mode)
	}
	return nil
}

func simple(w io.Writer, snap *snapshot.Snapshot) {
	for _, hand := range snapshot.Hands {
		var c = snap.Controller(hand)
		if c == nil {
			continue
		}
		if !c.Tracked {
			fmt.Fprintf(w, "\n%s CONTROLLER: Not tracked\n", upper(hand))
			continue
		}

		fmt.Fprintf(w, "\n%s CONTROLLER:\n", upper(hand))
		if !c.Position.Empty() {
			fmt.Fprintf(w, "  Position: %s\n", position(c.Position.Get()))
		}

		fmt.Fprintln(w, "\n  MAIN BUTTONS:")
		for _, name := range mainButtons {
			if b, ok := c.Buttons[name]; ok {
				var status = snapshot.StatusReleased
				if b.Pressed {
					status = snapshot.StatusPressed
				}
				fmt.Fprintf(w, "    %s: %s\n", capitalize(name), status)
			}
		}
		if b, ok := c.Buttons["trackpad"]; ok {
			fmt.Fprintf(w, "    Trackpad: %s\n", b.Status())
		}

		analog(w, c.Analog)
	}
}

func full(w io.Writer, snap *snapshot.Snapshot) {
	for _, hand := range snapshot.Hands {
		var c = snap.Controller(hand)
		if c == nil {
			continue
		}
		if !c.Tracked {
			fmt.Fprintf(w, "\n%s CONTROLLER: Not tracked\n", upper(hand))
			continue
		}

		fmt.Fprintf(w, "\n%s CONTROLLER:\n", upper(hand))
		if !c.Position.Empty() {
			fmt.Fprintf(w, "  Position: %s\n", position(c.Position.Get()))
		}
		if !c.Rotation.Empty() {
			var e = c.Rotation.Get()
			fmt.Fprintf(w, "  Rotation: Roll=%.1f°, Pitch=%.1f°, Yaw=%.1f°\n", e.Roll, e.Pitch, e.Yaw)
		}

		if len(c.Buttons) > 0 {
			fmt.Fprintln(w, "\n  ALL BUTTONS:")
			for _, name := range c.Buttons.Names() {
				fmt.Fprintf(w, "    %s: %s\n", label(name), c.Buttons[name].Status())
			}
		}

		analog(w, c.Analog)
	}
}

// StatusView prints the decoded receiver state.
func StatusView(w io.Writer, view receiver.View, socket string, now time.Time) {
	fmt.Fprintf(w, "=== HTC Vive Controller Status - %s ===\n", now.Format(clockFormat))
	fmt.Fprintf(w, "Socket Status: %s\n", socket)
	fmt.Fprintf(w, "Data Last Updated: %.1f seconds ago\n", view.DataAge.Seconds())
	fmt.Fprintf(w, "Scaling: %s | Debug: %s\n", onOff(view.AutoScale, "AUTO", "FIXED"), onOff(view.Debug, "ON", "OFF"))
	fmt.Fprintln(w, strings.Repeat("=", 50))

	for _, h := range view.Hands {
		fmt.Fprintf(w, "\n%s CONTROLLER:\n", upper(h.Hand))
		if !h.Tracked {
			fmt.Fprintln(w, "  Status: NOT TRACKED")
			continue
		}
		fmt.Fprintln(w, "  Status: TRACKED")
		fmt.Fprintf(w, "  Position: %s m\n", position(h.Position))
		fmt.Fprintf(w, "  Rotation: Roll=%.1f°, Pitch=%.1f°, Yaw=%.1f°\n", h.Rotation.Roll, h.Rotation.Pitch, h.Rotation.Yaw)

		fmt.Fprintln(w, "\n  BUTTON STATES:")
		fmt.Fprintf(w, "    Trigger: %s\n", onOff(h.TriggerPressed, "PRESSED", "RELEASED"))
		for _, name := range h.Buttons.Names() {
			if name == "trigger" {
				continue
			}
			fmt.Fprintf(w, "    %s: %s\n", capitalize(name), h.Buttons[name].Status())
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "CONTROLS:")
	fmt.Fprintln(w, "  'a' - Toggle auto-scaling")
	fmt.Fprintln(w, "  'r' - Reinitialize socket")
	fmt.Fprintln(w, "  'd' - Toggle debug mode")
	fmt.Fprintln(w, "  't' - Toggle terminal output")
	fmt.Fprintln(w, "  'q' - Quit")
}

// SenderView prints what the sender is about to transmit.
func SenderView(w io.Writer, frame tracking.Frame, targets []string, at time.Time) {
	fmt.Fprintf(w, "Time: %s\n", at.Format(clockFormat))
	if len(targets) > 0 {
		fmt.Fprintf(w, "Sending data to: %s\n", strings.Join(targets, ", "))
	}

	for _, hand := range snapshot.Hands {
		var c = frame.Snapshot.Controller(hand)
		switch {
		case c == nil:
			fmt.Fprintf(w, "\n%s CONTROLLER: Not detected\n", upper(hand))
			continue
		case !c.Tracked:
			fmt.Fprintf(w, "\n%s CONTROLLER: Not tracked\n", upper(hand))
			continue
		}

		var e = c.Rotation.Get()
		fmt.Fprintf(w, "\n%s CONTROLLER:\n", upper(hand))
		fmt.Fprintf(w, "  Position: %s (meters)\n", position(c.Position.Get()))
		fmt.Fprintf(w, "  Rotation: Roll=%.1f°, Pitch=%.1f°, Yaw=%.1f°\n", e.Roll, e.Pitch, e.Yaw)

		if c.RawButtons != nil {
			fmt.Fprintln(w, "\n  BUTTONS:")
			fmt.Fprintf(w, "    Raw Button Pressed: %d\n", c.RawButtons.Pressed)
			fmt.Fprintf(w, "    Raw Button Touched: %d\n", c.RawButtons.Touched)
			for _, name := range mainButtons {
				if b, ok := c.Buttons[name]; ok {
					fmt.Fprintf(w, "    %s Button: %s\n", capitalize(name), onOff(b.Pressed, snapshot.StatusPressed, snapshot.StatusReleased))
				}
			}
			for _, named := range tracking.NamedButtons {
				if b, ok := c.Buttons[named.Key()]; ok {
					fmt.Fprintf(w, "    %s: %s\n", named.Name, b.Status())
				}
			}
		}

		analog(w, c.Analog)

		fmt.Fprintf(w, "\n  Tracking: %s\n", onOff(frame.Connected[hand], "OK", "Not Connected"))
	}
}

func analog(w io.Writer, a snapshot.Analog) {
	if a.Empty() {
		return
	}
	fmt.Fprintln(w, "\n  ANALOG INPUTS:")
	if a.Trigger != nil {
		fmt.Fprintf(w, "    Trigger: %.2f\n", *a.Trigger)
	}
	if a.Trackpad != nil {
		fmt.Fprintf(w, "    Trackpad: X=%.2f, Y=%.2f\n", a.Trackpad.X, a.Trackpad.Y)
	}
}

func position(v r3.Vec) string {
	return fmt.Sprintf("X=%.4f, Y=%.4f, Z=%.4f", v.X, v.Y, v.Z)
}

func upper(hand snapshot.Hand) string {
	return strings.ToUpper(string(hand))
}

// capitalize upper cases the first letter and lower cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func label(name string) string {
	return capitalize(strings.ReplaceAll(name, "_", " "))
}

func onOff(v bool, on, off string) string {
	if v {
		return on
	}
	return off
}
