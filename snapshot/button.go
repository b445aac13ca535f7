package snapshot

import (
	"bytes"
	"encoding/json"
	"github.com/go-faster/errors"
)

// Form is the wire encoding a Button was read in.
type Form uint8

const (
	// Detailed is {"pressed": bool, "touched": bool}.
	Detailed Form = iota
	// Flag is a bare bool meaning pressed.
	Flag
	// Null is a JSON null. It carries no state.
	Null
)

const (
	StatusPressed  = "PRESSED"
	StatusTouched  = "TOUCHED"
	StatusReleased = "---"
)

type Button struct {
	Pressed bool
	Touched bool
	Form    Form
}

func FlagButton(pressed bool) Button {
	return Button{Pressed: pressed, Form: Flag}
}

func DetailedButton(pressed, touched bool) Button {
	return Button{Pressed: pressed, Touched: touched, Form: Detailed}
}

func (b Button) Status() string {
	switch {
	case b.Pressed:
		return StatusPressed
	case b.Touched && b.Form == Detailed:
		return StatusTouched
	default:
		return StatusReleased
	}
}

type detailedButton struct {
	Pressed bool `json:"pressed"`
	Touched bool `json:"touched"`
}

func (b Button) MarshalJSON() ([]byte, error) {
	switch b.Form {
	case Flag:
		return json.Marshal(b.Pressed)
	case Null:
		return []byte("null"), nil
	}
	return json.Marshal(detailedButton{Pressed: b.Pressed, Touched: b.Touched})
}

func (b *Button) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty button state")
	}

	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return errors.Errorf("invalid button state: %s", data)
		}
		*b = Button{Form: Null}
		return nil
	case 't', 'f':
		var pressed bool
		if err := json.Unmarshal(data, &pressed); err != nil {
			return errors.Wrap(err, "button flag")
		}
		*b = FlagButton(pressed)
		return nil
	case '{':
		var d detailedButton
		if err := json.Unmarshal(data, &d); err != nil {
			return errors.Wrap(err, "button object")
		}
		*b = DetailedButton(d.Pressed, d.Touched)
		return nil
	default:
		return errors.Errorf("invalid button state: %s", data)
	}
}
