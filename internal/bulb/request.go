package bulb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Command names accepted in the "command" and "commands" request keys.
const (
	CommandUnpair          = "unpair"
	CommandPair            = "pair"
	CommandSetWhite        = "set_white"
	CommandWhiteMode       = "white_mode"
	CommandNightMode       = "night_mode"
	CommandLevelUp         = "level_up"
	CommandLevelDown       = "level_down"
	CommandTemperatureUp   = "temperature_up"
	CommandTemperatureDown = "temperature_down"
	CommandNextMode        = "next_mode"
	CommandPreviousMode    = "previous_mode"
	CommandModeSpeedDown   = "mode_speed_down"
	CommandModeSpeedUp     = "mode_speed_up"
)

// Effect names accepted in the "effect" request key. Any other value is a
// scene index.
const (
	EffectNightMode = "night_mode"
	EffectWhite     = "white"
	EffectWhiteMode = "white_mode"
)

// ErrInvalidRequest is returned when a request payload cannot be decoded.
var ErrInvalidRequest = errors.New("bulb: invalid request")

// RGB is an 8-bit colour triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// White is pure white.
var White = RGB{R: 255, G: 255, B: 255}

// whiteThreshold is the channel level above which a colour is sent as white.
const whiteThreshold = 216

// NearWhite reports whether every channel is above the white threshold.
// Such colours select the white LEDs instead of a hue.
func (c RGB) NearWhite() bool {
	return c.R > whiteThreshold && c.G > whiteThreshold && c.B > whiteThreshold
}

// Effect is the "effect" request value. JSON strings and numbers are both
// accepted so that {"effect": 3} and {"effect": "3"} mean the same scene.
type Effect string

// UnmarshalJSON accepts a JSON string or number.
func (e *Effect) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = Effect(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("effect must be a string or number: %w", err)
	}
	*e = Effect(n.String())
	return nil
}

// SceneIndex returns the effect as a scene index. Non-numeric effects yield 0.
func (e Effect) SceneIndex() int {
	n, err := strconv.Atoi(strings.TrimSpace(string(e)))
	if err != nil {
		return 0
	}
	return n
}

// Request is one inbound lighting command. Absent keys are nil.
type Request struct {
	State       *string  `json:"state,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Command     *string  `json:"command,omitempty"`
	Commands    []string `json:"commands,omitempty"`
	Effect      *Effect  `json:"effect,omitempty"`
	Hue         *int     `json:"hue,omitempty"`
	Saturation  *int     `json:"saturation,omitempty"`
	Color       *RGB     `json:"color,omitempty"`
	Level       *int     `json:"level,omitempty"`
	Brightness  *int     `json:"brightness,omitempty"`
	Temperature *int     `json:"temperature,omitempty"`
	ColorTemp   *int     `json:"color_temp,omitempty"`
	Mode        *int     `json:"mode,omitempty"`
	ButtonID    *int     `json:"button_id,omitempty"`
	Argument    *int     `json:"argument,omitempty"`
	BulbMode    *string  `json:"bulb_mode,omitempty"`
}

// DecodeRequest parses a JSON request payload.
func DecodeRequest(payload []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return req, nil
}

// Power reports the power state the request asks for. "status" takes
// precedence over "state". ok is false when neither key is present.
func (r Request) Power() (on bool, ok bool) {
	var raw *string
	switch {
	case r.Status != nil:
		raw = r.Status
	case r.State != nil:
		raw = r.State
	default:
		return false, false
	}
	v := strings.ToLower(strings.TrimSpace(*raw))
	return v == "on" || v == "true", true
}

// HasCommand reports whether cmd appears in "command" or "commands".
func (r Request) HasCommand(cmd string) bool {
	if r.Command != nil && *r.Command == cmd {
		return true
	}
	for _, c := range r.Commands {
		if c == cmd {
			return true
		}
	}
	return false
}

// AllCommands returns "command" followed by "commands".
func (r Request) AllCommands() []string {
	var cmds []string
	if r.Command != nil {
		cmds = append(cmds, *r.Command)
	}
	return append(cmds, r.Commands...)
}

// Int returns a pointer to v, for building requests in code.
func Int(v int) *int { return &v }

// String returns a pointer to v, for building requests in code.
func String(v string) *string { return &v }
