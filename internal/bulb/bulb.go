// Package bulb holds the value types shared by the radio controller, the
// state model and the message bus bridge: the bulb key, the inbound request
// and the bulb mode.
package bulb

import (
	"fmt"
	"strings"
)

// Key identifies one addressable group of bulbs.
type Key struct {
	DeviceType string `json:"device_type"`
	DeviceID   uint16 `json:"device_id"`
	GroupID    uint8  `json:"group_id"`
}

// String renders the key as "rgb_cct/0x0002/1".
func (k Key) String() string {
	return fmt.Sprintf("%s/0x%04X/%d", k.DeviceType, k.DeviceID, k.GroupID)
}

// Mode is the exclusive display mode of a bulb. Night is an overlay and never
// replaces the underlying mode in storage.
type Mode uint8

const (
	ModeWhite Mode = iota
	ModeColor
	ModeScene
	ModeNight
)

var modeNames = map[Mode]string{
	ModeWhite: "white",
	ModeColor: "color",
	ModeScene: "scene",
	ModeNight: "night",
}

// String returns the reported name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode parses a reported mode name.
func ParseMode(s string) (Mode, bool) {
	for mode, name := range modeNames {
		if strings.EqualFold(name, s) {
			return mode, true
		}
	}
	return 0, false
}
