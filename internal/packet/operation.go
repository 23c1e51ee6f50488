package packet

import (
	"fmt"

	"github.com/nerrad567/milight-hub/internal/bulb"
)

// Kind identifies what a parsed frame asks the bulb to do.
type Kind int

const (
	KindUnknown Kind = iota
	KindOn
	KindOff
	KindNightMode
	KindHue
	KindSaturation
	KindBrightness
	KindTemperature
	KindMode
	KindModeSpeedUp
	KindModeSpeedDown
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindOn:            "on",
	KindOff:           "off",
	KindNightMode:     "night_mode",
	KindHue:           "hue",
	KindSaturation:    "saturation",
	KindBrightness:    "brightness",
	KindTemperature:   "temperature",
	KindMode:          "mode",
	KindModeSpeedUp:   "mode_speed_up",
	KindModeSpeedDown: "mode_speed_down",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Operation is a decoded frame.
//
// Value holds the operation argument in API units: hue in degrees,
// saturation, brightness and temperature on 0-100, or the scene index.
// Button and Argument always carry the raw command and argument bytes.
type Operation struct {
	Kind     Kind
	DeviceID uint16
	GroupID  uint8
	Value    int
	Button   uint8
	Argument uint8
	Sequence uint8
}

// Key returns the bulb address the operation targets.
func (o Operation) Key(family string) bulb.Key {
	return bulb.Key{DeviceType: family, DeviceID: o.DeviceID, GroupID: o.GroupID}
}

// Request converts the operation into the equivalent state request, so that
// frames heard from a physical remote update the state model the same way
// MQTT commands do.
func (o Operation) Request() bulb.Request {
	var req bulb.Request
	switch o.Kind {
	case KindOn:
		req.State = bulb.String("ON")
	case KindOff:
		req.State = bulb.String("OFF")
	case KindNightMode:
		req.Command = bulb.String(bulb.CommandNightMode)
	case KindHue:
		req.Hue = bulb.Int(o.Value)
	case KindSaturation:
		req.Saturation = bulb.Int(o.Value)
	case KindBrightness:
		req.Level = bulb.Int(o.Value)
	case KindTemperature:
		req.Temperature = bulb.Int(o.Value)
	case KindMode:
		req.Mode = bulb.Int(o.Value)
	case KindModeSpeedUp:
		req.Command = bulb.String(bulb.CommandModeSpeedUp)
	case KindModeSpeedDown:
		req.Command = bulb.String(bulb.CommandModeSpeedDown)
	default:
		req.ButtonID = bulb.Int(int(o.Button))
		req.Argument = bulb.Int(int(o.Argument))
	}
	return req
}
