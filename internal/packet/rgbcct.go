package packet

import (
	"fmt"

	"github.com/nerrad567/milight-hub/internal/radio"
	"github.com/nerrad567/milight-hub/internal/units"
)

const (
	rgbCctProtocolID = 0x20

	rgbCctOn          = 0x01
	rgbCctColor       = 0x02
	rgbCctKelvin      = 0x03
	rgbCctBrightness  = 0x04
	rgbCctSaturation  = 0x04
	rgbCctMode        = 0x05
	rgbCctHeld        = 0x80
	rgbCctCommandMask = 0x7F

	rgbCctModeSpeedUp   = 0x0A
	rgbCctModeSpeedDown = 0x0B
	rgbCctOffArgOffset  = 5

	rgbCctColorOffset      = 0x5F
	rgbCctBrightnessOffset = 0x8F
	rgbCctSaturationOffset = 0x0D
	rgbCctKelvinOffset     = 0xCC
	rgbCctBrightnessFloor  = 0x80

	rgbCctNumModes = 9
	rgbCctStep     = 10
	rgbCctMax      = 100
)

// RgbCct is the codec for RGB+CCT bulbs.
type RgbCct struct {
	deviceID uint16
	groupID  uint8
	sequence uint8
	held     bool

	lastMode    int
	brightness  int
	temperature int
}

// NewRgbCct returns a codec with the step trackers at full scale.
func NewRgbCct() *RgbCct {
	return &RgbCct{brightness: rgbCctMax, temperature: rgbCctMax}
}

func (c *RgbCct) Family() string { return radio.FamilyRGBCCT }

func (c *RgbCct) Prepare(deviceID uint16, groupID uint8) {
	c.deviceID = deviceID
	c.groupID = groupID
}

func (c *RgbCct) SetHeld(held bool) { c.held = held }

// Sequence returns the sequence number the next frame will carry.
func (c *RgbCct) Sequence() uint8 { return c.sequence }

func (c *RgbCct) frame(command, argument uint8) Frame {
	if c.held {
		command |= rgbCctHeld
	}
	plain := [v2Length]byte{
		0x00,
		rgbCctProtocolID,
		byte(c.deviceID >> 8),
		byte(c.deviceID),
		command,
		argument,
		c.sequence,
		c.groupID,
		0x00,
	}
	c.sequence++
	out := v2Scramble(plain)
	return NewFrame(out[:])
}

func (c *RgbCct) Status(on bool) Frame {
	arg := c.groupID
	if !on {
		arg += rgbCctOffArgOffset
	}
	return c.frame(rgbCctOn, arg)
}

// Hue takes degrees in 0-359.
func (c *RgbCct) Hue(degrees int) Frame {
	degrees = ((degrees % 360) + 360) % 360
	return c.ColorRaw(uint8(units.Rescale(degrees, 255, 360)))
}

func (c *RgbCct) ColorRaw(value uint8) Frame {
	return c.frame(rgbCctColor, rgbCctColorOffset+value)
}

func (c *RgbCct) Saturation(value int) Frame {
	value = units.Constrain(value, 0, rgbCctMax)
	return c.frame(rgbCctSaturation, uint8(value)+rgbCctSaturationOffset)
}

func (c *RgbCct) Brightness(value int) Frame {
	value = units.Constrain(value, 0, rgbCctMax)
	c.brightness = value
	return c.frame(rgbCctBrightness, rgbCctBrightnessOffset+uint8(value))
}

// Temperature takes 0 (warmest) to 100 (coolest).
func (c *RgbCct) Temperature(value int) Frame {
	value = units.Constrain(value, 0, rgbCctMax)
	c.temperature = value
	return c.frame(rgbCctKelvin, uint8((rgbCctMax-value)*2+rgbCctKelvinOffset))
}

func (c *RgbCct) Mode(mode int) Frame {
	mode = ((mode % rgbCctNumModes) + rgbCctNumModes) % rgbCctNumModes
	c.lastMode = mode
	return c.frame(rgbCctMode, uint8(mode))
}

func (c *RgbCct) NextMode() Frame {
	return c.Mode(c.lastMode + 1)
}

func (c *RgbCct) PreviousMode() Frame {
	return c.Mode(c.lastMode + rgbCctNumModes - 1)
}

func (c *RgbCct) ModeSpeedUp() Frame {
	return c.frame(rgbCctOn, rgbCctModeSpeedUp)
}

func (c *RgbCct) ModeSpeedDown() Frame {
	return c.frame(rgbCctOn, rgbCctModeSpeedDown)
}

func (c *RgbCct) IncreaseBrightness() Frame {
	return c.Brightness(c.brightness + rgbCctStep)
}

func (c *RgbCct) DecreaseBrightness() Frame {
	return c.Brightness(c.brightness - rgbCctStep)
}

func (c *RgbCct) IncreaseTemperature() Frame {
	return c.Temperature(c.temperature + rgbCctStep)
}

func (c *RgbCct) DecreaseTemperature() Frame {
	return c.Temperature(c.temperature - rgbCctStep)
}

func (c *RgbCct) ColorWhite() Frame {
	return c.Temperature(rgbCctMax)
}

func (c *RgbCct) NightMode() Frame {
	return c.frame(rgbCctOn|rgbCctHeld, c.groupID+rgbCctOffArgOffset)
}

// Pair returns the frame a bulb learns its remote from. Callers repeat it
// while the bulb is in its pairing window.
func (c *RgbCct) Pair() Frame {
	return c.Status(true)
}

// Unpair is the same frame as Pair; bulbs forget their remote when they see
// it repeated within a few seconds of power-up.
func (c *RgbCct) Unpair() Frame {
	return c.Status(true)
}

func (c *RgbCct) Command(button, argument uint8) Frame {
	return c.frame(button, argument)
}

// Parse decodes a scrambled RGB+CCT frame.
func (c *RgbCct) Parse(frame []byte) (Operation, error) {
	if len(frame) != v2Length {
		return Operation{}, fmt.Errorf("%w: length %d, want %d", ErrInvalidFrame, len(frame), v2Length)
	}

	var raw [v2Length]byte
	copy(raw[:], frame)
	p, ok := v2Unscramble(raw)
	if !ok {
		return Operation{}, fmt.Errorf("%w: frame %x", ErrChecksum, frame)
	}
	if p[1] != rgbCctProtocolID {
		return Operation{}, fmt.Errorf("%w: protocol 0x%02x", ErrInvalidFrame, p[1])
	}

	command, arg := p[4], p[5]
	op := Operation{
		DeviceID: uint16(p[2])<<8 | uint16(p[3]),
		GroupID:  p[7],
		Button:   command,
		Argument: arg,
		Sequence: p[6],
	}

	switch command & rgbCctCommandMask {
	case rgbCctOn:
		switch {
		case command&rgbCctHeld != 0:
			op.Kind = KindNightMode
		case arg == rgbCctModeSpeedDown:
			op.Kind = KindModeSpeedDown
		case arg == rgbCctModeSpeedUp:
			op.Kind = KindModeSpeedUp
		case arg < rgbCctOffArgOffset:
			op.Kind = KindOn
			op.GroupID = arg
		default:
			op.Kind = KindOff
			op.GroupID = arg - rgbCctOffArgOffset
		}
	case rgbCctColor:
		op.Kind = KindHue
		op.Value = units.Rescale(int(arg-rgbCctColorOffset), 360, 255)
	case rgbCctKelvin:
		op.Kind = KindTemperature
		op.Value = rgbCctMax - int(arg-rgbCctKelvinOffset)/2
	case rgbCctBrightness:
		if arg >= rgbCctBrightnessFloor {
			op.Kind = KindBrightness
			op.Value = units.Constrain(int(arg)-rgbCctBrightnessOffset, 0, rgbCctMax)
		} else {
			op.Kind = KindSaturation
			op.Value = units.Constrain(int(arg)-rgbCctSaturationOffset, 0, rgbCctMax)
		}
	case rgbCctMode:
		op.Kind = KindMode
		op.Value = int(arg)
	default:
		op.Kind = KindUnknown
	}
	return op, nil
}
