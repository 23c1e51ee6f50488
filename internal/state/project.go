package state

import (
	"strconv"

	"github.com/nerrad567/milight-hub/internal/bulb"
	"github.com/nerrad567/milight-hub/internal/units"
)

// Reportable field names.
const (
	FieldState         = "state"
	FieldStatus        = "status"
	FieldBrightness    = "brightness"
	FieldLevel         = "level"
	FieldHue           = "hue"
	FieldSaturation    = "saturation"
	FieldColor         = "color"
	FieldMode          = "mode"
	FieldKelvin        = "kelvin"
	FieldColorTemp     = "color_temp"
	FieldBulbMode      = "bulb_mode"
	FieldComputedColor = "computed_color"
	FieldEffect        = "effect"
)

// Fields lists every reportable field.
var Fields = []string{
	FieldState,
	FieldStatus,
	FieldBrightness,
	FieldLevel,
	FieldHue,
	FieldSaturation,
	FieldColor,
	FieldMode,
	FieldKelvin,
	FieldColorTemp,
	FieldBulbMode,
	FieldComputedColor,
	FieldEffect,
}

// Project returns the requested fields that are known and meaningful in the
// current bulb mode. Unknown field names are skipped.
func (s *GroupState) Project(fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		s.applyField(out, field)
	}
	return out
}

func (s *GroupState) applyField(out map[string]any, field string) {
	mode, modeKnown := s.BulbMode()
	colorMode := modeKnown && mode == bulb.ModeColor

	switch field {
	case FieldState, FieldStatus:
		if on, ok := s.Power(); ok {
			if on {
				out[field] = "ON"
			} else {
				out[field] = "OFF"
			}
		}

	case FieldBrightness:
		if b, ok := s.Brightness(); ok {
			out[field] = units.Rescale(b, 255, 100)
		}

	case FieldLevel:
		if b, ok := s.Brightness(); ok {
			out[field] = b
		}

	case FieldBulbMode:
		if modeKnown {
			out[field] = mode.String()
		}

	case FieldColor:
		if c, ok := s.color(); ok && colorMode {
			out[field] = c
		}

	case FieldComputedColor:
		if c, ok := s.color(); ok && colorMode {
			out[field] = c
		} else if modeKnown {
			out[field] = bulb.White
		}

	case FieldHue:
		if h, ok := s.Hue(); ok && colorMode {
			out[field] = h
		}

	case FieldSaturation:
		if sat, ok := s.Saturation(); ok && colorMode {
			out[field] = sat
		}

	case FieldMode:
		if m, ok := s.Mode(); ok && modeKnown && mode == bulb.ModeScene {
			out[field] = m
		}

	case FieldEffect:
		if !modeKnown {
			return
		}
		switch mode {
		case bulb.ModeScene:
			if m, ok := s.Mode(); ok {
				out[field] = strconv.Itoa(m)
			}
		case bulb.ModeWhite:
			out[field] = bulb.EffectWhiteMode
		case bulb.ModeNight:
			out[field] = bulb.EffectNightMode
		}

	case FieldColorTemp:
		if m, ok := s.Mireds(); ok && modeKnown && mode == bulb.ModeWhite {
			out[field] = m
		}

	case FieldKelvin:
		if k, ok := s.Kelvin(); ok && modeKnown && mode == bulb.ModeWhite {
			out[field] = k
		}
	}
}

// color is the fully bright RGB colour of the stored hue and saturation.
// Saturation defaults to full when unknown.
func (s *GroupState) color() (bulb.RGB, bool) {
	hue, ok := s.Hue()
	if !ok {
		return bulb.RGB{}, false
	}
	sat := 1.0
	if v, ok := s.Saturation(); ok {
		sat = float64(v) / 100
	}
	r, g, b := units.HSVToRGB(float64(hue)/360, sat, 1)
	return bulb.RGB{R: r, G: g, B: b}, true
}
