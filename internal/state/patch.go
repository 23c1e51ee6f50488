package state

import (
	"math"

	"github.com/nerrad567/milight-hub/internal/bulb"
	"github.com/nerrad567/milight-hub/internal/units"
)

const (
	stepSize = 10
	numModes = 9
)

// Patch folds a request into the state.
//
// Fields are applied in dispatch order. Hue, saturation and non-white colours
// force colour mode; a scene index forces scene mode; any colour temperature
// forces white mode. Night mode is cleared by every patch and then turned
// back on only when the request itself asks for it.
func (s *GroupState) Patch(req bulb.Request) {
	if on, ok := req.Power(); ok {
		s.SetPower(on)
	}

	if req.Level != nil {
		s.SetBrightness(units.Constrain(*req.Level, 0, 100))
	}
	if req.Brightness != nil {
		s.SetBrightness(units.Rescale(units.Constrain(*req.Brightness, 0, 255), 100, 255))
	}

	if req.Hue != nil {
		s.SetHue(*req.Hue)
		s.SetBulbMode(bulb.ModeColor)
	}
	if req.Saturation != nil {
		s.SetSaturation(units.Constrain(*req.Saturation, 0, 100))
		s.SetBulbMode(bulb.ModeColor)
	}
	if req.Color != nil {
		s.patchColor(*req.Color)
	}

	if req.Effect != nil {
		switch string(*req.Effect) {
		case bulb.EffectNightMode:
			// applied after night mode is cleared below
		case bulb.EffectWhite, bulb.EffectWhiteMode:
			s.SetBulbMode(bulb.ModeWhite)
		default:
			s.SetMode(req.Effect.SceneIndex())
			s.SetBulbMode(bulb.ModeScene)
		}
	}

	if req.Mode != nil {
		s.SetMode(*req.Mode)
		s.SetBulbMode(bulb.ModeScene)
	}
	if req.Temperature != nil {
		s.SetKelvin(units.Constrain(*req.Temperature, 0, 100))
		s.SetBulbMode(bulb.ModeWhite)
	}
	if req.ColorTemp != nil {
		s.SetMireds(*req.ColorTemp)
		s.SetBulbMode(bulb.ModeWhite)
	}

	s.SetNightMode(false)

	for _, cmd := range req.AllCommands() {
		s.patchCommand(cmd)
	}
	if req.Effect != nil && string(*req.Effect) == bulb.EffectNightMode {
		s.SetBulbMode(bulb.ModeNight)
	}
}

func (s *GroupState) patchColor(c bulb.RGB) {
	if c.NearWhite() {
		s.SetBulbMode(bulb.ModeWhite)
		return
	}
	h, sat, _ := units.RGBToHSV(c.R, c.G, c.B)
	s.SetHue(int(math.Round(h * 360)))
	s.SetSaturation(int(math.Round(sat * 100)))
	s.SetBulbMode(bulb.ModeColor)
}

func (s *GroupState) patchCommand(cmd string) {
	switch cmd {
	case bulb.CommandWhiteMode, bulb.CommandSetWhite:
		s.SetBulbMode(bulb.ModeWhite)
	case bulb.CommandNightMode:
		s.SetBulbMode(bulb.ModeNight)
	case bulb.CommandLevelUp, bulb.CommandLevelDown:
		if b, ok := s.Brightness(); ok {
			if cmd == bulb.CommandLevelUp {
				s.SetBrightness(min(b+stepSize, 100))
			} else {
				s.SetBrightness(max(b-stepSize, 0))
			}
		}
	case bulb.CommandTemperatureUp, bulb.CommandTemperatureDown:
		if k, ok := s.Kelvin(); ok {
			if cmd == bulb.CommandTemperatureUp {
				s.SetKelvin(min(k+stepSize, 100))
			} else {
				s.SetKelvin(max(k-stepSize, 0))
			}
		}
	case bulb.CommandNextMode, bulb.CommandPreviousMode:
		if m, ok := s.Mode(); ok {
			if cmd == bulb.CommandNextMode {
				s.SetMode((m + 1) % numModes)
			} else {
				s.SetMode((m + numModes - 1) % numModes)
			}
			s.SetBulbMode(bulb.ModeScene)
		}
	}
}
