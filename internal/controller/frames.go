package controller

import (
	"math"

	"github.com/nerrad567/milight-hub/internal/bulb"
	"github.com/nerrad567/milight-hub/internal/packet"
	"github.com/nerrad567/milight-hub/internal/units"
)

// pairRepeats is how many pair or unpair frames are sent per request.
const pairRepeats = 5

var commandFrames = map[string]func(c packet.Codec) []packet.Frame{
	bulb.CommandUnpair:          func(c packet.Codec) []packet.Frame { return repeatFrame(c.Unpair, pairRepeats) },
	bulb.CommandPair:            func(c packet.Codec) []packet.Frame { return repeatFrame(c.Pair, pairRepeats) },
	bulb.CommandSetWhite:        func(c packet.Codec) []packet.Frame { return []packet.Frame{c.ColorWhite()} },
	bulb.CommandWhiteMode:       func(c packet.Codec) []packet.Frame { return []packet.Frame{c.ColorWhite()} },
	bulb.CommandNightMode:       func(c packet.Codec) []packet.Frame { return []packet.Frame{c.NightMode()} },
	bulb.CommandLevelUp:         func(c packet.Codec) []packet.Frame { return []packet.Frame{c.IncreaseBrightness()} },
	bulb.CommandLevelDown:       func(c packet.Codec) []packet.Frame { return []packet.Frame{c.DecreaseBrightness()} },
	bulb.CommandTemperatureUp:   func(c packet.Codec) []packet.Frame { return []packet.Frame{c.IncreaseTemperature()} },
	bulb.CommandTemperatureDown: func(c packet.Codec) []packet.Frame { return []packet.Frame{c.DecreaseTemperature()} },
	bulb.CommandNextMode:        func(c packet.Codec) []packet.Frame { return []packet.Frame{c.NextMode()} },
	bulb.CommandPreviousMode:    func(c packet.Codec) []packet.Frame { return []packet.Frame{c.PreviousMode()} },
	bulb.CommandModeSpeedDown:   func(c packet.Codec) []packet.Frame { return []packet.Frame{c.ModeSpeedDown()} },
	bulb.CommandModeSpeedUp:     func(c packet.Codec) []packet.Frame { return []packet.Frame{c.ModeSpeedUp()} },
}

func repeatFrame(gen func() packet.Frame, n int) []packet.Frame {
	frames := make([]packet.Frame, 0, n)
	for range n {
		frames = append(frames, gen())
	}
	return frames
}

// KnownCommand reports whether cmd is a recognised "command" value.
func KnownCommand(cmd string) bool {
	_, ok := commandFrames[cmd]
	return ok
}

// BuildFrames converts a request into frames for a prepared codec, in
// dispatch order. Unknown command names produce no frames.
func BuildFrames(codec packet.Codec, req bulb.Request) []packet.Frame {
	var frames []packet.Frame
	add := func(f ...packet.Frame) { frames = append(frames, f...) }

	on, hasPower := req.Power()
	if hasPower && on {
		add(codec.Status(true))
	}

	for _, cmd := range req.AllCommands() {
		if gen, ok := commandFrames[cmd]; ok {
			add(gen(codec)...)
		}
	}

	if req.Effect != nil {
		switch string(*req.Effect) {
		case bulb.EffectNightMode:
			add(codec.NightMode())
		case bulb.EffectWhite, bulb.EffectWhiteMode:
			add(codec.ColorWhite())
		default:
			add(codec.Mode(req.Effect.SceneIndex()))
		}
	}

	if req.Hue != nil {
		add(codec.Hue(*req.Hue))
	}
	if req.Saturation != nil {
		add(codec.Saturation(*req.Saturation))
	}

	if req.Color != nil {
		if req.Color.NearWhite() {
			add(codec.ColorWhite())
		} else {
			h, s, _ := units.RGBToHSV(req.Color.R, req.Color.G, req.Color.B)
			add(codec.Hue(int(math.Round(h*360))), codec.Saturation(int(math.Round(s*100))))
		}
	}

	if req.Level != nil {
		add(codec.Brightness(*req.Level))
	}
	if req.Brightness != nil {
		add(codec.Brightness(units.Rescale(units.Constrain(*req.Brightness, 0, 255), 100, 255)))
	}

	if req.Temperature != nil {
		add(codec.Temperature(*req.Temperature))
	}
	if req.ColorTemp != nil {
		add(codec.Temperature(units.MiredsToWhiteVal(*req.ColorTemp)))
	}

	if req.Mode != nil {
		add(codec.Mode(*req.Mode))
	}

	if req.ButtonID != nil && req.Argument != nil {
		add(codec.Command(uint8(*req.ButtonID), uint8(*req.Argument)))
	}

	if hasPower && !on {
		add(codec.Status(false))
	}
	return frames
}
