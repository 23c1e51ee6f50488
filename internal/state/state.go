package state

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/milight-hub/internal/bulb"
	"github.com/nerrad567/milight-hub/internal/units"
)

// GroupState is the canonical state of one bulb group. Unset fields are
// unknown, not zero.
//
// Brightness has one slot per base mode, so switching modes restores the
// brightness last used in that mode. Hue is held in the protocol's 0-255
// range and exposed in degrees.
type GroupState struct {
	power           *bool
	brightness      *int
	brightnessColor *int
	brightnessScene *int
	hue             *int
	saturation      *int
	mode            *int
	bulbMode        *bulb.Mode
	kelvin          *int
	nightMode       *bool

	dirty     bool
	mqttDirty bool
}

// New returns an empty state. A new state is dirty so that it is persisted
// on the next flush.
func New() *GroupState {
	return &GroupState{dirty: true}
}

func ptr[T any](v T) *T { return &v }

func (s *GroupState) markDirty() {
	s.dirty = true
	s.mqttDirty = true
}

// Dirty reports whether the state changed since it was last persisted.
func (s *GroupState) Dirty() bool { return s.dirty }

// MQTTDirty reports whether the state changed since it was last reported.
func (s *GroupState) MQTTDirty() bool { return s.mqttDirty }

// ClearDirty marks the state as persisted.
func (s *GroupState) ClearDirty() { s.dirty = false }

// ClearMQTTDirty marks the state as reported.
func (s *GroupState) ClearMQTTDirty() { s.mqttDirty = false }

func (s *GroupState) Power() (on bool, ok bool) {
	if s.power == nil {
		return false, false
	}
	return *s.power, true
}

func (s *GroupState) SetPower(on bool) {
	s.markDirty()
	s.power = ptr(on)
}

// brightnessSlot returns the slot for the current base mode. Night uses the
// slot of the mode underneath it.
func (s *GroupState) brightnessSlot() **int {
	if s.bulbMode == nil {
		return &s.brightness
	}
	switch *s.bulbMode {
	case bulb.ModeColor:
		return &s.brightnessColor
	case bulb.ModeScene:
		return &s.brightnessScene
	default:
		return &s.brightness
	}
}

// Brightness returns the 0-100 brightness of the current mode.
func (s *GroupState) Brightness() (int, bool) {
	slot := *s.brightnessSlot()
	if slot == nil {
		return 0, false
	}
	return *slot, true
}

func (s *GroupState) SetBrightness(value int) {
	slot := s.brightnessSlot()
	if *slot != nil && **slot == value {
		return
	}
	s.markDirty()
	*slot = ptr(value)
}

// Hue returns the hue in degrees.
func (s *GroupState) Hue() (int, bool) {
	if s.hue == nil {
		return 0, false
	}
	return units.Rescale(*s.hue, 360, 255), true
}

// SetHue stores a hue given in degrees, wrapped into 0-359 the same way the
// radio encodes it.
func (s *GroupState) SetHue(degrees int) {
	degrees = ((degrees % 360) + 360) % 360
	s.markDirty()
	s.hue = ptr(units.Rescale(degrees, 255, 360))
}

func (s *GroupState) Saturation() (int, bool) {
	if s.saturation == nil {
		return 0, false
	}
	return *s.saturation, true
}

func (s *GroupState) SetSaturation(value int) {
	s.markDirty()
	s.saturation = ptr(value)
}

// Mode returns the scene index.
func (s *GroupState) Mode() (int, bool) {
	if s.mode == nil {
		return 0, false
	}
	return *s.mode, true
}

func (s *GroupState) SetMode(mode int) {
	s.markDirty()
	s.mode = ptr(mode)
}

// Kelvin returns the white temperature on the protocol's 0-100 scale.
func (s *GroupState) Kelvin() (int, bool) {
	if s.kelvin == nil {
		return 0, false
	}
	return *s.kelvin, true
}

func (s *GroupState) SetKelvin(value int) {
	s.markDirty()
	s.kelvin = ptr(value)
}

// Mireds returns the white temperature in mireds.
func (s *GroupState) Mireds() (int, bool) {
	if s.kelvin == nil {
		return 0, false
	}
	return units.WhiteValToMireds(*s.kelvin), true
}

func (s *GroupState) SetMireds(mireds int) {
	s.markDirty()
	s.kelvin = ptr(units.MiredsToWhiteVal(mireds))
}

// BulbMode returns the reported mode: ModeNight while night mode is on,
// otherwise the base mode.
func (s *GroupState) BulbMode() (bulb.Mode, bool) {
	if s.nightMode != nil && *s.nightMode {
		return bulb.ModeNight, true
	}
	if s.bulbMode == nil {
		return 0, false
	}
	return *s.bulbMode, true
}

// SetBulbMode switches the base mode, or turns on the night overlay for
// ModeNight. Setting the current base mode is a no-op.
func (s *GroupState) SetBulbMode(mode bulb.Mode) {
	if s.bulbMode != nil && *s.bulbMode == mode {
		return
	}
	s.markDirty()

	if mode == bulb.ModeNight {
		s.nightMode = ptr(true)
		return
	}
	s.bulbMode = ptr(mode)
	s.nightMode = ptr(false)
}

func (s *GroupState) NightMode() bool {
	return s.nightMode != nil && *s.nightMode
}

func (s *GroupState) SetNightMode(on bool) {
	if s.nightMode != nil && *s.nightMode == on {
		return
	}
	s.markDirty()
	s.nightMode = ptr(on)
}

// snapshot is the persisted form of a GroupState.
type snapshot struct {
	State           *bool   `json:"state,omitempty"`
	Brightness      *int    `json:"brightness,omitempty"`
	BrightnessColor *int    `json:"brightness_color,omitempty"`
	BrightnessMode  *int    `json:"brightness_mode,omitempty"`
	Hue             *int    `json:"hue,omitempty"`
	Saturation      *int    `json:"saturation,omitempty"`
	Mode            *int    `json:"mode,omitempty"`
	BulbMode        *string `json:"bulb_mode,omitempty"`
	Kelvin          *int    `json:"kelvin,omitempty"`
	NightMode       *bool   `json:"night_mode,omitempty"`
	MQTTDirty       bool    `json:"mqtt_dirty,omitempty"`
}

// Dump serialises every field of the state to JSON.
func (s *GroupState) Dump() ([]byte, error) {
	snap := snapshot{
		State:           s.power,
		Brightness:      s.brightness,
		BrightnessColor: s.brightnessColor,
		BrightnessMode:  s.brightnessScene,
		Hue:             s.hue,
		Saturation:      s.saturation,
		Mode:            s.mode,
		Kelvin:          s.kelvin,
		NightMode:       s.nightMode,
		MQTTDirty:       s.mqttDirty,
	}
	if s.bulbMode != nil {
		snap.BulbMode = ptr(s.bulbMode.String())
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshalling state: %w", err)
	}
	return data, nil
}

// Load replaces the state with a snapshot produced by Dump. The loaded state
// is clean.
func (s *GroupState) Load(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("unmarshalling state: %w", err)
	}

	var mode *bulb.Mode
	if snap.BulbMode != nil {
		m, ok := bulb.ParseMode(*snap.BulbMode)
		if !ok || m == bulb.ModeNight {
			return fmt.Errorf("unmarshalling state: bad bulb_mode %q", *snap.BulbMode)
		}
		mode = &m
	}

	*s = GroupState{
		power:           snap.State,
		brightness:      snap.Brightness,
		brightnessColor: snap.BrightnessColor,
		brightnessScene: snap.BrightnessMode,
		hue:             snap.Hue,
		saturation:      snap.Saturation,
		mode:            snap.Mode,
		bulbMode:        mode,
		kelvin:          snap.Kelvin,
		nightMode:       snap.NightMode,
		mqttDirty:       snap.MQTTDirty,
	}
	return nil
}
