package packet

import (
	"fmt"
	"sort"

	"github.com/nerrad567/milight-hub/internal/radio"
)

// Codec builds frames for one bulb family.
//
// Every frame-producing method returns one finished frame and advances the
// sequence number. Prepare must be called before the first frame.
type Codec interface {
	// Family returns the bulb family name the codec speaks.
	Family() string

	// Prepare binds the codec to a remote identity and group. The sequence
	// number carries over between targets.
	Prepare(deviceID uint16, groupID uint8)

	// SetHeld marks subsequent frames as a held button.
	SetHeld(held bool)

	Status(on bool) Frame
	Hue(degrees int) Frame
	ColorRaw(value uint8) Frame
	Saturation(value int) Frame
	Brightness(value int) Frame
	Temperature(value int) Frame
	Mode(mode int) Frame
	NextMode() Frame
	PreviousMode() Frame
	ModeSpeedUp() Frame
	ModeSpeedDown() Frame
	IncreaseBrightness() Frame
	DecreaseBrightness() Frame
	IncreaseTemperature() Frame
	DecreaseTemperature() Frame
	ColorWhite() Frame
	NightMode() Frame
	Pair() Frame
	Unpair() Frame

	// Command sends a raw button and argument pair.
	Command(button, argument uint8) Frame

	// Parse decodes a frame received over the air.
	Parse(frame []byte) (Operation, error)
}

// Factory creates a fresh codec.
type Factory func() Codec

var factories = map[string]Factory{
	radio.FamilyRGBCCT: func() Codec { return NewRgbCct() },
}

// New returns a fresh codec for family.
func New(family string) (Codec, error) {
	factory, ok := factories[family]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	return factory(), nil
}

// Families lists the families that have a codec, sorted.
func Families() []string {
	out := make([]string, 0, len(factories))
	for family := range factories {
		out = append(out, family)
	}
	sort.Strings(out)
	return out
}
