package radio

import "sort"

// Bulb family names, as used in topics and requests.
const (
	FamilyRGBW   = "rgbw"
	FamilyCCT    = "cct"
	FamilyRGBCCT = "rgb_cct"
	FamilyRGB    = "rgb"
)

// Config holds the fixed radio parameters of one bulb family.
type Config struct {
	Syncword0    uint16
	Syncword3    uint16
	PacketLength uint8
	Channels     [3]uint8
}

var configs = map[string]Config{
	FamilyRGBW:   {Syncword0: 0x147A, Syncword3: 0x258B, PacketLength: 7, Channels: [3]uint8{9, 40, 71}},
	FamilyCCT:    {Syncword0: 0x050A, Syncword3: 0x55AA, PacketLength: 7, Channels: [3]uint8{4, 39, 74}},
	FamilyRGBCCT: {Syncword0: 0x7236, Syncword3: 0x1809, PacketLength: 9, Channels: [3]uint8{8, 39, 70}},
	FamilyRGB:    {Syncword0: 0x9AAB, Syncword3: 0xBCCD, PacketLength: 6, Channels: [3]uint8{3, 38, 73}},
}

// Lookup returns the radio parameters for a bulb family.
func Lookup(family string) (Config, bool) {
	cfg, ok := configs[family]
	return cfg, ok
}

// Families returns every family with known radio parameters, sorted.
func Families() []string {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
