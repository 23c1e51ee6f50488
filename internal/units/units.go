// Package units converts between the MiLight protocol's value domains and the
// units used by home automation payloads.
//
// Brightness travels on the air as 0-100 and is reported as 0-255. Hue travels
// as 0-255 and is reported in degrees. White temperature travels as a 0-100
// "white value" that maps linearly onto 153-370 mireds.
package units

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Linear mireds range of the white channel, coolest to warmest.
const (
	MinMireds = 153
	MaxMireds = 370

	miredsRange = MaxMireds - MinMireds
)

// Rescale maps v from the range [0, oldMax] onto [0, newMax], rounding to the
// nearest integer.
func Rescale(v, newMax, oldMax int) int {
	if oldMax == 0 {
		return 0
	}
	return int(math.Round(float64(v) * float64(newMax) / float64(oldMax)))
}

// Constrain clamps v into [lo, hi].
func Constrain(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// MiredsToWhiteVal converts a colour temperature in mireds to the protocol's
// 0-100 white value. 153 mireds maps to 100 and 370 mireds maps to 0.
// Values outside the supported range are clamped first.
func MiredsToWhiteVal(mireds int) int {
	mireds = Constrain(mireds, MinMireds, MaxMireds)
	val := float64(miredsRange - (mireds - MinMireds))
	return int(math.Round(val / miredsRange * 100))
}

// WhiteValToMireds is the inverse of MiredsToWhiteVal.
func WhiteValToMireds(value int) int {
	value = Constrain(value, 0, 100)
	val := float64(100-value) / 100
	return int(math.Round(miredsRange*val + MinMireds))
}

// KelvinToMireds converts kelvin to mireds.
func KelvinToMireds(kelvin float64) float64 {
	return 1e6 / kelvin
}

// MiredsToKelvin converts mireds to kelvin.
func MiredsToKelvin(mireds float64) float64 {
	return 1e6 / mireds
}

// KelvinToWhiteVal converts kelvin to the protocol's 0-100 white value.
func KelvinToWhiteVal(kelvin float64) int {
	return MiredsToWhiteVal(int(math.Round(KelvinToMireds(kelvin))))
}

// WhiteValToKelvin converts a white value to kelvin, rounded to the nearest 10K.
func WhiteValToKelvin(value int) int {
	k := MiredsToKelvin(float64(WhiteValToMireds(value)))
	return int(math.Round(k/10) * 10)
}

// RGBToHSV converts 8-bit RGB to hue, saturation and value, each in [0, 1].
func RGBToHSV(r, g, b uint8) (h, s, v float64) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	deg, s, v := c.Hsv()
	return deg / 360, s, v
}

// HSVToRGB converts hue, saturation and value in [0, 1] to 8-bit RGB.
func HSVToRGB(h, s, v float64) (r, g, b uint8) {
	return colorful.Hsv(math.Mod(h, 1)*360, s, v).RGB255()
}
