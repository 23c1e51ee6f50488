package units

import (
	"math"
	"testing"
)

func TestRescale(t *testing.T) {
	tests := []struct {
		v, newMax, oldMax int
		want              int
	}{
		{0, 255, 100, 0},
		{100, 255, 100, 255},
		{50, 255, 100, 128},
		{255, 100, 255, 100},
		{127, 100, 255, 50},
		{360, 255, 360, 255},
		{180, 255, 360, 128},
		{5, 10, 0, 0},
	}

	for _, tt := range tests {
		if got := Rescale(tt.v, tt.newMax, tt.oldMax); got != tt.want {
			t.Errorf("Rescale(%d, %d, %d) = %d, want %d", tt.v, tt.newMax, tt.oldMax, got, tt.want)
		}
	}
}

func TestRescale_RoundTrip(t *testing.T) {
	for x := 0; x <= 100; x++ {
		got := Rescale(Rescale(x, 255, 100), 100, 255)
		if got != x {
			t.Errorf("Rescale round trip of %d = %d", x, got)
		}
	}
}

func TestMiredsToWhiteVal(t *testing.T) {
	tests := []struct {
		mireds int
		want   int
	}{
		{370, 0},
		{153, 100},
		{262, 50},
		{500, 0},
		{100, 100},
	}

	for _, tt := range tests {
		if got := MiredsToWhiteVal(tt.mireds); got != tt.want {
			t.Errorf("MiredsToWhiteVal(%d) = %d, want %d", tt.mireds, got, tt.want)
		}
	}
}

func TestWhiteValToMireds(t *testing.T) {
	tests := []struct {
		value int
		want  int
	}{
		{0, 370},
		{100, 153},
		{50, 262},
	}

	for _, tt := range tests {
		if got := WhiteValToMireds(tt.value); got != tt.want {
			t.Errorf("WhiteValToMireds(%d) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestWhiteVal_RoundTrip(t *testing.T) {
	for v := 0; v <= 100; v++ {
		got := MiredsToWhiteVal(WhiteValToMireds(v))
		if d := got - v; d < -1 || d > 1 {
			t.Errorf("MiredsToWhiteVal(WhiteValToMireds(%d)) = %d", v, got)
		}
	}
}

func TestKelvinConversions(t *testing.T) {
	if got := KelvinToMireds(2700); math.Abs(got-370.4) > 0.05 {
		t.Errorf("KelvinToMireds(2700) = %v", got)
	}
	if got := MiredsToKelvin(153.846); math.Abs(got-6500) > 1 {
		t.Errorf("MiredsToKelvin(153.846) = %v", got)
	}
	if got := KelvinToWhiteVal(2700); got != 0 {
		t.Errorf("KelvinToWhiteVal(2700) = %d, want 0", got)
	}
	if got := KelvinToWhiteVal(6500); got != 100 {
		t.Errorf("KelvinToWhiteVal(6500) = %d, want 100", got)
	}
	if got := WhiteValToKelvin(50); got != 3820 {
		t.Errorf("WhiteValToKelvin(50) = %d, want 3820", got)
	}
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		h, s, v float64
	}{
		{"white", 255, 255, 255, 0, 0, 1},
		{"red", 255, 0, 0, 0, 1, 1},
		{"green", 0, 255, 0, 1.0 / 3, 1, 1},
		{"mostly blue", 0, 10, 255, 0.66013071895, 1, 1},
		{"black", 0, 0, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := RGBToHSV(tt.r, tt.g, tt.b)
			if math.Abs(h-tt.h) > 1e-6 || math.Abs(s-tt.s) > 1e-6 || math.Abs(v-tt.v) > 1e-6 {
				t.Errorf("RGBToHSV(%d,%d,%d) = (%v,%v,%v), want (%v,%v,%v)",
					tt.r, tt.g, tt.b, h, s, v, tt.h, tt.s, tt.v)
			}
		})
	}
}

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		name    string
		h, s, v float64
		r, g, b uint8
	}{
		{"white", 0, 0, 1, 255, 255, 255},
		{"red", 0, 1, 1, 255, 0, 0},
		{"green", 1.0 / 3, 1, 1, 0, 255, 0},
		{"full turn is red", 1, 1, 1, 255, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := HSVToRGB(tt.h, tt.s, tt.v)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("HSVToRGB(%v,%v,%v) = (%d,%d,%d), want (%d,%d,%d)",
					tt.h, tt.s, tt.v, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestHSV_RoundTrip(t *testing.T) {
	colors := [][3]uint8{
		{255, 0, 0}, {0, 255, 0}, {0, 0, 255},
		{12, 200, 90}, {255, 128, 0}, {77, 77, 200}, {200, 200, 200},
	}

	for _, c := range colors {
		r, g, b := HSVToRGB(RGBToHSV(c[0], c[1], c[2]))
		if absDiff(r, c[0]) > 1 || absDiff(g, c[1]) > 1 || absDiff(b, c[2]) > 1 {
			t.Errorf("HSV round trip of %v = (%d,%d,%d)", c, r, g, b)
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
