package bulb

import (
	"errors"
	"testing"
)

func TestKey_String(t *testing.T) {
	k := Key{DeviceType: "rgb_cct", DeviceID: 0x2, GroupID: 1}
	if got := k.String(); got != "rgb_cct/0x0002/1" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeWhite, ModeColor, ModeScene, ModeNight} {
		got, ok := ParseMode(m.String())
		if !ok || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseMode("disco"); ok {
		t.Error("ParseMode(disco) should fail")
	}
	if Mode(42).String() != "unknown" {
		t.Errorf("Mode(42).String() = %q", Mode(42).String())
	}
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"state":"ON","color_temp":370,"bulb_mode":"white","color":{"r":255,"g":255,"b":255}}`))
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if req.State == nil || *req.State != "ON" {
		t.Errorf("State = %v", req.State)
	}
	if req.ColorTemp == nil || *req.ColorTemp != 370 {
		t.Errorf("ColorTemp = %v", req.ColorTemp)
	}
	if req.Color == nil || *req.Color != White {
		t.Errorf("Color = %v", req.Color)
	}
	if req.Hue != nil || req.Mode != nil {
		t.Error("absent keys should decode as nil")
	}
}

func TestDecodeRequest_Invalid(t *testing.T) {
	tests := []string{
		`not json`,
		`{"hue":"red"}`,
		`{"effect":{"name":"x"}}`,
		`{"color":{"r":300}}`,
	}

	for _, payload := range tests {
		if _, err := DecodeRequest([]byte(payload)); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("DecodeRequest(%s) error = %v, want ErrInvalidRequest", payload, err)
		}
	}
}

func TestEffect_StringOrNumber(t *testing.T) {
	tests := []struct {
		payload string
		want    Effect
		scene   int
	}{
		{`{"effect":"night_mode"}`, "night_mode", 0},
		{`{"effect":"4"}`, "4", 4},
		{`{"effect":7}`, "7", 7},
	}

	for _, tt := range tests {
		req, err := DecodeRequest([]byte(tt.payload))
		if err != nil {
			t.Fatalf("DecodeRequest(%s) error = %v", tt.payload, err)
		}
		if req.Effect == nil || *req.Effect != tt.want {
			t.Errorf("Effect = %v, want %q", req.Effect, tt.want)
			continue
		}
		if got := req.Effect.SceneIndex(); got != tt.scene {
			t.Errorf("SceneIndex() = %d, want %d", got, tt.scene)
		}
	}
}

func TestRequest_Power(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		wantOn bool
		wantOK bool
	}{
		{"absent", Request{}, false, false},
		{"state on upper", Request{State: String("ON")}, true, true},
		{"state true", Request{State: String("true")}, true, true},
		{"state off", Request{State: String("off")}, false, true},
		{"state garbage", Request{State: String("maybe")}, false, true},
		{"status wins", Request{State: String("on"), Status: String("OFF")}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			on, ok := tt.req.Power()
			if on != tt.wantOn || ok != tt.wantOK {
				t.Errorf("Power() = (%v, %v), want (%v, %v)", on, ok, tt.wantOn, tt.wantOK)
			}
		})
	}
}

func TestRequest_Commands(t *testing.T) {
	req := Request{Command: String("pair"), Commands: []string{"level_up", "white_mode"}}

	if !req.HasCommand(CommandWhiteMode) || !req.HasCommand(CommandPair) {
		t.Error("HasCommand should see both command and commands")
	}
	if req.HasCommand(CommandNightMode) {
		t.Error("HasCommand(night_mode) = true")
	}
	got := req.AllCommands()
	if len(got) != 3 || got[0] != "pair" || got[2] != "white_mode" {
		t.Errorf("AllCommands() = %v", got)
	}
}

func TestRGB_NearWhite(t *testing.T) {
	tests := []struct {
		c    RGB
		want bool
	}{
		{White, true},
		{RGB{217, 217, 217}, true},
		{RGB{216, 255, 255}, false},
		{RGB{255, 0, 0}, false},
	}
	for _, tt := range tests {
		if got := tt.c.NearWhite(); got != tt.want {
			t.Errorf("%+v.NearWhite() = %v, want %v", tt.c, got, tt.want)
		}
	}
}
