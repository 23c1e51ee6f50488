package mqtt

import (
	"errors"
	"testing"
)

func TestParsePattern_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"empty", ""},
		{"single-level wildcard", "milight/+/:device_id"},
		{"multi-level wildcard", "milight/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePattern(tt.pattern)
			if !errors.Is(err, ErrInvalidPattern) {
				t.Errorf("ParsePattern(%q) error = %v, want ErrInvalidPattern", tt.pattern, err)
			}
		})
	}
}

func TestTopicPattern_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		topic   string
		want    TopicFields
		wantErr bool
	}{
		{
			name:    "hex device id",
			pattern: "root/something/:device_id/:group_id/:device_type",
			topic:   "root/something/0x01/1/rgbcct",
			want:    TopicFields{DeviceID: 0x01, GroupID: 1, DeviceType: "rgbcct"},
		},
		{
			name:    "decimal device id",
			pattern: "root/something/:device_id/:group_id/:device_type",
			topic:   "root/something/1330/3/rgt",
			want:    TopicFields{DeviceID: 1330, GroupID: 3, DeviceType: "rgt"},
		},
		{
			name:    "default command layout",
			pattern: "milight/commands/:device_id/:device_type/:group_id",
			topic:   "milight/commands/0xABCD/rgb_cct/4",
			want:    TopicFields{DeviceID: 0xABCD, GroupID: 4, DeviceType: "rgb_cct"},
		},
		{
			name:    "explicit hex token without prefix",
			pattern: "lights/:hex_device_id/:group_id",
			topic:   "lights/1f2/2",
			want:    TopicFields{DeviceID: 0x1F2, GroupID: 2},
		},
		{
			name:    "explicit decimal token",
			pattern: "lights/:dec_device_id/:group_id",
			topic:   "lights/498/0",
			want:    TopicFields{DeviceID: 498, GroupID: 0},
		},
		{
			name:    "token embedded in level",
			pattern: "lights/bulb-:device_id/:group_id",
			topic:   "lights/bulb-0x10/1",
			want:    TopicFields{DeviceID: 0x10, GroupID: 1},
		},
		{
			name:    "leading zeros are decimal",
			pattern: "milight/:device_id/:group_id",
			topic:   "milight/010/08",
			want:    TopicFields{DeviceID: 10, GroupID: 8},
		},
		{
			name:    "uppercase hex prefix",
			pattern: "milight/:device_id/:group_id",
			topic:   "milight/0XAB/0x2",
			want:    TopicFields{DeviceID: 0xAB, GroupID: 2},
		},
		{
			name:    "bare hex prefix",
			pattern: "milight/:device_id/:group_id",
			topic:   "milight/0x/1",
			wantErr: true,
		},
		{
			name:    "literal prefix differs",
			pattern: "milight/commands/:device_id/:device_type/:group_id",
			topic:   "other/commands/0x1/rgb_cct/1",
			wantErr: true,
		},
		{
			name:    "extra level",
			pattern: "milight/commands/:device_id/:device_type/:group_id",
			topic:   "milight/commands/0x1/rgb_cct/1/extra",
			wantErr: true,
		},
		{
			name:    "device id out of range",
			pattern: "milight/:device_id/:group_id",
			topic:   "milight/0x10000/1",
			wantErr: true,
		},
		{
			name:    "group id not a number",
			pattern: "milight/:device_id/:group_id",
			topic:   "milight/0x1/all",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			if err != nil {
				t.Fatalf("ParsePattern() error = %v", err)
			}
			got, err := p.Match(tt.topic)
			if tt.wantErr {
				if !errors.Is(err, ErrTopicMismatch) {
					t.Errorf("Match(%q) error = %v, want ErrTopicMismatch", tt.topic, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Match(%q) error = %v", tt.topic, err)
			}
			if got != tt.want {
				t.Errorf("Match(%q) = %+v, want %+v", tt.topic, got, tt.want)
			}
		})
	}
}

func TestTopicPattern_Bind(t *testing.T) {
	fields := TopicFields{DeviceType: "rgb_cct", DeviceID: 0x1F2, GroupID: 3}

	tests := []struct {
		pattern string
		want    string
	}{
		{"milight/states/:device_id/:device_type/:group_id", "milight/states/0x1f2/rgb_cct/3"},
		{"milight/:hex_device_id/:group_id", "milight/0x1f2/3"},
		{"milight/:dec_device_id/:group_id", "milight/498/3"},
		{"milight/static", "milight/static"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			if err != nil {
				t.Fatalf("ParsePattern() error = %v", err)
			}
			if got := p.Bind(fields); got != tt.want {
				t.Errorf("Bind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTopicPattern_BindMatchRoundTrip(t *testing.T) {
	p, err := ParsePattern("milight/commands/:device_id/:device_type/:group_id")
	if err != nil {
		t.Fatalf("ParsePattern() error = %v", err)
	}
	in := TopicFields{DeviceType: "rgb_cct", DeviceID: 0xBEEF, GroupID: 8}

	out, err := p.Match(p.Bind(in))
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestTopicPattern_Subscription(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"milight/commands/:device_id/:device_type/:group_id", "milight/commands/+/+/+"},
		{"lights/bulb-:device_id/:group_id/set", "lights/+/+/set"},
		{"milight/fixed", "milight/fixed"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			if err != nil {
				t.Fatalf("ParsePattern() error = %v", err)
			}
			if got := p.Subscription(); got != tt.want {
				t.Errorf("Subscription() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	if got := (Topics{}).BridgeHealth("home"); got != "milight/system/bridge/home/health" {
		t.Errorf("BridgeHealth() = %q", got)
	}
}
