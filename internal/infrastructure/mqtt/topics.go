package mqtt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Topic tokens recognised in configured topic patterns.
const (
	TokenDeviceID    = ":device_id"
	TokenHexDeviceID = ":hex_device_id"
	TokenDecDeviceID = ":dec_device_id"
	TokenGroupID     = ":group_id"
	TokenDeviceType  = ":device_type"
)

// Fixed topic prefix for hub-level topics.
const prefixSystem = "milight/system"

// tokenPattern matches any topic token. Longer alternatives come first so
// ":hex_device_id" is never read as a literal "hex" followed by ":device_id".
var tokenPattern = regexp.MustCompile(`:(hex_device_id|dec_device_id|device_id|group_id|device_type)`)

// TopicFields identifies one bulb group addressed by a topic.
type TopicFields struct {
	DeviceType string
	DeviceID   uint16
	GroupID    uint8
}

// TopicPattern is a compiled topic pattern such as
// "milight/commands/:device_id/:device_type/:group_id".
//
// Thread Safety: immutable after ParsePattern, safe for concurrent use.
type TopicPattern struct {
	raw    string
	re     *regexp.Regexp
	tokens []string
}

// ParsePattern compiles a topic pattern.
//
// Parameters:
//   - pattern: Topic containing zero or more of the Token* placeholders
//
// Returns:
//   - *TopicPattern: Compiled pattern
//   - error: ErrInvalidPattern if the pattern is empty or uses MQTT wildcards
func ParsePattern(pattern string) (*TopicPattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	if strings.ContainsAny(pattern, "+#") {
		return nil, fmt.Errorf("%w: %q contains MQTT wildcards", ErrInvalidPattern, pattern)
	}

	p := &TopicPattern{raw: pattern}
	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range tokenPattern.FindAllStringIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		b.WriteString("([^/]+)")
		p.tokens = append(p.tokens, pattern[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	p.re = re
	return p, nil
}

// String returns the pattern as configured.
func (p *TopicPattern) String() string {
	return p.raw
}

// Subscription returns the MQTT subscription filter for the pattern.
// Every topic level that holds a token becomes a single-level wildcard.
func (p *TopicPattern) Subscription() string {
	levels := strings.Split(p.raw, "/")
	for i, level := range levels {
		if tokenPattern.MatchString(level) {
			levels[i] = "+"
		}
	}
	return strings.Join(levels, "/")
}

// Match extracts the bulb group addressed by topic.
//
// :device_id accepts both "0x" prefixed hex and plain decimal; see ParseID.
// :hex_device_id is always hex and :dec_device_id always decimal.
// :group_id accepts the same forms as :device_id.
//
// Returns:
//   - TopicFields: Parsed fields; tokens absent from the pattern stay zero
//   - error: ErrTopicMismatch if the topic does not fit or a value is out of range
func (p *TopicPattern) Match(topic string) (TopicFields, error) {
	var fields TopicFields

	m := p.re.FindStringSubmatch(topic)
	if m == nil {
		return fields, fmt.Errorf("%w: %q against %q", ErrTopicMismatch, topic, p.raw)
	}

	for i, token := range p.tokens {
		value := m[i+1]
		switch token {
		case TokenDeviceID:
			id, err := ParseID(value, 16)
			if err != nil {
				return fields, fmt.Errorf("%w: device id %q: %w", ErrTopicMismatch, value, err)
			}
			fields.DeviceID = uint16(id)
		case TokenHexDeviceID:
			id, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(value), "0x"), 16, 16)
			if err != nil {
				return fields, fmt.Errorf("%w: device id %q: %w", ErrTopicMismatch, value, err)
			}
			fields.DeviceID = uint16(id)
		case TokenDecDeviceID:
			id, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return fields, fmt.Errorf("%w: device id %q: %w", ErrTopicMismatch, value, err)
			}
			fields.DeviceID = uint16(id)
		case TokenGroupID:
			group, err := ParseID(value, 8)
			if err != nil {
				return fields, fmt.Errorf("%w: group id %q: %w", ErrTopicMismatch, value, err)
			}
			fields.GroupID = uint8(group)
		case TokenDeviceType:
			fields.DeviceType = value
		}
	}
	return fields, nil
}

// ParseID reads a "0x" prefixed hex id or a plain decimal id that fits in
// bitSize bits. Leading zeros are decimal, so "010" is 10.
func ParseID(value string, bitSize int) (uint64, error) {
	if len(value) > 2 && (value[:2] == "0x" || value[:2] == "0X") {
		return strconv.ParseUint(value[2:], 16, bitSize)
	}
	return strconv.ParseUint(value, 10, bitSize)
}

// Bind substitutes fields into the pattern. Device ids are written as
// lowercase hex with a 0x prefix except for :dec_device_id.
func (p *TopicPattern) Bind(fields TopicFields) string {
	hexID := fmt.Sprintf("0x%x", fields.DeviceID)
	return tokenPattern.ReplaceAllStringFunc(p.raw, func(token string) string {
		switch token {
		case TokenDeviceID, TokenHexDeviceID:
			return hexID
		case TokenDecDeviceID:
			return strconv.FormatUint(uint64(fields.DeviceID), 10)
		case TokenGroupID:
			return strconv.FormatUint(uint64(fields.GroupID), 10)
		case TokenDeviceType:
			return fields.DeviceType
		}
		return token
	})
}

// Topics provides the fixed hub-level topics.
//
// Usage:
//
//	topic := mqtt.Topics{}.BridgeHealth(cfg.Site.ID)
type Topics struct{}

// BridgeHealth returns the health topic for one site's radio bridge.
func (Topics) BridgeHealth(siteID string) string {
	return prefixSystem + "/bridge/" + siteID + "/health"
}
