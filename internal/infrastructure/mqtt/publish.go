package mqtt

import (
	"encoding/json"
	"fmt"
)

// maxPayloadSize caps outbound payloads at 1MB.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic and waits for the broker to acknowledge it.
//
// Returns:
//   - error: ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected or ErrPublishFailed
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %s: payload of %d bytes exceeds %d", ErrPublishFailed, topic, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// PublishState publishes a group's projected state retained, so a client
// subscribing later immediately sees the last known state.
func (c *Client) PublishState(topic string, state map[string]any) error {
	return c.publishJSON(topic, state, true)
}

// PublishUpdate publishes a request decoded from a physical remote. Updates
// are events and are not retained.
func (c *Client) PublishUpdate(topic string, update any) error {
	return c.publishJSON(topic, update, false)
}

func (c *Client) publishJSON(topic string, v any, retained bool) error {
	payload, err := encodeJSON(v)
	if err != nil {
		return fmt.Errorf("%s: %w", topic, err)
	}
	return c.Publish(topic, payload, byte(c.cfg.QoS), retained)
}

func encodeJSON(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	return payload, nil
}
