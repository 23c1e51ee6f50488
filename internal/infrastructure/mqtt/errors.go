package mqtt

import "errors"

// Sentinel errors returned by Client and TopicPattern. Callers match them
// with errors.Is; the wrapped message names the topic involved.
var (
	// ErrNotConnected means the broker connection is down. Paho keeps
	// reconnecting in the background.
	ErrNotConnected = errors.New("mqtt: not connected to broker")

	// ErrConnectionFailed means Connect could not reach the broker.
	ErrConnectionFailed = errors.New("mqtt: broker connection failed")

	ErrPublishFailed     = errors.New("mqtt: publish failed")
	ErrSubscribeFailed   = errors.New("mqtt: subscribe failed")
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrEncodeFailed means a state or update could not be encoded as JSON.
	ErrEncodeFailed = errors.New("mqtt: cannot encode payload")

	ErrInvalidQoS   = errors.New("mqtt: QoS must be 0, 1 or 2")
	ErrInvalidTopic = errors.New("mqtt: empty topic")

	// ErrInvalidPattern means a configured topic pattern is empty or uses
	// MQTT wildcards.
	ErrInvalidPattern = errors.New("mqtt: invalid topic pattern")

	// ErrTopicMismatch means a received topic does not fit the command
	// pattern or carries an out of range id.
	ErrTopicMismatch = errors.New("mqtt: topic does not match pattern")
)
