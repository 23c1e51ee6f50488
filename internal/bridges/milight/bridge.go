package milight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/milight-hub/internal/bulb"
	"github.com/nerrad567/milight-hub/internal/controller"
	"github.com/nerrad567/milight-hub/internal/infrastructure/config"
	"github.com/nerrad567/milight-hub/internal/infrastructure/mqtt"
)

// Bridge translates between MQTT topics and the radio controller.
// It handles:
//   - Receiving JSON commands on the command topic and queueing them
//   - Publishing group state and remote updates from controller reports
//   - Health reporting and graceful shutdown
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	mqtt   MQTTClient
	ctrl   Controller
	health *HealthReporter
	qos    byte

	commandPattern *mqtt.TopicPattern
	statePattern   *mqtt.TopicPattern // nil when state publishing is disabled
	updatePattern  *mqtt.TopicPattern // nil when update publishing is disabled
	subscription   string

	// Shutdown coordination
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// MQTTClient is the interface for MQTT operations. Satisfied by *mqtt.Client.
type MQTTClient interface {
	HealthPublisher
	PublishState(topic string, state map[string]any) error
	PublishUpdate(topic string, update any) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Controller is the part of the radio controller used by the bridge.
// Satisfied by *controller.Controller.
type Controller interface {
	StatsSource
	Submit(cmd controller.Command) error
	Reports() <-chan controller.Report
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// MQTT holds the QoS and topic patterns.
	MQTT config.MQTTConfig

	MQTTClient MQTTClient
	Controller Controller

	// SiteID names the bridge in health messages.
	SiteID  string
	Version string

	// HealthInterval is how often health is published. Default: 30 seconds.
	HealthInterval time.Duration

	// Logger is optional structured logger.
	Logger Logger
}

// NewBridge creates a new bridge instance. Call Start to begin operation.
//
// Returns:
//   - *Bridge: Ready to start
//   - error: ErrMissingDependency or ErrInvalidTopicPattern
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("%w: MQTT client is required", ErrMissingDependency)
	}
	if opts.Controller == nil {
		return nil, fmt.Errorf("%w: controller is required", ErrMissingDependency)
	}

	command, err := mqtt.ParsePattern(opts.MQTT.Topics.Command)
	if err != nil {
		return nil, fmt.Errorf("%w: command: %w", ErrInvalidTopicPattern, err)
	}
	statePattern, err := optionalPattern(opts.MQTT.Topics.State)
	if err != nil {
		return nil, fmt.Errorf("%w: state: %w", ErrInvalidTopicPattern, err)
	}
	updatePattern, err := optionalPattern(opts.MQTT.Topics.Update)
	if err != nil {
		return nil, fmt.Errorf("%w: update: %w", ErrInvalidTopicPattern, err)
	}

	b := &Bridge{
		mqtt:           opts.MQTTClient,
		ctrl:           opts.Controller,
		qos:            byte(opts.MQTT.QoS),
		commandPattern: command,
		statePattern:   statePattern,
		updatePattern:  updatePattern,
		subscription:   command.Subscription(),
		done:           make(chan struct{}),
		logger:         opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:  opts.SiteID,
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTTClient,
		Source:    opts.Controller,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}

	return b, nil
}

func optionalPattern(pattern string) (*mqtt.TopicPattern, error) {
	if pattern == "" {
		return nil, nil
	}
	return mqtt.ParsePattern(pattern)
}

// Health returns the bridge's health reporter.
func (b *Bridge) Health() *HealthReporter {
	return b.health
}

// Start subscribes to the command topic, begins forwarding controller
// reports and starts health reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	if err := b.mqtt.Subscribe(b.subscription, b.qos, b.handleCommand); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", b.subscription)

	b.wg.Add(1)
	go b.forwardReports(ctx)

	b.health.Start(ctx)

	b.logInfo("bridge started", "command_pattern", b.commandPattern.String())
	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)

		if b.mqtt.IsConnected() {
			if err := b.mqtt.Unsubscribe(b.subscription); err != nil {
				b.logError("failed to unsubscribe from commands", err)
			}
		}

		b.health.Stop()
		b.wg.Wait()

		b.logInfo("bridge stopped")
	})
}

// handleCommand decodes one command message and queues it on the controller.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	fields, err := b.commandPattern.Match(topic)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	req, err := bulb.DecodeRequest(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	cmd := controller.NewCommand(bulb.Key{
		DeviceType: fields.DeviceType,
		DeviceID:   fields.DeviceID,
		GroupID:    fields.GroupID,
	}, req)

	if err := b.ctrl.Submit(cmd); err != nil {
		return fmt.Errorf("submit %s: %w", cmd.Key, err)
	}

	b.logDebug("command queued", "command_id", cmd.ID, "key", cmd.Key.String())
	return nil
}

func (b *Bridge) forwardReports(ctx context.Context) {
	defer b.wg.Done()

	reports := b.ctrl.Reports()
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case r, ok := <-reports:
			if !ok {
				return
			}
			b.publishReport(r)
		}
	}
}

// publishReport publishes the group state retained and, for frames heard
// from a remote, the decoded request to the update topic.
func (b *Bridge) publishReport(r controller.Report) {
	fields := mqtt.TopicFields{
		DeviceType: r.Key.DeviceType,
		DeviceID:   r.Key.DeviceID,
		GroupID:    r.Key.GroupID,
	}

	if b.statePattern != nil && len(r.State) > 0 {
		topic := b.statePattern.Bind(fields)
		if err := b.mqtt.PublishState(topic, r.State); err != nil {
			b.logError("failed to publish state", err, "topic", topic)
		}
	}

	if b.updatePattern != nil && r.Update != nil {
		topic := b.updatePattern.Bind(fields)
		if err := b.mqtt.PublishUpdate(topic, r.Update); err != nil {
			b.logError("failed to publish update", err, "topic", topic)
		}
	}
}

func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}

func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

func (b *Bridge) logError(msg string, err error, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
	}
}
