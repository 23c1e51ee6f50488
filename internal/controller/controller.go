package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/nerrad567/milight-hub/internal/bulb"
	"github.com/nerrad567/milight-hub/internal/packet"
	"github.com/nerrad567/milight-hub/internal/radio"
	"github.com/nerrad567/milight-hub/internal/state"
)

// Controller defaults.
const (
	DefaultResendCount         = 10
	DefaultPacketRepeatMinimum = 3
	DefaultThrottleThreshold   = 200 * time.Millisecond
	DefaultPollInterval        = 500 * time.Millisecond
	DefaultQueueSize           = 64

	// maxFramesPerPoll bounds one receive drain so a chatty remote cannot
	// starve the command queue.
	maxFramesPerPoll = 16

	// flushTimeout bounds the final state flush on shutdown.
	flushTimeout = 5 * time.Second
)

// Logger is the logging interface used by the controller.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Metrics records radio traffic. Satisfied by *influxdb.Client.
type Metrics interface {
	WritePacketSent(deviceType string, deviceID uint16, groupID uint8, repeats int)
	WritePacketReceived(deviceType string, deviceID uint16, groupID uint8, duplicates int)
}

// Options configures a Controller.
type Options struct {
	// Device is the radio hardware. Required.
	Device radio.Device

	// Store holds bulb state. A store without persistence is created if nil.
	Store *state.Store

	// DeviceTypes are the bulb families opened by Begin. The first becomes
	// the current radio. Default: rgb_cct.
	DeviceTypes []string

	ResendCount         int
	PacketRepeatMinimum int
	ThrottleThreshold   time.Duration

	// ThrottleSensitivity scales how quickly the resend count adapts.
	// 0 keeps it at ResendCount.
	ThrottleSensitivity int

	PollInterval time.Duration

	// FlushInterval is how often dirty state is persisted. 0 persists only
	// on shutdown.
	FlushInterval time.Duration

	// QueueSize bounds both the command and report queues.
	QueueSize int

	// StateFields are the fields projected into reports. Default: all.
	StateFields []string

	Metrics Metrics
	Logger  Logger

	// Now is the clock used by the throttle. Default: time.Now.
	Now func() time.Time
}

// Stats are the controller counters. Safe to read from any goroutine.
type Stats struct {
	Commands       uint64
	FramesSent     uint64
	FramesReceived uint64
	Duplicates     uint64
	Groups         uint64
	ResendCount    int
}

type radioPair struct {
	family string
	radio  *radio.Radio
	codec  packet.Codec
}

// Controller owns the radio, the codecs and the state store.
type Controller struct {
	device  radio.Device
	store   *state.Store
	pairs   map[string]*radioPair
	current *radioPair

	// currentFamily mirrors current.family for readers outside the worker.
	currentFamily atomic.Pointer[string]

	deviceTypes  []string
	stateFields  []string
	pollInterval time.Duration
	flushEvery   time.Duration

	baseResend    int
	minResend     int
	currentResend int
	threshold     time.Duration
	sensitivity   int
	multiplier    int
	lastSend      time.Time
	now           func() time.Time

	commands chan Command
	reports  chan Report

	running atomic.Bool
	stopped atomic.Bool

	statCommands   atomic.Uint64
	statSent       atomic.Uint64
	statReceived   atomic.Uint64
	statDuplicates atomic.Uint64
	statGroups     atomic.Uint64
	statResend     atomic.Int64

	metrics Metrics
	logger  Logger
}

// New creates a controller. Call Begin before Run or Dispatch.
func New(opts Options) (*Controller, error) {
	if opts.Device == nil {
		return nil, fmt.Errorf("radio device is required")
	}

	c := &Controller{
		device:       opts.Device,
		store:        opts.Store,
		pairs:        make(map[string]*radioPair),
		deviceTypes:  opts.DeviceTypes,
		stateFields:  opts.StateFields,
		pollInterval: opts.PollInterval,
		flushEvery:   opts.FlushInterval,
		minResend:    opts.PacketRepeatMinimum,
		threshold:    opts.ThrottleThreshold,
		sensitivity:  opts.ThrottleSensitivity,
		now:          opts.Now,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}

	if c.store == nil {
		c.store = state.NewStore(nil)
	}
	if len(c.deviceTypes) == 0 {
		c.deviceTypes = []string{radio.FamilyRGBCCT}
	}
	if len(c.stateFields) == 0 {
		c.stateFields = state.Fields
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.minResend <= 0 {
		c.minResend = DefaultPacketRepeatMinimum
	}
	if c.threshold <= 0 {
		c.threshold = DefaultThrottleThreshold
	}
	if c.now == nil {
		c.now = time.Now
	}

	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	c.commands = make(chan Command, queueSize)
	c.reports = make(chan Report, queueSize)

	resend := opts.ResendCount
	if resend <= 0 {
		resend = DefaultResendCount
	}
	c.SetResendCount(resend)

	return c, nil
}

// Begin opens a radio for every configured device type and selects the
// first as current.
func (c *Controller) Begin() error {
	for _, family := range c.deviceTypes {
		if _, err := c.pairFor(family); err != nil {
			return err
		}
	}
	return c.SetCurrentRadio(c.deviceTypes[0])
}

// pairFor returns the radio and codec for family, opening them on first use.
func (c *Controller) pairFor(family string) (*radioPair, error) {
	if p, ok := c.pairs[family]; ok {
		return p, nil
	}

	cfg, ok := radio.Lookup(family)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDeviceType, family)
	}
	codec, err := packet.New(family)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownDeviceType, err)
	}

	r := radio.NewRadio(radio.NewTransport(c.device), cfg)
	if err := r.Begin(); err != nil {
		return nil, fmt.Errorf("opening %s radio: %w", family, err)
	}

	p := &radioPair{family: family, radio: r, codec: codec}
	c.pairs[family] = p
	return p, nil
}

// SetCurrentRadio switches the hardware to family. The switch, including
// the hardware reconfiguration, completes before it returns.
func (c *Controller) SetCurrentRadio(family string) error {
	_, err := c.selectRadio(family)
	return err
}

// CurrentRadio returns the family the hardware is configured for. Safe to
// call from any goroutine.
func (c *Controller) CurrentRadio() string {
	if f := c.currentFamily.Load(); f != nil {
		return *f
	}
	return ""
}

func (c *Controller) selectRadio(family string) (*radioPair, error) {
	p, err := c.pairFor(family)
	if err != nil {
		return nil, err
	}
	if c.current == p {
		return p, nil
	}

	c.logInfo("setting radio", "device_type", family)
	if err := p.radio.Configure(); err != nil {
		return nil, fmt.Errorf("configuring %s radio: %w", family, err)
	}
	c.current = p
	c.currentFamily.Store(&p.family)
	return p, nil
}

// SetResendCount sets the base resend count and resets the adaptive count
// to it.
func (c *Controller) SetResendCount(n int) {
	c.baseResend = max(n, 1)
	c.currentResend = c.baseResend
	c.minResend = min(c.minResend, c.baseResend)
	c.multiplier = int(math.Ceil(float64(c.sensitivity) / 1000 * float64(c.baseResend)))
	c.statResend.Store(int64(c.currentResend))
}

// ResendCount returns the current adaptive resend count.
func (c *Controller) ResendCount() int {
	return c.currentResend
}

// updateResendCount applies the throttle: sends closer together than the
// threshold shrink the count toward the minimum, sends further apart grow
// it back toward the base.
func (c *Controller) updateResendCount() {
	now := c.now()
	elapsed := now.Sub(c.lastSend)
	delta := (elapsed - c.threshold).Milliseconds() * int64(c.multiplier)

	next := int64(c.currentResend) + delta
	next = max(int64(c.minResend), min(int64(c.baseResend), next))
	c.currentResend = int(next)
	c.lastSend = now
	c.statResend.Store(next)
}

// Submit queues a command for the worker. It never blocks.
func (c *Controller) Submit(cmd Command) error {
	if c.stopped.Load() {
		return ErrNotRunning
	}
	select {
	case c.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Reports returns the channel state reports are published on.
func (c *Controller) Reports() <-chan Report {
	return c.reports
}

// Store returns the state store. Only the worker may use it while Run is
// active.
func (c *Controller) Store() *state.Store {
	return c.store
}

// Stats returns a snapshot of the counters.
func (c *Controller) Stats() Stats {
	return Stats{
		Commands:       c.statCommands.Load(),
		FramesSent:     c.statSent.Load(),
		FramesReceived: c.statReceived.Load(),
		Duplicates:     c.statDuplicates.Load(),
		Groups:         c.statGroups.Load(),
		ResendCount:    int(c.statResend.Load()),
	}
}

// Run is the worker loop. Each iteration handles at most one command, drains
// frames heard from remotes and persists state when due. Run returns nil
// after ctx is cancelled; the command in flight always completes first.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.stopped.Store(true)

	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()
	lastFlush := c.now()

	c.logInfo("controller started",
		"device_types", c.deviceTypes,
		"resend_count", c.baseResend)

	for {
		if ctx.Err() != nil {
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
			c.flush(flushCtx)
			cancel()
			c.logInfo("controller stopped")
			return nil
		}

		select {
		case cmd := <-c.commands:
			c.handle(cmd)
		case <-timer.C:
		case <-ctx.Done():
			continue
		}

		c.processRadio()

		if c.flushEvery > 0 && c.now().Sub(lastFlush) >= c.flushEvery {
			c.flush(ctx)
			lastFlush = c.now()
		}
		timer.Reset(c.pollInterval)
	}
}

func (c *Controller) handle(cmd Command) {
	err := c.Dispatch(cmd)
	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownDeviceType), errors.Is(err, ErrMalformedCommand):
		c.logWarn("dropping command", "command_id", cmd.ID, "key", cmd.Key.String(), "error", err)
	default:
		c.logError("command failed", "command_id", cmd.ID, "key", cmd.Key.String(), "error", err)
	}
}

// Dispatch sends the frames for one command and folds it into the state
// store. State is patched even when transmission fails.
func (c *Controller) Dispatch(cmd Command) error {
	if cmd.Key.DeviceType == "" {
		return fmt.Errorf("%w: device type is required", ErrMalformedCommand)
	}
	req := cmd.Request
	if (req.ButtonID == nil) != (req.Argument == nil) {
		return fmt.Errorf("%w: button_id and argument must be sent together", ErrMalformedCommand)
	}
	if req.ButtonID != nil && !fitsByte(*req.ButtonID) {
		return fmt.Errorf("%w: button_id %d out of range 0-255", ErrMalformedCommand, *req.ButtonID)
	}
	if req.Argument != nil && !fitsByte(*req.Argument) {
		return fmt.Errorf("%w: argument %d out of range 0-255", ErrMalformedCommand, *req.Argument)
	}

	p, err := c.selectRadio(cmd.Key.DeviceType)
	if err != nil {
		return err
	}
	c.statCommands.Add(1)

	for _, name := range req.AllCommands() {
		if !KnownCommand(name) {
			c.logWarn("ignoring unknown command", "command_id", cmd.ID, "command", name)
		}
	}

	p.codec.Prepare(cmd.Key.DeviceID, cmd.Key.GroupID)
	frames := BuildFrames(p.codec, req)

	var sendErr error
	for _, f := range frames {
		if err := c.send(p, cmd.Key, f); err != nil {
			sendErr = fmt.Errorf("sending %s: %w", f, err)
			break
		}
	}

	st := c.group(cmd.Key)
	st.Patch(req)
	c.emit(st, Report{Key: cmd.Key, Source: SourceCommand, CommandID: cmd.ID})

	c.logDebug("dispatched command",
		"command_id", cmd.ID,
		"key", cmd.Key.String(),
		"frames", len(frames))
	return sendErr
}

// send transmits one frame currentResend times across all hop channels.
func (c *Controller) send(p *radioPair, key bulb.Key, f packet.Frame) error {
	c.updateResendCount()
	repeats := c.currentResend

	c.logDebug("sending packet", "packet", f.String(), "repeats", repeats)

	data := f.Bytes()
	if err := p.radio.TransmitWithHop(data); err != nil {
		return err
	}
	for i := 1; i < repeats; i++ {
		if err := p.radio.Resend(); err != nil {
			return err
		}
	}

	c.statSent.Add(1)
	if c.metrics != nil {
		c.metrics.WritePacketSent(p.family, key.DeviceID, key.GroupID, repeats)
	}
	return nil
}

// processRadio drains frames heard on the current radio and applies them to
// the state store.
func (c *Controller) processRadio() {
	p := c.current
	if p == nil {
		return
	}

	for range maxFramesPerPoll {
		dupsBefore := p.radio.Duplicates()
		ok, err := p.radio.Available()
		if dups := p.radio.Duplicates() - dupsBefore; dups > 0 {
			c.statDuplicates.Add(uint64(dups))
		}
		if err != nil {
			c.logError("radio receive failed", "device_type", p.family, "error", err)
			return
		}
		if !ok {
			if p.radio.Duplicates() > dupsBefore {
				continue
			}
			return
		}

		frame, err := p.radio.Read()
		if err != nil {
			return
		}
		op, err := p.codec.Parse(frame)
		if err != nil {
			c.logDebug("dropping unparseable frame", "device_type", p.family, "frame", fmt.Sprintf("%x", frame), "error", err)
			continue
		}
		c.statReceived.Add(1)

		key := op.Key(p.family)
		req := op.Request()
		c.logDebug("received packet",
			"key", key.String(),
			"operation", op.Kind.String(),
			"value", op.Value,
			"sequence", op.Sequence)

		if c.metrics != nil {
			c.metrics.WritePacketReceived(p.family, key.DeviceID, key.GroupID, p.radio.Duplicates())
		}

		st := c.group(key)
		st.Patch(req)
		c.emit(st, Report{Key: key, Source: SourceRadio, Update: &req})
	}
}

func (c *Controller) group(key bulb.Key) *state.GroupState {
	st := c.store.Get(key)
	c.statGroups.Store(uint64(c.store.Len()))
	return st
}

// emit queues a report. State is projected only when the group changed since
// its last report. Frames heard from a remote are always reported with their
// decoded request, even when they leave the state untouched. A full report
// queue drops the report; the group stays dirty and is reported with its
// next change.
func (c *Controller) emit(st *state.GroupState, r Report) {
	dirty := st.MQTTDirty()
	if !dirty && r.Update == nil {
		return
	}
	if dirty {
		r.State = st.Project(c.stateFields)
	}
	select {
	case c.reports <- r:
		if dirty {
			st.ClearMQTTDirty()
		}
	default:
		c.logWarn("report queue full, dropping report", "key", r.Key.String())
	}
}

func (c *Controller) flush(ctx context.Context) {
	n, err := c.store.Flush(ctx)
	if err != nil {
		c.logError("persisting bulb state failed", "error", err)
	}
	if n > 0 {
		c.logDebug("persisted bulb state", "groups", n)
	}
}

func (c *Controller) logDebug(msg string, keysAndValues ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, keysAndValues...)
	}
}

func (c *Controller) logInfo(msg string, keysAndValues ...any) {
	if c.logger != nil {
		c.logger.Info(msg, keysAndValues...)
	}
}

func (c *Controller) logWarn(msg string, keysAndValues ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, keysAndValues...)
	}
}

func (c *Controller) logError(msg string, keysAndValues ...any) {
	if c.logger != nil {
		c.logger.Error(msg, keysAndValues...)
	}
}

func fitsByte(v int) bool {
	return v >= 0 && v <= 0xFF
}
