// Package loopback provides an in-memory radio.Device. It records every
// transmission and serves injected payloads, which makes it the radio for
// tests and for running the hub without hardware.
package loopback

import (
	"sync"

	"github.com/nerrad567/milight-hub/internal/radio"
)

// Transmission is one payload written to the air.
type Transmission struct {
	Channel uint8
	Pipe    radio.Address
	Payload []byte
}

// Logger receives a debug line per transmission when set.
type Logger interface {
	Debug(msg string, args ...any)
}

// Device is a radio.Device backed by memory. Safe for concurrent use so tests
// can inject from outside the worker goroutine.
type Device struct {
	mu sync.Mutex

	logger Logger

	begun     bool
	autoAck   bool
	paLevel   radio.PALevel
	dataRate  radio.DataRate
	crc       bool
	width     uint8
	writing   radio.Address
	reading   map[uint8]radio.Address
	channel   uint8
	listening bool

	inbox [][]byte
	sent  []Transmission
	err   error
}

var _ radio.Device = (*Device)(nil)

// New creates a loopback device in its power-on state.
func New() *Device {
	return &Device{autoAck: true, crc: true, reading: make(map[uint8]radio.Address)}
}

// SetLogger enables per-transmission debug logging.
func (d *Device) SetLogger(logger Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = logger
}

// FailWith makes every subsequent call return err. nil restores normal operation.
func (d *Device) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// Inject queues a raw on-air payload for the next Read.
func (d *Device) Inject(raw []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inbox = append(d.inbox, append([]byte(nil), raw...))
}

// InjectPacket queues a length-prefixed packet, encoding it as a remote
// would put it on the air.
func (d *Device) InjectPacket(packet []byte) {
	d.Inject(radio.AirPayload(packet, true))
}

// InjectFrame queues a frame as a remote would send it: length prefix,
// bit reversal and CRC.
func (d *Device) InjectFrame(frame []byte) {
	d.InjectPacket(append([]byte{byte(len(frame))}, frame...))
}

// Sent returns a copy of every transmission so far.
func (d *Device) Sent() []Transmission {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Transmission, len(d.sent))
	copy(out, d.sent)
	return out
}

// SentFrames decodes the transmissions back into frames, dropping the
// length prefix.
func (d *Device) SentFrames() [][]byte {
	var frames [][]byte
	for _, tx := range d.Sent() {
		packet, ok := radio.DecodeAir(tx.Payload, true)
		if !ok || len(packet) == 0 {
			continue
		}
		frames = append(frames, packet[1:])
	}
	return frames
}

// Reset forgets recorded transmissions and queued payloads.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = nil
	d.inbox = nil
}

// Channel returns the RF channel last tuned to.
func (d *Device) Channel() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channel
}

// Listening reports whether the device is in receive mode.
func (d *Device) Listening() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening
}

// WritingPipe returns the current transmit address.
func (d *Device) WritingPipe() radio.Address {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writing
}

// set runs fn under the lock unless a failure is armed.
func (d *Device) set(fn func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	fn()
	return nil
}

func (d *Device) Begin() error {
	return d.set(func() { d.begun = true })
}

func (d *Device) SetAutoAck(enabled bool) error {
	return d.set(func() { d.autoAck = enabled })
}

func (d *Device) SetPALevel(level radio.PALevel) error {
	return d.set(func() { d.paLevel = level })
}

func (d *Device) SetDataRate(rate radio.DataRate) error {
	return d.set(func() { d.dataRate = rate })
}

func (d *Device) DisableCRC() error {
	return d.set(func() { d.crc = false })
}

func (d *Device) SetAddressWidth(width uint8) error {
	return d.set(func() { d.width = width })
}

func (d *Device) OpenWritingPipe(addr radio.Address) error {
	return d.set(func() { d.writing = addr })
}

func (d *Device) OpenReadingPipe(pipe uint8, addr radio.Address) error {
	return d.set(func() { d.reading[pipe] = addr })
}

func (d *Device) SetChannel(channel uint8) error {
	return d.set(func() { d.channel = channel })
}

func (d *Device) StartListening() error {
	return d.set(func() { d.listening = true })
}

func (d *Device) StopListening() error {
	return d.set(func() { d.listening = false })
}

func (d *Device) Available() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	return len(d.inbox) > 0, nil
}

// Read pops the oldest injected payload, zero padded or truncated to n bytes.
func (d *Device) Read(n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	out := make([]byte, n)
	if len(d.inbox) == 0 {
		return out, nil
	}
	copy(out, d.inbox[0])
	d.inbox = d.inbox[1:]
	return out, nil
}

func (d *Device) Write(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	tx := Transmission{Channel: d.channel, Pipe: d.writing, Payload: append([]byte(nil), p...)}
	d.sent = append(d.sent, tx)
	if d.logger != nil {
		d.logger.Debug("loopback transmit", "channel", tx.Channel, "pipe", tx.Pipe.String(), "bytes", len(p))
	}
	return nil
}
