package radio

import "fmt"

// pipeAddressWidth is the nRF24 address width used for PL1167 emulation.
const pipeAddressWidth = 5

// readingPipe is the nRF24 data pipe frames are received on.
const readingPipe = 1

// channelOffset maps PL1167 channel numbers onto nRF24 RF channels.
const channelOffset = 2

// Transport frames PL1167 packets over an nRF24 Device.
//
// Every mutator recomputes the pipe address and pushes it to the device, so
// the address is never partially updated.
type Transport struct {
	dev Device

	crc             bool
	syncword0       uint16
	syncword3       uint16
	maxPacketLength int
	channel         uint8
	pipe            Address

	packet   []byte
	received bool
}

// NewTransport creates a transport over dev. Call Open before use.
func NewTransport(dev Device) *Transport {
	return &Transport{dev: dev, maxPacketLength: 8}
}

// Open puts the radio into a known state: auto-ack off, maximum power, 1Mbps
// and hardware CRC off.
//
// Returns:
//   - error: ErrHardware if the device does not respond
func (t *Transport) Open() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"begin", t.dev.Begin},
		{"auto ack", func() error { return t.dev.SetAutoAck(false) }},
		{"pa level", func() error { return t.dev.SetPALevel(PALevelMax) }},
		{"data rate", func() error { return t.dev.SetDataRate(DataRate1Mbps) }},
		{"disable crc", t.dev.DisableCRC},
		{"address width", func() error { return t.dev.SetAddressWidth(pipeAddressWidth) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrHardware, step.name, err)
		}
	}
	return t.recalc()
}

// recalc derives the pipe address and writes it and the channel to the device.
func (t *Transport) recalc() error {
	t.pipe = pipeAddress(t.syncword0, t.syncword3)

	if err := t.dev.OpenWritingPipe(t.pipe); err != nil {
		return fmt.Errorf("%w: writing pipe: %w", ErrHardware, err)
	}
	if err := t.dev.OpenReadingPipe(readingPipe, t.pipe); err != nil {
		return fmt.Errorf("%w: reading pipe: %w", ErrHardware, err)
	}
	if err := t.dev.SetChannel(channelOffset + t.channel); err != nil {
		return fmt.Errorf("%w: channel %d: %w", ErrHardware, t.channel, err)
	}
	return nil
}

// SetSyncwords sets the two syncwords the pipe address is derived from.
func (t *Transport) SetSyncwords(syncword0, syncword3 uint16) error {
	t.syncword0 = syncword0
	t.syncword3 = syncword3
	return t.recalc()
}

// SetCRC enables or disables the software CRC16.
func (t *Transport) SetCRC(enabled bool) error {
	t.crc = enabled
	return t.recalc()
}

// SetMaxPacketLength sets the largest packet, length prefix included, the
// transport sends or receives.
//
// Returns:
//   - error: ErrConfig if the packet plus CRC would not fit one radio payload
func (t *Transport) SetMaxPacketLength(n int) error {
	if n < 1 || n+2 > MaxPayload {
		return fmt.Errorf("%w: packet length %d does not fit a %d byte payload with CRC", ErrConfig, n, MaxPayload)
	}
	t.maxPacketLength = n
	return t.recalc()
}

// Pipe returns the current pipe address.
func (t *Transport) Pipe() Address {
	return t.pipe
}

// Channel returns the PL1167 channel last tuned to.
func (t *Transport) Channel() uint8 {
	return t.channel
}

func (t *Transport) tune(channel uint8) error {
	if channel == t.channel {
		return nil
	}
	t.channel = channel
	return t.recalc()
}

// Transmit sends one packet on channel. The radio is left in transmit mode;
// the next Receive resumes listening.
//
// Returns:
//   - error: ErrConfig if packet exceeds the max packet length,
//     ErrHardware on device failure
func (t *Transport) Transmit(channel uint8, packet []byte) error {
	if len(packet) > t.maxPacketLength {
		return fmt.Errorf("%w: packet of %d bytes exceeds max %d", ErrConfig, len(packet), t.maxPacketLength)
	}
	if err := t.tune(channel); err != nil {
		return err
	}
	if err := t.dev.StopListening(); err != nil {
		return fmt.Errorf("%w: stop listening: %w", ErrHardware, err)
	}
	if err := t.dev.Write(AirPayload(packet, t.crc)); err != nil {
		return fmt.Errorf("%w: write: %w", ErrHardware, err)
	}
	return nil
}

// Receive listens on channel and buffers any newly arrived packet. Packets
// failing the CRC are dropped silently.
//
// Returns:
//   - int: length of the buffered packet, 0 if none
//   - error: ErrHardware on device failure
func (t *Transport) Receive(channel uint8) (int, error) {
	if err := t.tune(channel); err != nil {
		return 0, err
	}
	if err := t.dev.StartListening(); err != nil {
		return 0, fmt.Errorf("%w: start listening: %w", ErrHardware, err)
	}

	ok, err := t.dev.Available()
	if err != nil {
		return 0, fmt.Errorf("%w: available: %w", ErrHardware, err)
	}
	if ok {
		raw, err := t.dev.Read(t.maxPacketLength + 2)
		if err != nil {
			return 0, fmt.Errorf("%w: read: %w", ErrHardware, err)
		}
		if packet, valid := DecodeAir(raw, t.crc); valid {
			t.packet = packet
			t.received = true
		}
	}

	if !t.received {
		return 0, nil
	}
	return len(t.packet), nil
}

// ReadFIFO returns the buffered packet and empties the buffer.
func (t *Transport) ReadFIFO() []byte {
	packet := t.packet
	t.packet = nil
	t.received = false
	return packet
}
