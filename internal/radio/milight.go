package radio

import "fmt"

// Radio sends and receives frames for one bulb family. It owns the family's
// syncwords, length prefix, hop channels and duplicate suppression.
type Radio struct {
	transport *Transport
	cfg       Config

	packet     []byte
	waiting    bool
	prevID     uint16
	havePrevID bool
	duplicates int

	out []byte
}

// NewRadio creates a radio for cfg over transport.
func NewRadio(transport *Transport, cfg Config) *Radio {
	return &Radio{transport: transport, cfg: cfg}
}

// Config returns the family parameters.
func (r *Radio) Config() Config {
	return r.cfg
}

// Begin opens the transport, applies the family parameters and primes the
// receiver.
func (r *Radio) Begin() error {
	if err := r.transport.Open(); err != nil {
		return err
	}
	if err := r.Configure(); err != nil {
		return err
	}
	_, err := r.Available()
	return err
}

// Configure pushes this family's parameters to the transport. Call it when
// switching the shared hardware to this family.
func (r *Radio) Configure() error {
	if err := r.transport.SetCRC(true); err != nil {
		return err
	}
	if err := r.transport.SetSyncwords(r.cfg.Syncword0, r.cfg.Syncword3); err != nil {
		return err
	}
	// +1 for the length prefix.
	return r.transport.SetMaxPacketLength(int(r.cfg.PacketLength) + 1)
}

// packetID derives the duplicate suppression id from a length-prefixed packet.
func packetID(packet []byte) uint16 {
	return uint16(packet[1])<<8 | uint16(packet[len(packet)-1])
}

// Available polls the first hop channel. It reports true while an accepted
// frame is waiting to be Read. A frame whose packet id matches the previously
// accepted one is counted as a duplicate and dropped.
func (r *Radio) Available() (bool, error) {
	if r.waiting {
		return true, nil
	}

	n, err := r.transport.Receive(r.cfg.Channels[0])
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	packet := r.transport.ReadFIFO()
	if len(packet) < 2 || len(packet) != int(packet[0])+1 {
		return false, nil
	}

	id := packetID(packet)
	if r.havePrevID && id == r.prevID {
		r.duplicates++
		return false, nil
	}
	r.prevID = id
	r.havePrevID = true
	r.packet = packet
	r.waiting = true
	return true, nil
}

// Read returns the waiting frame without its length prefix.
//
// Returns:
//   - error: ErrNotReceived if Available has not accepted a frame
func (r *Radio) Read() ([]byte, error) {
	if !r.waiting {
		return nil, ErrNotReceived
	}
	r.waiting = false
	frame := make([]byte, r.packet[0])
	copy(frame, r.packet[1:])
	return frame, nil
}

// Duplicates returns how many duplicate frames have been dropped.
func (r *Radio) Duplicates() int {
	return r.duplicates
}

// TransmitWithHop length-prefixes frame and transmits it once on every hop
// channel. This is one logical send.
func (r *Radio) TransmitWithHop(frame []byte) error {
	if len(frame) > int(r.cfg.PacketLength) {
		return fmt.Errorf("%w: frame of %d bytes exceeds family length %d", ErrConfig, len(frame), r.cfg.PacketLength)
	}
	r.out = append(append(r.out[:0], byte(len(frame))), frame...)
	return r.Resend()
}

// Resend transmits the last frame again on every hop channel.
func (r *Radio) Resend() error {
	if len(r.out) == 0 {
		return nil
	}
	for _, ch := range r.cfg.Channels {
		if err := r.transport.Transmit(ch, r.out); err != nil {
			return err
		}
	}
	return nil
}
