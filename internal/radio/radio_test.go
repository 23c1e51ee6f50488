package radio

import (
	"bytes"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
)

// fakeDevice records every call and serves queued payloads.
type fakeDevice struct {
	mu sync.Mutex

	beginErr error
	writeErr error

	autoAck   bool
	paLevel   PALevel
	dataRate  DataRate
	crcOff    bool
	width     uint8
	writing   Address
	reading   map[uint8]Address
	channel   uint8
	listening bool

	channels []uint8
	writes   []fakeWrite
	inbox    [][]byte
}

type fakeWrite struct {
	channel uint8
	payload []byte
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{autoAck: true, reading: make(map[uint8]Address)}
}

func (d *fakeDevice) Begin() error { return d.beginErr }

func (d *fakeDevice) SetAutoAck(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.autoAck = enabled
	return nil
}

func (d *fakeDevice) SetPALevel(level PALevel) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paLevel = level
	return nil
}

func (d *fakeDevice) SetDataRate(rate DataRate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dataRate = rate
	return nil
}

func (d *fakeDevice) DisableCRC() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.crcOff = true
	return nil
}

func (d *fakeDevice) SetAddressWidth(width uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width = width
	return nil
}

func (d *fakeDevice) OpenWritingPipe(addr Address) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writing = addr
	return nil
}

func (d *fakeDevice) OpenReadingPipe(pipe uint8, addr Address) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reading[pipe] = addr
	return nil
}

func (d *fakeDevice) SetChannel(channel uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channel = channel
	d.channels = append(d.channels, channel)
	return nil
}

func (d *fakeDevice) StartListening() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listening = true
	return nil
}

func (d *fakeDevice) StopListening() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listening = false
	return nil
}

func (d *fakeDevice) Available() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inbox) > 0, nil
}

func (d *fakeDevice) Read(n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.inbox[0]
	d.inbox = d.inbox[1:]
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

func (d *fakeDevice) Write(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	d.writes = append(d.writes, fakeWrite{channel: d.channel, payload: append([]byte(nil), p...)})
	return nil
}

func (d *fakeDevice) inject(raw []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inbox = append(d.inbox, raw)
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestLookup(t *testing.T) {
	cfg, ok := Lookup(FamilyRGBCCT)
	if !ok {
		t.Fatal("Lookup(rgb_cct) not found")
	}
	want := Config{Syncword0: 0x7236, Syncword3: 0x1809, PacketLength: 9, Channels: [3]uint8{8, 39, 70}}
	if cfg != want {
		t.Errorf("Lookup(rgb_cct) = %+v, want %+v", cfg, want)
	}
	if _, ok := Lookup("fut089"); ok {
		t.Error("Lookup(fut089) should not be found")
	}
	if got := Families(); len(got) != 4 || got[0] != FamilyCCT {
		t.Errorf("Families() = %v", got)
	}
}

func TestCRC16(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"empty", nil, 0},
		{"kermit check value", []byte("123456789"), 0x2189},
		{"rgb_cct power on", mustHex(t, "0900dbe12166d1ba66cc"), 0x913A},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := crc16(tt.data); got != tt.want {
				t.Errorf("crc16() = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

func TestAirPayload(t *testing.T) {
	packet := mustHex(t, "0900dbe12166d1ba66cc")

	got := AirPayload(packet, true)
	if want := mustHex(t, "9000db8784668b5d66335c89"); !bytes.Equal(got, want) {
		t.Errorf("AirPayload() = %x, want %x", got, want)
	}
	if got := AirPayload(packet, false); len(got) != len(packet) {
		t.Errorf("AirPayload(no crc) length = %d, want %d", len(got), len(packet))
	}
}

func TestDecodeAir(t *testing.T) {
	packet := mustHex(t, "0900dbe12166d1ba66cc")
	raw := AirPayload(packet, true)

	got, ok := DecodeAir(raw, true)
	if !ok || !bytes.Equal(got, packet) {
		t.Errorf("DecodeAir() = %x, %v", got, ok)
	}

	raw[3] ^= 0x01
	if _, ok := DecodeAir(raw, true); ok {
		t.Error("DecodeAir() accepted a corrupted payload")
	}
	if _, ok := DecodeAir([]byte{0x01}, true); ok {
		t.Error("DecodeAir() accepted a payload shorter than the CRC")
	}
	if got, ok := DecodeAir([]byte{0x80}, false); !ok || got[0] != 0x01 {
		t.Errorf("DecodeAir(no crc) = %x, %v", got, ok)
	}
}

func TestPipeAddress(t *testing.T) {
	tests := []struct {
		family string
		want   Address
	}{
		{FamilyRGBCCT, Address{0x8A, 0x01, 0xE9, 0xC4, 0x56}},
		{FamilyRGBW, Address{0x4A, 0x1A, 0x8D, 0xE2, 0x55}},
	}

	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			cfg, _ := Lookup(tt.family)
			if got := pipeAddress(cfg.Syncword0, cfg.Syncword3); got != tt.want {
				t.Errorf("pipeAddress() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTransport_Open(t *testing.T) {
	dev := newFakeDevice()
	tr := NewTransport(dev)

	if err := tr.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if dev.autoAck || dev.paLevel != PALevelMax || dev.dataRate != DataRate1Mbps || !dev.crcOff || dev.width != 5 {
		t.Errorf("Open() left device in %+v", dev)
	}
	if dev.channel != channelOffset {
		t.Errorf("channel = %d, want %d", dev.channel, channelOffset)
	}
}

func TestTransport_OpenHardwareFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.beginErr = errors.New("no response")

	if err := NewTransport(dev).Open(); !errors.Is(err, ErrHardware) {
		t.Errorf("Open() error = %v, want ErrHardware", err)
	}
}

func TestTransport_SetSyncwordsUpdatesBothPipes(t *testing.T) {
	dev := newFakeDevice()
	tr := NewTransport(dev)

	if err := tr.SetSyncwords(0x7236, 0x1809); err != nil {
		t.Fatalf("SetSyncwords() error = %v", err)
	}
	want := Address{0x8A, 0x01, 0xE9, 0xC4, 0x56}
	if dev.writing != want || dev.reading[readingPipe] != want || tr.Pipe() != want {
		t.Errorf("pipes = %s / %s, want %s", dev.writing, dev.reading[readingPipe], want)
	}
}

func TestTransport_SetMaxPacketLength(t *testing.T) {
	tr := NewTransport(newFakeDevice())

	tests := []struct {
		n       int
		wantErr bool
	}{
		{10, false},
		{30, false},
		{31, true},
		{0, true},
	}

	for _, tt := range tests {
		err := tr.SetMaxPacketLength(tt.n)
		if tt.wantErr != errors.Is(err, ErrConfig) {
			t.Errorf("SetMaxPacketLength(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
	}
}

func TestTransport_Transmit(t *testing.T) {
	dev := newFakeDevice()
	tr := NewTransport(dev)
	dev.listening = true
	if err := tr.SetCRC(true); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetMaxPacketLength(10); err != nil {
		t.Fatal(err)
	}

	if err := tr.Transmit(39, mustHex(t, "0900dbe12166d1ba66cc")); err != nil {
		t.Fatalf("Transmit() error = %v", err)
	}

	if dev.listening {
		t.Error("Transmit() should stop listening")
	}
	if len(dev.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(dev.writes))
	}
	w := dev.writes[0]
	if w.channel != 41 {
		t.Errorf("write channel = %d, want 41", w.channel)
	}
	if want := mustHex(t, "9000db8784668b5d66335c89"); !bytes.Equal(w.payload, want) {
		t.Errorf("payload = %x, want %x", w.payload, want)
	}
}

func TestTransport_TransmitErrors(t *testing.T) {
	dev := newFakeDevice()
	tr := NewTransport(dev)

	if err := tr.Transmit(8, make([]byte, 9)); !errors.Is(err, ErrConfig) {
		t.Errorf("Transmit(oversized) error = %v, want ErrConfig", err)
	}

	dev.writeErr = errors.New("spi failure")
	if err := tr.Transmit(8, []byte{1}); !errors.Is(err, ErrHardware) {
		t.Errorf("Transmit() error = %v, want ErrHardware", err)
	}
}

func TestTransport_Receive(t *testing.T) {
	dev := newFakeDevice()
	tr := NewTransport(dev)
	_ = tr.SetCRC(true)
	_ = tr.SetMaxPacketLength(10)

	n, err := tr.Receive(8)
	if err != nil || n != 0 {
		t.Fatalf("Receive() on empty radio = %d, %v", n, err)
	}
	if !dev.listening || dev.channel != 10 {
		t.Errorf("Receive() listening=%v channel=%d", dev.listening, dev.channel)
	}

	packet := mustHex(t, "0900dbe12166d1ba66cc")
	dev.inject(AirPayload(packet, true))

	n, err = tr.Receive(8)
	if err != nil || n != len(packet) {
		t.Fatalf("Receive() = %d, %v, want %d", n, err, len(packet))
	}
	if got := tr.ReadFIFO(); !bytes.Equal(got, packet) {
		t.Errorf("ReadFIFO() = %x, want %x", got, packet)
	}
	if n, _ := tr.Receive(8); n != 0 {
		t.Errorf("Receive() after ReadFIFO = %d, want 0", n)
	}
}

func TestTransport_ReceiveDropsBadCRC(t *testing.T) {
	dev := newFakeDevice()
	tr := NewTransport(dev)
	_ = tr.SetCRC(true)
	_ = tr.SetMaxPacketLength(10)

	raw := AirPayload(mustHex(t, "0900dbe12166d1ba66cc"), true)
	raw[5] ^= 0xFF
	dev.inject(raw)

	n, err := tr.Receive(8)
	if err != nil || n != 0 {
		t.Errorf("Receive() with bad CRC = %d, %v, want 0, nil", n, err)
	}
}

func newTestRadio(t *testing.T) (*Radio, *fakeDevice) {
	t.Helper()
	dev := newFakeDevice()
	cfg, _ := Lookup(FamilyRGBCCT)
	r := NewRadio(NewTransport(dev), cfg)
	if err := r.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	return r, dev
}

func TestRadio_TransmitWithHop(t *testing.T) {
	r, dev := newTestRadio(t)
	frame := mustHex(t, "00dbe12166d1ba66cc")

	if err := r.TransmitWithHop(frame); err != nil {
		t.Fatalf("TransmitWithHop() error = %v", err)
	}

	if len(dev.writes) != 3 {
		t.Fatalf("writes = %d, want 3", len(dev.writes))
	}
	wantAir := AirPayload(append([]byte{9}, frame...), true)
	for i, ch := range []uint8{8, 39, 70} {
		if dev.writes[i].channel != ch+channelOffset {
			t.Errorf("write %d channel = %d, want %d", i, dev.writes[i].channel, ch+channelOffset)
		}
		if !bytes.Equal(dev.writes[i].payload, wantAir) {
			t.Errorf("write %d payload = %x, want %x", i, dev.writes[i].payload, wantAir)
		}
	}

	if err := r.Resend(); err != nil {
		t.Fatalf("Resend() error = %v", err)
	}
	if len(dev.writes) != 6 {
		t.Errorf("writes after Resend = %d, want 6", len(dev.writes))
	}
}

func TestRadio_TransmitWithHopOversized(t *testing.T) {
	r, _ := newTestRadio(t)
	if err := r.TransmitWithHop(make([]byte, 10)); !errors.Is(err, ErrConfig) {
		t.Errorf("TransmitWithHop(10 bytes) error = %v, want ErrConfig", err)
	}
}

func TestRadio_ReadWithoutFrame(t *testing.T) {
	r, _ := newTestRadio(t)
	if _, err := r.Read(); !errors.Is(err, ErrNotReceived) {
		t.Errorf("Read() error = %v, want ErrNotReceived", err)
	}
}

func TestRadio_DuplicateSuppression(t *testing.T) {
	r, dev := newTestRadio(t)
	first := mustHex(t, "0900dbe12166d1ba66cc")
	second := mustHex(t, "0900dbe1216494bb667e")

	dev.inject(AirPayload(first, true))
	dev.inject(AirPayload(first, true))
	dev.inject(AirPayload(second, true))

	var frames [][]byte
	for range 3 {
		ok, err := r.Available()
		if err != nil {
			t.Fatalf("Available() error = %v", err)
		}
		if !ok {
			continue
		}
		frame, err := r.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		frames = append(frames, frame)
	}

	if len(frames) != 2 {
		t.Fatalf("accepted %d frames, want 2", len(frames))
	}
	if !bytes.Equal(frames[0], first[1:]) || !bytes.Equal(frames[1], second[1:]) {
		t.Errorf("frames = %x", frames)
	}
	if r.Duplicates() != 1 {
		t.Errorf("Duplicates() = %d, want 1", r.Duplicates())
	}
}

func TestRadio_AvailableHoldsUntilRead(t *testing.T) {
	r, dev := newTestRadio(t)
	dev.inject(AirPayload(mustHex(t, "0900dbe12166d1ba66cc"), true))

	for range 2 {
		if ok, _ := r.Available(); !ok {
			t.Fatal("Available() = false while a frame is waiting")
		}
	}
	if _, err := r.Read(); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if ok, _ := r.Available(); ok {
		t.Error("Available() = true after Read")
	}
}

func TestRadio_RejectsLengthMismatch(t *testing.T) {
	r, dev := newTestRadio(t)
	// Length prefix claims 5 bytes but 9 follow.
	dev.inject(AirPayload(mustHex(t, "0500dbe12166d1ba66cc"), true))

	if ok, _ := r.Available(); ok {
		t.Error("Available() accepted a packet with a bad length prefix")
	}
}
