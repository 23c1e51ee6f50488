// Package nrf24 drives an nRF24L01(+) over Linux SPI and GPIO using periph.io.
//
// The driver implements radio.Device with fixed-width payloads and no
// hardware acknowledgement, which is what PL1167 emulation needs.
package nrf24

import (
	"errors"
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/nerrad567/milight-hub/internal/radio"
)

var (
	// ErrNoResponse is returned by Begin when register writes do not read back.
	ErrNoResponse = errors.New("nrf24: device not responding")

	// ErrTimeout is returned when a transmission does not complete.
	ErrTimeout = errors.New("nrf24: transmit timeout")

	// ErrPayloadSize is returned for payloads larger than the configured width.
	ErrPayloadSize = errors.New("nrf24: payload too large")
)

// Registers.
const (
	regConfig    = 0x00
	regEnAA      = 0x01
	regEnRxAddr  = 0x02
	regSetupAW   = 0x03
	regSetupRetr = 0x04
	regRFCh      = 0x05
	regRFSetup   = 0x06
	regStatus    = 0x07
	regRxAddrP0  = 0x0A
	regTxAddr    = 0x10
	regRxPwP0    = 0x11
	regDynPD     = 0x1C
	regFeature   = 0x1D
)

// Commands.
const (
	cmdWRegister      = 0x20
	cmdRRxPayload     = 0x61
	cmdWTxPayloadNoAk = 0xB0
	cmdFlushTx        = 0xE1
	cmdFlushRx        = 0xE2
	cmdNop            = 0xFF
)

// Register bits.
const (
	bitPrimRx = 1 << 0
	bitPwrUp  = 1 << 1
	bitCRCO   = 1 << 2
	bitEnCRC  = 1 << 3
	bitMaxRt  = 1 << 4
	bitTxDs   = 1 << 5
	bitRxDr   = 1 << 6

	bitEnDynAck = 1 << 0
)

const (
	maxChannel      = 125
	defaultSPIBus   = "/dev/spidev0.0"
	defaultSPIClock = 8_000_000
	defaultCEPin    = 22
	txTimeout       = 50 * time.Millisecond
)

// Config selects the SPI bus and CE pin.
type Config struct {
	// SPIBus is the SPI device path, e.g. "/dev/spidev0.0".
	SPIBus string
	// SPIClockHz defaults to 8MHz.
	SPIClockHz int
	// CEPin is the BCM GPIO number wired to CE.
	CEPin int
	// PayloadSize is the fixed payload width, 1 to 32. Defaults to 32.
	PayloadSize int
}

// outputPin is the part of gpio.PinIO the driver uses.
type outputPin interface {
	Out(l gpio.Level) error
}

// Driver is an nRF24L01 attached over SPI.
type Driver struct {
	cfg    Config
	conn   spi.Conn
	ce     outputPin
	closer io.Closer

	config byte // shadow of regConfig
}

var _ radio.Device = (*Driver)(nil)

// Open initialises periph.io, opens the SPI port and CE pin, and returns a
// driver. Call Begin (usually through radio.Transport.Open) before use.
func Open(cfg Config) (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialising periph host: %w", err)
	}
	if cfg.SPIBus == "" {
		cfg.SPIBus = defaultSPIBus
	}
	if cfg.SPIClockHz == 0 {
		cfg.SPIClockHz = defaultSPIClock
	}
	if cfg.CEPin == 0 {
		cfg.CEPin = defaultCEPin
	}

	port, err := spireg.Open(cfg.SPIBus)
	if err != nil {
		return nil, fmt.Errorf("opening SPI port %s: %w", cfg.SPIBus, err)
	}
	conn, err := port.Connect(physic.Frequency(cfg.SPIClockHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connecting SPI port %s: %w", cfg.SPIBus, err)
	}

	ceName := fmt.Sprintf("GPIO%d", cfg.CEPin)
	ce := gpioreg.ByName(ceName)
	if ce == nil {
		port.Close()
		return nil, fmt.Errorf("opening CE pin %s: not found", ceName)
	}

	d := newDriver(cfg, conn, ce)
	d.closer = port
	return d, nil
}

// newDriver builds a driver over an existing connection, for tests.
func newDriver(cfg Config, conn spi.Conn, ce outputPin) *Driver {
	if cfg.PayloadSize <= 0 || cfg.PayloadSize > radio.MaxPayload {
		cfg.PayloadSize = radio.MaxPayload
	}
	return &Driver{cfg: cfg, conn: conn, ce: ce}
}

// String describes the driver.
func (d *Driver) String() string {
	return fmt.Sprintf("nRF24L01(spi=%s, ce=GPIO%d, payload=%d)", d.cfg.SPIBus, d.cfg.CEPin, d.cfg.PayloadSize)
}

// Close powers the radio down and releases the SPI port.
func (d *Driver) Close() error {
	_ = d.setCE(false)
	_ = d.writeRegister(regConfig, d.config&^bitPwrUp)
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

func (d *Driver) transfer(w []byte) ([]byte, error) {
	r := make([]byte, len(w))
	if err := d.conn.Tx(w, r); err != nil {
		return nil, fmt.Errorf("spi transfer: %w", err)
	}
	return r, nil
}

func (d *Driver) writeRegister(reg, val byte) error {
	_, err := d.transfer([]byte{cmdWRegister | reg, val})
	return err
}

func (d *Driver) writeRegisterN(reg byte, data []byte) error {
	_, err := d.transfer(append([]byte{cmdWRegister | reg}, data...))
	return err
}

func (d *Driver) readRegister(reg byte) (byte, error) {
	r, err := d.transfer([]byte{reg, cmdNop})
	if err != nil {
		return 0, err
	}
	return r[1], nil
}

func (d *Driver) command(cmd byte) error {
	_, err := d.transfer([]byte{cmd})
	return err
}

func (d *Driver) setCE(high bool) error {
	level := gpio.Low
	if high {
		level = gpio.High
	}
	return d.ce.Out(level)
}

func (d *Driver) clearStatus() error {
	return d.writeRegister(regStatus, bitRxDr|bitTxDs|bitMaxRt)
}

func (d *Driver) writeConfig(val byte) error {
	if err := d.writeRegister(regConfig, val); err != nil {
		return err
	}
	d.config = val
	return nil
}

// Begin resets the radio to power-on defaults with 16-bit CRC, fixed payload
// width and no retransmits, then verifies the chip answers.
func (d *Driver) Begin() error {
	if err := d.setCE(false); err != nil {
		return fmt.Errorf("CE low: %w", err)
	}

	// Retransmit delay 1500us, count 0; read back to detect a missing chip.
	const retr = 0x50
	if err := d.writeRegister(regSetupRetr, retr); err != nil {
		return err
	}
	got, err := d.readRegister(regSetupRetr)
	if err != nil {
		return err
	}
	if got != retr {
		return fmt.Errorf("%w: SETUP_RETR read back %#02x", ErrNoResponse, got)
	}

	steps := []struct{ reg, val byte }{
		{regFeature, bitEnDynAck},
		{regDynPD, 0},
		{regRxPwP0, byte(d.cfg.PayloadSize)},
		{regRxPwP0 + 1, byte(d.cfg.PayloadSize)},
		{regEnRxAddr, 0x03},
		{regRFCh, 76},
	}
	for _, s := range steps {
		if err := d.writeRegister(s.reg, s.val); err != nil {
			return err
		}
	}
	if err := d.clearStatus(); err != nil {
		return err
	}
	if err := d.command(cmdFlushRx); err != nil {
		return err
	}
	if err := d.command(cmdFlushTx); err != nil {
		return err
	}

	if err := d.writeConfig(bitEnCRC | bitCRCO | bitPwrUp); err != nil {
		return err
	}
	time.Sleep(5 * time.Millisecond)
	return nil
}

// SetAutoAck enables or disables auto-acknowledgement on all pipes.
func (d *Driver) SetAutoAck(enabled bool) error {
	var v byte
	if enabled {
		v = 0x3F
	}
	return d.writeRegister(regEnAA, v)
}

// SetPALevel sets the transmit power, keeping the data rate bits.
func (d *Driver) SetPALevel(level radio.PALevel) error {
	setup, err := d.readRegister(regRFSetup)
	if err != nil {
		return err
	}
	setup = setup&^0x06 | byte(level&0x03)<<1
	return d.writeRegister(regRFSetup, setup)
}

// SetDataRate sets the air data rate, keeping the power bits.
func (d *Driver) SetDataRate(rate radio.DataRate) error {
	setup, err := d.readRegister(regRFSetup)
	if err != nil {
		return err
	}
	setup &^= 1<<5 | 1<<3
	switch rate {
	case radio.DataRate2Mbps:
		setup |= 1 << 3
	case radio.DataRate250Kbps:
		setup |= 1 << 5
	}
	return d.writeRegister(regRFSetup, setup)
}

// DisableCRC turns off the hardware CRC.
func (d *Driver) DisableCRC() error {
	return d.writeConfig(d.config &^ bitEnCRC)
}

// SetAddressWidth sets the pipe address width, 3 to 5 bytes.
func (d *Driver) SetAddressWidth(width uint8) error {
	if width < 3 || width > 5 {
		return fmt.Errorf("address width %d outside 3..5", width)
	}
	return d.writeRegister(regSetupAW, width-2)
}

// OpenWritingPipe sets the transmit address. Pipe 0 mirrors it as RF24 does.
func (d *Driver) OpenWritingPipe(addr radio.Address) error {
	if err := d.writeRegisterN(regTxAddr, addr[:]); err != nil {
		return err
	}
	return d.writeRegisterN(regRxAddrP0, addr[:])
}

// OpenReadingPipe sets the address of data pipe 0 or 1 and enables it.
func (d *Driver) OpenReadingPipe(pipe uint8, addr radio.Address) error {
	if pipe > 1 {
		return fmt.Errorf("reading pipe %d: only pipes 0 and 1 take a full address", pipe)
	}
	if err := d.writeRegisterN(regRxAddrP0+pipe, addr[:]); err != nil {
		return err
	}
	if err := d.writeRegister(regRxPwP0+pipe, byte(d.cfg.PayloadSize)); err != nil {
		return err
	}
	enabled, err := d.readRegister(regEnRxAddr)
	if err != nil {
		return err
	}
	return d.writeRegister(regEnRxAddr, enabled|1<<pipe)
}

// SetChannel tunes the RF channel, 0 to 125.
func (d *Driver) SetChannel(channel uint8) error {
	if channel > maxChannel {
		return fmt.Errorf("channel %d above %d", channel, maxChannel)
	}
	return d.writeRegister(regRFCh, channel)
}

// StartListening enters receive mode.
func (d *Driver) StartListening() error {
	if d.config&bitPrimRx != 0 {
		return nil
	}
	if err := d.writeConfig(d.config | bitPrimRx); err != nil {
		return err
	}
	if err := d.clearStatus(); err != nil {
		return err
	}
	if err := d.setCE(true); err != nil {
		return err
	}
	time.Sleep(130 * time.Microsecond)
	return nil
}

// StopListening leaves receive mode for standby.
func (d *Driver) StopListening() error {
	if err := d.setCE(false); err != nil {
		return err
	}
	if d.config&bitPrimRx == 0 {
		return nil
	}
	return d.writeConfig(d.config &^ bitPrimRx)
}

// Available reports whether the RX FIFO holds a payload.
func (d *Driver) Available() (bool, error) {
	r, err := d.transfer([]byte{cmdNop})
	if err != nil {
		return false, err
	}
	return (r[0]>>1)&0x07 != 0x07, nil
}

// Read pops one payload and returns its first n bytes.
func (d *Driver) Read(n int) ([]byte, error) {
	if n > d.cfg.PayloadSize {
		n = d.cfg.PayloadSize
	}
	w := make([]byte, d.cfg.PayloadSize+1)
	w[0] = cmdRRxPayload
	for i := 1; i < len(w); i++ {
		w[i] = cmdNop
	}
	r, err := d.transfer(w)
	if err != nil {
		return nil, err
	}
	if err := d.writeRegister(regStatus, bitRxDr); err != nil {
		return nil, err
	}
	return r[1 : 1+n], nil
}

// Write transmits one payload, zero padded to the fixed width, and waits for
// the transmission to finish.
func (d *Driver) Write(p []byte) error {
	if len(p) > d.cfg.PayloadSize {
		return fmt.Errorf("%w: %d bytes, width %d", ErrPayloadSize, len(p), d.cfg.PayloadSize)
	}
	if err := d.StopListening(); err != nil {
		return err
	}

	w := make([]byte, d.cfg.PayloadSize+1)
	w[0] = cmdWTxPayloadNoAk
	copy(w[1:], p)
	if _, err := d.transfer(w); err != nil {
		return err
	}

	if err := d.setCE(true); err != nil {
		return err
	}
	time.Sleep(15 * time.Microsecond)
	if err := d.setCE(false); err != nil {
		return err
	}

	deadline := time.Now().Add(txTimeout)
	for {
		status, err := d.transfer([]byte{cmdNop})
		if err != nil {
			return err
		}
		if status[0]&(bitTxDs|bitMaxRt) != 0 {
			return d.clearStatus()
		}
		if time.Now().After(deadline) {
			_ = d.command(cmdFlushTx)
			_ = d.clearStatus()
			return ErrTimeout
		}
		time.Sleep(100 * time.Microsecond)
	}
}
