package radio

import "fmt"

// PALevel is the transmit power amplifier setting.
type PALevel uint8

const (
	PALevelMin PALevel = iota
	PALevelLow
	PALevelHigh
	PALevelMax
)

// DataRate is the air data rate.
type DataRate uint8

const (
	DataRate1Mbps DataRate = iota
	DataRate2Mbps
	DataRate250Kbps
)

// MaxPayload is the largest payload an nRF24L01 carries in one packet.
const MaxPayload = 32

// Address is a 5-byte nRF24 pipe address.
type Address [5]byte

// String renders the address as colon separated hex.
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4])
}

// Device is the subset of nRF24L01 operations the transport needs.
type Device interface {
	// Begin resets the chip and verifies it responds.
	Begin() error
	SetAutoAck(enabled bool) error
	SetPALevel(level PALevel) error
	SetDataRate(rate DataRate) error
	DisableCRC() error
	SetAddressWidth(width uint8) error
	OpenWritingPipe(addr Address) error
	OpenReadingPipe(pipe uint8, addr Address) error
	SetChannel(channel uint8) error
	StartListening() error
	StopListening() error
	// Available reports whether a received payload is waiting.
	Available() (bool, error)
	// Read pops one payload and returns its first n bytes.
	Read(n int) ([]byte, error)
	// Write transmits one payload.
	Write(p []byte) error
}
