package radio

import "math/bits"

// pipeAddress derives the nRF24 address that lines up with a PL1167
// preamble and syncword pair.
func pipeAddress(syncword0, syncword3 uint16) Address {
	var last byte
	if syncword0&0x01 != 0 {
		last = byte(syncword0<<4)&0xF0 + 0x05
	} else {
		last = byte(syncword0<<4)&0xF0 + 0x0A
	}

	return Address{
		bits.Reverse8(byte(syncword3>>12)&0x0F + 0x50),
		bits.Reverse8(byte(syncword3 >> 4)),
		bits.Reverse8(byte(syncword0>>12)&0x0F + byte(syncword3<<4)&0xF0),
		bits.Reverse8(byte(syncword0 >> 4)),
		bits.Reverse8(last),
	}
}
