package radio

import "math/bits"

const crcPoly = 0x8408

// crc16 computes the PL1167 checksum: reflected CRC-16 with polynomial
// 0x8408 and a zero initial state.
func crc16(data []byte) uint16 {
	var state uint16
	for _, b := range data {
		for range 8 {
			if (uint16(b)^state)&0x01 != 0 {
				state = state>>1 ^ crcPoly
			} else {
				state >>= 1
			}
			b >>= 1
		}
	}
	return state
}

// AirPayload converts a length-prefixed packet into the bytes the nRF24 puts
// on the air: every byte bit-reversed, followed by the reversed CRC16, low
// byte first, when crc is set.
func AirPayload(packet []byte, crc bool) []byte {
	out := make([]byte, 0, len(packet)+2)
	for _, b := range packet {
		out = append(out, bits.Reverse8(b))
	}
	if crc {
		sum := crc16(packet)
		out = append(out, bits.Reverse8(byte(sum)), bits.Reverse8(byte(sum>>8)))
	}
	return out
}

// DecodeAir inverts AirPayload. ok is false when the CRC does not match.
func DecodeAir(raw []byte, crc bool) (packet []byte, ok bool) {
	packet = make([]byte, len(raw))
	for i, b := range raw {
		packet[i] = bits.Reverse8(b)
	}
	if !crc {
		return packet, true
	}
	if len(packet) < 2 {
		return nil, false
	}
	n := len(packet) - 2
	recv := uint16(packet[n+1])<<8 | uint16(packet[n])
	if crc16(packet[:n]) != recv {
		return nil, false
	}
	return packet[:n], true
}
