// Package radio implements the PL1167 link layer that MiLight remotes speak,
// emulated on an nRF24L01 packet radio.
//
// The nRF24 cannot produce PL1167 frames natively. Instead the transport
// derives a 5-byte pipe address from the family's two syncwords, disables the
// radio's own CRC, bit-reverses every byte (PL1167 is LSB-first, the nRF24 is
// MSB-first) and appends a software CRC16.
//
// Layers, lowest first:
//
//	Device     hardware abstraction (internal/radio/nrf24, internal/radio/loopback)
//	Transport  syncwords, pipe address, CRC, bit reversal, channel switching
//	Radio      one bulb family: length prefix, three-channel hop, duplicate suppression
//
// Thread Safety:
//
// Nothing in this package locks. A Device, and every Transport and Radio built
// on it, must be driven from a single goroutine.
package radio
