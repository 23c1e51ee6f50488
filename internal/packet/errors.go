package packet

import "errors"

var (
	// ErrUnknownFamily is returned when no codec exists for a bulb family.
	ErrUnknownFamily = errors.New("packet: unknown bulb family")

	// ErrInvalidFrame is returned by Parse for frames of the wrong length or protocol.
	ErrInvalidFrame = errors.New("packet: invalid frame")

	// ErrChecksum is returned by Parse when the frame checksum does not match.
	ErrChecksum = errors.New("packet: checksum mismatch")
)
