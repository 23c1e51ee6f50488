package packet

import "encoding/hex"

// MaxFrameLength is the longest frame of any supported family.
const MaxFrameLength = 9

// Frame is one finished protocol frame. It is a value: copies never share
// storage, so a frame held for resending cannot be altered by the next one.
type Frame struct {
	data [MaxFrameLength]byte
	n    uint8
}

// NewFrame copies b into a frame. Bytes past MaxFrameLength are dropped.
func NewFrame(b []byte) Frame {
	var f Frame
	f.n = uint8(copy(f.data[:], b))
	return f
}

// Bytes returns a fresh slice holding the frame.
func (f Frame) Bytes() []byte {
	out := make([]byte, f.n)
	copy(out, f.data[:f.n])
	return out
}

// Len returns the frame length.
func (f Frame) Len() int {
	return int(f.n)
}

// String renders the frame as lowercase hex.
func (f Frame) String() string {
	return hex.EncodeToString(f.data[:f.n])
}
