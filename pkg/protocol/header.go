package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Fixed header layout (40 bytes). Integers are big-endian (network order) so
// peers built for different hosts agree on the wire format.
//
//	0  ..31  Name           [32]byte, NUL padded (at most 31 significant bytes)
//	32 ..35  PayloadSize    u32, exact length of the payload that follows
//	36 ..39  MaxPayloadSize u32, producer capacity hint
const (
	HeaderSize = 40
	nameField  = 32
	// MaxNameLen leaves room for the terminating NUL that C peers expect.
	MaxNameLen = nameField - 1
)

// Header describes one frame on the wire.
type Header struct {
	Name           string
	PayloadSize    uint32
	MaxPayloadSize uint32
}

// IsSentinel reports whether h is the termination frame.
func (h Header) IsSentinel() bool { return h.Name == NameQuit && h.PayloadSize == 0 }

// MarshalBinary encodes header to a new 40-byte buffer.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	if err := h.PutBinary(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// PutBinary encodes header into the first HeaderSize bytes of buf.
func (h *Header) PutBinary(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrShortHeader
	}
	if len(h.Name) > MaxNameLen {
		return fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(h.Name))
	}
	n := copy(buf[:nameField], h.Name)
	clear(buf[n:nameField])
	binary.BigEndian.PutUint32(buf[32:36], h.PayloadSize)
	binary.BigEndian.PutUint32(buf[36:40], h.MaxPayloadSize)
	return nil
}

// UnmarshalBinary decodes header from a 40-byte buffer.
func (h *Header) UnmarshalBinary(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrShortHeader
	}
	name := buf[:nameField]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	h.Name = string(name)
	h.PayloadSize = binary.BigEndian.Uint32(buf[32:36])
	h.MaxPayloadSize = binary.BigEndian.Uint32(buf[36:40])
	return nil
}

// Sentinel returns the termination frame header.
func Sentinel() Header { return Header{Name: NameQuit} }

// Validate checks a received header against the single message kind expected
// by this protocol instance. The sentinel always passes.
func Validate(h Header, expected string, limit uint32) error {
	if h.IsSentinel() {
		return nil
	}
	if h.Name != expected {
		return fmt.Errorf("%w: got frame %q, want %q", ErrProtocolViolation, h.Name, expected)
	}
	if h.PayloadSize > limit {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, h.PayloadSize, limit)
	}
	return nil
}
