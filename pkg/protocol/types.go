package protocol

import "errors"

// Frame names understood by this protocol instance.
const (
	NameQuit  = "quit"  // termination sentinel, zero payload
	NameMocap = "mocap" // motion-capture sample
)

// ContentType is optional hint for payload decoding.
// Not serialized in header.
const (
	ContentUnknown = "application/octet-stream"
	ContentCBOR    = "application/cbor"
	ContentJSON    = "application/json"
	ContentProto   = "application/x-protobuf"
)

var (
	ErrShortHeader       = errors.New("protocol: short header")
	ErrShortRead         = errors.New("protocol: short read")
	ErrNameTooLong       = errors.New("protocol: frame name too long")
	ErrPayloadTooLarge   = errors.New("protocol: payload too large")
	ErrProtocolViolation = errors.New("protocol: unexpected frame")
)
