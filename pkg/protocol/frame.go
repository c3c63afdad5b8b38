package protocol

import (
	"fmt"
	"io"
)

// Frame is a header + payload unit exchanged over the connection.
//
// Payload may alias a buffer owned by whoever decoded the frame; use Clone
// to keep it past the current call.
type Frame struct {
	Header  Header
	Payload []byte
}

// Reset prepares f for reuse as a producer staging frame: the name and
// capacity hint are set and the payload is emptied without releasing its
// backing array.
func (f *Frame) Reset(name string, maxPayload uint32) {
	f.Header = Header{Name: name, MaxPayloadSize: maxPayload}
	f.Payload = f.Payload[:0]
}

// SetPayload copies b into the frame's payload. It fails when b exceeds the
// capacity hint carried in the header.
func (f *Frame) SetPayload(b []byte) error {
	if f.Header.MaxPayloadSize != 0 && uint64(len(b)) > uint64(f.Header.MaxPayloadSize) {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(b), f.Header.MaxPayloadSize)
	}
	f.Payload = append(f.Payload[:0], b...)
	f.Header.PayloadSize = uint32(len(b))
	return nil
}

// Clone returns a frame that owns a copy of the payload.
func (f *Frame) Clone() Frame {
	out := Frame{Header: f.Header}
	if len(f.Payload) > 0 {
		out.Payload = append([]byte(nil), f.Payload...)
	}
	return out
}

// EncodeFrame returns header+payload as a single byte slice.
func (f *Frame) EncodeFrame() ([]byte, error) {
	return f.AppendFrame(make([]byte, 0, HeaderSize+len(f.Payload)))
}

// AppendFrame appends header+payload to dst. PayloadSize is taken from the
// payload length.
func (f *Frame) AppendFrame(dst []byte) ([]byte, error) {
	if uint64(len(f.Payload)) > uint64(^uint32(0)) {
		return dst, fmt.Errorf("%w: %d", ErrPayloadTooLarge, len(f.Payload))
	}
	f.Header.PayloadSize = uint32(len(f.Payload))
	off := len(dst)
	dst = append(dst, make([]byte, HeaderSize)...)
	if err := f.Header.PutBinary(dst[off:]); err != nil {
		return dst[:off], err
	}
	return append(dst, f.Payload...), nil
}

// DecodeFrame parses a single frame from buf. The payload aliases buf.
func (f *Frame) DecodeFrame(buf []byte) error {
	if err := f.Header.UnmarshalBinary(buf); err != nil {
		return err
	}
	need := HeaderSize + int(f.Header.PayloadSize)
	if need > len(buf) {
		return fmt.Errorf("%w: have %d of %d bytes", ErrShortRead, len(buf), need)
	}
	f.Payload = buf[HeaderSize:need:need]
	return nil
}

// WriteTo writes header + payload to w.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	b, err := f.EncodeFrame()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// ReadFrom reads header + payload from r into a freshly allocated payload.
// It does not bound the payload size; stream.Reader does.
func (f *Frame) ReadFrom(r io.Reader) (int64, error) {
	var hb [HeaderSize]byte
	if n, err := io.ReadFull(r, hb[:]); err != nil {
		return int64(n), shortRead(err)
	}
	if err := f.Header.UnmarshalBinary(hb[:]); err != nil {
		return HeaderSize, err
	}
	if f.Header.PayloadSize == 0 {
		f.Payload = nil
		return HeaderSize, nil
	}
	f.Payload = make([]byte, int(f.Header.PayloadSize))
	n, err := io.ReadFull(r, f.Payload)
	if err != nil {
		err = shortRead(err)
		if err == io.EOF {
			err = fmt.Errorf("%w: %v", ErrShortRead, io.ErrUnexpectedEOF)
		}
	}
	return int64(HeaderSize + n), err
}

// shortRead maps io.ErrUnexpectedEOF to ErrShortRead; a clean io.EOF (no
// bytes read) is returned as is so callers can tell a closed stream from a
// torn frame.
func shortRead(err error) error {
	if err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return err
}
