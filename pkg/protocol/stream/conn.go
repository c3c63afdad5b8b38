// Package stream reads and writes protocol frames over a byte stream using
// buffers sized once per connection.
package stream

import (
	"bufio"
	"fmt"
	"io"
	"net"

	"mocapstream/pkg/protocol"
)

// Conn pairs a Reader and a Writer over the same stream.
// Exactly one reader and one writer goroutine are expected.
type Conn struct {
	*Reader
	*Writer
}

// New wraps rw. name is the only data frame kind accepted by Recv and max
// bounds payload sizes in both directions.
func New(rw io.ReadWriter, name string, max uint32) *Conn {
	return &Conn{Reader: NewReader(rw, name, max), Writer: NewWriter(rw, max)}
}

func NewNetConn(c net.Conn, name string, max uint32) *Conn { return New(c, name, max) }

// Reader decodes frames into a single buffer it owns. A frame returned by
// Next is valid until the following call.
type Reader struct {
	br    *bufio.Reader
	buf   []byte
	frame protocol.Frame
	name  string
	max   uint32
}

func NewReader(r io.Reader, name string, max uint32) *Reader {
	return &Reader{
		br:   bufio.NewReaderSize(r, protocol.HeaderSize+int(max)),
		buf:  make([]byte, protocol.HeaderSize+int(max)),
		name: name,
		max:  max,
	}
}

// Next reads one frame. It returns io.EOF when the stream ends cleanly on a
// frame boundary and an error wrapping protocol.ErrShortRead when it ends
// inside a frame. A header that fails validation is returned together with
// the error so the caller can report what arrived.
func (r *Reader) Next() (*protocol.Frame, error) {
	hb := r.buf[:protocol.HeaderSize]
	if n, err := io.ReadFull(r.br, hb); err != nil {
		if n == 0 {
			return nil, err
		}
		return nil, fmt.Errorf("%w: header %d/%d bytes: %w", protocol.ErrShortRead, n, protocol.HeaderSize, err)
	}
	f := &r.frame
	if err := f.Header.UnmarshalBinary(hb); err != nil {
		return nil, err
	}
	if err := protocol.Validate(f.Header, r.name, r.max); err != nil {
		f.Payload = nil
		return f, err
	}
	size := int(f.Header.PayloadSize)
	f.Payload = r.buf[protocol.HeaderSize : protocol.HeaderSize+size]
	if size == 0 {
		return f, nil
	}
	if n, err := io.ReadFull(r.br, f.Payload); err != nil {
		return nil, fmt.Errorf("%w: payload %d/%d bytes: %w", protocol.ErrShortRead, n, size, err)
	}
	return f, nil
}

// Recv reads the next frame into e, copying the payload.
func (r *Reader) Recv(e *protocol.Frame) error {
	f, err := r.Next()
	if err != nil {
		return err
	}
	*e = f.Clone()
	return nil
}

// Writer encodes frames into a buffer it owns and hands each frame to the
// underlying stream in a single Write call.
type Writer struct {
	w   io.Writer
	buf []byte
	max uint32
}

func NewWriter(w io.Writer, max uint32) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, protocol.HeaderSize+int(max)), max: max}
}

// Send writes f. Payloads larger than the configured maximum are rejected,
// never truncated.
func (w *Writer) Send(f *protocol.Frame) error {
	if uint64(len(f.Payload)) > uint64(w.max) {
		return fmt.Errorf("%w: %d > %d", protocol.ErrPayloadTooLarge, len(f.Payload), w.max)
	}
	b, err := f.AppendFrame(w.buf[:0])
	if err != nil {
		return err
	}
	w.buf = b[:0]
	n, err := w.w.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("wrote %d of %d bytes: %w", n, len(b), io.ErrShortWrite)
	}
	return nil
}
