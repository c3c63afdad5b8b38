// Package mocap defines a reference motion-capture sample and its payload
// encodings. The client core never imports it; it exists for the CLI,
// tests and peers that want a ready-made body format.
package mocap

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"mocapstream/pkg/protocol"
	"mocapstream/pkg/protocol/codec"
)

// Joint is one tracked joint: position in metres and orientation as a unit
// quaternion (x, y, z, w).
type Joint struct {
	Name     string     `json:"name" cbor:"1,keyasint"`
	Position [3]float32 `json:"pos" cbor:"2,keyasint"`
	Rotation [4]float32 `json:"rot" cbor:"3,keyasint"`
}

// Sample is a single skeleton snapshot.
type Sample struct {
	Seq       uint64  `json:"seq" cbor:"1,keyasint"`
	Timestamp int64   `json:"ts" cbor:"2,keyasint"` // unix nanoseconds
	Joints    []Joint `json:"joints" cbor:"3,keyasint"`
}

var ErrMalformed = errors.New("mocap: malformed sample")

func (s Sample) Time() time.Time { return time.Unix(0, s.Timestamp) }

// NewRegistry returns a codec registry holding every body format a sample
// can be encoded with.
func NewRegistry() (*codec.Registry, error) {
	cb, err := codec.CBOR()
	if err != nil {
		return nil, err
	}
	r := codec.NewRegistry()
	r.Register(cb)
	return r, nil
}

// Encode serializes s as a format-prefixed frame payload.
func Encode(r *codec.Registry, f protocol.Format, s Sample) ([]byte, error) {
	return Append(nil, r, f, s)
}

// Append is Encode writing into dst.
func Append(dst []byte, r *codec.Registry, f protocol.Format, s Sample) ([]byte, error) {
	if f == protocol.FormatProto {
		st, err := s.ToStruct()
		if err != nil {
			return dst, err
		}
		return protocol.AppendBody(dst, r, f, st)
	}
	return protocol.AppendBody(dst, r, f, s)
}

// Decode parses a payload produced by Encode.
func Decode(r *codec.Registry, payload []byte) (Sample, protocol.Format, error) {
	var s Sample
	if len(payload) > 0 && protocol.Format(payload[0]) == protocol.FormatProto {
		st := &structpb.Struct{}
		f, err := protocol.DecodeBody(r, payload, st)
		if err != nil {
			return s, f, err
		}
		s, err = FromStruct(st)
		return s, f, err
	}
	f, err := protocol.DecodeBody(r, payload, &s)
	return s, f, err
}

// ToStruct converts s to a protobuf Struct. The sequence number and
// timestamp travel as decimal strings since Struct numbers are doubles.
func (s Sample) ToStruct() (*structpb.Struct, error) {
	joints := make([]any, 0, len(s.Joints))
	for _, j := range s.Joints {
		joints = append(joints, map[string]any{
			"name": j.Name,
			"pos":  floats(j.Position[:]),
			"rot":  floats(j.Rotation[:]),
		})
	}
	return structpb.NewStruct(map[string]any{
		"seq":    fmt.Sprint(s.Seq),
		"ts":     fmt.Sprint(s.Timestamp),
		"joints": joints,
	})
}

// FromStruct is the inverse of ToStruct.
func FromStruct(st *structpb.Struct) (Sample, error) {
	var s Sample
	m := st.GetFields()
	if _, err := fmt.Sscan(m["seq"].GetStringValue(), &s.Seq); err != nil {
		return s, fmt.Errorf("%w: seq: %v", ErrMalformed, err)
	}
	if _, err := fmt.Sscan(m["ts"].GetStringValue(), &s.Timestamp); err != nil {
		return s, fmt.Errorf("%w: ts: %v", ErrMalformed, err)
	}
	for i, v := range m["joints"].GetListValue().GetValues() {
		jf := v.GetStructValue().GetFields()
		var j Joint
		j.Name = jf["name"].GetStringValue()
		if err := unfloats(jf["pos"], j.Position[:]); err != nil {
			return s, fmt.Errorf("%w: joint %d pos: %v", ErrMalformed, i, err)
		}
		if err := unfloats(jf["rot"], j.Rotation[:]); err != nil {
			return s, fmt.Errorf("%w: joint %d rot: %v", ErrMalformed, i, err)
		}
		s.Joints = append(s.Joints, j)
	}
	return s, nil
}

func floats(v []float32) []any {
	out := make([]any, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func unfloats(v *structpb.Value, dst []float32) error {
	vals := v.GetListValue().GetValues()
	if len(vals) != len(dst) {
		return fmt.Errorf("want %d values, got %d", len(dst), len(vals))
	}
	for i, x := range vals {
		n := x.GetNumberValue()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("value %d not finite", i)
		}
		dst[i] = float32(n)
	}
	return nil
}
