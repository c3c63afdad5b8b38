package mocap

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"mocapstream/pkg/protocol"
)

func TestEncodeDecodeAllFormats(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	start := time.Unix(1700000000, 0)
	in := NewGenerator(4, start).Next(start.Add(1500 * time.Millisecond))

	for _, f := range []protocol.Format{protocol.FormatJSON, protocol.FormatCBOR, protocol.FormatProto} {
		b, err := Encode(reg, f, in)
		if err != nil {
			t.Fatalf("%v encode: %v", f, err)
		}
		out, got, err := Decode(reg, b)
		if err != nil {
			t.Fatalf("%v decode: %v", f, err)
		}
		if got != f {
			t.Fatalf("format = %v, want %v", got, f)
		}
		if !reflect.DeepEqual(in, out) {
			t.Fatalf("%v roundtrip mismatch:\n in  %+v\n out %+v", f, in, out)
		}
	}
}

func TestCBORIsCompact(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	s := NewGenerator(20, time.Unix(0, 0)).Next(time.Unix(1, 0))
	js, _ := Encode(reg, protocol.FormatJSON, s)
	cb, _ := Encode(reg, protocol.FormatCBOR, s)
	if len(cb) >= len(js) {
		t.Fatalf("cbor %d bytes, json %d bytes", len(cb), len(js))
	}
}

func TestAppendReusesBuffer(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	s := NewGenerator(2, time.Unix(0, 0)).Next(time.Unix(0, 0))
	buf := make([]byte, 0, 4096)
	out, err := Append(buf, reg, protocol.FormatCBOR, s)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if &out[0] != &buf[:1][0] {
		t.Fatalf("expected Append to write into the provided buffer")
	}
}

func TestGeneratorSequence(t *testing.T) {
	start := time.Unix(100, 0)
	g := NewGenerator(3, start)
	a := g.Next(start)
	b := g.Next(start.Add(time.Second))
	if a.Seq != 1 || b.Seq != 2 {
		t.Fatalf("seq = %d, %d", a.Seq, b.Seq)
	}
	if len(b.Joints) != 3 || b.Joints[2].Name != "joint_02" {
		t.Fatalf("joints = %+v", b.Joints)
	}
	if !b.Time().Equal(start.Add(time.Second)) {
		t.Fatalf("time = %v", b.Time())
	}
	if a.Joints[0].Position == b.Joints[0].Position {
		t.Fatalf("expected the skeleton to move")
	}
}

func TestFromStructRejectsMalformed(t *testing.T) {
	st, err := structpb.NewStruct(map[string]any{"seq": "x", "ts": "1"})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	if _, err := FromStruct(st); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	st, _ = structpb.NewStruct(map[string]any{
		"seq":    "1",
		"ts":     "1",
		"joints": []any{map[string]any{"name": "a", "pos": []any{1.0}, "rot": []any{0.0, 0.0, 0.0, 1.0}}},
	})
	if _, err := FromStruct(st); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for a short position, got %v", err)
	}
}
