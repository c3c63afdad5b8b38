package codec

import (
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestJSONCodec(t *testing.T) {
	c := JSON()
	in := map[string]any{"a": 1, "b": "x"}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["a"].(float64) != 1 || out["b"].(string) != "x" {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

func TestCBORCodecDeterministic(t *testing.T) {
	c, err := CBOR()
	if err != nil {
		t.Fatalf("new cbor: %v", err)
	}
	in := map[string]any{"n": 42, "a": "z", "m": float32(1.5)}
	b1, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b2, _ := c.Marshal(in)
	if string(b1) != string(b2) {
		t.Fatalf("canonical encoding must be stable")
	}
	var out map[string]any
	if err := c.Unmarshal(b1, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n, ok := out["n"].(uint64); !ok || n != 42 {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

func TestProtoCodec(t *testing.T) {
	c := Proto()
	s, err := structpb.NewStruct(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	b, err := c.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out structpb.Struct
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Fields["k"].GetStringValue() != "v" {
		t.Fatalf("roundtrip mismatch")
	}
	if _, err := c.Marshal(map[string]any{}); err == nil {
		t.Fatalf("expected error for non-proto value")
	}
}

func TestRegistryContentTypes(t *testing.T) {
	r := NewRegistry()
	cb, err := CBOR()
	if err != nil {
		t.Fatalf("new cbor: %v", err)
	}
	r.Register(cb)
	got := r.ContentTypes()
	want := []string{"application/cbor", "application/json", "application/x-protobuf"}
	if len(got) != len(want) {
		t.Fatalf("content types = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("content types = %v, want %v", got, want)
		}
	}
}

func TestProtoAppendMarshal(t *testing.T) {
	ap, ok := Proto().(Appender)
	if !ok {
		t.Fatalf("proto codec must implement Appender")
	}
	s, err := structpb.NewStruct(map[string]any{"seq": "7"})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	prefix := []byte{0xFF}
	b, err := ap.AppendMarshal(prefix, s)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if b[0] != 0xFF || len(b) <= 1 {
		t.Fatalf("prefix not kept: %x", b)
	}
	var out structpb.Struct
	if err := Proto().Unmarshal(b[1:], &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Fields["seq"].GetStringValue() != "7" {
		t.Fatalf("value mismatch")
	}
	if _, err := ap.AppendMarshal(nil, "not a message"); err == nil {
		t.Fatalf("expected an error for a non-message value")
	}
}
