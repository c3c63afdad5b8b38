package protocol

import (
	"bytes"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"mocapstream/pkg/protocol/codec"
)

func TestEncodeDecodeBodyJSON(t *testing.T) {
	reg := codec.NewRegistry()
	in := map[string]any{"x": 1, "y": "z"}
	b, err := EncodeBody(reg, FormatJSON, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if b[0] != byte(FormatJSON) {
		t.Fatalf("format prefix mismatch")
	}
	var out map[string]any
	f, err := DecodeBody(reg, b, &out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f != FormatJSON || out["y"] != "z" {
		t.Fatalf("roundtrip mismatch: %v %#v", f, out)
	}
}

func TestEncodeDecodeBodyCBOR(t *testing.T) {
	reg := codec.NewRegistry()
	c, err := codec.CBOR()
	if err != nil {
		t.Fatalf("cbor: %v", err)
	}
	reg.Register(c)
	buf := bytes.Repeat([]byte{0xAA}, 16)
	b, err := EncodeBody(reg, FormatCBOR, map[string]any{"buf": buf})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out map[string][]byte
	if _, err := DecodeBody(reg, b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(out["buf"], buf) {
		t.Fatalf("value mismatch: %x", out["buf"])
	}
}

func TestEncodeDecodeBodyProto(t *testing.T) {
	reg := codec.NewRegistry()
	s, err := structpb.NewStruct(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	b, err := EncodeBody(reg, FormatProto, s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out structpb.Struct
	if _, err := DecodeBody(reg, b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Fields["k"].GetStringValue() != "v" {
		t.Fatalf("value mismatch")
	}
}

func TestAppendBodyReusesBuffer(t *testing.T) {
	reg := codec.NewRegistry()
	dst := make([]byte, 0, 256)
	out, err := AppendBody(dst, reg, FormatJSON, map[string]int{"n": 7})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if &out[0] != &dst[:1][0] {
		t.Fatalf("expected body to be written into the provided buffer")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "cbor": FormatCBOR, "proto": FormatProto} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
