// Command mocap-genframe writes reference wire frames to a directory so
// peers built elsewhere can check their decoders against them.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mocapstream/pkg/mocap"
	"mocapstream/pkg/protocol"
)

func main() {
	outDir := flag.String("out", "testdata/frame", "output directory for binary frames")
	joints := flag.Int("joints", 4, "joints per sample")
	maxPayload := flag.Uint("max", 64*1024, "max_payload_size written in data frame headers")
	flag.Parse()
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	reg, err := mocap.NewRegistry()
	if err != nil {
		log.Fatal(err)
	}
	// fixed clock so the files are reproducible
	start := time.Unix(1700000000, 0).UTC()
	sample := mocap.NewGenerator(*joints, start).Next(start.Add(250 * time.Millisecond))

	// 1) one data frame per body format
	for _, short := range []string{"json", "cbor", "proto"} {
		f, err := protocol.ParseFormat(short)
		if err != nil {
			log.Fatal(err)
		}
		body, err := mocap.Encode(reg, f, sample)
		if err != nil {
			log.Fatal(err)
		}
		name := fmt.Sprintf("frame_mocap_%s.bin", short)
		writeOut(*outDir, name, mustFrame(protocol.NameMocap, uint32(*maxPayload), body))
	}

	// 2) 64 bytes of pattern data, the raw loopback test vector
	pattern := make([]byte, 64)
	for i := range pattern {
		pattern[i] = byte(i)
	}
	writeOut(*outDir, "frame_mocap_pattern64.bin", mustFrame(protocol.NameMocap, uint32(*maxPayload), pattern))

	// 3) termination frame
	writeOut(*outDir, "frame_quit.bin", mustFrame(protocol.NameQuit, 0, nil))

	fmt.Println("Generated frames in", *outDir)
}

func mustFrame(name string, maxPayload uint32, payload []byte) []byte {
	f := protocol.Frame{Header: protocol.Header{Name: name, MaxPayloadSize: maxPayload}, Payload: payload}
	b, err := f.EncodeFrame()
	if err != nil {
		log.Fatal(err)
	}
	return b
}

func writeOut(dir, name string, b []byte) {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%-28s %5d bytes  head: %s\n", name, len(b), shortHex(b, protocol.HeaderSize))
}

// shortHex renders the first n bytes of b in groups of two bytes.
func shortHex(b []byte, n int) string {
	if n > len(b) {
		n = len(b)
	}
	enc := hex.EncodeToString(b[:n])
	var out []string
	for i := 0; i < len(enc); i += 4 {
		out = append(out, enc[i:min(i+4, len(enc))])
	}
	s := strings.Join(out, " ")
	if len(b) > n {
		s += " ..."
	}
	return s
}
