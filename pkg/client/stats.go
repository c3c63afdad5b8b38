package client

import "sync/atomic"

// Stats is a snapshot of client counters. Counters accumulate across
// sessions.
type Stats struct {
	Sessions       uint64
	FramesSent     uint64
	BytesSent      uint64
	FramesReceived uint64
	BytesReceived  uint64
	WriteErrors    uint64
	ReadErrors     uint64
	Violations     uint64
	HookErrors     uint64
}

type counters struct {
	sessions       atomic.Uint64
	framesSent     atomic.Uint64
	bytesSent      atomic.Uint64
	framesReceived atomic.Uint64
	bytesReceived  atomic.Uint64
	writeErrors    atomic.Uint64
	readErrors     atomic.Uint64
	violations     atomic.Uint64
	hookErrors     atomic.Uint64
}

func (c *Client[R]) Stats() Stats {
	return Stats{
		Sessions:       c.stats.sessions.Load(),
		FramesSent:     c.stats.framesSent.Load(),
		BytesSent:      c.stats.bytesSent.Load(),
		FramesReceived: c.stats.framesReceived.Load(),
		BytesReceived:  c.stats.bytesReceived.Load(),
		WriteErrors:    c.stats.writeErrors.Load(),
		ReadErrors:     c.stats.readErrors.Load(),
		Violations:     c.stats.violations.Load(),
		HookErrors:     c.stats.hookErrors.Load(),
	}
}
