//go:build linux

package main

import (
	"io"
	"sync"
	"time"

	"superkey/core"
	"superkey/protocol"
)

// streamDriver implements core.SerialDriver over an io.Reader/io.Writer
// pair. A reader goroutine feeds a FIFO and enqueues the RX event; the
// dispatch loop drains the FIFO through ReadByte.
type streamDriver struct {
	mu   sync.Mutex
	fifo *protocol.FifoBuffer
	w    io.Writer
}

func newStreamDriver(r io.Reader, w io.Writer, sys *core.Sys, event core.Event) *streamDriver {
	d := &streamDriver{
		fifo: protocol.NewFifoBuffer(4096),
		w:    w,
	}
	go func() {
		var buf [256]byte
		for {
			n, err := r.Read(buf[:])
			if n > 0 {
				d.mu.Lock()
				d.fifo.Write(buf[:n])
				d.mu.Unlock()
				sys.EnqueueEvent(event)
			}
			if err != nil {
				return
			}
		}
	}()
	return d
}

func (d *streamDriver) ReadByte() (byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fifo.ReadByte()
}

func (d *streamDriver) Write(p []byte) {
	d.w.Write(p)
}

// tickLoop advances the system clock at a fixed 1 ms period, sleeping until
// an absolute deadline so the period does not drift.
func tickLoop(sys *core.Sys) {
	next := time.Now()
	for {
		next = next.Add(time.Millisecond)
		time.Sleep(time.Until(next))
		sys.AdvanceTick()
	}
}
