//go:build rp2040

package main

import (
	"time"

	"superkey/core"
)

// serialPort is the slice of the machine UART/USB-CDC API the drivers use.
type serialPort interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

// serialDriver implements core.SerialDriver on a machine serial port. The
// hardware buffers received bytes; a poll goroutine watches for data and
// enqueues the port's RX event so the dispatch loop drains it.
type serialDriver struct {
	port  serialPort
	sys   *core.Sys
	event core.Event
}

func (d *serialDriver) ReadByte() (byte, bool) {
	if d.port.Buffered() == 0 {
		return 0, false
	}
	b, err := d.port.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

func (d *serialDriver) Write(p []byte) {
	d.port.Write(p)
}

func (d *serialDriver) poll() {
	for {
		if d.port.Buffered() > 0 {
			d.sys.EnqueueEvent(d.event)
		}
		time.Sleep(time.Millisecond)
	}
}
