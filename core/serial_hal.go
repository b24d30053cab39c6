package core

// SerialDriver is the byte-level serial port abstraction implemented per
// target. A driver that receives data must enqueue the port's RX event so
// the dispatch loop wakes up and drains it.
type SerialDriver interface {
	// ReadByte pops one received byte, or returns ok=false when the
	// receive buffer is empty. Never blocks.
	ReadByte() (b byte, ok bool)

	// Write queues p for transmission.
	Write(p []byte)
}
