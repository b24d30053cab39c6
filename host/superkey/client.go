// Package superkey is the host-side client for the device's binary
// interface port.
package superkey

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	hostserial "superkey/host/serial"
	"superkey/protocol"
)

// Client speaks the request/reply protocol over a serial port (or anything
// else that reads and writes bytes). Not safe for concurrent use: the
// protocol itself is strictly one request in flight.
type Client struct {
	rw      io.ReadWriter
	closer  io.Closer
	timeout time.Duration
	rxbuf   []byte
}

// Dial opens the serial device and returns a connected client.
func Dial(device string, baud int) (*Client, error) {
	cfg := hostserial.DefaultConfig(device)
	if baud != 0 {
		cfg.Baud = baud
	}
	port, err := hostserial.Open(cfg)
	if err != nil {
		return nil, err
	}
	c := NewClient(port)
	c.closer = port
	return c, nil
}

// NewClient wraps an already-open transport. Used by tests and by tools
// that tunnel the protocol over something other than a serial device.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw, timeout: 2 * time.Second}
}

// SetTimeout sets the per-request reply deadline.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Close closes the underlying port if the client owns one.
func (c *Client) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// roundTrip sends one request and waits for its reply payload. Any error
// reply from the device comes back as a Go error.
func (c *Client) roundTrip(id protocol.MessageID, payload []byte) ([]byte, error) {
	if _, err := c.rw.Write(protocol.Encode(id, payload)); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	deadline := time.Now().Add(c.timeout)
	var tmp [64]byte
	for {
		hdr, reply, consumed, status := protocol.Parse(c.rxbuf)
		switch status {
		case protocol.ParseOK:
			// Copy before the buffer is reused.
			out := append([]byte(nil), reply...)
			c.rxbuf = c.rxbuf[consumed:]
			if hdr.Message != protocol.ReplySuccess {
				return nil, replyError(hdr.Message)
			}
			return out, nil
		case protocol.ParseErrSize, protocol.ParseErrCRC:
			c.rxbuf = nil
			return nil, fmt.Errorf("corrupt reply from device")
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout waiting for reply")
		}
		n, err := c.rw.Read(tmp[:])
		if n > 0 {
			c.rxbuf = append(c.rxbuf, tmp[:n]...)
		}
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read reply: %w", err)
		}
	}
}

func replyError(id protocol.MessageID) error {
	switch id {
	case protocol.ReplyInvalidMessage:
		return fmt.Errorf("device: unknown request")
	case protocol.ReplyInvalidSize:
		return fmt.Errorf("device: invalid message size")
	case protocol.ReplyInvalidCRC:
		return fmt.Errorf("device: checksum mismatch")
	case protocol.ReplyInvalidPayload:
		return fmt.Errorf("device: malformed payload")
	case protocol.ReplyInvalidValue:
		return fmt.Errorf("device: value rejected")
	}
	return fmt.Errorf("device: unexpected reply 0x%04x", uint16(id))
}

// Ping checks that the device is alive and speaking the protocol.
func (c *Client) Ping() error {
	_, err := c.roundTrip(protocol.RequestPing, nil)
	return err
}

// Version returns the firmware version as "major.minor.patch".
func (c *Client) Version() (string, error) {
	reply, err := c.roundTrip(protocol.RequestVersion, nil)
	if err != nil {
		return "", err
	}
	if len(reply) != 3 {
		return "", fmt.Errorf("short version reply")
	}
	return fmt.Sprintf("%d.%d.%d", reply[0], reply[1], reply[2]), nil
}

// Panic releases the device's key output immediately.
func (c *Client) Panic() error {
	_, err := c.roundTrip(protocol.RequestPanic, nil)
	return err
}

// WPM returns the configured keying speed.
func (c *Client) WPM() (float32, error) {
	return c.getF32(protocol.RequestGetWPM, nil)
}

// SetWPM sets the keying speed and returns the value the device applied
// after clamping.
func (c *Client) SetWPM(wpm float32) (float32, error) {
	return c.getF32(protocol.RequestSetWPM, appendF32(nil, wpm))
}

// ElementScale returns one element's duration scale factor.
func (c *Client) ElementScale(element uint8) (float32, error) {
	return c.getF32(protocol.RequestGetElementScale, []byte{element})
}

// SetElementScale sets one element's duration scale factor and returns the
// applied value.
func (c *Client) SetElementScale(element uint8, scale float32) (float32, error) {
	return c.getF32(protocol.RequestSetElementScale, appendF32([]byte{element}, scale))
}

// InvertPaddles reports whether the paddles are swapped.
func (c *Client) InvertPaddles() (bool, error) {
	return c.getBool(protocol.RequestGetInvertPaddles, nil)
}

// SetInvertPaddles swaps or unswaps the paddles.
func (c *Client) SetInvertPaddles(invert bool) error {
	_, err := c.getBool(protocol.RequestSetInvertPaddles, []byte{boolByte(invert)})
	return err
}

// PaddleMode returns the configured squeeze mode.
func (c *Client) PaddleMode() (uint8, error) {
	return c.getByte(protocol.RequestGetPaddleMode, nil)
}

// SetPaddleMode sets the squeeze mode.
func (c *Client) SetPaddleMode(mode uint8) error {
	_, err := c.getByte(protocol.RequestSetPaddleMode, []byte{mode})
	return err
}

// IOType returns the configured function of a jack pin.
func (c *Client) IOType(pin uint8) (uint8, error) {
	return c.getByte(protocol.RequestGetIOType, []byte{pin})
}

// SetIOType assigns a function to a jack pin.
func (c *Client) SetIOType(pin, typ uint8) error {
	_, err := c.getByte(protocol.RequestSetIOType, []byte{pin, typ})
	return err
}

// IOPolarity returns the configured polarity of a jack pin.
func (c *Client) IOPolarity(pin uint8) (uint8, error) {
	return c.getByte(protocol.RequestGetIOPolarity, []byte{pin})
}

// SetIOPolarity assigns a polarity to a jack pin.
func (c *Client) SetIOPolarity(pin, polarity uint8) error {
	_, err := c.getByte(protocol.RequestSetIOPolarity, []byte{pin, polarity})
	return err
}

// IOState returns the polarity-resolved state of a jack pin.
func (c *Client) IOState(pin uint8) (bool, error) {
	return c.getBool(protocol.RequestGetIOState, []byte{pin})
}

// IOStateForType reports whether any pin with the given function is active.
func (c *Client) IOStateForType(typ uint8) (bool, error) {
	return c.getBool(protocol.RequestGetIOStateForType, []byte{typ})
}

// LEDEnabled reports whether an LED is enabled.
func (c *Client) LEDEnabled(led uint8) (bool, error) {
	return c.getBool(protocol.RequestGetLEDEnabled, []byte{led})
}

// SetLEDEnabled enables or disables an LED.
func (c *Client) SetLEDEnabled(led uint8, enabled bool) error {
	_, err := c.getBool(protocol.RequestSetLEDEnabled, []byte{led, boolByte(enabled)})
	return err
}

// BuzzerEnabled reports whether the side tone is enabled.
func (c *Client) BuzzerEnabled() (bool, error) {
	return c.getBool(protocol.RequestGetBuzzerEnabled, nil)
}

// SetBuzzerEnabled enables or disables the side tone.
func (c *Client) SetBuzzerEnabled(enabled bool) error {
	_, err := c.getBool(protocol.RequestSetBuzzerEnabled, []byte{boolByte(enabled)})
	return err
}

// BuzzerFrequency returns the side tone frequency in hertz.
func (c *Client) BuzzerFrequency() (uint16, error) {
	return c.getU16(protocol.RequestGetBuzzerFrequency, nil)
}

// SetBuzzerFrequency sets the side tone frequency and returns the value
// the device applied after clamping.
func (c *Client) SetBuzzerFrequency(freq uint16) (uint16, error) {
	return c.getU16(protocol.RequestSetBuzzerFrequency, binary.LittleEndian.AppendUint16(nil, freq))
}

// TrainerMode reports whether trainer mode is active.
func (c *Client) TrainerMode() (bool, error) {
	return c.getBool(protocol.RequestGetTrainerMode, nil)
}

// SetTrainerMode enables or disables trainer mode.
func (c *Client) SetTrainerMode(enabled bool) error {
	_, err := c.getBool(protocol.RequestSetTrainerMode, []byte{boolByte(enabled)})
	return err
}

// Autokey queues text for keying and returns how many characters the
// device accepted.
func (c *Client) Autokey(text string) (int, error) {
	if len(text) > protocol.PayloadMax {
		return 0, fmt.Errorf("text too long for one request (max %d)", protocol.PayloadMax)
	}
	n, err := c.getU16(protocol.RequestAutokey, []byte(text))
	return int(n), err
}

// AutokeyPending returns the number of elements still queued on the device.
func (c *Client) AutokeyPending() (int, error) {
	n, err := c.getU16(protocol.RequestAutokeyPending, nil)
	return int(n), err
}

// QuickMsg returns the quick message in a slot.
func (c *Client) QuickMsg(slot uint8) (string, error) {
	reply, err := c.roundTrip(protocol.RequestGetQuickMsg, []byte{slot})
	if err != nil {
		return "", err
	}
	return string(reply), nil
}

// SetQuickMsg stores a quick message in a slot.
func (c *Client) SetQuickMsg(slot uint8, msg string) error {
	_, err := c.roundTrip(protocol.RequestSetQuickMsg, append([]byte{slot}, msg...))
	return err
}

// InvalidateQuickMsg empties a slot.
func (c *Client) InvalidateQuickMsg(slot uint8) error {
	_, err := c.roundTrip(protocol.RequestInvalidateQuickMsg, []byte{slot})
	return err
}

// PlayQuickMsg keys the message stored in a slot.
func (c *Client) PlayQuickMsg(slot uint8) error {
	_, err := c.roundTrip(protocol.RequestPlayQuickMsg, []byte{slot})
	return err
}

// RestoreDefaults resets the device configuration to factory values.
func (c *Client) RestoreDefaults() error {
	_, err := c.roundTrip(protocol.RequestRestoreDefaults, nil)
	return err
}

func (c *Client) getF32(id protocol.MessageID, payload []byte) (float32, error) {
	reply, err := c.roundTrip(id, payload)
	if err != nil {
		return 0, err
	}
	if len(reply) != 4 {
		return 0, fmt.Errorf("short reply")
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(reply)), nil
}

func (c *Client) getU16(id protocol.MessageID, payload []byte) (uint16, error) {
	reply, err := c.roundTrip(id, payload)
	if err != nil {
		return 0, err
	}
	if len(reply) != 2 {
		return 0, fmt.Errorf("short reply")
	}
	return binary.LittleEndian.Uint16(reply), nil
}

func (c *Client) getBool(id protocol.MessageID, payload []byte) (bool, error) {
	reply, err := c.roundTrip(id, payload)
	if err != nil {
		return false, err
	}
	if len(reply) != 1 {
		return false, fmt.Errorf("short reply")
	}
	return reply[0] != 0, nil
}

func (c *Client) getByte(id protocol.MessageID, payload []byte) (uint8, error) {
	reply, err := c.roundTrip(id, payload)
	if err != nil {
		return 0, err
	}
	if len(reply) != 1 {
		return 0, fmt.Errorf("short reply")
	}
	return reply[0], nil
}

func appendF32(dst []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
