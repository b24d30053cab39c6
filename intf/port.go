// Package intf runs the binary interface port: the framed request/reply
// channel a host uses to configure and drive the device.
package intf

import (
	"encoding/binary"
	"math"

	"superkey/core"
	"superkey/protocol"
)

// rxTimeout discards a partially received message if no further bytes
// arrive, so one dropped byte cannot wedge the port forever.
const rxTimeout = 250 * core.TicksPerMillisecond

// Port parses requests from a serial driver and replies on the same driver.
// All methods run on the dispatch loop.
type Port struct {
	dev    *core.Device
	serial core.SerialDriver

	rx    [protocol.MessageMax]byte
	rxLen int
	rxAt  core.Tick
}

// New returns a port bound to the device and serial driver. The caller
// registers PumpRx on the port's RX event and Tick as a periodic task.
func New(dev *core.Device, serial core.SerialDriver) *Port {
	return &Port{dev: dev, serial: serial}
}

// PumpRx drains the serial driver and handles every complete request.
func (p *Port) PumpRx() {
	for {
		b, ok := p.serial.ReadByte()
		if !ok {
			break
		}
		if p.rxLen == len(p.rx) {
			// Cannot happen with a well-formed stream; resync.
			p.rxLen = 0
		}
		p.rx[p.rxLen] = b
		p.rxLen++
	}
	p.rxAt = p.dev.Sys.Tick()

	for p.rxLen > 0 {
		hdr, payload, consumed, status := protocol.Parse(p.rx[:p.rxLen])
		switch status {
		case protocol.ParseNeedMore:
			return
		case protocol.ParseErrSize:
			p.reply(protocol.ReplyInvalidSize, nil)
			p.rxLen = 0
			return
		case protocol.ParseErrCRC:
			p.reply(protocol.ReplyInvalidCRC, nil)
			p.rxLen = 0
			return
		case protocol.ParseOK:
			p.dispatch(hdr.Message, payload)
			copy(p.rx[:], p.rx[consumed:p.rxLen])
			p.rxLen -= consumed
		}
	}
}

// Tick expires a stale partial message.
func (p *Port) Tick(now core.Tick) {
	if p.rxLen > 0 && core.Elapsed(now, p.rxAt) >= rxTimeout {
		p.rxLen = 0
	}
}

func (p *Port) reply(id protocol.MessageID, payload []byte) {
	p.serial.Write(protocol.Encode(id, payload))
}

func (p *Port) ok(payload []byte) {
	p.reply(protocol.ReplySuccess, payload)
}

func (p *Port) dispatch(id protocol.MessageID, payload []byte) {
	d := p.dev
	switch id {
	case protocol.RequestPing:
		p.ok(nil)

	case protocol.RequestVersion:
		p.ok([]byte{core.VersionMajor, core.VersionMinor, core.VersionPatch})

	case protocol.RequestPanic:
		d.Keyer.Panic()
		p.ok(nil)

	case protocol.RequestGetWPM:
		p.ok(appendF32(nil, float32(d.Config.Snapshot().WPM)))

	case protocol.RequestSetWPM:
		if len(payload) != 4 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		applied := d.Config.SetWPM(core.WPM(getF32(payload)))
		p.ok(appendF32(nil, float32(applied)))

	case protocol.RequestGetElementScale:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		el := core.Element(payload[0])
		if el >= core.ElementCount {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok(appendF32(nil, float32(d.Config.Snapshot().ElementScales[el])))

	case protocol.RequestSetElementScale:
		if len(payload) != 5 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		el := core.Element(payload[0])
		if el >= core.ElementCount {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		applied := d.Config.SetElementScale(el, core.ElementScale(getF32(payload[1:])))
		p.ok(appendF32(nil, float32(applied)))

	case protocol.RequestGetInvertPaddles:
		p.ok([]byte{boolByte(d.Config.Snapshot().InvertPaddles)})

	case protocol.RequestSetInvertPaddles:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		d.Config.SetInvertPaddles(payload[0] != 0)
		p.ok([]byte{payload[0] & 1})

	case protocol.RequestGetPaddleMode:
		p.ok([]byte{byte(d.Config.Snapshot().PaddleMode)})

	case protocol.RequestSetPaddleMode:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		if !d.Config.SetPaddleMode(core.PaddleMode(payload[0])) {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok([]byte{payload[0]})

	case protocol.RequestGetIOType:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		pin := core.Pin(payload[0])
		if pin >= core.PinCount {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok([]byte{byte(d.Config.Snapshot().PinTypes[pin])})

	case protocol.RequestSetIOType:
		if len(payload) != 2 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		if !d.Config.SetPinType(core.Pin(payload[0]), core.PinType(payload[1])) {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		d.IO.Reconfigure()
		p.ok([]byte{payload[1]})

	case protocol.RequestGetIOPolarity:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		pin := core.Pin(payload[0])
		if pin >= core.PinCount {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok([]byte{byte(d.Config.Snapshot().PinPolarities[pin])})

	case protocol.RequestSetIOPolarity:
		if len(payload) != 2 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		if !d.Config.SetPinPolarity(core.Pin(payload[0]), core.Polarity(payload[1])) {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		d.IO.Reconfigure()
		p.ok([]byte{payload[1]})

	case protocol.RequestGetIOState:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		pin := core.Pin(payload[0])
		if pin >= core.PinCount {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok([]byte{boolByte(d.IO.PinActive(pin))})

	case protocol.RequestGetIOStateForType:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		p.ok([]byte{boolByte(d.IO.TypeActive(core.PinType(payload[0])))})

	case protocol.RequestGetLEDEnabled:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		led := core.LED(payload[0])
		if led >= core.LEDCount {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok([]byte{boolByte(d.Config.Snapshot().LEDEnabled[led])})

	case protocol.RequestSetLEDEnabled:
		if len(payload) != 2 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		if !d.Config.SetLEDEnabled(core.LED(payload[0]), payload[1] != 0) {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok([]byte{payload[1] & 1})

	case protocol.RequestGetBuzzerEnabled:
		p.ok([]byte{boolByte(d.Config.Snapshot().BuzzerEnabled)})

	case protocol.RequestSetBuzzerEnabled:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		d.Config.SetBuzzerEnabled(payload[0] != 0)
		p.ok([]byte{payload[0] & 1})

	case protocol.RequestGetBuzzerFrequency:
		p.ok(binary.LittleEndian.AppendUint16(nil, d.Config.Snapshot().BuzzerFrequency))

	case protocol.RequestSetBuzzerFrequency:
		if len(payload) != 2 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		applied := d.Config.SetBuzzerFrequency(binary.LittleEndian.Uint16(payload))
		p.ok(binary.LittleEndian.AppendUint16(nil, applied))

	case protocol.RequestGetTrainerMode:
		p.ok([]byte{boolByte(d.Keyer.TrainerMode())})

	case protocol.RequestSetTrainerMode:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		d.Keyer.SetTrainerMode(payload[0] != 0)
		p.ok([]byte{payload[0] & 1})

	case protocol.RequestAutokey:
		if len(payload) == 0 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		queued := d.Keyer.AutokeyString(string(payload))
		p.ok(binary.LittleEndian.AppendUint16(nil, uint16(queued)))

	case protocol.RequestAutokeyPending:
		p.ok(binary.LittleEndian.AppendUint16(nil, uint16(d.Keyer.AutokeyPending())))

	case protocol.RequestGetQuickMsg:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		msg, ok := d.QuickMsg.Get(int(payload[0]))
		if !ok {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok([]byte(msg))

	case protocol.RequestSetQuickMsg:
		if len(payload) < 2 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		if !d.QuickMsg.Set(int(payload[0]), string(payload[1:])) {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok(nil)

	case protocol.RequestInvalidateQuickMsg:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		if !d.QuickMsg.Invalidate(int(payload[0])) {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok(nil)

	case protocol.RequestPlayQuickMsg:
		if len(payload) != 1 {
			p.reply(protocol.ReplyInvalidPayload, nil)
			return
		}
		if !d.QuickMsg.Play(int(payload[0]), d.Keyer) {
			p.reply(protocol.ReplyInvalidValue, nil)
			return
		}
		p.ok(nil)

	case protocol.RequestRestoreDefaults:
		d.Config.RestoreDefaults()
		d.IO.Reconfigure()
		p.ok(nil)

	default:
		p.reply(protocol.ReplyInvalidMessage, nil)
	}
}

func appendF32(dst []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
}

func getF32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
