// Package console runs the line-oriented debug console on the secondary
// serial port. It is a human interface: plain text, forgiving parsing,
// nothing here is machine-parseable or versioned.
package console

import (
	"strconv"
	"strings"

	"superkey/core"
)

const maxLine = 96

// Console accumulates input into lines and executes each line as a command.
type Console struct {
	dev    *core.Device
	serial core.SerialDriver

	line    [maxLine]byte
	lineLen int
}

// New returns a console bound to the device and serial driver. The caller
// registers PumpRx on the console's RX event.
func New(dev *core.Device, serial core.SerialDriver) *Console {
	return &Console{dev: dev, serial: serial}
}

// PumpRx drains the serial driver, echoing input and executing completed
// lines.
func (c *Console) PumpRx() {
	for {
		b, ok := c.serial.ReadByte()
		if !ok {
			return
		}
		switch b {
		case '\r', '\n':
			c.serial.Write([]byte("\r\n"))
			line := string(c.line[:c.lineLen])
			c.lineLen = 0
			if out := c.Execute(line); out != "" {
				c.serial.Write([]byte(out))
			}
			c.serial.Write([]byte("> "))
		case 0x08, 0x7f: // backspace
			if c.lineLen > 0 {
				c.lineLen--
				c.serial.Write([]byte("\b \b"))
			}
		default:
			if c.lineLen < maxLine && b >= 0x20 && b < 0x7f {
				c.line[c.lineLen] = b
				c.lineLen++
				c.serial.Write([]byte{b})
			}
		}
	}
}

// Execute runs one command line and returns its output, already terminated
// with CRLF line endings.
func (c *Console) Execute(line string) string {
	args := strings.Fields(line)
	if len(args) == 0 {
		return ""
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "help":
		return helpText

	case "version":
		return "superkey " + core.VersionString() + "\r\n"

	case "tick":
		return strconv.FormatUint(uint64(c.dev.Sys.Tick()), 10) + "\r\n"

	case "wpm":
		if len(args) == 0 {
			return fmtF32(float32(c.dev.Config.Snapshot().WPM)) + "\r\n"
		}
		f, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return "bad value\r\n"
		}
		applied := c.dev.Config.SetWPM(core.WPM(f))
		return fmtF32(float32(applied)) + "\r\n"

	case "scale":
		if len(args) == 0 {
			return "usage: scale <element> [value]\r\n"
		}
		el, ok := elementByName(args[0])
		if !ok {
			return "bad element\r\n"
		}
		if len(args) == 1 {
			return fmtF32(float32(c.dev.Config.Snapshot().ElementScales[el])) + "\r\n"
		}
		f, err := strconv.ParseFloat(args[1], 32)
		if err != nil {
			return "bad value\r\n"
		}
		applied := c.dev.Config.SetElementScale(el, core.ElementScale(f))
		return fmtF32(float32(applied)) + "\r\n"

	case "invert":
		if len(args) == 0 {
			return onOff(c.dev.Config.Snapshot().InvertPaddles) + "\r\n"
		}
		v, ok := parseOnOff(args[0])
		if !ok {
			return "bad value\r\n"
		}
		c.dev.Config.SetInvertPaddles(v)
		return onOff(v) + "\r\n"

	case "mode":
		if len(args) == 0 {
			return modeName(c.dev.Config.Snapshot().PaddleMode) + "\r\n"
		}
		var m core.PaddleMode
		switch strings.ToLower(args[0]) {
		case "ultimatic":
			m = core.PaddleModeUltimatic
		case "iambic":
			m = core.PaddleModeIambic
		default:
			return "bad mode\r\n"
		}
		c.dev.Config.SetPaddleMode(m)
		return modeName(m) + "\r\n"

	case "buzzer":
		if len(args) == 0 {
			cfg := c.dev.Config.Snapshot()
			return onOff(cfg.BuzzerEnabled) + " " +
				strconv.Itoa(int(cfg.BuzzerFrequency)) + "hz\r\n"
		}
		if args[0] == "freq" {
			if len(args) < 2 {
				return "usage: buzzer freq <hz>\r\n"
			}
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 || n > 0xffff {
				return "bad value\r\n"
			}
			applied := c.dev.Config.SetBuzzerFrequency(uint16(n))
			return strconv.Itoa(int(applied)) + "hz\r\n"
		}
		v, ok := parseOnOff(args[0])
		if !ok {
			return "bad value\r\n"
		}
		c.dev.Config.SetBuzzerEnabled(v)
		return onOff(v) + "\r\n"

	case "trainer":
		if len(args) == 0 {
			return onOff(c.dev.Keyer.TrainerMode()) + "\r\n"
		}
		v, ok := parseOnOff(args[0])
		if !ok {
			return "bad value\r\n"
		}
		c.dev.Keyer.SetTrainerMode(v)
		return onOff(v) + "\r\n"

	case "keyer":
		k := c.dev.Keyer
		out := "state=" + k.State().String() +
			" keyed=" + onOff(k.Keyed()) +
			" pending=" + strconv.Itoa(k.AutokeyPending())
		if k.Panicked() {
			out += " PANIC"
		}
		return out + "\r\n"

	case "send":
		if len(args) == 0 {
			return "usage: send <text>\r\n"
		}
		text := strings.Join(args, " ")
		queued := c.dev.Keyer.AutokeyString(text)
		return "queued " + strconv.Itoa(queued) + " of " +
			strconv.Itoa(len(text)) + " chars\r\n"

	case "panic":
		c.dev.Keyer.Panic()
		return "key released\r\n"

	case "msg":
		return c.cmdMsg(args)

	case "flush":
		c.dev.Config.Flush()
		return "flushed\r\n"

	case "defaults":
		c.dev.Config.RestoreDefaults()
		c.dev.IO.Reconfigure()
		return "restored\r\n"

	default:
		return "unknown command, try help\r\n"
	}
}

func (c *Console) cmdMsg(args []string) string {
	if len(args) == 0 {
		return "usage: msg <slot> [text] | msg clear <slot> | msg play <slot>\r\n"
	}
	switch args[0] {
	case "clear":
		if len(args) < 2 {
			return "usage: msg clear <slot>\r\n"
		}
		slot, err := strconv.Atoi(args[1])
		if err != nil || !c.dev.QuickMsg.Invalidate(slot) {
			return "bad slot\r\n"
		}
		return "cleared\r\n"
	case "play":
		if len(args) < 2 {
			return "usage: msg play <slot>\r\n"
		}
		slot, err := strconv.Atoi(args[1])
		if err != nil {
			return "bad slot\r\n"
		}
		if !c.dev.QuickMsg.Play(slot, c.dev.Keyer) {
			return "empty slot or queue full\r\n"
		}
		return "playing\r\n"
	}

	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return "bad slot\r\n"
	}
	if len(args) == 1 {
		msg, ok := c.dev.QuickMsg.Get(slot)
		if !ok {
			return "empty\r\n"
		}
		return msg + "\r\n"
	}
	if !c.dev.QuickMsg.Set(slot, strings.Join(args[1:], " ")) {
		return "rejected\r\n"
	}
	return "stored\r\n"
}

const helpText = "commands:\r\n" +
	"  wpm [value]            get or set speed\r\n" +
	"  scale <el> [value]     get or set element scale\r\n" +
	"  invert [on|off]        swap paddles\r\n" +
	"  mode [ultimatic|iambic]\r\n" +
	"  buzzer [on|off]        side tone enable\r\n" +
	"  buzzer freq <hz>       side tone frequency\r\n" +
	"  trainer [on|off]       suppress key output\r\n" +
	"  keyer                  keyer status\r\n" +
	"  send <text>            key text\r\n" +
	"  msg <slot> [text]      quick messages\r\n" +
	"  msg clear|play <slot>\r\n" +
	"  panic                  release key now\r\n" +
	"  flush                  write configuration now\r\n" +
	"  defaults               restore configuration\r\n" +
	"  tick | version | help\r\n"

func fmtF32(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 1, 32)
}

func elementByName(s string) (core.Element, bool) {
	switch strings.ToLower(s) {
	case "dot":
		return core.ElementDot, true
	case "dash":
		return core.ElementDash, true
	case "espace":
		return core.ElementElementSpace, true
	case "lspace":
		return core.ElementLetterSpace, true
	case "wspace":
		return core.ElementWordSpace, true
	}
	return 0, false
}

func modeName(m core.PaddleMode) string {
	if m == core.PaddleModeIambic {
		return "iambic"
	}
	return "ultimatic"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, true
	case "off", "0", "false":
		return false, true
	}
	return false, false
}
