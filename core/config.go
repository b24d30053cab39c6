// Device configuration.
// A ConfigStore owns the live Config value, validates or clamps every write,
// and persists changes to storage. Writes are throttled: a dirty config is
// flushed a few seconds after it first became dirty, so a host dragging a
// speed slider produces one storage write instead of hundreds.
package core

import (
	"encoding/binary"
	"math"
)

// PaddleMode selects how a paddle squeeze is resolved.
type PaddleMode uint8

const (
	// PaddleModeUltimatic keys the element of whichever paddle was pressed
	// first, for as long as the squeeze lasts.
	PaddleModeUltimatic PaddleMode = iota

	// PaddleModeIambic alternates dots and dashes during a squeeze.
	PaddleModeIambic

	paddleModeCount
)

// Config is the complete device configuration.
type Config struct {
	WPM           WPM
	ElementScales ElementScales
	InvertPaddles bool

	// PaddleMode is stored and reported but not yet consulted: the keyer
	// resolves every squeeze as ultimatic regardless of this setting.
	// TODO: implement iambic alternation in the keyer's squeeze handling.
	PaddleMode PaddleMode

	PinTypes      [PinCount]PinType
	PinPolarities [PinCount]Polarity

	LEDEnabled [LEDCount]bool

	BuzzerEnabled   bool
	BuzzerFrequency uint16
}

const (
	BuzzerFreqMin     uint16 = 100
	BuzzerFreqMax     uint16 = 5000
	BuzzerFreqDefault uint16 = 700
)

// DefaultConfig returns the factory configuration: TRS jack 0 wired as a
// straight key on the tip, jack 1 as a paddle pair, jack 2 as the key
// output, all inputs active low (closed to ground).
func DefaultConfig() Config {
	cfg := Config{
		WPM:             WPMDefault,
		ElementScales:   DefaultElementScales(),
		BuzzerEnabled:   true,
		BuzzerFrequency: BuzzerFreqDefault,
	}
	for i := range cfg.PinPolarities {
		cfg.PinPolarities[i] = PolarityActiveLow
	}
	cfg.PinTypes[PinTRS0Tip] = PinTypeStraightKey
	cfg.PinTypes[PinTRS1Tip] = PinTypePaddleLeft
	cfg.PinTypes[PinTRS1Ring] = PinTypePaddleRight
	cfg.PinTypes[PinTRS2Tip] = PinTypeKeyOutput
	for i := range cfg.LEDEnabled {
		cfg.LEDEnabled[i] = true
	}
	return cfg
}

// valid reports whether every field is in range.
func (c Config) valid() bool {
	if c.WPM < WPMMin || c.WPM > WPMMax {
		return false
	}
	for _, s := range c.ElementScales {
		if s < ElementScaleMin || s > ElementScaleMax {
			return false
		}
	}
	if c.PaddleMode >= paddleModeCount {
		return false
	}
	for _, t := range c.PinTypes {
		if t >= pinTypeCount {
			return false
		}
	}
	for _, p := range c.PinPolarities {
		if p >= polarityCount {
			return false
		}
	}
	if c.BuzzerFrequency < BuzzerFreqMin || c.BuzzerFrequency > BuzzerFreqMax {
		return false
	}
	return true
}

// configVersion tags the marshaled layout; bump it when the layout changes
// so stale stored configs read back as absent.
const configVersion byte = 1

const configDataSize = 4 + 4*int(ElementCount) + 2 + int(PinCount)*2 + int(LEDCount) + 3

func (c Config) marshal() []byte {
	buf := make([]byte, 0, configDataSize)
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(c.WPM)))
	for _, s := range c.ElementScales {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(s)))
	}
	buf = append(buf, boolByte(c.InvertPaddles), byte(c.PaddleMode))
	for _, t := range c.PinTypes {
		buf = append(buf, byte(t))
	}
	for _, p := range c.PinPolarities {
		buf = append(buf, byte(p))
	}
	for _, e := range c.LEDEnabled {
		buf = append(buf, boolByte(e))
	}
	buf = append(buf, boolByte(c.BuzzerEnabled))
	buf = binary.LittleEndian.AppendUint16(buf, c.BuzzerFrequency)
	return buf
}

func unmarshalConfig(data []byte) (Config, bool) {
	if len(data) != configDataSize {
		return Config{}, false
	}
	var c Config
	c.WPM = WPM(math.Float32frombits(binary.LittleEndian.Uint32(data)))
	data = data[4:]
	for i := range c.ElementScales {
		c.ElementScales[i] = ElementScale(math.Float32frombits(binary.LittleEndian.Uint32(data)))
		data = data[4:]
	}
	c.InvertPaddles = data[0] != 0
	c.PaddleMode = PaddleMode(data[1])
	data = data[2:]
	for i := range c.PinTypes {
		c.PinTypes[i] = PinType(data[0])
		data = data[1:]
	}
	for i := range c.PinPolarities {
		c.PinPolarities[i] = Polarity(data[0])
		data = data[1:]
	}
	for i := range c.LEDEnabled {
		c.LEDEnabled[i] = data[0] != 0
		data = data[1:]
	}
	c.BuzzerEnabled = data[0] != 0
	c.BuzzerFrequency = binary.LittleEndian.Uint16(data[1:])
	return c, true
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// configFlushDelay is how long a dirty config sits in RAM before it is
// written back to storage.
const configFlushDelay = 5 * TicksPerSecond

// ConfigStore owns the live configuration.
type ConfigStore struct {
	sys     *Sys
	storage *Storage
	cur     Config
	dirty   bool
	dirtyAt Tick
}

// NewConfigStore loads the stored configuration, falling back to defaults if
// nothing valid is stored.
func NewConfigStore(sys *Sys, storage *Storage) *ConfigStore {
	c := &ConfigStore{sys: sys, storage: storage, cur: DefaultConfig()}
	if data, ok := storage.LoadConfig(configVersion); ok {
		if cfg, ok := unmarshalConfig(data); ok && cfg.valid() {
			c.cur = cfg
		}
	}
	return c
}

// Snapshot returns a copy of the current configuration.
func (c *ConfigStore) Snapshot() Config {
	return c.cur
}

func (c *ConfigStore) markDirty() {
	if !c.dirty {
		c.dirty = true
		c.dirtyAt = c.sys.Tick()
	}
}

// Tick flushes a dirty configuration once the throttle delay has passed.
func (c *ConfigStore) Tick(now Tick) {
	if c.dirty && Elapsed(now, c.dirtyAt) >= configFlushDelay {
		c.Flush()
	}
}

// Flush writes the configuration to storage immediately.
func (c *ConfigStore) Flush() {
	if err := c.storage.SaveConfig(configVersion, c.cur.marshal()); err == nil {
		c.dirty = false
	}
}

// RestoreDefaults replaces the configuration with factory defaults and
// flushes immediately.
func (c *ConfigStore) RestoreDefaults() {
	c.cur = DefaultConfig()
	c.markDirty()
	c.Flush()
}

// SetWPM sets the keying speed, clamped to the supported range, and returns
// the value actually applied.
func (c *ConfigStore) SetWPM(w WPM) WPM {
	if w < WPMMin {
		w = WPMMin
	} else if w > WPMMax {
		w = WPMMax
	}
	c.cur.WPM = w
	c.markDirty()
	return w
}

// SetElementScale sets one element's scale factor, clamped to the supported
// range, and returns the value actually applied.
func (c *ConfigStore) SetElementScale(el Element, s ElementScale) ElementScale {
	if el >= ElementCount {
		FailCode(FailCodeInvalidElement)
	}
	if s < ElementScaleMin {
		s = ElementScaleMin
	} else if s > ElementScaleMax {
		s = ElementScaleMax
	}
	c.cur.ElementScales[el] = s
	c.markDirty()
	return s
}

// SetInvertPaddles swaps the dot and dash paddles.
func (c *ConfigStore) SetInvertPaddles(invert bool) {
	c.cur.InvertPaddles = invert
	c.markDirty()
}

// SetPaddleMode sets the squeeze mode. Returns false for an unknown mode.
func (c *ConfigStore) SetPaddleMode(m PaddleMode) bool {
	if m >= paddleModeCount {
		return false
	}
	c.cur.PaddleMode = m
	c.markDirty()
	return true
}

// SetPinType assigns a function to a jack pin. Returns false for an unknown
// pin or type.
func (c *ConfigStore) SetPinType(p Pin, t PinType) bool {
	if p >= PinCount || t >= pinTypeCount {
		return false
	}
	c.cur.PinTypes[p] = t
	c.markDirty()
	return true
}

// SetPinPolarity assigns a polarity to a jack pin. Returns false for an
// unknown pin or polarity.
func (c *ConfigStore) SetPinPolarity(p Pin, pol Polarity) bool {
	if p >= PinCount || pol >= polarityCount {
		return false
	}
	c.cur.PinPolarities[p] = pol
	c.markDirty()
	return true
}

// SetLEDEnabled enables or disables an LED. Returns false for an unknown
// LED.
func (c *ConfigStore) SetLEDEnabled(led LED, enabled bool) bool {
	if led >= LEDCount {
		return false
	}
	c.cur.LEDEnabled[led] = enabled
	c.markDirty()
	return true
}

// SetBuzzerEnabled enables or disables the side tone buzzer.
func (c *ConfigStore) SetBuzzerEnabled(enabled bool) {
	c.cur.BuzzerEnabled = enabled
	c.markDirty()
}

// SetBuzzerFrequency sets the side tone frequency in hertz, clamped to the
// supported range, and returns the value actually applied.
func (c *ConfigStore) SetBuzzerFrequency(freq uint16) uint16 {
	if freq < BuzzerFreqMin {
		freq = BuzzerFreqMin
	} else if freq > BuzzerFreqMax {
		freq = BuzzerFreqMax
	}
	c.cur.BuzzerFrequency = freq
	c.markDirty()
	return freq
}
