// Jack I/O.
// The device exposes four TRS jacks, each with a tip and a ring contact.
// What a contact does (straight key, paddle side, key output) and which
// electrical level counts as active are both configuration, not wiring:
// the IO module maps between logical pin functions and physical GPIO levels
// in both directions.
package core

// Pin identifies one TRS jack contact.
type Pin uint8

const (
	PinTRS0Tip Pin = iota
	PinTRS0Ring
	PinTRS1Tip
	PinTRS1Ring
	PinTRS2Tip
	PinTRS2Ring
	PinTRS3Tip
	PinTRS3Ring

	// PinCount is the number of jack contacts.
	PinCount
)

// PinType is the configured function of a jack contact.
type PinType uint8

const (
	PinTypeNone PinType = iota
	PinTypeStraightKey
	PinTypePaddleLeft
	PinTypePaddleRight
	PinTypeKeyOutput

	pinTypeCount
)

// IsInput reports whether the pin type reads an external contact.
func (t PinType) IsInput() bool {
	switch t {
	case PinTypeStraightKey, PinTypePaddleLeft, PinTypePaddleRight:
		return true
	}
	return false
}

// IsOutput reports whether the pin type drives an external line.
func (t PinType) IsOutput() bool {
	return t == PinTypeKeyOutput
}

// Polarity maps between logical activation and electrical level.
type Polarity uint8

const (
	// PolarityActiveLow treats a low level as active. This is the usual
	// wiring for keys and paddles, which close the contact to ground
	// against a pull-up.
	PolarityActiveLow Polarity = iota

	// PolarityActiveHigh treats a high level as active.
	PolarityActiveHigh

	polarityCount
)

// InputSnapshot is the polarity-resolved state of the three key inputs,
// captured at a single instant.
type InputSnapshot struct {
	StraightKey bool
	PaddleLeft  bool
	PaddleRight bool
}

// InputSource supplies input snapshots to the keyer.
type InputSource interface {
	InputSnapshot() InputSnapshot
}

// IO owns the jack contacts. It holds the logical state of every output pin
// so that a configuration change (polarity flip, function reassignment) can
// re-drive the hardware without consulting the modules that own the logical
// state.
type IO struct {
	cfg  *ConfigStore
	gpio GPIODriver

	// hw maps each jack contact to its GPIO pin; fixed per target.
	hw [PinCount]GPIOPin

	applied [PinCount]PinType
	polar   [PinCount]Polarity
	outOn   [PinCount]bool
}

// NewIO configures every jack contact per the current configuration and
// returns the IO module. hw gives the target's physical pin assignment.
func NewIO(cfg *ConfigStore, gpio GPIODriver, hw [PinCount]GPIOPin) *IO {
	io := &IO{cfg: cfg, gpio: gpio, hw: hw}
	for p := Pin(0); p < PinCount; p++ {
		io.applied[p] = pinTypeCount // force initial configure
	}
	io.Reconfigure()
	return io
}

// Reconfigure applies the configured pin functions and polarities to the
// hardware. Pins whose function or polarity changed are reprogrammed;
// outputs are re-driven to their logical state under the new polarity.
func (io *IO) Reconfigure() {
	cfg := io.cfg.Snapshot()
	for p := Pin(0); p < PinCount; p++ {
		t := cfg.PinTypes[p]
		pol := cfg.PinPolarities[p]
		if io.applied[p] == t && io.polar[p] == pol {
			continue
		}
		io.applied[p] = t
		io.polar[p] = pol
		switch {
		case t.IsInput():
			// Pull toward the inactive level so an open contact reads
			// inactive.
			var err error
			if pol == PolarityActiveLow {
				err = io.gpio.ConfigureInputPullUp(io.hw[p])
			} else {
				err = io.gpio.ConfigureInputPullDown(io.hw[p])
			}
			if err != nil {
				FailCode(FailCodeInvalidPin)
			}
		case t.IsOutput():
			if err := io.gpio.ConfigureOutput(io.hw[p]); err != nil {
				FailCode(FailCodeInvalidPin)
			}
			io.driveOutput(p)
		default:
			// Unassigned contacts float as pulled-up inputs.
			if err := io.gpio.ConfigureInputPullUp(io.hw[p]); err != nil {
				FailCode(FailCodeInvalidPin)
			}
		}
	}
}

// Tick picks up configuration changes. Runs on the slow cadence; the
// reconfigure itself is a no-op when nothing changed.
func (io *IO) Tick(Tick) {
	io.Reconfigure()
}

// PinActive returns the polarity-resolved state of one contact.
func (io *IO) PinActive(p Pin) bool {
	if p >= PinCount {
		FailCode(FailCodeInvalidPin)
	}
	if io.applied[p].IsOutput() {
		return io.outOn[p]
	}
	level, err := io.gpio.GetPin(io.hw[p])
	if err != nil {
		FailCode(FailCodeInvalidPin)
	}
	return level == (io.polar[p] == PolarityActiveHigh)
}

// TypeActive reports whether any contact configured with the given function
// is active.
func (io *IO) TypeActive(t PinType) bool {
	for p := Pin(0); p < PinCount; p++ {
		if io.applied[p] == t && io.PinActive(p) {
			return true
		}
	}
	return false
}

// SetOutput drives every contact configured with the given output function
// to the logical state on.
func (io *IO) SetOutput(t PinType, on bool) {
	if !t.IsOutput() {
		FailCode(FailCodeInvalidPin)
	}
	for p := Pin(0); p < PinCount; p++ {
		if io.applied[p] != t {
			continue
		}
		io.outOn[p] = on
		io.driveOutput(p)
	}
}

func (io *IO) driveOutput(p Pin) {
	level := io.outOn[p] == (io.polar[p] == PolarityActiveHigh)
	if err := io.gpio.SetPin(io.hw[p], level); err != nil {
		FailCode(FailCodeInvalidPin)
	}
}

// InputSnapshot captures the three key inputs in one pass.
func (io *IO) InputSnapshot() InputSnapshot {
	return InputSnapshot{
		StraightKey: io.TypeActive(PinTypeStraightKey),
		PaddleLeft:  io.TypeActive(PinTypePaddleLeft),
		PaddleRight: io.TypeActive(PinTypePaddleRight),
	}
}
