package core

import "testing"

type pinMode uint8

const (
	modeUnconfigured pinMode = iota
	modeOutput
	modeInputPullUp
	modeInputPullDown
)

// fakeGPIO implements GPIODriver in memory.
type fakeGPIO struct {
	modes  map[GPIOPin]pinMode
	levels map[GPIOPin]bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		modes:  make(map[GPIOPin]pinMode),
		levels: make(map[GPIOPin]bool),
	}
}

func (f *fakeGPIO) ConfigureOutput(pin GPIOPin) error {
	f.modes[pin] = modeOutput
	return nil
}

func (f *fakeGPIO) ConfigureInputPullUp(pin GPIOPin) error {
	f.modes[pin] = modeInputPullUp
	// An open contact floats to the pull level.
	f.levels[pin] = true
	return nil
}

func (f *fakeGPIO) ConfigureInputPullDown(pin GPIOPin) error {
	f.modes[pin] = modeInputPullDown
	f.levels[pin] = false
	return nil
}

func (f *fakeGPIO) SetPin(pin GPIOPin, value bool) error {
	f.levels[pin] = value
	return nil
}

func (f *fakeGPIO) GetPin(pin GPIOPin) (bool, error) {
	return f.levels[pin], nil
}

// fakeTone implements ToneDriver in memory.
type fakeTone struct {
	freq uint16
	on   bool
}

func (f *fakeTone) SetTone(freq uint16, on bool) {
	f.freq = freq
	f.on = on
}

// testJackPins maps jack contacts to GPIO 2..9, mirroring the real targets.
func testJackPins() [PinCount]GPIOPin {
	var pins [PinCount]GPIOPin
	for i := range pins {
		pins[i] = GPIOPin(2 + i)
	}
	return pins
}

func newTestIO(t *testing.T) (*IO, *fakeGPIO, *ConfigStore) {
	t.Helper()
	storage, _ := newTestStorage(t)
	cfg := NewConfigStore(NewSys(), storage)
	gpio := newFakeGPIO()
	return NewIO(cfg, gpio, testJackPins()), gpio, cfg
}

func TestIOConfiguresPins(t *testing.T) {
	_, gpio, _ := newTestIO(t)

	// Default config: straight key input on jack 0 tip, active low, so it
	// must be pulled up.
	if gpio.modes[2] != modeInputPullUp {
		t.Errorf("straight key pin mode = %v, want pull-up input", gpio.modes[2])
	}
	// Key output on jack 2 tip.
	if gpio.modes[6] != modeOutput {
		t.Errorf("key output pin mode = %v, want output", gpio.modes[6])
	}
}

func TestIOActiveLowInput(t *testing.T) {
	io, gpio, _ := newTestIO(t)

	// Open contact: pulled high, inactive.
	if io.PinActive(PinTRS0Tip) {
		t.Error("open active-low contact reads active")
	}

	// Closed to ground: active.
	gpio.levels[2] = false
	if !io.PinActive(PinTRS0Tip) {
		t.Error("closed active-low contact reads inactive")
	}
}

func TestIOActiveHighInput(t *testing.T) {
	io, gpio, cfg := newTestIO(t)
	cfg.SetPinPolarity(PinTRS0Tip, PolarityActiveHigh)
	io.Reconfigure()

	if gpio.modes[2] != modeInputPullDown {
		t.Errorf("active-high input should be pulled down, mode = %v", gpio.modes[2])
	}
	if io.PinActive(PinTRS0Tip) {
		t.Error("low active-high contact reads active")
	}
	gpio.levels[2] = true
	if !io.PinActive(PinTRS0Tip) {
		t.Error("high active-high contact reads inactive")
	}
}

func TestIOOutputPolarity(t *testing.T) {
	io, gpio, cfg := newTestIO(t)

	// Default key output is active low: logically off drives the line
	// high.
	if gpio.levels[6] != true {
		t.Error("inactive active-low output should drive high")
	}
	io.SetOutput(PinTypeKeyOutput, true)
	if gpio.levels[6] != false {
		t.Error("active active-low output should drive low")
	}

	// Flip the polarity: the logical state re-drives under the new
	// mapping.
	cfg.SetPinPolarity(PinTRS2Tip, PolarityActiveHigh)
	io.Reconfigure()
	if gpio.levels[6] != true {
		t.Error("active active-high output should drive high after reconfigure")
	}
}

func TestIOTypeActiveScansAllPins(t *testing.T) {
	io, gpio, cfg := newTestIO(t)

	// Add a second straight key on jack 3 tip.
	cfg.SetPinType(PinTRS3Tip, PinTypeStraightKey)
	io.Reconfigure()

	if io.TypeActive(PinTypeStraightKey) {
		t.Fatal("no contact closed yet")
	}
	gpio.levels[8] = false // close the second key
	if !io.TypeActive(PinTypeStraightKey) {
		t.Error("closing any contact of the type should read active")
	}
}

func TestIOInputSnapshot(t *testing.T) {
	io, gpio, _ := newTestIO(t)

	snap := io.InputSnapshot()
	if snap.StraightKey || snap.PaddleLeft || snap.PaddleRight {
		t.Fatalf("open contacts gave %+v", snap)
	}

	gpio.levels[4] = false // jack 1 tip: paddle left
	gpio.levels[5] = false // jack 1 ring: paddle right
	snap = io.InputSnapshot()
	if !snap.PaddleLeft || !snap.PaddleRight || snap.StraightKey {
		t.Errorf("snapshot = %+v, want both paddles", snap)
	}
}

func TestIOReassignPin(t *testing.T) {
	io, gpio, cfg := newTestIO(t)

	cfg.SetPinType(PinTRS0Tip, PinTypeKeyOutput)
	io.Reconfigure()
	if gpio.modes[2] != modeOutput {
		t.Errorf("reassigned pin mode = %v, want output", gpio.modes[2])
	}
}

func TestLEDsRespectEnable(t *testing.T) {
	storage, _ := newTestStorage(t)
	cfg := NewConfigStore(NewSys(), storage)
	gpio := newFakeGPIO()
	leds := NewLEDs(cfg, gpio, [LEDCount]GPIOPin{25, 16})

	leds.SetOn(LEDKey, true)
	if !gpio.levels[16] {
		t.Fatal("enabled LED should light")
	}

	// Disabling the LED in config turns the hardware off but keeps the
	// logical state.
	cfg.SetLEDEnabled(LEDKey, false)
	leds.Tick(0)
	if gpio.levels[16] {
		t.Error("disabled LED should be dark")
	}
	if !leds.On(LEDKey) {
		t.Error("logical state should survive a disable")
	}

	cfg.SetLEDEnabled(LEDKey, true)
	leds.Tick(0)
	if !gpio.levels[16] {
		t.Error("re-enabled LED should light again")
	}
}

func TestBuzzerFollowsConfig(t *testing.T) {
	storage, _ := newTestStorage(t)
	cfg := NewConfigStore(NewSys(), storage)
	drv := &fakeTone{}
	buzzer := NewBuzzer(cfg, drv)

	buzzer.SetOn(true)
	if !drv.on || drv.freq != BuzzerFreqDefault {
		t.Fatalf("tone = (%d, %v), want (%d, true)", drv.freq, drv.on, BuzzerFreqDefault)
	}

	cfg.SetBuzzerEnabled(false)
	buzzer.Tick(0)
	if drv.on {
		t.Error("disabled buzzer should be silent")
	}
	if !buzzer.On() {
		t.Error("logical state should survive a disable")
	}

	cfg.SetBuzzerEnabled(true)
	cfg.SetBuzzerFrequency(880)
	buzzer.Tick(0)
	if !drv.on || drv.freq != 880 {
		t.Errorf("tone = (%d, %v), want (880, true)", drv.freq, drv.on)
	}
}
