package core

// LED identifies one indicator LED.
type LED uint8

const (
	// LEDStatus blinks the heartbeat and signals fatal errors.
	LEDStatus LED = iota

	// LEDKey mirrors the keyer output.
	LEDKey

	// LEDCount is the number of LEDs.
	LEDCount
)

// LEDs drives the indicator LEDs. Logical state is tracked separately from
// the hardware so a disabled LED remembers its state and lights up again
// when re-enabled.
type LEDs struct {
	cfg  *ConfigStore
	gpio GPIODriver
	hw   [LEDCount]GPIOPin
	on   [LEDCount]bool
}

// NewLEDs configures the LED pins as outputs, all off.
func NewLEDs(cfg *ConfigStore, gpio GPIODriver, hw [LEDCount]GPIOPin) *LEDs {
	l := &LEDs{cfg: cfg, gpio: gpio, hw: hw}
	for led := LED(0); led < LEDCount; led++ {
		if err := gpio.ConfigureOutput(hw[led]); err != nil {
			FailCode(FailCodeInvalidPin)
		}
		l.drive(led)
	}
	return l
}

// SetOn sets an LED's logical state.
func (l *LEDs) SetOn(led LED, on bool) {
	if led >= LEDCount {
		FailCode(FailCodeInvalidPin)
	}
	l.on[led] = on
	l.drive(led)
}

// Toggle flips an LED's logical state.
func (l *LEDs) Toggle(led LED) {
	if led >= LEDCount {
		FailCode(FailCodeInvalidPin)
	}
	l.on[led] = !l.on[led]
	l.drive(led)
}

// On returns an LED's logical state.
func (l *LEDs) On(led LED) bool {
	if led >= LEDCount {
		FailCode(FailCodeInvalidPin)
	}
	return l.on[led]
}

// Tick re-drives the LEDs so enable/disable configuration changes take
// effect. Runs on the slow cadence.
func (l *LEDs) Tick(Tick) {
	for led := LED(0); led < LEDCount; led++ {
		l.drive(led)
	}
}

func (l *LEDs) drive(led LED) {
	lit := l.on[led] && l.cfg.Snapshot().LEDEnabled[led]
	if err := l.gpio.SetPin(l.hw[led], lit); err != nil {
		FailCode(FailCodeInvalidPin)
	}
}
