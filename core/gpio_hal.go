package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
// Input pins must additionally signal EventIOState on any edge so the keyer
// reacts to key closures within the same tick.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// ConfigureInputPullDown configures a pin as a digital input with pull-down resistor
	ConfigureInputPullDown(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin state
	GetPin(pin GPIOPin) (bool, error)
}

// ToneDriver is the abstract side tone generator interface. Targets back it
// with a PWM channel, a DAC, or nothing at all.
type ToneDriver interface {
	// SetTone starts or stops the tone output. freq is in hertz and is
	// only meaningful while on is true.
	SetTone(freq uint16, on bool)
}
