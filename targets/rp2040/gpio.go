//go:build rp2040

package main

import (
	"machine"

	"superkey/core"
)

// pinDriver implements core.GPIODriver on machine.Pin. Input pins get an
// edge interrupt that enqueues the IO event, so the keyer reacts to a key
// closure without waiting for the next tick.
type pinDriver struct {
	sys *core.Sys
}

func (d *pinDriver) ConfigureOutput(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (d *pinDriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	return d.configureInput(pin, machine.PinInputPullup)
}

func (d *pinDriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	return d.configureInput(pin, machine.PinInputPulldown)
}

func (d *pinDriver) configureInput(pin core.GPIOPin, mode machine.PinMode) error {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: mode})
	return p.SetInterrupt(machine.PinToggle, d.onEdge)
}

func (d *pinDriver) onEdge(machine.Pin) {
	if d.sys != nil {
		d.sys.EnqueueEvent(core.EventIOState)
	}
}

func (d *pinDriver) SetPin(pin core.GPIOPin, value bool) error {
	machine.Pin(pin).Set(value)
	return nil
}

func (d *pinDriver) GetPin(pin core.GPIOPin) (bool, error) {
	return machine.Pin(pin).Get(), nil
}
