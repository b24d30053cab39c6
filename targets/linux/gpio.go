//go:build linux

package main

import (
	"github.com/warthog618/go-gpiocdev"

	"superkey/core"
)

// chipDriver implements core.GPIODriver on the Linux GPIO character device.
// Reconfiguring a pin releases its line and requests it again with the new
// direction and bias; input lines watch both edges and enqueue the IO event.
type chipDriver struct {
	chip  *gpiocdev.Chip
	sys   *core.Sys
	lines map[core.GPIOPin]*gpiocdev.Line
}

func newChipDriver(name string) (*chipDriver, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, err
	}
	return &chipDriver{chip: chip, lines: make(map[core.GPIOPin]*gpiocdev.Line)}, nil
}

func (d *chipDriver) request(pin core.GPIOPin, opts ...gpiocdev.LineReqOption) error {
	if l, ok := d.lines[pin]; ok {
		l.Close()
		delete(d.lines, pin)
	}
	l, err := d.chip.RequestLine(int(pin), opts...)
	if err != nil {
		return err
	}
	d.lines[pin] = l
	return nil
}

func (d *chipDriver) ConfigureOutput(pin core.GPIOPin) error {
	return d.request(pin, gpiocdev.AsOutput(0))
}

func (d *chipDriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	return d.request(pin, gpiocdev.AsInput, gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges, gpiocdev.WithEventHandler(d.onEdge))
}

func (d *chipDriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	return d.request(pin, gpiocdev.AsInput, gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges, gpiocdev.WithEventHandler(d.onEdge))
}

func (d *chipDriver) onEdge(gpiocdev.LineEvent) {
	if d.sys != nil {
		d.sys.EnqueueEvent(core.EventIOState)
	}
}

func (d *chipDriver) SetPin(pin core.GPIOPin, value bool) error {
	l, ok := d.lines[pin]
	if !ok {
		return gpiocdev.ErrClosed
	}
	v := 0
	if value {
		v = 1
	}
	return l.SetValue(v)
}

func (d *chipDriver) GetPin(pin core.GPIOPin) (bool, error) {
	l, ok := d.lines[pin]
	if !ok {
		return false, gpiocdev.ErrClosed
	}
	v, err := l.Value()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (d *chipDriver) Close() {
	for _, l := range d.lines {
		l.Close()
	}
	d.chip.Close()
}

// gpioTone implements core.ToneDriver by switching a GPIO line that feeds an
// external active buzzer. The frequency setting has no effect on this
// target; the buzzer's own oscillator fixes the pitch.
type gpioTone struct {
	gpio       *chipDriver
	pin        core.GPIOPin
	configured bool
}

func (t *gpioTone) SetTone(freq uint16, on bool) {
	if !t.configured {
		if err := t.gpio.ConfigureOutput(t.pin); err != nil {
			return
		}
		t.configured = true
	}
	t.gpio.SetPin(t.pin, on)
}
