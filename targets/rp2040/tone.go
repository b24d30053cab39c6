//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/tone"
)

// toneDriver implements core.ToneDriver on a PWM-driven speaker.
type toneDriver struct {
	speaker tone.Speaker
}

func newToneDriver(pin machine.Pin) (*toneDriver, error) {
	// GPIO15 sits on PWM slice 7.
	speaker, err := tone.New(machine.PWM7, pin)
	if err != nil {
		return nil, err
	}
	return &toneDriver{speaker: speaker}, nil
}

func (t *toneDriver) SetTone(freq uint16, on bool) {
	if !on || freq == 0 {
		t.speaker.Stop()
		return
	}
	t.speaker.SetPeriod(uint64(1e9) / uint64(freq))
}
