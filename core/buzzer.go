package core

// Buzzer drives the side tone generator. Like the LEDs, logical state and
// hardware state are separate: the side tone follows the keyer even while
// the buzzer is disabled, so enabling it mid-element sounds immediately.
type Buzzer struct {
	cfg *ConfigStore
	drv ToneDriver
	on  bool
}

// NewBuzzer returns a silent buzzer.
func NewBuzzer(cfg *ConfigStore, drv ToneDriver) *Buzzer {
	b := &Buzzer{cfg: cfg, drv: drv}
	b.drive()
	return b
}

// SetOn sets the buzzer's logical state.
func (b *Buzzer) SetOn(on bool) {
	b.on = on
	b.drive()
}

// On returns the buzzer's logical state.
func (b *Buzzer) On() bool {
	return b.on
}

// Tick re-drives the tone so frequency and enable configuration changes
// take effect. Runs on the slow cadence.
func (b *Buzzer) Tick(Tick) {
	b.drive()
}

func (b *Buzzer) drive() {
	cfg := b.cfg.Snapshot()
	b.drv.SetTone(cfg.BuzzerFrequency, b.on && cfg.BuzzerEnabled)
}
