package core

import "testing"

func newTestStorage(t *testing.T) (*Storage, *MemBackend) {
	t.Helper()
	backend := NewMemBackend(4096)
	storage, err := NewStorage(backend)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	return storage, backend
}

func TestDefaultConfigValid(t *testing.T) {
	if !DefaultConfig().valid() {
		t.Error("factory defaults fail validation")
	}
}

func TestConfigStoreDefaultsWhenEmpty(t *testing.T) {
	storage, _ := newTestStorage(t)
	cfg := NewConfigStore(NewSys(), storage)
	if cfg.Snapshot() != DefaultConfig() {
		t.Error("empty storage should yield the default configuration")
	}
}

func TestConfigStoreClamping(t *testing.T) {
	storage, _ := newTestStorage(t)
	cfg := NewConfigStore(NewSys(), storage)

	if got := cfg.SetWPM(0.5); got != WPMMin {
		t.Errorf("SetWPM(0.5) applied %v, want clamp to %v", got, WPMMin)
	}
	if got := cfg.SetWPM(250); got != WPMMax {
		t.Errorf("SetWPM(250) applied %v, want clamp to %v", got, WPMMax)
	}
	if got := cfg.SetWPM(25); got != 25 {
		t.Errorf("SetWPM(25) applied %v, want 25", got)
	}

	if got := cfg.SetElementScale(ElementDash, 0); got != ElementScaleMin {
		t.Errorf("scale clamped to %v, want %v", got, ElementScaleMin)
	}
	if got := cfg.SetElementScale(ElementDash, 99); got != ElementScaleMax {
		t.Errorf("scale clamped to %v, want %v", got, ElementScaleMax)
	}

	if got := cfg.SetBuzzerFrequency(1); got != BuzzerFreqMin {
		t.Errorf("frequency clamped to %v, want %v", got, BuzzerFreqMin)
	}
	if got := cfg.SetBuzzerFrequency(60000); got != BuzzerFreqMax {
		t.Errorf("frequency clamped to %v, want %v", got, BuzzerFreqMax)
	}
}

func TestConfigStoreRejectsBadEnums(t *testing.T) {
	storage, _ := newTestStorage(t)
	cfg := NewConfigStore(NewSys(), storage)

	if cfg.SetPaddleMode(PaddleMode(99)) {
		t.Error("unknown paddle mode accepted")
	}
	if cfg.SetPinType(Pin(99), PinTypeStraightKey) {
		t.Error("unknown pin accepted")
	}
	if cfg.SetPinType(PinTRS0Tip, PinType(99)) {
		t.Error("unknown pin type accepted")
	}
	if cfg.SetPinPolarity(PinTRS0Tip, Polarity(99)) {
		t.Error("unknown polarity accepted")
	}
	if cfg.SetLEDEnabled(LED(99), true) {
		t.Error("unknown LED accepted")
	}
}

func TestConfigStorePersistence(t *testing.T) {
	storage, backend := newTestStorage(t)
	cfg := NewConfigStore(NewSys(), storage)

	cfg.SetWPM(33)
	cfg.SetInvertPaddles(true)
	cfg.SetBuzzerFrequency(880)
	cfg.SetPinType(PinTRS3Ring, PinTypePaddleRight)
	cfg.Flush()

	// Reload through a fresh store over the same backend.
	storage2, err := NewStorage(backend)
	if err != nil {
		t.Fatalf("reopen storage: %v", err)
	}
	got := NewConfigStore(NewSys(), storage2).Snapshot()

	if got.WPM != 33 {
		t.Errorf("reloaded WPM = %v, want 33", got.WPM)
	}
	if !got.InvertPaddles {
		t.Error("reloaded InvertPaddles = false, want true")
	}
	if got.BuzzerFrequency != 880 {
		t.Errorf("reloaded frequency = %d, want 880", got.BuzzerFrequency)
	}
	if got.PinTypes[PinTRS3Ring] != PinTypePaddleRight {
		t.Errorf("reloaded pin type = %v, want paddle right", got.PinTypes[PinTRS3Ring])
	}
}

func TestConfigStoreCorruptionFallsBack(t *testing.T) {
	storage, backend := newTestStorage(t)
	cfg := NewConfigStore(NewSys(), storage)
	cfg.SetWPM(33)
	cfg.Flush()

	// Flip a payload bit so the record fails its CRC.
	var b [1]byte
	backend.ReadAt(addrConfig+recordHeaderSize, b[:])
	b[0] ^= 0x10
	backend.WriteAt(addrConfig+recordHeaderSize, b[:])

	storage2, err := NewStorage(backend)
	if err != nil {
		t.Fatalf("reopen storage: %v", err)
	}
	got := NewConfigStore(NewSys(), storage2).Snapshot()
	if got != DefaultConfig() {
		t.Error("corrupt config record should fall back to defaults")
	}
}

func TestConfigStoreFlushThrottle(t *testing.T) {
	storage, _ := newTestStorage(t)
	sys := NewSys()
	cfg := NewConfigStore(sys, storage)

	cfg.SetWPM(33)

	// Before the delay: nothing stored yet.
	cfg.Tick(configFlushDelay - 1)
	if _, ok := storage.LoadConfig(configVersion); ok {
		t.Error("config flushed before the throttle delay")
	}

	cfg.Tick(configFlushDelay)
	if _, ok := storage.LoadConfig(configVersion); !ok {
		t.Error("config not flushed after the throttle delay")
	}
}

func TestConfigStoreRestoreDefaults(t *testing.T) {
	storage, _ := newTestStorage(t)
	cfg := NewConfigStore(NewSys(), storage)
	cfg.SetWPM(33)
	cfg.RestoreDefaults()

	if cfg.Snapshot() != DefaultConfig() {
		t.Error("RestoreDefaults did not restore the factory configuration")
	}
	// And it persists immediately.
	data, ok := storage.LoadConfig(configVersion)
	if !ok {
		t.Fatal("defaults not flushed to storage")
	}
	stored, ok := unmarshalConfig(data)
	if !ok || stored != DefaultConfig() {
		t.Error("stored defaults differ from factory configuration")
	}
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WPM = 42.5
	cfg.ElementScales[ElementWordSpace] = 1.5
	cfg.PaddleMode = PaddleModeIambic
	cfg.LEDEnabled[LEDKey] = false

	got, ok := unmarshalConfig(cfg.marshal())
	if !ok {
		t.Fatal("unmarshal failed")
	}
	if got != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}
