package core

import "testing"

func TestTicksForWPMStandardSpeeds(t *testing.T) {
	// At 20 WPM one unit is 60000/(20*50) = 60 ms.
	ticks := TicksForWPM(20, DefaultElementScales())

	expected := ElementTicks{
		ElementDot:          60,
		ElementDash:         180,
		ElementElementSpace: 60,
		ElementLetterSpace:  180,
		ElementWordSpace:    420,
	}
	if ticks != expected {
		t.Errorf("20 WPM ticks = %v, want %v", ticks, expected)
	}
}

func TestTicksForWPMRatios(t *testing.T) {
	for _, wpm := range []WPM{5, 13, 18, 20, 25, 40} {
		ticks := TicksForWPM(wpm, DefaultElementScales())
		if ticks[ElementDot] == 0 {
			t.Fatalf("%v WPM: dot duration is zero", wpm)
		}
		if ticks[ElementElementSpace] != ticks[ElementDot] {
			t.Errorf("%v WPM: element space %d != dot %d",
				wpm, ticks[ElementElementSpace], ticks[ElementDot])
		}
		if ticks[ElementLetterSpace] != ticks[ElementDash] {
			t.Errorf("%v WPM: letter space %d != dash %d",
				wpm, ticks[ElementLetterSpace], ticks[ElementDash])
		}
	}
}

func TestTicksForWPMRoundsToNearest(t *testing.T) {
	// At 35 WPM one unit is 60000/1750 = 34.2857 ms: the dot must round
	// to 34, and the dash (102.857 ms) must round UP to 103, which a
	// truncating conversion would get wrong.
	ticks := TicksForWPM(35, DefaultElementScales())
	if ticks[ElementDot] != 34 {
		t.Errorf("35 WPM dot = %d, want 34", ticks[ElementDot])
	}
	if ticks[ElementDash] != 103 {
		t.Errorf("35 WPM dash = %d, want 103", ticks[ElementDash])
	}

	// At 22 WPM one unit is 54.5454 ms: the dot rounds to 55.
	ticks = TicksForWPM(22, DefaultElementScales())
	if ticks[ElementDot] != 55 {
		t.Errorf("22 WPM dot = %d, want 55", ticks[ElementDot])
	}
}

func TestTicksForWPMScales(t *testing.T) {
	scales := DefaultElementScales()
	scales[ElementDash] = 2

	ticks := TicksForWPM(20, scales)
	if ticks[ElementDash] != 360 {
		t.Errorf("scaled dash = %d, want 360", ticks[ElementDash])
	}
	if ticks[ElementDot] != 60 {
		t.Errorf("dot should be unaffected by the dash scale, got %d", ticks[ElementDot])
	}
}

func TestTicksForWPMOutOfRangeFails(t *testing.T) {
	SetFailHandler(nil)
	defer func() {
		if recover() == nil {
			t.Error("out-of-range WPM should halt")
		}
	}()
	TicksForWPM(0, DefaultElementScales())
}

func TestElementKeyed(t *testing.T) {
	if !ElementDot.Keyed() || !ElementDash.Keyed() {
		t.Error("dot and dash should be keyed elements")
	}
	if ElementElementSpace.Keyed() || ElementLetterSpace.Keyed() ||
		ElementWordSpace.Keyed() || ElementNone.Keyed() {
		t.Error("space and sentinel elements should not be keyed")
	}
}
