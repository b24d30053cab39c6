package core

import "testing"

type fakeInputs struct {
	snap InputSnapshot
}

func (f *fakeInputs) InputSnapshot() InputSnapshot {
	return f.snap
}

type fakeOutputs struct {
	keyLine   bool
	indicator bool
	sideTone  bool
}

func (f *fakeOutputs) SetKeyLine(on bool)   { f.keyLine = on }
func (f *fakeOutputs) SetIndicator(on bool) { f.indicator = on }
func (f *fakeOutputs) SetSideTone(on bool)  { f.sideTone = on }

// transition records a key line change and the tick it happened on.
type transition struct {
	tick Tick
	on   bool
}

type keyerHarness struct {
	cfg *ConfigStore
	in  *fakeInputs
	out *fakeOutputs
	k   *Keyer
	now Tick

	transitions []transition
}

// newKeyerHarness builds a keyer at 20 WPM, where one unit is exactly 60
// ticks: dot 60, dash 180, element space 60, letter space 180, word
// space 420.
func newKeyerHarness(t *testing.T) *keyerHarness {
	t.Helper()
	storage, err := NewStorage(NewMemBackend(4096))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	sys := NewSys()
	cfg := NewConfigStore(sys, storage)
	cfg.SetWPM(20)

	h := &keyerHarness{cfg: cfg, in: &fakeInputs{}, out: &fakeOutputs{}}
	h.k = NewKeyer(cfg, h.in, h.out)
	return h
}

// step advances the clock n ticks, running the keyer once per tick and
// recording key line transitions.
func (h *keyerHarness) step(n int) {
	for i := 0; i < n; i++ {
		h.now++
		was := h.out.keyLine
		h.k.Tick(h.now)
		if h.out.keyLine != was {
			h.transitions = append(h.transitions, transition{h.now, h.out.keyLine})
		}
	}
}

func (h *keyerHarness) checkTransitions(t *testing.T, expected []transition) {
	t.Helper()
	if len(h.transitions) != len(expected) {
		t.Fatalf("transitions = %v, want %v", h.transitions, expected)
	}
	for i := range expected {
		if h.transitions[i] != expected[i] {
			t.Fatalf("transition %d = %v, want %v", i, h.transitions[i], expected[i])
		}
	}
}

func TestKeyerIdle(t *testing.T) {
	h := newKeyerHarness(t)
	h.step(1000)
	if len(h.transitions) != 0 {
		t.Errorf("idle keyer produced transitions: %v", h.transitions)
	}
	if h.k.State() != KeyerOff {
		t.Errorf("state = %v, want off", h.k.State())
	}
}

func TestKeyerStraightKey(t *testing.T) {
	h := newKeyerHarness(t)

	h.in.snap.StraightKey = true
	h.step(1)
	if !h.out.keyLine || !h.out.indicator || !h.out.sideTone {
		t.Fatal("straight key press should energize all three outputs")
	}
	if h.k.State() != KeyerOn {
		t.Errorf("state = %v, want on", h.k.State())
	}

	// Arbitrary hold length: a straight key has no element timing.
	h.step(517)
	if !h.out.keyLine {
		t.Fatal("key should stay down while the straight key is held")
	}

	h.in.snap.StraightKey = false
	h.step(1)
	if h.out.keyLine || h.out.indicator || h.out.sideTone {
		t.Fatal("straight key release should de-energize all outputs")
	}
}

func TestKeyerDotTrain(t *testing.T) {
	h := newKeyerHarness(t)

	h.in.snap.PaddleLeft = true
	h.step(241)

	// First dot starts on tick 1: down 1..60, up 61..120, down again at
	// 121, up at 181, down at 241. The period is exactly 120 ticks with
	// no cumulative drift.
	h.checkTransitions(t, []transition{
		{1, true}, {61, false}, {121, true}, {181, false}, {241, true},
	})
}

func TestKeyerDashTrain(t *testing.T) {
	h := newKeyerHarness(t)

	h.in.snap.PaddleRight = true
	h.step(481)

	h.checkTransitions(t, []transition{
		{1, true}, {181, false}, {241, true}, {421, false}, {481, true},
	})
}

func TestKeyerDashCompletesAfterRelease(t *testing.T) {
	h := newKeyerHarness(t)

	h.in.snap.PaddleRight = true
	h.step(10)
	h.in.snap.PaddleRight = false
	h.step(300)

	// The dash runs its full 180 ticks even though the paddle was
	// released 10 ticks in.
	h.checkTransitions(t, []transition{{1, true}, {181, false}})
}

func TestKeyerLockoutAfterRelease(t *testing.T) {
	h := newKeyerHarness(t)

	// Dash starts at tick 1; its lockout ends at 1+180+60 = 241.
	h.in.snap.PaddleRight = true
	h.step(10)
	h.in.snap.PaddleRight = false
	h.step(190) // now = 200, mid-lockout

	h.in.snap.PaddleLeft = true
	h.step(100)

	// The dot may not start until the dash's lockout expires at 241.
	h.checkTransitions(t, []transition{
		{1, true}, {181, false}, {241, true},
	})
}

func TestKeyerSqueezeHoldsState(t *testing.T) {
	h := newKeyerHarness(t)

	h.in.snap.PaddleLeft = true
	h.step(5)
	if h.k.State() != KeyerDots {
		t.Fatalf("state = %v, want dots", h.k.State())
	}

	// Adding the dash paddle must not change the state.
	h.in.snap.PaddleRight = true
	h.step(500)
	if h.k.State() != KeyerDots {
		t.Errorf("squeeze changed state to %v", h.k.State())
	}

	// Dropping the dot paddle leaves only the dash paddle.
	h.in.snap.PaddleLeft = false
	h.step(1)
	if h.k.State() != KeyerDashes {
		t.Errorf("state after squeeze release = %v, want dashes", h.k.State())
	}
}

func TestKeyerInvertPaddles(t *testing.T) {
	h := newKeyerHarness(t)
	h.cfg.SetInvertPaddles(true)

	h.in.snap.PaddleLeft = true
	h.step(1)
	if h.k.State() != KeyerDashes {
		t.Errorf("inverted left paddle: state = %v, want dashes", h.k.State())
	}

	h.in.snap.PaddleLeft = false
	h.step(1000) // let the dash and its lockout run out

	h.in.snap.PaddleRight = true
	h.step(1)
	if h.k.State() != KeyerDots {
		t.Errorf("inverted right paddle: state = %v, want dots", h.k.State())
	}
}

func TestKeyerPanic(t *testing.T) {
	h := newKeyerHarness(t)

	h.in.snap.PaddleLeft = true
	h.step(10)
	if !h.out.keyLine {
		t.Fatal("expected key down mid-dot")
	}

	h.k.Panic()
	if h.out.keyLine {
		t.Fatal("panic should release the key immediately")
	}
	if !h.k.Panicked() {
		t.Fatal("panic latch should be set")
	}

	// Holding the same paddle must not re-key.
	h.step(1000)
	if h.out.keyLine {
		t.Error("keyer keyed while panicked with unchanged input")
	}

	// Releasing and pressing again is a fresh decision: latch clears.
	h.in.snap.PaddleLeft = false
	h.step(1)
	if h.k.Panicked() {
		t.Error("input change should clear the panic latch")
	}
	h.in.snap.PaddleLeft = true
	h.step(1)
	if !h.out.keyLine {
		t.Error("keyer should key again after the latch cleared")
	}
}

func TestKeyerPanicClearedByStraightKey(t *testing.T) {
	h := newKeyerHarness(t)

	h.in.snap.PaddleLeft = true
	h.step(10)
	h.k.Panic()

	h.in.snap.PaddleLeft = false
	h.in.snap.StraightKey = true
	h.step(1)
	if !h.out.keyLine {
		t.Error("straight key press should clear the latch and key at once")
	}
}

func TestKeyerPanicDiscardsAutokey(t *testing.T) {
	h := newKeyerHarness(t)

	if n := h.k.AutokeyString("cq cq cq"); n != 8 {
		t.Fatalf("queued %d characters, want 8", n)
	}
	h.step(10)
	h.k.Panic()
	if h.k.AutokeyPending() != 0 {
		t.Errorf("panic left %d elements queued", h.k.AutokeyPending())
	}
}

func TestKeyerWraparound(t *testing.T) {
	h := newKeyerHarness(t)
	// Park the clock 30 ticks below the wraparound so the first dot's
	// stop and lockout land on the far side.
	h.now = TickMax - 30

	h.in.snap.PaddleLeft = true
	h.step(400)

	start := TickMax - 29
	h.checkTransitions(t, []transition{
		{start, true},
		{start + 60, false}, // wraps
		{start + 120, true},
		{start + 180, false},
		{start + 240, true},
		{start + 300, false},
		{start + 360, true},
	})
}

func TestKeyerTrainerMode(t *testing.T) {
	h := newKeyerHarness(t)
	h.k.SetTrainerMode(true)

	h.in.snap.StraightKey = true
	h.step(1)
	if h.out.keyLine {
		t.Error("trainer mode must keep the key line released")
	}
	if !h.out.indicator || !h.out.sideTone {
		t.Error("trainer mode should still drive the indicator and side tone")
	}

	// Leaving trainer mode mid-press energizes the key line.
	h.k.SetTrainerMode(false)
	if !h.out.keyLine {
		t.Error("leaving trainer mode should restore the key line")
	}
}

func TestKeyerAutokeySingleLetter(t *testing.T) {
	h := newKeyerHarness(t)

	// "e" queues a dot and a letter space.
	if n := h.k.AutokeyString("e"); n != 1 {
		t.Fatalf("queued %d characters, want 1", n)
	}
	if h.k.AutokeyPending() != 2 {
		t.Fatalf("pending = %d, want 2", h.k.AutokeyPending())
	}

	h.step(600)
	h.checkTransitions(t, []transition{{1, true}, {61, false}})
	if h.k.AutokeyPending() != 0 {
		t.Errorf("queue not drained: %d pending", h.k.AutokeyPending())
	}
	if h.k.State() != KeyerOff {
		t.Errorf("state after drain = %v, want off", h.k.State())
	}
}

func TestKeyerAutokeyLetterSpacing(t *testing.T) {
	h := newKeyerHarness(t)

	// "ee": two dots separated by a full letter space. Second dot starts
	// 240 ticks after the first (dot 60 + letter gap 180).
	h.k.AutokeyString("ee")
	h.step(600)

	h.checkTransitions(t, []transition{
		{1, true}, {61, false}, {241, true}, {301, false},
	})
}

func TestKeyerAutokeyWordSpacing(t *testing.T) {
	h := newKeyerHarness(t)

	// "e e": the letter space before the word gap folds into it, so the
	// second dot starts 480 ticks after the first (dot 60 + word gap 420).
	h.k.AutokeyString("e e")
	h.step(900)

	h.checkTransitions(t, []transition{
		{1, true}, {61, false}, {481, true}, {541, false},
	})
}

func TestKeyerAutokeyElementTiming(t *testing.T) {
	h := newKeyerHarness(t)

	// "a" is dot dash: dash starts one element space after the dot ends.
	h.k.AutokeyString("a")
	h.step(600)

	h.checkTransitions(t, []transition{
		{1, true}, {61, false}, {121, true}, {301, false},
	})
}

func TestKeyerAutokeyRejectsUnknown(t *testing.T) {
	h := newKeyerHarness(t)

	// Queueing stops at the first unencodable character.
	if n := h.k.AutokeyString("e#e"); n != 1 {
		t.Errorf("queued %d characters, want 1", n)
	}
}

func TestKeyerPaddleInterruptsAutokey(t *testing.T) {
	h := newKeyerHarness(t)

	h.k.AutokeyString("e")
	h.step(5)
	if h.k.State() != KeyerAutokey {
		t.Fatalf("state = %v, want autokey", h.k.State())
	}

	// Queued elements take precedence over the paddles until drained.
	h.in.snap.PaddleRight = true
	h.step(1)
	if h.k.State() != KeyerAutokey {
		t.Errorf("paddle should not preempt a non-empty queue, state = %v", h.k.State())
	}
}

func TestKeyerSpeedChange(t *testing.T) {
	h := newKeyerHarness(t)

	h.in.snap.PaddleLeft = true
	h.step(121) // one full dot and gap at 20 WPM, second dot started

	// 60 WPM: one unit is 20 ticks. The refresh is throttled, so step
	// well past one refresh period and measure a later cycle.
	h.cfg.SetWPM(60)
	h.step(600)

	// Find the last off-to-on period and check it is 40 ticks
	// (20 on + 20 off at 60 WPM).
	var periods []Tick
	for i := 2; i < len(h.transitions); i++ {
		if h.transitions[i].on {
			periods = append(periods, h.transitions[i].tick-h.transitions[i-2].tick)
		}
	}
	if len(periods) == 0 {
		t.Fatal("no complete cycles recorded")
	}
	last := periods[len(periods)-1]
	if last != 40 {
		t.Errorf("dot cycle after speed change = %d ticks, want 40 (periods %v)", last, periods)
	}
}
