// Keyer state machine.
// The keyer runs once per system tick. Each run it derives its state from a
// fresh input snapshot, then lets the state handler decide whether to
// energize or release the key output based on three timing marks: when the
// current element started, how long it keys, and when the next element may
// begin (the lockout, which includes the inter-element gap). All three are
// wrapping tick values, so every comparison goes through TickGT/TickGTE.
package core

// KeyerState is the keyer's top-level mode for one tick.
type KeyerState uint8

const (
	// KeyerOff is idle: no input asserted, nothing queued.
	KeyerOff KeyerState = iota

	// KeyerOn keys continuously while the straight key is held.
	KeyerOn

	// KeyerDots emits a timed dot train while the dot paddle is held.
	KeyerDots

	// KeyerDashes emits a timed dash train while the dash paddle is held.
	KeyerDashes

	// KeyerAutokey replays queued message elements.
	KeyerAutokey
)

// String returns the state name for console output.
func (s KeyerState) String() string {
	switch s {
	case KeyerOff:
		return "off"
	case KeyerOn:
		return "on"
	case KeyerDots:
		return "dots"
	case KeyerDashes:
		return "dashes"
	case KeyerAutokey:
		return "autokey"
	}
	FailCode(FailCodeInvalidState)
	return ""
}

// KeyerOutput receives every keyed/unkeyed transition. The three outputs are
// driven together from one place so they can never disagree about whether
// the device is keying.
type KeyerOutput interface {
	// SetKeyLine drives the transmitter key line.
	SetKeyLine(on bool)
	// SetIndicator drives the keying indicator LED.
	SetIndicator(on bool)
	// SetSideTone drives the side tone.
	SetSideTone(on bool)
}

const (
	// autokeyBufSize is the element queue capacity; one slot stays empty
	// to distinguish full from empty.
	autokeyBufSize = 1024

	// ticksRefreshPeriod throttles the element duration recomputation.
	// Within one period the keyer may key with slightly stale durations
	// after a speed change, which is imperceptible at 50 ms.
	ticksRefreshPeriod = 50 * TicksPerMillisecond
)

// Keyer owns the keying decision. It is not safe for concurrent use; all
// methods run on the dispatch loop.
type Keyer struct {
	cfg *ConfigStore
	in  InputSource
	out KeyerOutput

	state    KeyerState
	keyed    bool
	panicked bool
	trainer  bool

	// element is what is being emitted right now; lockoutElement is the
	// element whose inter-element gap the lockout accounts for. They
	// differ during autokey spaces.
	element        Element
	lockoutElement Element

	elementStart    Tick
	elementDuration Tick
	elementLockout  Tick

	// timersValid gates the three marks above. A zero tick is a real
	// instant on a wrapping clock, so absence needs its own flag.
	timersValid bool

	autokey     [autokeyBufSize]Element
	autokeyHead int
	autokeyTail int

	ticks       ElementTicks
	ticksWPM    WPM
	ticksScales ElementScales
	ticksAt     Tick
	ticksFresh  bool
}

// NewKeyer returns an idle keyer with all outputs released.
func NewKeyer(cfg *ConfigStore, in InputSource, out KeyerOutput) *Keyer {
	k := &Keyer{
		cfg:            cfg,
		in:             in,
		out:            out,
		element:        ElementNone,
		lockoutElement: ElementNone,
	}
	k.setKeyed(false)
	return k
}

// State returns the keyer's current state.
func (k *Keyer) State() KeyerState {
	return k.state
}

// Keyed reports whether the key output is logically energized.
func (k *Keyer) Keyed() bool {
	return k.keyed
}

// Panic releases the key output immediately, discards any queued autokey
// elements, and latches until the operator makes a fresh input decision
// (any state change driven by the inputs). While latched the keyer will not
// energize anything.
func (k *Keyer) Panic() {
	k.panicked = true
	k.autokeyTail = k.autokeyHead
	k.setKeyed(false)
}

// Panicked reports whether the panic latch is set.
func (k *Keyer) Panicked() bool {
	return k.panicked
}

// SetTrainerMode enables or disables trainer mode. In trainer mode the
// transmitter key line stays released while the indicator and side tone
// keep following the keyer, so an operator can practice silently on the air.
func (k *Keyer) SetTrainerMode(enabled bool) {
	k.trainer = enabled
	k.updateOutputs()
}

// TrainerMode reports whether trainer mode is active.
func (k *Keyer) TrainerMode() bool {
	return k.trainer
}

// Tick runs one keyer step. Called once per system tick, and again
// immediately when an input pin changes so a key closure is never delayed
// by up to a full tick.
func (k *Keyer) Tick(now Tick) {
	k.refreshTicks(now)

	next := k.nextState()
	stateChanged := next != k.state
	k.state = next

	// A fresh input decision clears the panic latch and starts from a
	// clean timing slate.
	if stateChanged && k.panicked {
		k.panicked = false
		k.clearElement()
	}

	switch k.state {
	case KeyerOff:
		k.tickOff(now)
	case KeyerOn:
		k.tickOn(stateChanged)
	case KeyerDots:
		k.tickTrain(now, stateChanged, ElementDot)
	case KeyerDashes:
		k.tickTrain(now, stateChanged, ElementDash)
	case KeyerAutokey:
		k.tickAutokey(now)
	default:
		FailCode(FailCodeInvalidState)
	}
}

// nextState derives the state for this tick from the inputs. Queued autokey
// elements take precedence; among the physical inputs the straight key wins,
// then the paddles.
func (k *Keyer) nextState() KeyerState {
	if k.autokeyLen() != 0 {
		return KeyerAutokey
	}
	in := k.in.InputSnapshot()
	invert := k.cfg.Snapshot().InvertPaddles
	switch {
	case in.StraightKey:
		return KeyerOn
	case in.PaddleLeft && in.PaddleRight:
		// Squeeze: whichever paddle was pressed first keeps winning.
		// The configured paddle mode is not consulted here; see the
		// note on Config.PaddleMode.
		return k.state
	case (in.PaddleLeft && !invert) || (in.PaddleRight && invert):
		return KeyerDots
	case in.PaddleRight || in.PaddleLeft:
		return KeyerDashes
	default:
		return KeyerOff
	}
}

// stopPassed reports whether the current element's keyed portion is over.
func (k *Keyer) stopPassed(now Tick) bool {
	return !k.timersValid || TickGTE(now, k.elementStart+k.elementDuration)
}

// lockoutPassed reports whether the next element may start.
func (k *Keyer) lockoutPassed(now Tick) bool {
	return !k.timersValid || TickGTE(now, k.elementLockout)
}

func (k *Keyer) clearElement() {
	k.element = ElementNone
	k.lockoutElement = ElementNone
	k.elementStart = 0
	k.elementDuration = 0
	k.elementLockout = 0
	k.timersValid = false
}

// tickOff lets an in-flight element run out rather than truncating it: the
// key stays down until the element's stop mark, and the timing marks stick
// around until the lockout so a paddle re-press cannot shave the gap.
func (k *Keyer) tickOff(now Tick) {
	if k.keyed && k.stopPassed(now) {
		k.setKeyed(false)
	}
	if k.element != ElementNone && k.lockoutPassed(now) {
		k.clearElement()
	}
}

// tickOn keys for as long as the state holds. A held straight key has no
// element timing; the marks are cleared so a following paddle element
// starts against a clean slate.
func (k *Keyer) tickOn(stateChanged bool) {
	if !k.panicked && (stateChanged || !k.keyed) {
		k.element = ElementUnknown
		k.lockoutElement = ElementUnknown
		k.elementStart = 0
		k.elementDuration = 0
		k.elementLockout = 0
		k.timersValid = false
		k.setKeyed(true)
	}
}

// tickTrain emits a repeating train of el. A new element starts when the
// previous lockout has passed and either the state just changed or the
// previous element's keyed portion is done; otherwise the handler only
// releases the key once the current element's stop mark passes.
func (k *Keyer) tickTrain(now Tick, stateChanged bool, el Element) {
	if !k.panicked && k.lockoutPassed(now) && (stateChanged || !k.keyed) {
		k.startElement(now, el)
	} else if k.keyed && k.stopPassed(now) {
		k.setKeyed(false)
	}
}

// startElement begins keying el at now.
func (k *Keyer) startElement(now Tick, el Element) {
	k.element = el
	k.lockoutElement = el
	k.elementStart = now
	k.elementDuration = k.ticks[el]
	k.elementLockout = now + k.ticks[el] + k.ticks[ElementElementSpace]
	k.timersValid = true
	k.setKeyed(true)
}

// tickAutokey replays the element queue. Keyed elements run exactly like
// paddle elements. Space elements only extend the lockout, crediting back
// gap time that already passed: the inter-element space after the previous
// keyed element, and, between consecutive spaces, the letter space that a
// preceding letter space already covered.
func (k *Keyer) tickAutokey(now Tick) {
	if !k.panicked && k.lockoutPassed(now) {
		if el, ok := k.autokeyPop(); ok {
			prevWasLetterSpace := k.element == ElementLetterSpace
			afterKeyed := k.lockoutElement.Keyed()
			if el.Keyed() {
				k.startElement(now, el)
				return
			}
			gap := k.ticks[el]
			if afterKeyed {
				gap -= k.ticks[ElementElementSpace]
			}
			if prevWasLetterSpace {
				gap -= k.ticks[ElementLetterSpace] - k.ticks[ElementElementSpace]
			}
			// lockoutElement stays at the last keyed element so a chain
			// of spaces keeps crediting the gap already served.
			k.element = el
			k.elementStart = now
			k.elementDuration = 0
			k.elementLockout = now + gap
			k.timersValid = true
			return
		}
	}
	if k.keyed && k.stopPassed(now) {
		k.setKeyed(false)
	}
}

// AutokeyString queues the Morse elements for s and returns how many of its
// characters were queued. Characters stop being queued once one fails to
// encode or the queue lacks room for a whole character.
func (k *Keyer) AutokeyString(s string) int {
	var scratch [16]Element
	queued := 0
	for i := 0; i < len(s); i++ {
		els, ok := AppendElements(scratch[:0], s[i])
		if !ok || k.autokeyFree() < len(els) {
			break
		}
		for _, el := range els {
			k.autokeyPush(el)
		}
		queued++
	}
	return queued
}

// AutokeyPending returns the number of queued elements.
func (k *Keyer) AutokeyPending() int {
	return k.autokeyLen()
}

func (k *Keyer) autokeyLen() int {
	if k.autokeyHead >= k.autokeyTail {
		return k.autokeyHead - k.autokeyTail
	}
	return autokeyBufSize - k.autokeyTail + k.autokeyHead
}

func (k *Keyer) autokeyFree() int {
	return autokeyBufSize - 1 - k.autokeyLen()
}

func (k *Keyer) autokeyPush(el Element) {
	k.autokey[k.autokeyHead] = el
	k.autokeyHead = (k.autokeyHead + 1) % autokeyBufSize
}

func (k *Keyer) autokeyPop() (Element, bool) {
	if k.autokeyHead == k.autokeyTail {
		return ElementNone, false
	}
	el := k.autokey[k.autokeyTail]
	k.autokeyTail = (k.autokeyTail + 1) % autokeyBufSize
	return el, true
}

// refreshTicks recomputes the element durations when the speed or scales
// changed, checking at most every ticksRefreshPeriod.
func (k *Keyer) refreshTicks(now Tick) {
	if k.ticksFresh && Elapsed(now, k.ticksAt) < ticksRefreshPeriod {
		return
	}
	cfg := k.cfg.Snapshot()
	if !k.ticksFresh || cfg.WPM != k.ticksWPM || cfg.ElementScales != k.ticksScales {
		k.ticks = TicksForWPM(cfg.WPM, cfg.ElementScales)
		k.ticksWPM = cfg.WPM
		k.ticksScales = cfg.ElementScales
	}
	k.ticksAt = now
	k.ticksFresh = true
}

func (k *Keyer) setKeyed(on bool) {
	k.keyed = on
	k.updateOutputs()
}

// updateOutputs drives all three outputs from the single keyed flag.
func (k *Keyer) updateOutputs() {
	k.out.SetKeyLine(k.keyed && !k.trainer)
	k.out.SetIndicator(k.keyed)
	k.out.SetSideTone(k.keyed)
}
