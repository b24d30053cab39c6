// System tick and event scheduling.
// The Sys type is the firmware's only time base: a hardware timer advances a
// wrapping 32-bit tick counter, interrupt sources set bits in a pending-event
// set, and the main dispatch loop drains that set synchronously via Wait.
package core

// Tick is the system tick count. It increments once per millisecond and
// wraps silently at the top of its range; all comparisons must go through
// Elapsed, TickGT or TickGTE to stay correct across a wraparound.
type Tick uint32

const (
	// TickMax is the largest representable tick value.
	TickMax Tick = ^Tick(0)

	// TicksPerMillisecond is the number of ticks per millisecond.
	TicksPerMillisecond Tick = 1

	// TicksPerSecond is the number of ticks per second.
	TicksPerSecond Tick = 1000 * TicksPerMillisecond
)

// Event identifies a single kind of pending event.
type Event uint8

const (
	// EventTick indicates the system tick counter advanced.
	EventTick Event = iota

	// EventIOState indicates a key input pin changed state.
	EventIOState

	// EventIntfRxComplete indicates the interface port received data.
	EventIntfRxComplete

	// EventIntfTxComplete indicates the interface port finished sending.
	EventIntfTxComplete

	// EventConsoleRxComplete indicates the debug console received data.
	EventConsoleRxComplete

	// EventConsoleTxComplete indicates the debug console finished sending.
	EventConsoleTxComplete

	eventCount
)

// EventSet is a bitfield with one bit per Event. It is a set, not a queue:
// bits carry no ordering and no multiplicity.
type EventSet uint8

// Has reports whether ev is present in the set.
func (s EventSet) Has(ev Event) bool {
	return s&(1<<ev) != 0
}

// Sys owns the tick counter and the pending-event set. Producers (interrupt
// handlers, or goroutines standing in for them) call AdvanceTick and
// EnqueueEvent; exactly one consumer, the main dispatch loop, calls Wait.
type Sys struct {
	cs      critSection
	wake    waker
	tick    Tick
	pending EventSet
}

// NewSys returns a Sys with the tick counter at zero and no pending events.
func NewSys() *Sys {
	return &Sys{wake: newWaker()}
}

// AdvanceTick increments the tick counter and enqueues EventTick. It is the
// timer interrupt's entry point and must be called at a fixed 1 ms period.
func (s *Sys) AdvanceTick() {
	st := s.cs.enter()
	s.tick++
	s.pending |= 1 << EventTick
	s.cs.leave(st)
	s.wake.notify()
}

// EnqueueEvent sets one bit in the pending-event set. Safe to call from
// interrupt context while the set is concurrently being drained.
func (s *Sys) EnqueueEvent(ev Event) {
	if ev >= eventCount {
		FailCode(FailCodeInvalidEvent)
	}
	st := s.cs.enter()
	s.pending |= 1 << ev
	s.cs.leave(st)
	s.wake.notify()
}

// Wait blocks until at least one event is pending, then atomically reads and
// clears the set. It never returns an empty set. This is the sole suspension
// point in the firmware and must only be called from the dispatch loop.
func (s *Sys) Wait() EventSet {
	for {
		st := s.cs.enter()
		pending := s.pending
		s.pending = 0
		s.cs.leave(st)
		if pending != 0 {
			return pending
		}
		s.wake.idle()
	}
}

// Tick returns the current tick count. The counter is written from the tick
// interrupt, so the read goes through the critical section.
func (s *Sys) Tick() Tick {
	st := s.cs.enter()
	t := s.tick
	s.cs.leave(st)
	return t
}

// SetTick overwrites the tick counter. Used by tests and by bring-up code to
// park the clock just below the wraparound boundary.
func (s *Sys) SetTick(t Tick) {
	st := s.cs.enter()
	s.tick = t
	s.cs.leave(st)
}

// ElapsedNow returns the number of ticks between then and the current tick.
func (s *Sys) ElapsedNow(then Tick) Tick {
	return Elapsed(s.Tick(), then)
}

// Elapsed returns the number of ticks between then and now, correct across a
// wraparound: unsigned subtraction yields (now - then) mod 2^32.
func Elapsed(now, then Tick) Tick {
	return now - then
}

// TickGT reports whether a is later than b. Ordering is defined by a
// half-range test: a is later if the forward distance from b to a is less
// than half the counter's range, which keeps the comparison correct when
// either value sits within a tick of the wraparound boundary.
func TickGT(a, b Tick) bool {
	return (a > b && a-b <= TickMax/2) ||
		(b > a && b-a > TickMax/2)
}

// TickGTE reports whether a is later than or equal to b.
func TickGTE(a, b Tick) bool {
	return a == b || TickGT(a, b)
}
