//go:build tinygo

package core

import (
	"runtime/interrupt"
	"time"
)

// critSection guards shared state between the dispatch loop and event
// producers. On bare metal the producers are interrupt handlers, so entering
// the section masks interrupts and leaving restores the saved state.
type critSection struct{}

type intState = interrupt.State

func (c *critSection) enter() intState {
	return interrupt.Disable()
}

func (c *critSection) leave(s intState) {
	interrupt.Restore(s)
}

// waker parks the dispatch loop while no events are pending. Interrupt
// handlers cannot touch channels, so producers do not signal anything and the
// loop dozes briefly before re-checking the pending set. The doze is well
// under one tick, so no event is ever observed late.
type waker struct{}

func newWaker() waker {
	return waker{}
}

func (w *waker) notify() {}

func (w *waker) idle() {
	time.Sleep(100 * time.Microsecond)
}
