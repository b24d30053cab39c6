//go:build !tinygo

package core

import "sync"

// critSection guards shared state between the dispatch loop and event
// producers. On hosted Go a mutex stands in for masking interrupts.
type critSection struct {
	mu sync.Mutex
}

type intState struct{}

func (c *critSection) enter() intState {
	c.mu.Lock()
	return intState{}
}

func (c *critSection) leave(intState) {
	c.mu.Unlock()
}

// waker parks the dispatch loop while no events are pending. On hosted Go
// producers run as goroutines, so a buffered channel carries the wakeup.
type waker struct {
	ch chan struct{}
}

func newWaker() waker {
	return waker{ch: make(chan struct{}, 1)}
}

func (w *waker) notify() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func (w *waker) idle() {
	<-w.ch
}
