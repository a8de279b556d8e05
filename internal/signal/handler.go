// Package signal ties SIGINT and SIGTERM to context cancellation so an
// interrupted command stops its svn child processes.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler owns a context that is canceled on the first interrupt.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel      context.CancelFunc
	sigChan     chan os.Signal
	interrupted chan struct{}
	stopped     chan struct{}
	fireOnce    sync.Once
	stopOnce    sync.Once
}

// NewHandler starts listening for interrupts. Callers must call Stop.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		sigChan:     make(chan os.Signal, 1),
		interrupted: make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()
	return h
}

// Context is canceled when an interrupt arrives or Stop is called.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted closes once an interrupt has been received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// WasInterrupted reports whether an interrupt has been received.
func (h *Handler) WasInterrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Stop unregisters the handler and cancels its context.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.stopped)
		h.cancel()
	})
}

func (h *Handler) fire() {
	h.fireOnce.Do(func() {
		close(h.interrupted)
		h.cancel()
	})
}

// listen drains signals until Stop or cancellation. Only the first fires.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.stopped:
			return
		case <-h.sigChan:
			h.fire()
		}
	}
}
