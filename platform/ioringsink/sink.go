//go:build linux && giouring

// Package ioringsink provides an io_uring-backed platform.Transmitter:
// Transmit submits an async write SQE instead of blocking the transmitter
// goroutine in a unix.Write syscall, and IsTransmitDone/
// WaitWhileTransmitInProgress reflect the matching CQE's completion.
//
// Adapted from the source repo's io_uring ring wrapper, generalized from
// submitting ublk URING_CMD control/IO commands to submitting plain
// IORING_OP_WRITE operations against a transmit sink fd.
package ioringsink

import (
	"fmt"
	"sync/atomic"

	"github.com/pawelgaczynski/giouring"
)

// Sink is a single-writer io_uring transmit sink: one write in flight at a
// time, matching the pipeline's single-transmitter-goroutine assumption.
type Sink struct {
	ring *giouring.Ring
	fd   int

	inFlight atomic.Bool
	done     atomic.Bool
}

// New creates a Sink writing to fd, backed by an io_uring instance sized
// for queueDepth in-flight submissions (1 is enough for this pipeline's
// single-writer use, but a small queue lets Close drain cleanly).
func New(fd int, queueDepth uint32) (*Sink, error) {
	if queueDepth == 0 {
		queueDepth = 4
	}
	ring, err := giouring.CreateRing(queueDepth)
	if err != nil {
		return nil, fmt.Errorf("ioringsink: create ring: %w", err)
	}
	s := &Sink{ring: ring, fd: fd}
	s.done.Store(true)
	return s, nil
}

// IsTransmitDone implements platform.Transmitter.
func (s *Sink) IsTransmitDone() bool {
	if !s.inFlight.Load() {
		return true
	}
	return s.pollCQE(false)
}

// WaitWhileTransmitInProgress implements platform.Transmitter.
func (s *Sink) WaitWhileTransmitInProgress() {
	if !s.inFlight.Load() {
		return
	}
	s.pollCQE(true)
}

// pollCQE checks (or, if wait, blocks) for the in-flight write's
// completion, clearing inFlight once seen.
func (s *Sink) pollCQE(wait bool) bool {
	var cqe *giouring.CompletionQueueEvent
	var err error
	if wait {
		cqe, err = s.ring.WaitCQE()
	} else {
		cqe, err = s.ring.PeekCQE()
	}
	if err != nil || cqe == nil {
		return false
	}
	s.ring.CQESeen(cqe)
	s.inFlight.Store(false)
	return true
}

// Transmit implements platform.Transmitter by submitting an async write
// SQE for bytes[:n] and returning immediately; completion is observed
// later through IsTransmitDone/WaitWhileTransmitInProgress.
func (s *Sink) Transmit(bytes []byte, n int) {
	s.WaitWhileTransmitInProgress() // enforce one in-flight write at a time

	sqe := s.ring.GetSQE()
	if sqe == nil {
		return
	}
	sqe.PrepWrite(s.fd, bytes[:n], 0)
	s.inFlight.Store(true)
	_, _ = s.ring.Submit()
}

// Close releases the ring.
func (s *Sink) Close() error {
	s.WaitWhileTransmitInProgress()
	s.ring.QueueExit()
	return nil
}
