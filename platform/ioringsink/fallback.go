//go:build !(linux && giouring)

// Package ioringsink provides an io_uring-backed platform.Transmitter for
// Linux, built only when both the linux GOOS and the giouring build tag are
// present. Everywhere else, New returns ErrUnsupported so callers can fall
// back to platform/host's unix.Write sink without a build failure.
package ioringsink

import "errors"

// ErrUnsupported is returned by New on platforms or builds without real
// io_uring support.
var ErrUnsupported = errors.New("ioringsink: requires linux and the giouring build tag")

// Sink is the io_uring-backed transmit sink. On this build it carries no
// state; New always fails.
type Sink struct{}

// New always fails on this build; see ErrUnsupported.
func New(fd int, queueDepth uint32) (*Sink, error) {
	return nil, ErrUnsupported
}

// IsTransmitDone never gets called: New always fails first.
func (s *Sink) IsTransmitDone() bool { return true }

// WaitWhileTransmitInProgress never gets called: New always fails first.
func (s *Sink) WaitWhileTransmitInProgress() {}

// Transmit never gets called: New always fails first.
func (s *Sink) Transmit(bytes []byte, n int) {}

// Close never gets called: New always fails first.
func (s *Sink) Close() error { return nil }
