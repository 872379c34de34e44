// Package storage defines the byte-addressable device contract the record
// store is built on, together with the concrete devices shipped with the
// demo binary: a RAM-backed device, a file-image-backed device, a
// metrics/logging decorator and a fault-injecting wrapper for tests.
package storage

import "github.com/pkg/errors"

// MaxCapacity is the largest device a 16-bit address can cover.
const MaxCapacity = 1 << 16

var (
	// ErrNotFound means no valid record exists; the device itself is fine.
	ErrNotFound = errors.New("record not found")

	// ErrIO is the transport reporting a failed read or write. Retrying is
	// the caller's decision.
	ErrIO = errors.New("device i/o failure")

	// ErrInvalidArgument flags malformed parameters, detected before any
	// device access.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Device is a blocking, strongly ordered byte-addressable medium. A WriteAt
// that returns nil has fully landed on the device and is visible to every
// subsequent ReadAt. Out-of-range requests fail instead of wrapping.
type Device interface {
	ReadAt(addr uint16, buf []byte) error
	WriteAt(addr uint16, data []byte) error
	Size() int
}

// checkRange validates addr+length against the device capacity before the
// device is touched.
func checkRange(size int, addr uint16, length int) error {
	if length <= 0 {
		return errors.Wrap(ErrInvalidArgument, "zero-length access")
	}
	if int(addr)+length > size {
		return errors.Wrapf(ErrInvalidArgument, "access [%#04x, %#x) exceeds capacity %d",
			addr, int(addr)+length, size)
	}
	return nil
}
