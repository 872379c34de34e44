package storage

import "github.com/pkg/errors"

// MemDevice is a fixed-capacity Device held entirely in RAM. It is the test
// substrate and the fallback medium for the demo binary.
type MemDevice struct {
	buf []byte
}

func NewMemDevice(capacity int) (*MemDevice, error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, errors.Wrapf(ErrInvalidArgument, "capacity %d outside [1, %d]", capacity, MaxCapacity)
	}
	return &MemDevice{buf: make([]byte, capacity)}, nil
}

func (d *MemDevice) Size() int {
	return len(d.buf)
}

func (d *MemDevice) ReadAt(addr uint16, buf []byte) error {
	if err := checkRange(len(d.buf), addr, len(buf)); err != nil {
		return err
	}
	copy(buf, d.buf[addr:])
	return nil
}

func (d *MemDevice) WriteAt(addr uint16, data []byte) error {
	if err := checkRange(len(d.buf), addr, len(data)); err != nil {
		return err
	}
	copy(d.buf[addr:], data)
	return nil
}
