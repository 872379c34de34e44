package storage

import (
	"os"

	"github.com/pkg/errors"
)

// FileDevice persists a Device in a flat image file of fixed capacity, so
// state written through it survives process restarts the way it would on the
// real part. Writes are synced before success is reported; the Device
// contract promises durability on return.
type FileDevice struct {
	file *os.File
	size int
}

// OpenFileDevice opens or creates the image at path. A fresh image is
// zero-extended to capacity; an existing image larger than capacity is
// rejected rather than truncated.
func OpenFileDevice(path string, capacity int) (*FileDevice, error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, errors.Wrapf(ErrInvalidArgument, "capacity %d outside [1, %d]", capacity, MaxCapacity)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "open image %s: %v", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(ErrIO, "stat image %s: %v", path, err)
	}

	if info.Size() > int64(capacity) {
		_ = file.Close()
		return nil, errors.Wrapf(ErrInvalidArgument, "image %s holds %d bytes, capacity is %d",
			path, info.Size(), capacity)
	}

	if info.Size() < int64(capacity) {
		if err := file.Truncate(int64(capacity)); err != nil {
			_ = file.Close()
			return nil, errors.Wrapf(ErrIO, "extend image %s: %v", path, err)
		}
	}

	return &FileDevice{file: file, size: capacity}, nil
}

func (d *FileDevice) Size() int {
	return d.size
}

func (d *FileDevice) ReadAt(addr uint16, buf []byte) error {
	if err := checkRange(d.size, addr, len(buf)); err != nil {
		return err
	}
	if _, err := d.file.ReadAt(buf, int64(addr)); err != nil {
		return errors.Wrapf(ErrIO, "read %d bytes at %#04x: %v", len(buf), addr, err)
	}
	return nil
}

func (d *FileDevice) WriteAt(addr uint16, data []byte) error {
	if err := checkRange(d.size, addr, len(data)); err != nil {
		return err
	}
	if _, err := d.file.WriteAt(data, int64(addr)); err != nil {
		return errors.Wrapf(ErrIO, "write %d bytes at %#04x: %v", len(data), addr, err)
	}
	if err := d.file.Sync(); err != nil {
		return errors.Wrapf(ErrIO, "sync after write at %#04x: %v", addr, err)
	}
	return nil
}

func (d *FileDevice) Close() error {
	if err := d.file.Close(); err != nil {
		return errors.Wrapf(ErrIO, "close image: %v", err)
	}
	return nil
}
