package storage

import "github.com/pkg/errors"

// FaultDevice wraps a Device with deterministic fault injection so tests can
// simulate transport failures and commits torn by power loss. All knobs are
// optional; the zero value passes everything through.
//
// Operation indexes are 1-based and counted separately for reads and writes.
type FaultDevice struct {
	Dev Device

	// FailReadOps marks read indexes that report ErrIO without reaching Dev.
	FailReadOps map[int]bool

	// FailWriteOps marks write indexes that report ErrIO without reaching Dev.
	FailWriteOps map[int]bool

	// DropWriteOps marks write indexes that report success while discarding
	// the data. This is the torn-write case: the caller believes the bytes
	// landed, the device never saw them.
	DropWriteOps map[int]bool

	// Reads overlapping [FailReadsFrom, FailReadsTo) report ErrIO, making a
	// region of the device unreadable without disturbing the rest.
	FailReadsFrom int
	FailReadsTo   int

	readOps  int
	writeOps int
}

func (d *FaultDevice) Size() int {
	return d.Dev.Size()
}

func (d *FaultDevice) ReadAt(addr uint16, buf []byte) error {
	d.readOps++
	if d.FailReadOps[d.readOps] {
		return errors.Wrapf(ErrIO, "injected read failure (op %d)", d.readOps)
	}
	if d.FailReadsTo > d.FailReadsFrom &&
		int(addr) < d.FailReadsTo && int(addr)+len(buf) > d.FailReadsFrom {
		return errors.Wrapf(ErrIO, "injected read failure at %#04x", addr)
	}
	return d.Dev.ReadAt(addr, buf)
}

func (d *FaultDevice) WriteAt(addr uint16, data []byte) error {
	d.writeOps++
	if d.FailWriteOps[d.writeOps] {
		return errors.Wrapf(ErrIO, "injected write failure (op %d)", d.writeOps)
	}
	if d.DropWriteOps[d.writeOps] {
		return nil
	}
	return d.Dev.WriteAt(addr, data)
}

// Reads reports how many read operations have been issued so far.
func (d *FaultDevice) Reads() int {
	return d.readOps
}

// Writes reports how many write operations have been issued so far.
func (d *FaultDevice) Writes() int {
	return d.writeOps
}
