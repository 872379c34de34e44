// Package slot implements a versioned slot-rotation record store: one
// logical record kept durable across a ring of fixed-size slots on a
// byte-addressable device. Commits write the payload before the header, so a
// commit torn by power loss leaves the previous record authoritative, and
// rotation spreads wear across the ring.
package slot

import (
	"sync"

	"github.com/pkg/errors"

	"framstore/storage"
)

// Store owns a fixed region of a device: slot i lives at
// base + i*(headerSize+payloadSize). Recovery is a scan for the valid slot
// with the highest sequence number; each commit goes to the slot after the
// current one with the next sequence number.
//
// Sequence numbers are compared as plain integers with no wraparound
// handling, so the rotation breaks after 2^32-1 commits. At one commit per
// minute that is north of eight thousand years; the bound is accepted, not
// worked around.
//
// A Store serializes every operation through an internal mutex and is safe
// for concurrent use. The scan-then-commit sequence in StoreImmediate is
// atomic under it.
type Store struct {
	mu  sync.Mutex
	dev storage.Device

	base        uint16
	slots       int
	version     uint16
	payloadSize int
	slotSize    int

	cache []byte
	dirty bool

	hdrBuf  []byte
	scanBuf []byte
}

// NewStore validates the geometry against the device capacity before any
// device access. payloadSize is the exact Size every Record passed to this
// store must report; version is the schema tag slots must carry to be
// considered at all.
func NewStore(dev storage.Device, base uint16, slots int, version uint16, payloadSize int) (*Store, error) {
	if dev == nil {
		return nil, errors.Wrap(storage.ErrInvalidArgument, "nil device")
	}
	if slots < 1 {
		return nil, errors.Wrapf(storage.ErrInvalidArgument, "slot count %d, need at least 1", slots)
	}
	if payloadSize < 1 {
		return nil, errors.Wrapf(storage.ErrInvalidArgument, "payload size %d, need at least 1", payloadSize)
	}

	slotSize := headerSize + payloadSize
	end := int(base) + slots*slotSize

	if end > dev.Size() || end > storage.MaxCapacity {
		return nil, errors.Wrapf(storage.ErrInvalidArgument,
			"%d slots of %d bytes at base %#04x exceed device capacity %d",
			slots, slotSize, base, dev.Size())
	}

	return &Store{
		dev:         dev,
		base:        base,
		slots:       slots,
		version:     version,
		payloadSize: payloadSize,
		slotSize:    slotSize,
		hdrBuf:      make([]byte, headerSize),
		scanBuf:     make([]byte, payloadSize),
	}, nil
}

func (s *Store) slotAddr(i int) uint16 {
	return s.base + uint16(i*s.slotSize)
}

// scan examines every slot and returns the authoritative one: valid header
// (magic, version, payload length), payload matching the header's checksum,
// highest sequence number. Slots that are unreadable or fail any check are
// skipped, never reported; one bad slot must not block recovery of the rest.
func (s *Store) scan() (best header, bestIdx int, found bool) {
	for i := 0; i < s.slots; i++ {
		addr := s.slotAddr(i)

		if err := s.dev.ReadAt(addr, s.hdrBuf); err != nil {
			continue
		}

		h := unmarshalHeader(s.hdrBuf)
		if h.magic != storeMagic || h.version != s.version || int(h.length) != s.payloadSize {
			continue
		}

		if err := s.dev.ReadAt(addr+headerSize, s.scanBuf); err != nil {
			continue
		}

		if checksum(s.scanBuf) != h.crc {
			continue
		}

		if !found || h.seq > best.seq {
			best, bestIdx, found = h, i, true
		}
	}

	return best, bestIdx, found
}

// Load reads the newest committed record into dst. storage.ErrNotFound
// means no slot holds a valid record — the store is empty, the device is
// fine. A device failure while re-reading the winning payload is
// storage.ErrIO and may be retried by the caller.
func (s *Store) Load(dst Record) error {
	if dst == nil {
		return errors.Wrap(storage.ErrInvalidArgument, "nil destination")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dst.Size() != s.payloadSize {
		return errors.Wrapf(storage.ErrInvalidArgument, "record size %d, store expects %d",
			dst.Size(), s.payloadSize)
	}

	_, idx, found := s.scan()
	if !found {
		return storage.ErrNotFound
	}

	payload := make([]byte, s.payloadSize)
	if err := s.dev.ReadAt(s.slotAddr(idx)+headerSize, payload); err != nil {
		return errors.WithMessage(err, "read current record")
	}

	return dst.UnmarshalRecord(payload)
}

// StoreImmediate commits rec to the next slot in the rotation and returns
// once both payload and header are on the device. On failure the previously
// committed record is untouched: a failed payload write never reaches the
// header, and a failed header write leaves the new slot invalid to future
// scans. On success the deferred-write cache is replaced and marked clean.
func (s *Store) StoreImmediate(rec Record) error {
	payload, err := s.marshal(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(payload)
}

// StoreDeferred replaces the in-memory cache with rec and marks the store
// dirty. The device is never touched; call Flush to commit. The marshaled
// bytes are captured here, so mutating rec afterwards does not change what
// Flush writes.
func (s *Store) StoreDeferred(rec Record) error {
	payload, err := s.marshal(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = payload
	s.dirty = true
	return nil
}

// Flush commits the deferred record, if any, and reports whether a commit
// happened. A clean store returns (false, nil) without a single device
// operation. On failure the store stays dirty and the next Flush retries
// the same bytes.
func (s *Store) Flush() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return false, nil
	}

	if err := s.commit(s.cache); err != nil {
		return false, err
	}

	return true, nil
}

// Dirty reports whether a deferred record is waiting for Flush.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dirty
}

func (s *Store) marshal(rec Record) ([]byte, error) {
	if rec == nil {
		return nil, errors.Wrap(storage.ErrInvalidArgument, "nil record")
	}
	if rec.Size() != s.payloadSize {
		return nil, errors.Wrapf(storage.ErrInvalidArgument, "record size %d, store expects %d",
			rec.Size(), s.payloadSize)
	}

	payload := make([]byte, s.payloadSize)
	if err := rec.MarshalRecord(payload); err != nil {
		return nil, errors.WithMessage(err, "marshal record")
	}

	return payload, nil
}

// commit is the crash-safe write protocol. Caller holds s.mu.
func (s *Store) commit(payload []byte) error {
	cur, curIdx, found := s.scan()

	next := 0
	seq := uint32(1)
	if found {
		next = (curIdx + 1) % s.slots
		seq = cur.seq + 1
	}

	h := header{
		magic:   storeMagic,
		version: s.version,
		seq:     seq,
		length:  uint32(s.payloadSize),
		crc:     checksum(payload),
	}

	addr := s.slotAddr(next)

	// Payload first. Until the header lands the slot stays invalid, so a
	// crash between the two writes cannot orphan the previous record.
	if err := s.dev.WriteAt(addr+headerSize, payload); err != nil {
		return errors.WithMessage(err, "write payload")
	}

	h.marshal(s.hdrBuf)
	if err := s.dev.WriteAt(addr, s.hdrBuf); err != nil {
		return errors.WithMessage(err, "write header")
	}

	s.cache = append(s.cache[:0], payload...)
	s.dirty = false
	return nil
}
