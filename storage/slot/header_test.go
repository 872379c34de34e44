package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderLayoutIsBitExact(t *testing.T) {
	h := header{
		magic:    storeMagic,
		version:  2,
		reserved: 0,
		seq:      7,
		length:   9,
		crc:      0xDEADBEEF,
	}

	buf := make([]byte, headerSize)
	h.marshal(buf)

	// Packed little-endian, field order magic/version/reserved/seq/len/crc.
	// Any change here breaks images written by other implementations.
	want := []byte{
		0x4D, 0x41, 0x52, 0x46, // magic 0x4652414D
		0x02, 0x00, // version
		0x00, 0x00, // reserved
		0x07, 0x00, 0x00, 0x00, // seq
		0x09, 0x00, 0x00, 0x00, // len
		0xEF, 0xBE, 0xAD, 0xDE, // crc
	}
	require.Equal(t, want, buf)

	assert.Equal(t, h, unmarshalHeader(buf))
}

func TestHeaderRoundTripPreservesReserved(t *testing.T) {
	h := header{magic: storeMagic, version: 1, reserved: 0xBEEF, seq: 42, length: 16, crc: 1}

	buf := make([]byte, headerSize)
	h.marshal(buf)

	assert.Equal(t, h, unmarshalHeader(buf))
}

func TestChecksumReferenceVector(t *testing.T) {
	// The standard CRC-32 check value. Matching it pins the polynomial,
	// reflection, initial value and final xor all at once.
	assert.Equal(t, uint32(0xCBF43926), checksum([]byte("123456789")))

	// Deterministic, and sensitive to any byte change.
	assert.Equal(t, checksum([]byte("framstore")), checksum([]byte("framstore")))
	assert.NotEqual(t, checksum([]byte("framstore")), checksum([]byte("framstorf")))
}
