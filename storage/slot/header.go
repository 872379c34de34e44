package slot

import "encoding/binary"

// On-device header layout, packed little-endian, 20 bytes:
//
//	| magic u32 | version u16 | reserved u16 | seq u32 | len u32 | crc u32 |
//
// This layout is the persisted contract. Images written by one
// implementation of the format must validate under another, so field order,
// widths and byte order are fixed.
const (
	headerSize = 20

	// storeMagic tags every committed header; it spells "FRAM" when the
	// word is read big-endian. Existing device images carry it, so the
	// value must never change.
	storeMagic = 0x4652414D
)

type header struct {
	magic    uint32
	version  uint16
	reserved uint16
	seq      uint32
	length   uint32
	crc      uint32
}

// marshal packs h into dst, which must hold at least headerSize bytes.
func (h header) marshal(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], h.magic)
	binary.LittleEndian.PutUint16(dst[4:6], h.version)
	binary.LittleEndian.PutUint16(dst[6:8], h.reserved)
	binary.LittleEndian.PutUint32(dst[8:12], h.seq)
	binary.LittleEndian.PutUint32(dst[12:16], h.length)
	binary.LittleEndian.PutUint32(dst[16:20], h.crc)
}

func unmarshalHeader(src []byte) header {
	return header{
		magic:    binary.LittleEndian.Uint32(src[0:4]),
		version:  binary.LittleEndian.Uint16(src[4:6]),
		reserved: binary.LittleEndian.Uint16(src[6:8]),
		seq:      binary.LittleEndian.Uint32(src[8:12]),
		length:   binary.LittleEndian.Uint32(src[12:16]),
		crc:      binary.LittleEndian.Uint32(src[16:20]),
	}
}
