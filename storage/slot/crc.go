package slot

import "hash/crc32"

// crcTable is built once at package initialization, so first use is
// race-free by construction.
var crcTable = crc32.MakeTable(crc32.IEEE)

// checksum is standard CRC-32: reflected, polynomial 0xEDB88320, initial
// value and final xor 0xFFFFFFFF. Payloads written by any conforming
// implementation of the slot format validate against it.
func checksum(b []byte) uint32 {
	return crc32.Checksum(b, crcTable)
}
