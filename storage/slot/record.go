package slot

// Record is any fixed-size value the store can persist. Size must be
// positive and constant for the lifetime of the store; MarshalRecord fills
// exactly Size bytes of dst and UnmarshalRecord consumes exactly Size bytes
// of src. Only the marshaled bytes are checksummed and transferred, so the
// in-memory representation is free to differ from the wire form.
type Record interface {
	Size() int
	MarshalRecord(dst []byte) error
	UnmarshalRecord(src []byte) error
}

// RawRecord adapts a plain byte slice to the Record contract. The slice
// length fixes the payload size.
type RawRecord []byte

func (r RawRecord) Size() int {
	return len(r)
}

func (r RawRecord) MarshalRecord(dst []byte) error {
	copy(dst, r)
	return nil
}

func (r RawRecord) UnmarshalRecord(src []byte) error {
	copy(r, src)
	return nil
}
