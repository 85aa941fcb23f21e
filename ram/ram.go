// Package ram is the VM's byte-addressable memory: a lazily-grown byte
// buffer with a hard capacity, grounded nearly line-for-line on
// original_source/vm/src/ram.rs.
package ram

// RAM is a byte array capped at length, growing lazily as bytes are
// written. Unwritten bytes within the capped length read as 0.
type RAM struct {
	length int
	data   []byte
}

// New creates an empty RAM capped at length bytes.
func New(length int) *RAM {
	return &RAM{length: length}
}

// Len returns the configured capacity (limits.ram_length), not the
// lazily-grown backing slice's current size.
func (r *RAM) Len() int { return r.length }

// Read returns the byte at offset. Offsets past the currently grown
// region but within capacity read as 0; offsets at or past capacity
// fail InvalidAddress.
func (r *RAM) Read(offset int) (byte, error) {
	if offset < 0 || offset >= r.length {
		return 0, newRAMError(InvalidAddress, offset, "address %d is out of bounds", offset)
	}
	if offset >= len(r.data) {
		return 0, nil
	}
	return r.data[offset], nil
}

// Write stores src at offset, growing the backing buffer to fit.
func (r *RAM) Write(offset int, src byte) error {
	if offset < 0 || offset >= r.length {
		return newRAMError(InvalidAddress, offset, "address %d is out of bounds", offset)
	}
	if offset >= len(r.data) {
		r.grow(offset + 1)
	}
	r.data[offset] = src
	return nil
}

// WriteSlice copies src into RAM starting at offset, growing as needed.
func (r *RAM) WriteSlice(offset int, src []byte) error {
	if len(src) > r.length {
		return newRAMError(OutOfMemory, offset, "can't fit a memory block of size %d into ram", len(src))
	}

	needed := offset + len(src)
	if offset < 0 || offset >= r.length || needed > r.length {
		return newRAMError(InvalidAddress, offset, "offset %d with size %d is out of bounds", offset, len(src))
	}

	r.grow(needed)
	copy(r.data[offset:needed], src)
	return nil
}

func (r *RAM) grow(minLen int) {
	if minLen <= len(r.data) {
		return
	}
	grown := make([]byte, minLen)
	copy(grown, r.data)
	r.data = grown
}

// Bytes returns the currently grown region as a read-only snapshot,
// grounded on original_source/vm/src/ram.rs's as_bytes(). Unlike the
// Rust original this does not pad out to the full configured length.
func (r *RAM) Bytes() []byte {
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}
