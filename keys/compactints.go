package keys

import "encoding/binary"

// CompactInts1..CompactInts4 are fixed-width integer-tuple keys: K 8-byte
// words packed so that byte-wise comparison of the packed representation
// agrees with the tuple's lexicographic integer order. They cover the
// "CompactInts<K>" family for K in {1,2,3,4} (spec.md §4.1); Go has no
// const-generic array length, so each K is a distinct named type rather
// than a single generic type parametrized by an integer.

// compactIntsWordBytes is the number of bytes in one packed integer word.
const compactIntsWordBytes = 8

func packWords(words []uint64, out []byte) {
	for i, w := range words {
		binary.BigEndian.PutUint64(out[i*compactIntsWordBytes:], w)
	}
}

func compareBytes(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// --- CompactInts1 ---

// CompactInts1 packs a single 8-byte integer word.
type CompactInts1 struct {
	packed [1 * compactIntsWordBytes]byte
}

// NewCompactInts1 builds a key from its integer words, big-endian packed so
// byte order matches integer order (including for signed values reinterpreted
// as unsigned with the sign bit flipped by the caller, if needed).
func NewCompactInts1(w0 uint64) CompactInts1 {
	var k CompactInts1
	packWords([]uint64{w0}, k.packed[:])
	return k
}

// CompactInts1FromRaw builds a key from an already-extracted raw key of
// exactly 8 bytes.
func CompactInts1FromRaw(raw []byte) (CompactInts1, error) {
	var k CompactInts1
	if len(raw) != len(k.packed) {
		return k, &ErrWidthMismatch{Family: "CompactInts1", Capacity: len(k.packed), Got: len(raw)}
	}
	copy(k.packed[:], raw)
	return k, nil
}

func (k CompactInts1) Less(other CompactInts1) bool {
	return compareBytes(k.packed[:], other.packed[:]) < 0
}

func (k CompactInts1) Equal(other CompactInts1) bool {
	return k.packed == other.packed
}

// --- CompactInts2 ---

// CompactInts2 packs two 8-byte integer words.
type CompactInts2 struct {
	packed [2 * compactIntsWordBytes]byte
}

func NewCompactInts2(w0, w1 uint64) CompactInts2 {
	var k CompactInts2
	packWords([]uint64{w0, w1}, k.packed[:])
	return k
}

func CompactInts2FromRaw(raw []byte) (CompactInts2, error) {
	var k CompactInts2
	if len(raw) != len(k.packed) {
		return k, &ErrWidthMismatch{Family: "CompactInts2", Capacity: len(k.packed), Got: len(raw)}
	}
	copy(k.packed[:], raw)
	return k, nil
}

func (k CompactInts2) Less(other CompactInts2) bool {
	return compareBytes(k.packed[:], other.packed[:]) < 0
}

func (k CompactInts2) Equal(other CompactInts2) bool {
	return k.packed == other.packed
}

// --- CompactInts3 ---

// CompactInts3 packs three 8-byte integer words.
type CompactInts3 struct {
	packed [3 * compactIntsWordBytes]byte
}

func NewCompactInts3(w0, w1, w2 uint64) CompactInts3 {
	var k CompactInts3
	packWords([]uint64{w0, w1, w2}, k.packed[:])
	return k
}

func CompactInts3FromRaw(raw []byte) (CompactInts3, error) {
	var k CompactInts3
	if len(raw) != len(k.packed) {
		return k, &ErrWidthMismatch{Family: "CompactInts3", Capacity: len(k.packed), Got: len(raw)}
	}
	copy(k.packed[:], raw)
	return k, nil
}

func (k CompactInts3) Less(other CompactInts3) bool {
	return compareBytes(k.packed[:], other.packed[:]) < 0
}

func (k CompactInts3) Equal(other CompactInts3) bool {
	return k.packed == other.packed
}

// --- CompactInts4 ---

// CompactInts4 packs four 8-byte integer words.
type CompactInts4 struct {
	packed [4 * compactIntsWordBytes]byte
}

func NewCompactInts4(w0, w1, w2, w3 uint64) CompactInts4 {
	var k CompactInts4
	packWords([]uint64{w0, w1, w2, w3}, k.packed[:])
	return k
}

func CompactInts4FromRaw(raw []byte) (CompactInts4, error) {
	var k CompactInts4
	if len(raw) != len(k.packed) {
		return k, &ErrWidthMismatch{Family: "CompactInts4", Capacity: len(k.packed), Got: len(raw)}
	}
	copy(k.packed[:], raw)
	return k, nil
}

func (k CompactInts4) Less(other CompactInts4) bool {
	return compareBytes(k.packed[:], other.packed[:]) < 0
}

func (k CompactInts4) Equal(other CompactInts4) bool {
	return k.packed == other.packed
}
