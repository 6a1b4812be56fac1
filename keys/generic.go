package keys

// Generic4, Generic8, Generic16, Generic64, Generic256 are fixed-capacity
// byte-buffer keys, covering the "Generic<N>" family for N in
// {4,8,16,64,256} (spec.md §4.1). Raw keys shorter than the capacity are
// zero-padded on the right; comparison is prefix-first (compare the first
// 8 bytes as a big-endian integer before falling back to a full byte
// comparison) so the common case of differing in the first word short-
// circuits without walking the whole buffer.

func genericLess(a, b []byte) bool {
	n := min(8, len(a))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return compareBytes(a, b) < 0
}

func fillFromRaw(dst, raw []byte, family string) error {
	if len(raw) > len(dst) {
		return &ErrWidthMismatch{Family: family, Capacity: len(dst), Got: len(raw)}
	}
	copy(dst, raw)
	for i := len(raw); i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// --- Generic4 ---

type Generic4 struct{ buf [4]byte }

func Generic4FromRaw(raw []byte) (Generic4, error) {
	var k Generic4
	err := fillFromRaw(k.buf[:], raw, "Generic4")
	return k, err
}

func (k Generic4) Less(other Generic4) bool  { return genericLess(k.buf[:], other.buf[:]) }
func (k Generic4) Equal(other Generic4) bool { return k.buf == other.buf }

// --- Generic8 ---

type Generic8 struct{ buf [8]byte }

func Generic8FromRaw(raw []byte) (Generic8, error) {
	var k Generic8
	err := fillFromRaw(k.buf[:], raw, "Generic8")
	return k, err
}

func (k Generic8) Less(other Generic8) bool  { return genericLess(k.buf[:], other.buf[:]) }
func (k Generic8) Equal(other Generic8) bool { return k.buf == other.buf }

// --- Generic16 ---

type Generic16 struct{ buf [16]byte }

func Generic16FromRaw(raw []byte) (Generic16, error) {
	var k Generic16
	err := fillFromRaw(k.buf[:], raw, "Generic16")
	return k, err
}

func (k Generic16) Less(other Generic16) bool  { return genericLess(k.buf[:], other.buf[:]) }
func (k Generic16) Equal(other Generic16) bool { return k.buf == other.buf }

// --- Generic64 ---

type Generic64 struct{ buf [64]byte }

func Generic64FromRaw(raw []byte) (Generic64, error) {
	var k Generic64
	err := fillFromRaw(k.buf[:], raw, "Generic64")
	return k, err
}

func (k Generic64) Less(other Generic64) bool  { return genericLess(k.buf[:], other.buf[:]) }
func (k Generic64) Equal(other Generic64) bool { return k.buf == other.buf }

// --- Generic256 ---

type Generic256 struct{ buf [256]byte }

func Generic256FromRaw(raw []byte) (Generic256, error) {
	var k Generic256
	err := fillFromRaw(k.buf[:], raw, "Generic256")
	return k, err
}

func (k Generic256) Less(other Generic256) bool  { return genericLess(k.buf[:], other.buf[:]) }
func (k Generic256) Equal(other Generic256) bool { return k.buf == other.buf }
