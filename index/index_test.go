package index

import (
	"encoding/binary"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/larkdb/skiplistindex/config"
	"github.com/larkdb/skiplistindex/itempointer"
	"github.com/larkdb/skiplistindex/keys"
)

func ik(n uint64) keys.CompactInts1 {
	return keys.NewCompactInts1(n)
}

func TestIndexEntryLifecycle(t *testing.T) {
	Convey("Given an empty non-unique index", t, func() {
		idx, err := New[keys.CompactInts1](config.Default(), "orders_by_customer")
		So(err, ShouldBeNil)
		So(idx.GetTypeName(), ShouldEqual, "orders_by_customer")

		Convey("InsertEntry adds a fresh key", func() {
			ok := idx.InsertEntry(ik(1), itempointer.ItemPointer(100))
			So(ok, ShouldBeTrue)
			So(idx.ScanKey(ik(1)), ShouldResemble, []itempointer.ItemPointer{100})
		})

		Convey("InsertEntry twice on the same key chains both values", func() {
			idx.InsertEntry(ik(1), itempointer.ItemPointer(100))
			idx.InsertEntry(ik(1), itempointer.ItemPointer(200))
			So(idx.ScanKey(ik(1)), ShouldResemble, []itempointer.ItemPointer{100, 200})
		})

		Convey("DeleteEntry removes exactly the matching value", func() {
			idx.InsertEntry(ik(1), itempointer.ItemPointer(100))
			idx.InsertEntry(ik(1), itempointer.ItemPointer(200))

			ok := idx.DeleteEntry(ik(1), itempointer.ItemPointer(100))
			So(ok, ShouldBeTrue)
			So(idx.ScanKey(ik(1)), ShouldResemble, []itempointer.ItemPointer{200})

			Convey("and deleting it again reports no-op", func() {
				ok := idx.DeleteEntry(ik(1), itempointer.ItemPointer(100))
				So(ok, ShouldBeFalse)
			})
		})

		Convey("ScanKey on an absent key returns empty, not nil-panic", func() {
			So(idx.ScanKey(ik(99)), ShouldBeEmpty)
		})
	})
}

func TestIndexUniqueKeys(t *testing.T) {
	Convey("Given a UniqueKeys index", t, func() {
		cfg := config.Default()
		cfg.UniqueKeys = true
		idx, err := New[keys.CompactInts1](cfg, "pk_index")
		So(err, ShouldBeNil)

		Convey("the first insert of a key succeeds", func() {
			So(idx.InsertEntry(ik(7), 70), ShouldBeTrue)

			Convey("a second insert of the same key is rejected", func() {
				So(idx.InsertEntry(ik(7), 71), ShouldBeFalse)
				So(idx.ScanKey(ik(7)), ShouldResemble, []itempointer.ItemPointer{70})
			})

			Convey("after deleting it, the key can be reinserted", func() {
				So(idx.DeleteEntry(ik(7), 70), ShouldBeTrue)
				So(idx.InsertEntry(ik(7), 71), ShouldBeTrue)
				So(idx.ScanKey(ik(7)), ShouldResemble, []itempointer.ItemPointer{71})
			})
		})
	})
}

func TestIndexCondInsertEntry(t *testing.T) {
	Convey("Given an index with one existing entry", t, func() {
		idx, err := New[keys.CompactInts1](config.Default(), "cond_idx")
		So(err, ShouldBeNil)
		idx.InsertEntry(ik(3), 30)

		Convey("CondInsertEntry with AllowIfAbsent refuses when the key is occupied", func() {
			ok := idx.CondInsertEntry(ik(3), 31, AllowIfAbsent)
			So(ok, ShouldBeFalse)
			So(idx.ScanKey(ik(3)), ShouldResemble, []itempointer.ItemPointer{30})
		})

		Convey("CondInsertEntry with AllowIfAbsent proceeds on a fresh key", func() {
			ok := idx.CondInsertEntry(ik(4), 40, AllowIfAbsent)
			So(ok, ShouldBeTrue)
			So(idx.ScanKey(ik(4)), ShouldResemble, []itempointer.ItemPointer{40})
		})

		Convey("a nil predicate behaves like an unconditional insert", func() {
			ok := idx.CondInsertEntry(ik(3), 31, nil)
			So(ok, ShouldBeTrue)
			So(idx.ScanKey(ik(3)), ShouldResemble, []itempointer.ItemPointer{30, 31})
		})

		Convey("a custom predicate sees the pre-insert search result", func() {
			var seen []itempointer.ItemPointer
			idx.CondInsertEntry(ik(3), 32, func(existing []itempointer.ItemPointer) bool {
				seen = existing
				return true
			})
			So(seen, ShouldResemble, []itempointer.ItemPointer{30})
		})
	})
}

func TestIndexScanning(t *testing.T) {
	Convey("Given an index populated with keys 0..9", t, func() {
		idx, err := New[keys.CompactInts1](config.Default(), "scan_idx")
		So(err, ShouldBeNil)
		for i := uint64(0); i < 10; i++ {
			idx.InsertEntry(ik(i), itempointer.ItemPointer(i))
		}

		Convey("Scan with no bounds returns everything ascending", func() {
			out := idx.Scan(nil, true, nil, true, false, nil)
			So(len(out), ShouldEqual, 10)
			So(out[0], ShouldEqual, itempointer.ItemPointer(0))
			So(out[9], ShouldEqual, itempointer.ItemPointer(9))
		})

		Convey("Scan descending reverses the order", func() {
			out := idx.Scan(nil, true, nil, true, true, nil)
			So(out[0], ShouldEqual, itempointer.ItemPointer(9))
			So(out[9], ShouldEqual, itempointer.ItemPointer(0))
		})

		Convey("Scan respects a bounded range", func() {
			low, high := ik(3), ik(6)
			out := idx.Scan(&low, true, &high, false, false, nil)
			So(out, ShouldResemble, []itempointer.ItemPointer{3, 4, 5})
		})

		Convey("ScanLimit bounds the result and honors offset", func() {
			out := idx.ScanLimit(nil, true, nil, true, 3, 2, false, nil)
			So(out, ShouldResemble, []itempointer.ItemPointer{2, 3, 4})
		})

		Convey("ScanLimit descending applies limit/offset after reversing", func() {
			out := idx.ScanLimit(nil, true, nil, true, 2, 0, true, nil)
			So(out, ShouldResemble, []itempointer.ItemPointer{9, 8})
		})

		Convey("ScanAllKeys matches an unbounded ascending Scan", func() {
			So(idx.ScanAllKeys(), ShouldResemble, idx.Scan(nil, true, nil, true, false, nil))
		})

		Convey("deleted entries never appear in any scan", func() {
			idx.DeleteEntry(ik(5), 5)
			all := idx.ScanAllKeys()
			So(all, ShouldNotContain, itempointer.ItemPointer(5))
		})
	})
}

func TestFactoryOpen(t *testing.T) {
	Convey("Given a SchemaDescriptor for a CompactInts1 key", t, func() {
		desc := SchemaDescriptor{Family: FamilyCompactInts1, TypeName: "raw_idx", Config: config.Default()}
		raw, err := Open(desc)
		So(err, ShouldBeNil)
		So(raw.GetTypeName(), ShouldEqual, "raw_idx")

		packed := make([]byte, 8)
		binary.BigEndian.PutUint64(packed, 5)

		Convey("InsertEntryRaw and ScanKeyRaw round-trip through raw bytes", func() {
			ok, err := raw.InsertEntryRaw(packed, 50)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			got, err := raw.ScanKeyRaw(packed)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []itempointer.ItemPointer{50})
		})

		Convey("a width-mismatched raw key returns an error, not a panic", func() {
			_, err := raw.InsertEntryRaw([]byte{1, 2, 3}, 1)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a SchemaDescriptor for FamilyTuple without a comparator", t, func() {
		_, err := Open(SchemaDescriptor{Family: FamilyTuple, Config: config.Default()})
		Convey("Open rejects it", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an unknown key family", t, func() {
		_, err := Open(SchemaDescriptor{Family: KeyFamily("nonsense"), Config: config.Default()})
		Convey("Open rejects it", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSelectFamilyHelpers(t *testing.T) {
	Convey("SelectGenericFamily picks the narrowest fit", t, func() {
		f, err := SelectGenericFamily(3)
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FamilyGeneric4)

		_, err = SelectGenericFamily(1000)
		So(err, ShouldNotBeNil)
	})

	Convey("SelectCompactIntsFamily picks the narrowest fit", t, func() {
		f, err := SelectCompactIntsFamily(2)
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FamilyCompactInts2)

		_, err = SelectCompactIntsFamily(9)
		So(err, ShouldNotBeNil)
	})
}
