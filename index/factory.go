package index

import (
	"fmt"

	"github.com/larkdb/skiplistindex/config"
	"github.com/larkdb/skiplistindex/itempointer"
	"github.com/larkdb/skiplistindex/keys"
)

// KeyFamily names one of the concrete key adapters keys/ provides. Go has
// no const-generic array length, so each member of the CompactInts<K> and
// Generic<N> families the spec describes (spec.md §4.1) is a distinct
// concrete Go type; KeyFamily is how a schema-driven caller selects among
// them without knowing Go generics at all.
type KeyFamily string

const (
	FamilyCompactInts1 KeyFamily = "compact_ints_1"
	FamilyCompactInts2 KeyFamily = "compact_ints_2"
	FamilyCompactInts3 KeyFamily = "compact_ints_3"
	FamilyCompactInts4 KeyFamily = "compact_ints_4"
	FamilyGeneric4     KeyFamily = "generic_4"
	FamilyGeneric8     KeyFamily = "generic_8"
	FamilyGeneric16    KeyFamily = "generic_16"
	FamilyGeneric64    KeyFamily = "generic_64"
	FamilyGeneric256   KeyFamily = "generic_256"
	FamilyTuple        KeyFamily = "tuple"
)

// SchemaDescriptor is what a caller building an index from catalog/schema
// metadata supplies to Open. It carries everything Open needs to pick and
// construct a concrete Index[K] without the caller ever naming K.
type SchemaDescriptor struct {
	Family     KeyFamily
	Comparator keys.ColumnComparator // required, and only used, for FamilyTuple
	TypeName   string
	Config     config.Config
}

// SelectGenericFamily picks the narrowest Generic<N> family that can hold a
// key of widthBytes, for callers whose schema only knows a byte width and
// not an integer-tuple shape (which would call for CompactInts instead).
func SelectGenericFamily(widthBytes int) (KeyFamily, error) {
	switch {
	case widthBytes <= 4:
		return FamilyGeneric4, nil
	case widthBytes <= 8:
		return FamilyGeneric8, nil
	case widthBytes <= 16:
		return FamilyGeneric16, nil
	case widthBytes <= 64:
		return FamilyGeneric64, nil
	case widthBytes <= 256:
		return FamilyGeneric256, nil
	default:
		return "", fmt.Errorf("index: width %d exceeds the largest Generic family (256 bytes)", widthBytes)
	}
}

// SelectCompactIntsFamily picks the narrowest CompactInts<K> family that
// can hold an integer tuple of wordCount 8-byte words.
func SelectCompactIntsFamily(wordCount int) (KeyFamily, error) {
	switch {
	case wordCount <= 1:
		return FamilyCompactInts1, nil
	case wordCount <= 2:
		return FamilyCompactInts2, nil
	case wordCount <= 3:
		return FamilyCompactInts3, nil
	case wordCount <= 4:
		return FamilyCompactInts4, nil
	default:
		return "", fmt.Errorf("index: %d words exceeds the largest CompactInts family (4 words)", wordCount)
	}
}

// RawIndex is the type-erased secondary-index handle Open returns: every
// key is accepted and returned as an already-extracted raw byte string, so
// a caller driven by runtime schema metadata never has to name a Go type
// parameter (spec.md §2's C6 Instantiation Registry).
type RawIndex interface {
	InsertEntryRaw(key []byte, value itempointer.ItemPointer) (bool, error)
	DeleteEntryRaw(key []byte, value itempointer.ItemPointer) (bool, error)
	CondInsertEntryRaw(key []byte, value itempointer.ItemPointer, predicate Predicate) (bool, error)
	ScanKeyRaw(key []byte) ([]itempointer.ItemPointer, error)
	ScanAllKeys() []itempointer.ItemPointer
	GetTypeName() string
}

// Open instantiates the Index[K] named by desc.Family and returns it behind
// the type-erased RawIndex interface.
func Open(desc SchemaDescriptor) (RawIndex, error) {
	switch desc.Family {
	case FamilyCompactInts1:
		return newRawAdapter[keys.CompactInts1](desc, keys.CompactInts1FromRaw)
	case FamilyCompactInts2:
		return newRawAdapter[keys.CompactInts2](desc, keys.CompactInts2FromRaw)
	case FamilyCompactInts3:
		return newRawAdapter[keys.CompactInts3](desc, keys.CompactInts3FromRaw)
	case FamilyCompactInts4:
		return newRawAdapter[keys.CompactInts4](desc, keys.CompactInts4FromRaw)
	case FamilyGeneric4:
		return newRawAdapter[keys.Generic4](desc, keys.Generic4FromRaw)
	case FamilyGeneric8:
		return newRawAdapter[keys.Generic8](desc, keys.Generic8FromRaw)
	case FamilyGeneric16:
		return newRawAdapter[keys.Generic16](desc, keys.Generic16FromRaw)
	case FamilyGeneric64:
		return newRawAdapter[keys.Generic64](desc, keys.Generic64FromRaw)
	case FamilyGeneric256:
		return newRawAdapter[keys.Generic256](desc, keys.Generic256FromRaw)
	case FamilyTuple:
		if desc.Comparator == nil {
			return nil, fmt.Errorf("index: FamilyTuple requires a Comparator")
		}
		adapt := keys.NewTupleKeyAdapter(desc.Comparator)
		return newRawAdapter[keys.TupleKey](desc, func(raw []byte) (keys.TupleKey, error) {
			return adapt(raw), nil
		})
	default:
		return nil, fmt.Errorf("index: unknown key family %q", desc.Family)
	}
}

// rawAdapter wraps a typed Index[K] to satisfy RawIndex, converting raw
// byte keys to K on the way in via fromRaw.
type rawAdapter[K keys.Key[K]] struct {
	idx     *Index[K]
	fromRaw func(raw []byte) (K, error)
}

func newRawAdapter[K keys.Key[K]](desc SchemaDescriptor, fromRaw func([]byte) (K, error)) (RawIndex, error) {
	idx, err := New[K](desc.Config, desc.TypeName)
	if err != nil {
		return nil, err
	}
	return &rawAdapter[K]{idx: idx, fromRaw: fromRaw}, nil
}

func (a *rawAdapter[K]) InsertEntryRaw(key []byte, value itempointer.ItemPointer) (bool, error) {
	k, err := a.fromRaw(key)
	if err != nil {
		return false, err
	}
	return a.idx.InsertEntry(k, value), nil
}

func (a *rawAdapter[K]) DeleteEntryRaw(key []byte, value itempointer.ItemPointer) (bool, error) {
	k, err := a.fromRaw(key)
	if err != nil {
		return false, err
	}
	return a.idx.DeleteEntry(k, value), nil
}

func (a *rawAdapter[K]) CondInsertEntryRaw(key []byte, value itempointer.ItemPointer, predicate Predicate) (bool, error) {
	k, err := a.fromRaw(key)
	if err != nil {
		return false, err
	}
	return a.idx.CondInsertEntry(k, value, predicate), nil
}

func (a *rawAdapter[K]) ScanKeyRaw(key []byte) ([]itempointer.ItemPointer, error) {
	k, err := a.fromRaw(key)
	if err != nil {
		return nil, err
	}
	return a.idx.ScanKey(k), nil
}

func (a *rawAdapter[K]) ScanAllKeys() []itempointer.ItemPointer {
	return a.idx.ScanAllKeys()
}

func (a *rawAdapter[K]) GetTypeName() string {
	return a.idx.GetTypeName()
}
