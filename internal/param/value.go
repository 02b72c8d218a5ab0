package param

import (
	"bytes"
	"maps"
	"math"
	"slices"

	"github.com/google/uuid"
)

// Value is one attribute value. Exactly one concrete type exists per Type;
// the set is closed.
type Value interface {
	Type() Type
	// Clone returns a value that shares no mutable memory with the receiver.
	Clone() Value
	// Equal reports value equality. Floats compare bitwise.
	Equal(Value) bool
}

type (
	Int             int32
	Int64           int64
	Float           float32
	Bool            bool
	String          string
	Guid            uuid.UUID
	LocalizedString string
	BitSetFilter    uint64
	ClassRef        uint16

	// JSON holds raw embedded JSON text.
	JSON []byte

	GuidPair struct {
		First  Guid
		Second Guid
	}

	// ContentRef points at an entry of a content table.
	ContentRef struct {
		Class uint16
		ID    Guid
	}

	Vector3 struct {
		X, Y, Z float32
	}

	// Vector3Uts is a Vector3 carrying a leading integer tag.
	Vector3Uts struct {
		Tag uint32
		Vec Vector3
	}

	// AnyBytes is an opaque blob labelled by Tag.
	AnyBytes struct {
		Tag  string
		Data []byte
	}

	ContentRefList        []ContentRef
	VectorInt             []int32
	VectorInt64           []int64
	VectorFloat           []float32
	VectorBool            []bool
	VectorString          []string
	VectorGuid            []Guid
	VectorGuidPair        []GuidPair
	VectorLocalizedString []string
	VectorVector3         []Vector3

	HashMapStringInt    map[string]int32
	HashMapStringString map[string]string
	HashMapStringGuid   map[string]Guid
	HashMapStringFloat  map[string]float32
)

func (Int) Type() Type                   { return TypeInt }
func (Int64) Type() Type                 { return TypeInt64 }
func (Float) Type() Type                 { return TypeFloat }
func (Bool) Type() Type                  { return TypeBool }
func (String) Type() Type                { return TypeString }
func (Guid) Type() Type                  { return TypeGuid }
func (GuidPair) Type() Type              { return TypeGuidPair }
func (JSON) Type() Type                  { return TypeJSON }
func (LocalizedString) Type() Type       { return TypeLocalizedString }
func (ContentRef) Type() Type            { return TypeContentRef }
func (ContentRefList) Type() Type        { return TypeContentRefList }
func (Vector3) Type() Type               { return TypeVector3 }
func (Vector3Uts) Type() Type            { return TypeVector3Uts }
func (BitSetFilter) Type() Type          { return TypeBitSetFilter }
func (ClassRef) Type() Type              { return TypeClassRef }
func (AnyBytes) Type() Type              { return TypeAnyBytes }
func (VectorInt) Type() Type             { return TypeVectorInt }
func (VectorInt64) Type() Type           { return TypeVectorInt64 }
func (VectorFloat) Type() Type           { return TypeVectorFloat }
func (VectorBool) Type() Type            { return TypeVectorBool }
func (VectorString) Type() Type          { return TypeVectorString }
func (VectorGuid) Type() Type            { return TypeVectorGuid }
func (VectorGuidPair) Type() Type        { return TypeVectorGuidPair }
func (VectorLocalizedString) Type() Type { return TypeVectorLocalizedString }
func (VectorVector3) Type() Type         { return TypeVectorVector3 }
func (HashMapStringInt) Type() Type      { return TypeHashMapStringInt }
func (HashMapStringString) Type() Type   { return TypeHashMapStringString }
func (HashMapStringGuid) Type() Type     { return TypeHashMapStringGuid }
func (HashMapStringFloat) Type() Type    { return TypeHashMapStringFloat }

// Copy-classified values are their own clones.

func (v Int) Clone() Value             { return v }
func (v Int64) Clone() Value           { return v }
func (v Float) Clone() Value           { return v }
func (v Bool) Clone() Value            { return v }
func (v String) Clone() Value          { return v }
func (v Guid) Clone() Value            { return v }
func (v GuidPair) Clone() Value        { return v }
func (v LocalizedString) Clone() Value { return v }
func (v ContentRef) Clone() Value      { return v }
func (v Vector3) Clone() Value         { return v }
func (v Vector3Uts) Clone() Value      { return v }
func (v BitSetFilter) Clone() Value    { return v }
func (v ClassRef) Clone() Value        { return v }

func (v JSON) Clone() Value { return JSON(bytes.Clone(v)) }

func (v AnyBytes) Clone() Value {
	return AnyBytes{Tag: v.Tag, Data: bytes.Clone(v.Data)}
}

func (v ContentRefList) Clone() Value        { return ContentRefList(cloneSlice(v)) }
func (v VectorInt) Clone() Value             { return VectorInt(cloneSlice(v)) }
func (v VectorInt64) Clone() Value           { return VectorInt64(cloneSlice(v)) }
func (v VectorFloat) Clone() Value           { return VectorFloat(cloneSlice(v)) }
func (v VectorBool) Clone() Value            { return VectorBool(cloneSlice(v)) }
func (v VectorString) Clone() Value          { return VectorString(cloneSlice(v)) }
func (v VectorGuid) Clone() Value            { return VectorGuid(cloneSlice(v)) }
func (v VectorGuidPair) Clone() Value        { return VectorGuidPair(cloneSlice(v)) }
func (v VectorLocalizedString) Clone() Value { return VectorLocalizedString(cloneSlice(v)) }
func (v VectorVector3) Clone() Value         { return VectorVector3(cloneSlice(v)) }
func (v HashMapStringInt) Clone() Value      { return HashMapStringInt(cloneMap(v)) }
func (v HashMapStringString) Clone() Value   { return HashMapStringString(cloneMap(v)) }
func (v HashMapStringGuid) Clone() Value     { return HashMapStringGuid(cloneMap(v)) }
func (v HashMapStringFloat) Clone() Value    { return HashMapStringFloat(cloneMap(v)) }

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sameAs[T comparable](v T, other Value) bool {
	o, ok := other.(T)
	return ok && o == v
}

func (v Int) Equal(o Value) bool             { return sameAs(v, o) }
func (v Int64) Equal(o Value) bool           { return sameAs(v, o) }
func (v Bool) Equal(o Value) bool            { return sameAs(v, o) }
func (v String) Equal(o Value) bool          { return sameAs(v, o) }
func (v Guid) Equal(o Value) bool            { return sameAs(v, o) }
func (v GuidPair) Equal(o Value) bool        { return sameAs(v, o) }
func (v LocalizedString) Equal(o Value) bool { return sameAs(v, o) }
func (v ContentRef) Equal(o Value) bool      { return sameAs(v, o) }
func (v BitSetFilter) Equal(o Value) bool    { return sameAs(v, o) }
func (v ClassRef) Equal(o Value) bool        { return sameAs(v, o) }

func (v Float) Equal(o Value) bool {
	other, ok := o.(Float)
	return ok && floatBitsEqual(float32(v), float32(other))
}

func (v Vector3) Equal(o Value) bool {
	other, ok := o.(Vector3)
	return ok && v.bitsEqual(other)
}

func (v Vector3Uts) Equal(o Value) bool {
	other, ok := o.(Vector3Uts)
	return ok && v.Tag == other.Tag && v.Vec.bitsEqual(other.Vec)
}

func (v Vector3) bitsEqual(o Vector3) bool {
	return floatBitsEqual(v.X, o.X) && floatBitsEqual(v.Y, o.Y) && floatBitsEqual(v.Z, o.Z)
}

func floatBitsEqual(a, b float32) bool {
	return math.Float32bits(a) == math.Float32bits(b)
}

// Equal treats an empty blob as JSON null.
func (v JSON) Equal(o Value) bool {
	other, ok := o.(JSON)
	return ok && bytes.Equal(v.text(), other.text())
}

func (v JSON) text() []byte {
	if len(v) == 0 {
		return []byte("null")
	}
	return v
}

func (v AnyBytes) Equal(o Value) bool {
	other, ok := o.(AnyBytes)
	return ok && v.Tag == other.Tag && bytes.Equal(v.Data, other.Data)
}

func (v ContentRefList) Equal(o Value) bool {
	other, ok := o.(ContentRefList)
	return ok && slices.Equal(v, other)
}

func (v VectorInt) Equal(o Value) bool {
	other, ok := o.(VectorInt)
	return ok && slices.Equal(v, other)
}

func (v VectorInt64) Equal(o Value) bool {
	other, ok := o.(VectorInt64)
	return ok && slices.Equal(v, other)
}

func (v VectorFloat) Equal(o Value) bool {
	other, ok := o.(VectorFloat)
	return ok && slices.EqualFunc(v, other, floatBitsEqual)
}

func (v VectorBool) Equal(o Value) bool {
	other, ok := o.(VectorBool)
	return ok && slices.Equal(v, other)
}

func (v VectorString) Equal(o Value) bool {
	other, ok := o.(VectorString)
	return ok && slices.Equal(v, other)
}

func (v VectorGuid) Equal(o Value) bool {
	other, ok := o.(VectorGuid)
	return ok && slices.Equal(v, other)
}

func (v VectorGuidPair) Equal(o Value) bool {
	other, ok := o.(VectorGuidPair)
	return ok && slices.Equal(v, other)
}

func (v VectorLocalizedString) Equal(o Value) bool {
	other, ok := o.(VectorLocalizedString)
	return ok && slices.Equal(v, other)
}

func (v VectorVector3) Equal(o Value) bool {
	other, ok := o.(VectorVector3)
	return ok && slices.EqualFunc(v, other, Vector3.bitsEqual)
}

func (v HashMapStringInt) Equal(o Value) bool {
	other, ok := o.(HashMapStringInt)
	return ok && maps.Equal(v, other)
}

func (v HashMapStringString) Equal(o Value) bool {
	other, ok := o.(HashMapStringString)
	return ok && maps.Equal(v, other)
}

func (v HashMapStringGuid) Equal(o Value) bool {
	other, ok := o.(HashMapStringGuid)
	return ok && maps.Equal(v, other)
}

func (v HashMapStringFloat) Equal(o Value) bool {
	other, ok := o.(HashMapStringFloat)
	return ok && maps.EqualFunc(v, other, floatBitsEqual)
}

// Zero returns the value an attribute of type t holds when its schema
// gives no default. Collections are empty, never nil.
func Zero(t Type) Value {
	switch t {
	case TypeInt:
		return Int(0)
	case TypeInt64:
		return Int64(0)
	case TypeFloat:
		return Float(0)
	case TypeBool:
		return Bool(false)
	case TypeString:
		return String("")
	case TypeGuid:
		return Guid{}
	case TypeGuidPair:
		return GuidPair{}
	case TypeJSON:
		return JSON("null")
	case TypeLocalizedString:
		return LocalizedString("")
	case TypeContentRef:
		return ContentRef{}
	case TypeContentRefList:
		return ContentRefList{}
	case TypeVector3:
		return Vector3{}
	case TypeVector3Uts:
		return Vector3Uts{}
	case TypeBitSetFilter:
		return BitSetFilter(0)
	case TypeClassRef:
		return ClassRef(0)
	case TypeAnyBytes:
		return AnyBytes{Data: []byte{}}
	case TypeVectorInt:
		return VectorInt{}
	case TypeVectorInt64:
		return VectorInt64{}
	case TypeVectorFloat:
		return VectorFloat{}
	case TypeVectorBool:
		return VectorBool{}
	case TypeVectorString:
		return VectorString{}
	case TypeVectorGuid:
		return VectorGuid{}
	case TypeVectorGuidPair:
		return VectorGuidPair{}
	case TypeVectorLocalizedString:
		return VectorLocalizedString{}
	case TypeVectorVector3:
		return VectorVector3{}
	case TypeHashMapStringInt:
		return HashMapStringInt{}
	case TypeHashMapStringString:
		return HashMapStringString{}
	case TypeHashMapStringGuid:
		return HashMapStringGuid{}
	case TypeHashMapStringFloat:
		return HashMapStringFloat{}
	}
	return nil
}

func (g Guid) String() string { return uuid.UUID(g).String() }

// ParseGuid parses hex-with-dashes text. Empty input is the nil GUID.
func ParseGuid(s string) (Guid, error) {
	if s == "" {
		return Guid{}, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Guid{}, err
	}
	return Guid(u), nil
}

// Has reports whether bit i is set.
func (b BitSetFilter) Has(i uint) bool { return i < 64 && b&(1<<i) != 0 }

// With returns a copy with bit i set.
func (b BitSetFilter) With(i uint) BitSetFilter {
	if i >= 64 {
		return b
	}
	return b | 1<<i
}
