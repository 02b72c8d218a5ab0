package param

import (
	"encoding/binary"
	"math"
	"sort"
)

// Writer appends the little-endian wire representation of values. A value
// that does not fit its length prefix sets a sticky error and is not
// written.
type Writer struct {
	buf []byte
	err error
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }
func (w *Writer) Err() error    { return w.err }

func (w *Writer) U8(v uint8)    { w.buf = append(w.buf, v) }
func (w *Writer) U16(v uint16)  { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *Writer) U32(v uint32)  { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *Writer) U64(v uint64)  { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }
func (w *Writer) Raw(b []byte)  { w.buf = append(w.buf, b...) }

func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
		return
	}
	w.U8(0)
}

// Str writes a u16 length prefix followed by the bytes.
func (w *Writer) Str(s string) {
	if w.err != nil {
		return
	}
	if len(s) > math.MaxUint16 {
		w.err = errTooLong("string", len(s), math.MaxUint16)
		return
	}
	w.U16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// Blob writes a u32 length prefix followed by the bytes.
func (w *Writer) Blob(b []byte) {
	if w.err != nil {
		return
	}
	if uint64(len(b)) > math.MaxUint32 {
		w.err = errTooLong("blob", len(b), math.MaxUint32)
		return
	}
	w.U32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// count writes a u32 element count.
func (w *Writer) count(n int) {
	if uint64(n) > math.MaxUint32 {
		w.err = errTooLong("count", n, math.MaxUint32)
		return
	}
	w.U32(uint32(n))
}

func errTooLong(what string, n int, limit uint64) error {
	return NewError(KindMalformed, "reason", what+" exceeds length prefix", "len", n, "max", limit)
}

// Check reports whether v can be written and read back unchanged: every
// string fits its u16 prefix and a Json blob holds valid JSON.
func Check(v Value) error {
	switch x := v.(type) {
	case String:
		return checkStr(string(x))
	case LocalizedString:
		return checkStr(string(x))
	case JSON:
		return checkJSON(x)
	case AnyBytes:
		if err := checkStr(x.Tag); err != nil {
			return err
		}
		if uint64(len(x.Data)) > math.MaxUint32 {
			return errTooLong("blob", len(x.Data), math.MaxUint32)
		}
	case VectorString:
		return checkStrs(x)
	case VectorLocalizedString:
		return checkStrs(x)
	case HashMapStringInt:
		return checkKeys(x)
	case HashMapStringGuid:
		return checkKeys(x)
	case HashMapStringFloat:
		return checkKeys(x)
	case HashMapStringString:
		if err := checkKeys(x); err != nil {
			return err
		}
		for _, s := range x {
			if err := checkStr(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkStr(s string) error {
	if len(s) > math.MaxUint16 {
		return errTooLong("string", len(s), math.MaxUint16)
	}
	return nil
}

func checkStrs(ss []string) error {
	for _, s := range ss {
		if err := checkStr(s); err != nil {
			return err
		}
	}
	return nil
}

func checkKeys[V any](m map[string]V) error {
	for k := range m {
		if err := checkStr(k); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) guid(g Guid) { w.buf = append(w.buf, g[:]...) }

func (w *Writer) vector3(v Vector3) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
}

// Reader consumes the wire representation. The first failure sticks; every
// later read returns zero values and Err reports the failure.
type Reader struct {
	b   []byte
	off int
	err error
}

func NewReader(b []byte) *Reader { return &Reader{b: b} }

func (r *Reader) Err() error     { return r.err }
func (r *Reader) Remaining() int { return len(r.b) - r.off }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.b) {
		r.err = NewError(KindMalformed, "reason", "short buffer", "offset", r.off, "need", n)
		return nil
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out
}

func (r *Reader) U8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *Reader) U16() uint16 {
	if b := r.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *Reader) U32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *Reader) U64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }

func (r *Reader) Bool() bool { return r.U8() != 0 }

func (r *Reader) Str() string {
	n := int(r.U16())
	return string(r.take(n))
}

func (r *Reader) Blob() []byte {
	n := int(r.U32())
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *Reader) guid() Guid {
	var g Guid
	copy(g[:], r.take(16))
	return g
}

func (r *Reader) vector3() Vector3 {
	return Vector3{X: r.F32(), Y: r.F32(), Z: r.F32()}
}

// count reads a u32 element count and rejects counts the remaining input
// cannot possibly hold.
func (r *Reader) count(minElem int) int {
	n := int(r.U32())
	if r.err == nil && n*minElem > r.Remaining() {
		r.err = NewError(KindMalformed, "reason", "count exceeds input", "offset", r.off, "count", n)
		return 0
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteValue appends v in its type's fixed wire shape. Length overflows
// are reported by w.Err.
func WriteValue(w *Writer, v Value) {
	switch x := v.(type) {
	case Int:
		w.U32(uint32(x))
	case Int64:
		w.U64(uint64(x))
	case Float:
		w.F32(float32(x))
	case Bool:
		w.Bool(bool(x))
	case String:
		w.Str(string(x))
	case Guid:
		w.guid(x)
	case GuidPair:
		w.guid(x.First)
		w.guid(x.Second)
	case JSON:
		w.Blob(x)
	case LocalizedString:
		w.Str(string(x))
	case ContentRef:
		w.U16(x.Class)
		w.guid(x.ID)
	case ContentRefList:
		w.count(len(x))
		for _, c := range x {
			w.U16(c.Class)
			w.guid(c.ID)
		}
	case Vector3:
		w.vector3(x)
	case Vector3Uts:
		w.U32(x.Tag)
		w.vector3(x.Vec)
	case BitSetFilter:
		w.U64(uint64(x))
	case ClassRef:
		w.U16(uint16(x))
	case AnyBytes:
		w.Str(x.Tag)
		w.Blob(x.Data)
	case VectorInt:
		w.count(len(x))
		for _, e := range x {
			w.U32(uint32(e))
		}
	case VectorInt64:
		w.count(len(x))
		for _, e := range x {
			w.U64(uint64(e))
		}
	case VectorFloat:
		w.count(len(x))
		for _, e := range x {
			w.F32(e)
		}
	case VectorBool:
		w.count(len(x))
		for _, e := range x {
			w.Bool(e)
		}
	case VectorString:
		w.count(len(x))
		for _, e := range x {
			w.Str(e)
		}
	case VectorGuid:
		w.count(len(x))
		for _, e := range x {
			w.guid(e)
		}
	case VectorGuidPair:
		w.count(len(x))
		for _, e := range x {
			w.guid(e.First)
			w.guid(e.Second)
		}
	case VectorLocalizedString:
		w.count(len(x))
		for _, e := range x {
			w.Str(e)
		}
	case VectorVector3:
		w.count(len(x))
		for _, e := range x {
			w.vector3(e)
		}
	case HashMapStringInt:
		w.count(len(x))
		for _, k := range sortedKeys(x) {
			w.Str(k)
			w.U32(uint32(x[k]))
		}
	case HashMapStringString:
		w.count(len(x))
		for _, k := range sortedKeys(x) {
			w.Str(k)
			w.Str(x[k])
		}
	case HashMapStringGuid:
		w.count(len(x))
		for _, k := range sortedKeys(x) {
			w.Str(k)
			w.guid(x[k])
		}
	case HashMapStringFloat:
		w.count(len(x))
		for _, k := range sortedKeys(x) {
			w.Str(k)
			w.F32(x[k])
		}
	default:
		panic("param: write of unknown value type")
	}
}

// ReadValue decodes one value of type t.
func ReadValue(r *Reader, t Type) (Value, error) {
	v := readValue(r, t)
	if r.err != nil {
		return nil, r.err
	}
	if v == nil {
		return nil, NewError(KindTypeMismatch, "type", t)
	}
	if j, ok := v.(JSON); ok {
		return compactJSON(j)
	}
	return v, nil
}

func readValue(r *Reader, t Type) Value {
	switch t {
	case TypeInt:
		return Int(int32(r.U32()))
	case TypeInt64:
		return Int64(int64(r.U64()))
	case TypeFloat:
		return Float(r.F32())
	case TypeBool:
		return Bool(r.Bool())
	case TypeString:
		return String(r.Str())
	case TypeGuid:
		return r.guid()
	case TypeGuidPair:
		return GuidPair{First: r.guid(), Second: r.guid()}
	case TypeJSON:
		return JSON(r.Blob())
	case TypeLocalizedString:
		return LocalizedString(r.Str())
	case TypeContentRef:
		return ContentRef{Class: r.U16(), ID: r.guid()}
	case TypeContentRefList:
		n := r.count(18)
		out := make(ContentRefList, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, ContentRef{Class: r.U16(), ID: r.guid()})
		}
		return out
	case TypeVector3:
		return r.vector3()
	case TypeVector3Uts:
		tag := r.U32()
		return Vector3Uts{Tag: tag, Vec: r.vector3()}
	case TypeBitSetFilter:
		return BitSetFilter(r.U64())
	case TypeClassRef:
		return ClassRef(r.U16())
	case TypeAnyBytes:
		tag := r.Str()
		data := r.Blob()
		if data == nil {
			data = []byte{}
		}
		return AnyBytes{Tag: tag, Data: data}
	case TypeVectorInt:
		n := r.count(4)
		out := make(VectorInt, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, int32(r.U32()))
		}
		return out
	case TypeVectorInt64:
		n := r.count(8)
		out := make(VectorInt64, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, int64(r.U64()))
		}
		return out
	case TypeVectorFloat:
		n := r.count(4)
		out := make(VectorFloat, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, r.F32())
		}
		return out
	case TypeVectorBool:
		n := r.count(1)
		out := make(VectorBool, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, r.Bool())
		}
		return out
	case TypeVectorString:
		n := r.count(2)
		out := make(VectorString, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, r.Str())
		}
		return out
	case TypeVectorGuid:
		n := r.count(16)
		out := make(VectorGuid, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, r.guid())
		}
		return out
	case TypeVectorGuidPair:
		n := r.count(32)
		out := make(VectorGuidPair, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, GuidPair{First: r.guid(), Second: r.guid()})
		}
		return out
	case TypeVectorLocalizedString:
		n := r.count(2)
		out := make(VectorLocalizedString, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, r.Str())
		}
		return out
	case TypeVectorVector3:
		n := r.count(12)
		out := make(VectorVector3, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			out = append(out, r.vector3())
		}
		return out
	case TypeHashMapStringInt:
		n := r.count(6)
		out := make(HashMapStringInt, n)
		for i := 0; i < n && r.err == nil; i++ {
			k := r.Str()
			out[k] = int32(r.U32())
		}
		return out
	case TypeHashMapStringString:
		n := r.count(4)
		out := make(HashMapStringString, n)
		for i := 0; i < n && r.err == nil; i++ {
			k := r.Str()
			out[k] = r.Str()
		}
		return out
	case TypeHashMapStringGuid:
		n := r.count(18)
		out := make(HashMapStringGuid, n)
		for i := 0; i < n && r.err == nil; i++ {
			k := r.Str()
			out[k] = r.guid()
		}
		return out
	case TypeHashMapStringFloat:
		n := r.count(6)
		out := make(HashMapStringFloat, n)
		for i := 0; i < n && r.err == nil; i++ {
			k := r.Str()
			out[k] = r.F32()
		}
		return out
	}
	return nil
}
