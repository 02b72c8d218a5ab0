package param

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MarshalValue renders v in its type's natural JSON shape.
func MarshalValue(v Value) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, NewError(KindMalformed, "type", v.Type(), "reason", err.Error())
	}
	return b, nil
}

// UnmarshalValue parses raw as a value of type t.
func UnmarshalValue(t Type, raw []byte) (Value, error) {
	switch t {
	case TypeInt:
		return decodeAs[Int](t, raw)
	case TypeInt64:
		return decodeAs[Int64](t, raw)
	case TypeFloat:
		return decodeAs[Float](t, raw)
	case TypeBool:
		return decodeAs[Bool](t, raw)
	case TypeString:
		return decodeAs[String](t, raw)
	case TypeGuid:
		return decodeAs[Guid](t, raw)
	case TypeGuidPair:
		return decodeAs[GuidPair](t, raw)
	case TypeJSON:
		return decodeAs[JSON](t, raw)
	case TypeLocalizedString:
		return decodeAs[LocalizedString](t, raw)
	case TypeContentRef:
		return decodeAs[ContentRef](t, raw)
	case TypeContentRefList:
		return decodeAs[ContentRefList](t, raw)
	case TypeVector3:
		return decodeAs[Vector3](t, raw)
	case TypeVector3Uts:
		return decodeAs[Vector3Uts](t, raw)
	case TypeBitSetFilter:
		return decodeAs[BitSetFilter](t, raw)
	case TypeClassRef:
		return decodeAs[ClassRef](t, raw)
	case TypeAnyBytes:
		return decodeAs[AnyBytes](t, raw)
	case TypeVectorInt:
		return decodeAs[VectorInt](t, raw)
	case TypeVectorInt64:
		return decodeAs[VectorInt64](t, raw)
	case TypeVectorFloat:
		return decodeAs[VectorFloat](t, raw)
	case TypeVectorBool:
		return decodeAs[VectorBool](t, raw)
	case TypeVectorString:
		return decodeAs[VectorString](t, raw)
	case TypeVectorGuid:
		return decodeAs[VectorGuid](t, raw)
	case TypeVectorGuidPair:
		return decodeAs[VectorGuidPair](t, raw)
	case TypeVectorLocalizedString:
		return decodeAs[VectorLocalizedString](t, raw)
	case TypeVectorVector3:
		return decodeAs[VectorVector3](t, raw)
	case TypeHashMapStringInt:
		return decodeAs[HashMapStringInt](t, raw)
	case TypeHashMapStringString:
		return decodeAs[HashMapStringString](t, raw)
	case TypeHashMapStringGuid:
		return decodeAs[HashMapStringGuid](t, raw)
	case TypeHashMapStringFloat:
		return decodeAs[HashMapStringFloat](t, raw)
	}
	return nil, NewError(KindTypeMismatch, "type", t)
}

func decodeAs[T Value](t Type, raw []byte) (Value, error) {
	v, _ := Zero(t).(T)
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, NewError(KindMalformed, "type", t, "reason", err.Error())
	}
	return v, nil
}

func (g Guid) MarshalText() ([]byte, error) {
	return uuid.UUID(g).MarshalText()
}

func (g *Guid) UnmarshalText(b []byte) error {
	v, err := ParseGuid(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

func (p GuidPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Guid{p.First, p.Second})
}

func (p *GuidPair) UnmarshalJSON(b []byte) error {
	var pair [2]Guid
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	p.First, p.Second = pair[0], pair[1]
	return nil
}

func (v Vector3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float32{v.X, v.Y, v.Z})
}

func (v *Vector3) UnmarshalJSON(b []byte) error {
	var xyz []float32
	if err := json.Unmarshal(b, &xyz); err != nil {
		return err
	}
	if len(xyz) != 3 {
		return fmt.Errorf("vector3 needs 3 components, got %d", len(xyz))
	}
	v.X, v.Y, v.Z = xyz[0], xyz[1], xyz[2]
	return nil
}

type vector3UtsJSON struct {
	Tag uint32  `json:"tag"`
	Vec Vector3 `json:"vec"`
}

func (v Vector3Uts) MarshalJSON() ([]byte, error) {
	return json.Marshal(vector3UtsJSON{Tag: v.Tag, Vec: v.Vec})
}

func (v *Vector3Uts) UnmarshalJSON(b []byte) error {
	var aux vector3UtsJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	v.Tag, v.Vec = aux.Tag, aux.Vec
	return nil
}

type contentRefJSON struct {
	Class uint16 `json:"class"`
	ID    Guid   `json:"id"`
}

func (c ContentRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentRefJSON{Class: c.Class, ID: c.ID})
}

func (c *ContentRef) UnmarshalJSON(b []byte) error {
	var aux contentRefJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.Class, c.ID = aux.Class, aux.ID
	return nil
}

type anyBytesJSON struct {
	Tag  string `json:"tag"`
	Data []byte `json:"data"`
}

func (a AnyBytes) MarshalJSON() ([]byte, error) {
	data := a.Data
	if data == nil {
		data = []byte{}
	}
	return json.Marshal(anyBytesJSON{Tag: a.Tag, Data: data})
}

func (a *AnyBytes) UnmarshalJSON(b []byte) error {
	var aux anyBytesJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Data == nil {
		aux.Data = []byte{}
	}
	a.Tag, a.Data = aux.Tag, aux.Data
	return nil
}

// MarshalJSON embeds the raw text; an empty blob renders as null.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	if !json.Valid(j) {
		return nil, fmt.Errorf("json param holds invalid JSON")
	}
	return j, nil
}

// compactJSON validates a blob read off the wire and returns its compacted
// form, so it compares equal to the same document decoded from JSON.
func compactJSON(j JSON) (Value, error) {
	if len(j) == 0 {
		return j, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, j); err != nil {
		return nil, NewError(KindMalformed, "type", TypeJSON, "reason", "invalid JSON")
	}
	return JSON(buf.Bytes()), nil
}

func checkJSON(j JSON) error {
	if len(j) > 0 && !json.Valid(j) {
		return NewError(KindMalformed, "type", TypeJSON, "reason", "invalid JSON")
	}
	return nil
}

// UnmarshalJSON stores the compacted text so equal documents compare equal.
func (j *JSON) UnmarshalJSON(b []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	*j = JSON(buf.Bytes())
	return nil
}
