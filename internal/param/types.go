// Package param defines the attribute value model: the closed set of
// attribute kinds, their behavior flags and the tagged Value union.
package param

import (
	"fmt"
	"strings"
)

// Type is the declared data kind of an attribute.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeInt
	TypeInt64
	TypeFloat
	TypeBool
	TypeString
	TypeGuid
	TypeGuidPair
	TypeJSON
	TypeLocalizedString
	TypeContentRef
	TypeContentRefList
	TypeVector3
	TypeVector3Uts
	TypeBitSetFilter
	TypeClassRef
	TypeAnyBytes
	TypeVectorInt
	TypeVectorInt64
	TypeVectorFloat
	TypeVectorBool
	TypeVectorString
	TypeVectorGuid
	TypeVectorGuidPair
	TypeVectorLocalizedString
	TypeVectorVector3
	TypeHashMapStringInt
	TypeHashMapStringString
	TypeHashMapStringGuid
	TypeHashMapStringFloat

	typeCount
)

type typeInfo struct {
	keyword string
	goType  string
	ref     bool
}

var typeTable = [typeCount]typeInfo{
	TypeInvalid:               {"invalid", "", false},
	TypeInt:                   {"Int", "param.Int", false},
	TypeInt64:                 {"Int64", "param.Int64", false},
	TypeFloat:                 {"Float", "param.Float", false},
	TypeBool:                  {"Bool", "param.Bool", false},
	TypeString:                {"String", "param.String", true},
	TypeGuid:                  {"Guid", "param.Guid", false},
	TypeGuidPair:              {"GuidPair", "param.GuidPair", false},
	TypeJSON:                  {"Json", "param.JSON", true},
	TypeLocalizedString:       {"LocalizedString", "param.LocalizedString", true},
	TypeContentRef:            {"ContentRef", "param.ContentRef", false},
	TypeContentRefList:        {"ContentRefList", "param.ContentRefList", true},
	TypeVector3:               {"Vector3", "param.Vector3", false},
	TypeVector3Uts:            {"Vector3Uts", "param.Vector3Uts", false},
	TypeBitSetFilter:          {"BitSetFilter", "param.BitSetFilter", false},
	TypeClassRef:              {"ClassRef", "param.ClassRef", false},
	TypeAnyBytes:              {"AnyBytes", "param.AnyBytes", true},
	TypeVectorInt:             {"VectorInt", "param.VectorInt", true},
	TypeVectorInt64:           {"VectorInt64", "param.VectorInt64", true},
	TypeVectorFloat:           {"VectorFloat", "param.VectorFloat", true},
	TypeVectorBool:            {"VectorBool", "param.VectorBool", true},
	TypeVectorString:          {"VectorString", "param.VectorString", true},
	TypeVectorGuid:            {"VectorGuid", "param.VectorGuid", true},
	TypeVectorGuidPair:        {"VectorGuidPair", "param.VectorGuidPair", true},
	TypeVectorLocalizedString: {"VectorLocalizedString", "param.VectorLocalizedString", true},
	TypeVectorVector3:         {"VectorVector3", "param.VectorVector3", true},
	TypeHashMapStringInt:      {"HashMapStringInt", "param.HashMapStringInt", true},
	TypeHashMapStringString:   {"HashMapStringString", "param.HashMapStringString", true},
	TypeHashMapStringGuid:     {"HashMapStringGuid", "param.HashMapStringGuid", true},
	TypeHashMapStringFloat:    {"HashMapStringFloat", "param.HashMapStringFloat", true},
}

var typeByKeyword = func() map[string]Type {
	m := make(map[string]Type, typeCount)
	for t := TypeInt; t < typeCount; t++ {
		m[strings.ToLower(typeTable[t].keyword)] = t
	}
	// legacy spellings found in older schema files
	m["integer"] = TypeInt
	m["uuid"] = TypeGuid
	m["localizedstringref"] = TypeLocalizedString
	return m
}()

// ParseType maps a schema type keyword to its Type. Keywords are matched
// case-insensitively.
func ParseType(keyword string) (Type, error) {
	if t, ok := typeByKeyword[strings.ToLower(strings.TrimSpace(keyword))]; ok {
		return t, nil
	}
	return TypeInvalid, fmt.Errorf("unknown param type %q", keyword)
}

// Types lists every valid type in declaration order.
func Types() []Type {
	out := make([]Type, 0, typeCount-1)
	for t := TypeInt; t < typeCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t Type) Valid() bool { return t > TypeInvalid && t < typeCount }

func (t Type) String() string {
	if t >= typeCount {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeTable[t].keyword
}

// IsRef reports whether values of this type are reference-classified:
// accessors hand out the stored value instead of a copy.
func (t Type) IsRef() bool {
	return t.Valid() && typeTable[t].ref
}

// GoType is the qualified Go type used for accessors in emitted bindings.
func (t Type) GoType() string {
	if !t.Valid() {
		return ""
	}
	return typeTable[t].goType
}

// Resolve folds flags that change a type's shape into the type itself.
func (t Type) Resolve(flags Flag) Type {
	if t == TypeVector3 && flags.Has(FlagUts) {
		return TypeVector3Uts
	}
	return t
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
