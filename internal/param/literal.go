package param

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ParseDefault parses a schema default literal. The grammar depends on the
// attribute type; an empty literal yields the type's zero value.
func ParseDefault(t Type, lit string) (Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("default for invalid type %v", t)
	}
	lit = strings.TrimSpace(lit)
	if lit == "" {
		return Zero(t), nil
	}
	v, err := parseLiteral(t, lit)
	if err != nil {
		return nil, fmt.Errorf("default %q for %s: %w", lit, t, err)
	}
	return v, nil
}

func parseLiteral(t Type, lit string) (Value, error) {
	switch t {
	case TypeInt:
		n, err := parseInt(lit, 32)
		return Int(n), err
	case TypeInt64:
		n, err := parseInt(lit, 64)
		return Int64(n), err
	case TypeFloat:
		f, err := strconv.ParseFloat(lit, 32)
		return Float(f), err
	case TypeBool:
		b, err := parseBool(lit)
		return Bool(b), err
	case TypeString:
		return String(lit), nil
	case TypeLocalizedString:
		return LocalizedString(lit), nil
	case TypeGuid:
		return ParseGuid(lit)
	case TypeGuidPair:
		parts, err := bracketList(lit)
		if err != nil {
			return nil, err
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("guid pair needs 2 elements, got %d", len(parts))
		}
		a, err := ParseGuid(parts[0])
		if err != nil {
			return nil, err
		}
		b, err := ParseGuid(parts[1])
		if err != nil {
			return nil, err
		}
		return GuidPair{First: a, Second: b}, nil
	case TypeJSON:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(lit)); err != nil {
			return nil, err
		}
		return JSON(buf.Bytes()), nil
	case TypeContentRef:
		return parseContentRef(lit)
	case TypeContentRefList:
		parts, err := bracketList(lit)
		if err != nil {
			return nil, err
		}
		out := make(ContentRefList, 0, len(parts))
		for _, p := range parts {
			c, err := parseContentRef(p)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	case TypeVector3:
		return parseVector3(lit)
	case TypeVector3Uts:
		v, err := parseVector3(lit)
		return Vector3Uts{Vec: v}, err
	case TypeBitSetFilter:
		n, err := strconv.ParseUint(lit, 0, 64)
		return BitSetFilter(n), err
	case TypeClassRef:
		n, err := strconv.ParseUint(lit, 0, 16)
		return ClassRef(n), err
	case TypeAnyBytes:
		tag, data, _ := strings.Cut(lit, ":")
		raw, err := base64.StdEncoding.DecodeString(data)
		return AnyBytes{Tag: tag, Data: raw}, err
	case TypeVectorInt:
		return parseList(lit, func(s string) (int32, error) {
			n, err := parseInt(s, 32)
			return int32(n), err
		}, func(xs []int32) Value { return VectorInt(xs) })
	case TypeVectorInt64:
		return parseList(lit, func(s string) (int64, error) {
			return parseInt(s, 64)
		}, func(xs []int64) Value { return VectorInt64(xs) })
	case TypeVectorFloat:
		return parseList(lit, func(s string) (float32, error) {
			f, err := strconv.ParseFloat(s, 32)
			return float32(f), err
		}, func(xs []float32) Value { return VectorFloat(xs) })
	case TypeVectorBool:
		return parseList(lit, parseBool, func(xs []bool) Value { return VectorBool(xs) })
	case TypeVectorString:
		return parseList(lit, unquote, func(xs []string) Value { return VectorString(xs) })
	case TypeVectorLocalizedString:
		return parseList(lit, unquote, func(xs []string) Value { return VectorLocalizedString(xs) })
	case TypeVectorGuid:
		return parseList(lit, ParseGuid, func(xs []Guid) Value { return VectorGuid(xs) })
	case TypeVectorGuidPair, TypeVectorVector3,
		TypeHashMapStringInt, TypeHashMapStringString, TypeHashMapStringGuid, TypeHashMapStringFloat:
		// nested shapes use the JSON grammar
		return UnmarshalValue(t, []byte(lit))
	}
	return nil, fmt.Errorf("no literal grammar for %s", t)
}

func parseInt(s string, bitSize int) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 0, bitSize)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool %q", s)
}

func unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strconv.Unquote(s)
	}
	return s, nil
}

// bracketList splits "[a, b, c]" into its trimmed elements. Brackets are
// optional; "[]" is the empty list. Quoted elements may contain commas.
func bracketList(lit string) ([]string, error) {
	s := strings.TrimSpace(lit)
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "(") {
		closer := byte(']')
		if s[0] == '(' {
			closer = ')'
		}
		if len(s) < 2 || s[len(s)-1] != closer {
			return nil, fmt.Errorf("unterminated list %q", lit)
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return []string{}, nil
	}
	var (
		out     []string
		buf     strings.Builder
		inQuote bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			out = append(out, strings.TrimSpace(buf.String()))
			buf.Reset()
			continue
		}
		buf.WriteRune(r)
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in %q", lit)
	}
	out = append(out, strings.TrimSpace(buf.String()))
	return out, nil
}

func parseList[E any](lit string, elem func(string) (E, error), wrap func([]E) Value) (Value, error) {
	parts, err := bracketList(lit)
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, len(parts))
	for i, p := range parts {
		e, err := elem(p)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, e)
	}
	return wrap(out), nil
}

func parseVector3(lit string) (Vector3, error) {
	parts, err := bracketList(lit)
	if err != nil {
		return Vector3{}, err
	}
	if len(parts) != 3 {
		return Vector3{}, fmt.Errorf("vector3 needs 3 components, got %d", len(parts))
	}
	var xyz [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return Vector3{}, err
		}
		xyz[i] = float32(f)
	}
	return Vector3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// parseContentRef accepts "<class>:<guid>".
func parseContentRef(s string) (ContentRef, error) {
	cls, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ContentRef{}, fmt.Errorf("content ref %q is not <class>:<guid>", s)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(cls), 0, 16)
	if err != nil {
		return ContentRef{}, err
	}
	g, err := ParseGuid(strings.TrimSpace(id))
	if err != nil {
		return ContentRef{}, err
	}
	return ContentRef{Class: uint16(n), ID: g}, nil
}
