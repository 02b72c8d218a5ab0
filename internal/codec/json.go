package codec

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"paramforge/internal/box"
	"paramforge/internal/class"
	"paramforge/internal/param"
)

// MarshalJSON renders {"<ClassName>": {"<attr>": value, ...}} with
// attributes in declaration order.
func MarshalJSON(b *box.Box) ([]byte, error) {
	t := b.Table()
	return envelope(t.Class().Name(), t.Class().Attrs(), t)
}

// MarshalClientJSON is MarshalJSON restricted to client-visible attributes.
func MarshalClientJSON(b *box.Box) ([]byte, error) {
	t := b.Table()
	return envelope(t.Class().Name(), t.Class().ClientAttrs(), t)
}

// MarshalTableJSON renders the attribute object without the envelope.
func MarshalTableJSON(t *class.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeObject(&buf, t.Class().Attrs(), t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func envelope(name string, attrs []*class.Attr, t *class.Table) ([]byte, error) {
	var buf bytes.Buffer
	key, err := json.Marshal(name)
	if err != nil {
		return nil, err
	}
	buf.WriteByte('{')
	buf.Write(key)
	buf.WriteByte(':')
	if err := writeObject(&buf, attrs, t); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeObject(buf *bytes.Buffer, attrs []*class.Attr, t *class.Table) error {
	buf.WriteByte('{')
	for i, a := range attrs {
		v, err := t.GetAttr(a)
		if err != nil {
			return err
		}
		raw, err := param.MarshalValue(v)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t.Class().Name(), a.Name(), err)
		}
		key, _ := json.Marshal(a.Name())
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON reads an envelope written by MarshalJSON. Attributes the
// payload omits keep their defaults.
func UnmarshalJSON(d *box.Dispatch, data []byte) (*box.Box, error) {
	return unmarshalEnvelope(d, data, (*class.Class).New)
}

func unmarshalEnvelope(d *box.Dispatch, data []byte, start func(*class.Class) *class.Table) (*box.Box, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, malformed(err)
	}
	if len(env) != 1 {
		return nil, param.NewError(param.KindMalformed, "reason", "envelope must have exactly one key", "keys", len(env))
	}
	for name, body := range env {
		c, err := d.Registry().ClassByName(name)
		if err != nil {
			return nil, err
		}
		if !c.Final() {
			return nil, param.NewError(param.KindWrongClass, "class", name, "reason", "not final")
		}
		t := start(c)
		if err := UnmarshalTableJSON(t, body); err != nil {
			return nil, err
		}
		return d.Wrap(t), nil
	}
	panic("unreachable")
}

// UnmarshalTableJSON sets every attribute present in the JSON object on t.
// Unknown attribute names are an error.
func UnmarshalTableJSON(t *class.Table, data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return malformed(err)
	}
	if obj == nil {
		return param.NewError(param.KindMalformed, "reason", "attribute table must be an object")
	}
	c := t.Class()
	for name, raw := range obj {
		a, err := c.Attr(name)
		if err != nil {
			return err
		}
		v, err := param.UnmarshalValue(a.Type(), raw)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", c.Name(), name, err)
		}
		if err := t.Params().Set(a, v); err != nil {
			return err
		}
	}
	return nil
}

func malformed(err error) error {
	return param.NewError(param.KindMalformed, "reason", err.Error())
}
