// Package codec serializes class tables and envelopes. Binary tables carry
// every attribute in declaration order; envelopes are prefixed by a u16
// ClassId. JSON envelopes are single-key objects named after the class.
// Diffs reuse both shapes for the entries of a partial table.
package codec

import (
	"fmt"

	"paramforge/internal/box"
	"paramforge/internal/class"
	"paramforge/internal/param"
)

// WriteTable writes all attributes of t's class in declaration order.
// Overflows stick in w.Err.
func WriteTable(w *param.Writer, t *class.Table) {
	writeAttrs(w, t, t.Class().Attrs())
}

// WriteClientTable writes only the attributes visible to clients.
func WriteClientTable(w *param.Writer, t *class.Table) {
	writeAttrs(w, t, t.Class().ClientAttrs())
}

func writeAttrs(w *param.Writer, t *class.Table, attrs []*class.Attr) {
	for _, a := range attrs {
		v, err := t.GetAttr(a)
		if err != nil {
			// attrs come from t's own class
			panic(err)
		}
		param.WriteValue(w, v)
	}
}

// ReadTable reads a table written by WriteTable.
func ReadTable(r *param.Reader, c *class.Class) (*class.Table, error) {
	return readAttrs(r, c, c.Attrs())
}

// ReadClientTable reads a table written by WriteClientTable. Attributes
// hidden from clients keep their defaults.
func ReadClientTable(r *param.Reader, c *class.Class) (*class.Table, error) {
	return readAttrs(r, c, c.ClientAttrs())
}

func readAttrs(r *param.Reader, c *class.Class, attrs []*class.Attr) (*class.Table, error) {
	t := c.New()
	for _, a := range attrs {
		v, err := param.ReadValue(r, a.Type())
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", c.Name(), a.Name(), err)
		}
		if err := t.Params().Set(a, v); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Encode frames a box as its ClassId followed by the table body.
func Encode(b *box.Box) ([]byte, error) {
	return encode(b, 64, WriteTable)
}

// EncodeClient is Encode restricted to client-visible attributes.
func EncodeClient(b *box.Box) ([]byte, error) {
	return encode(b, 64, WriteClientTable)
}

func encode(b *box.Box, capacity int, write func(*param.Writer, *class.Table)) ([]byte, error) {
	w := param.NewWriter(capacity)
	w.U16(b.ClassID())
	write(w, b.Table())
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", b.Table().Class().Name(), err)
	}
	return w.Bytes(), nil
}

// Decode reads an envelope written by Encode.
func Decode(d *box.Dispatch, data []byte) (*box.Box, error) {
	return decode(d, data, ReadTable)
}

// DecodeClient reads an envelope written by EncodeClient.
func DecodeClient(d *box.Dispatch, data []byte) (*box.Box, error) {
	return decode(d, data, ReadClientTable)
}

func decode(d *box.Dispatch, data []byte, read func(*param.Reader, *class.Class) (*class.Table, error)) (*box.Box, error) {
	r := param.NewReader(data)
	id := r.U16()
	if err := r.Err(); err != nil {
		return nil, err
	}
	b, err := ReadBody(d, id, r, read)
	if err != nil {
		return nil, err
	}
	if err := expectEOF(r); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadBody reads the table body of a ClassId the caller already consumed.
func ReadBody(d *box.Dispatch, id uint16, r *param.Reader, read func(*param.Reader, *class.Class) (*class.Table, error)) (*box.Box, error) {
	c, err := d.Registry().ClassByID(id)
	if err != nil {
		return nil, err
	}
	t, err := read(r, c)
	if err != nil {
		return nil, err
	}
	return d.Wrap(t), nil
}

func expectEOF(r *param.Reader) error {
	if n := r.Remaining(); n > 0 {
		return param.NewError(param.KindMalformed, "trailing_bytes", n)
	}
	return nil
}
