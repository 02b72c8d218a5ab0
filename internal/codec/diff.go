package codec

import (
	"fmt"

	"paramforge/internal/box"
	"paramforge/internal/class"
	"paramforge/internal/param"
)

// WriteDiff writes the entries of a partial table as a u16 count followed
// by (u16 attribute id, value) pairs in id order.
func WriteDiff(w *param.Writer, t *class.Table) {
	set := t.Params()
	w.U16(uint16(set.Len()))
	for a, v := range set.All() {
		w.U16(a.ID())
		param.WriteValue(w, v)
	}
}

// ReadDiff reads a partial table written by WriteDiff.
func ReadDiff(r *param.Reader, c *class.Class) (*class.Table, error) {
	t := c.Empty()
	n := int(r.U16())
	for i := 0; i < n; i++ {
		id := r.U16()
		if err := r.Err(); err != nil {
			return nil, err
		}
		a, err := c.AttrByID(id)
		if err != nil {
			return nil, err
		}
		v, err := param.ReadValue(r, a.Type())
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", c.Name(), a.Name(), err)
		}
		if err := t.Params().Set(a, v); err != nil {
			return nil, err
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// EncodeDiff frames a diff box as its ClassId followed by the entries.
func EncodeDiff(b *box.Box) ([]byte, error) {
	return encode(b, 16, WriteDiff)
}

// DecodeDiff reads an envelope written by EncodeDiff.
func DecodeDiff(d *box.Dispatch, data []byte) (*box.Box, error) {
	return decode(d, data, ReadDiff)
}

// MarshalDiffJSON renders only the entries present in the diff.
func MarshalDiffJSON(b *box.Box) ([]byte, error) {
	t := b.Table()
	return envelope(t.Class().Name(), t.Params().Attrs(), t)
}

// UnmarshalDiffJSON reads a JSON envelope into a partial table.
func UnmarshalDiffJSON(d *box.Dispatch, data []byte) (*box.Box, error) {
	return unmarshalEnvelope(d, data, (*class.Class).Empty)
}
