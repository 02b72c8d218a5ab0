package class

import (
	"fmt"

	"paramforge/internal/param"
	"paramforge/internal/paramset"
)

// Table is the concrete attribute table of one class instance.
type Table struct {
	class *Class
	set   *paramset.Set[*Attr]
}

func (t *Table) Class() *Class   { return t.class }
func (t *Table) ClassID() uint16 { return t.class.id }

// Params exposes the underlying set.
func (t *Table) Params() *paramset.Set[*Attr] { return t.set }

// ParamTable returns t itself so that tables and generated wrappers share
// one accessor.
func (t *Table) ParamTable() *Table { return t }

func (t *Table) Get(name string) (param.Value, error) {
	a, err := t.class.Attr(name)
	if err != nil {
		return nil, err
	}
	return t.GetAttr(a)
}

func (t *Table) GetByID(id uint16) (param.Value, error) {
	a, err := t.class.AttrByID(id)
	if err != nil {
		return nil, err
	}
	return t.GetAttr(a)
}

// GetAttr returns the stored value, or the attribute's default when the
// table is partial and has no entry.
func (t *Table) GetAttr(a *Attr) (param.Value, error) {
	if v, ok := t.set.Get(a); ok {
		return v, nil
	}
	if t.class.byID[a.id] != a {
		return nil, param.NewError(param.KindUnknownAttributeID, "class", t.class.name, "id", a.id)
	}
	return a.Default(), nil
}

func (t *Table) Set(name string, v param.Value) error {
	a, err := t.class.Attr(name)
	if err != nil {
		return err
	}
	return t.set.Set(a, v)
}

func (t *Table) SetByID(id uint16, v param.Value) error {
	a, err := t.class.AttrByID(id)
	if err != nil {
		return err
	}
	return t.set.Set(a, v)
}

func (t *Table) Len() int { return t.set.Len() }

func (t *Table) Clone() *Table {
	return &Table{class: t.class, set: t.set.Clone()}
}

func (t *Table) Equal(o *Table) bool {
	return t.class == o.class && t.set.Equal(o.set)
}

// Diff returns a partial table with the entries of o that differ from t.
func (t *Table) Diff(o *Table) (*Table, error) {
	if err := t.sameClass(o); err != nil {
		return nil, err
	}
	return &Table{class: t.class, set: t.set.Diff(o.set)}, nil
}

// Extend folds o's entries into t.
func (t *Table) Extend(o *Table) error {
	if err := t.sameClass(o); err != nil {
		return err
	}
	t.set.Extend(o.set)
	return nil
}

func (t *Table) sameClass(o *Table) error {
	if t.class != o.class {
		return param.NewError(param.KindWrongClass, "want", t.class.name, "got", o.class.name)
	}
	return nil
}

func (t *Table) String() string {
	return fmt.Sprintf("%s(%d attrs)", t.class.name, t.set.Len())
}

// Get returns the named attribute as V.
func Get[V param.Value](t *Table, name string) (V, error) {
	var zero V
	v, err := t.Get(name)
	if err != nil {
		return zero, err
	}
	out, ok := v.(V)
	if !ok {
		return zero, param.NewError(param.KindTypeMismatch, "attr", name, "got", v.Type().String())
	}
	return out, nil
}

// Set stores v under the named attribute.
func Set[V param.Value](t *Table, name string, v V) error {
	return t.Set(name, v)
}

// MustGet is Get for callers whose attribute and type come from the same
// binding as t's class. A failure is a broken binding and panics.
func MustGet[V param.Value](t *Table, name string) V {
	v, err := Get[V](t, name)
	if err != nil {
		panic(fmt.Sprintf("class %s: %v", t.class.name, err))
	}
	return v
}

// MustSet is the setter counterpart of MustGet.
func MustSet[V param.Value](t *Table, name string, v V) {
	if err := Set(t, name, v); err != nil {
		panic(fmt.Sprintf("class %s: %v", t.class.name, err))
	}
}
