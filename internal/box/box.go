// Package box is the type-erased envelope over all final classes. A Dispatch
// maps every ClassId of a registry to the concrete type wrapping its tables;
// generated bindings register their wrappers into it.
package box

import (
	"fmt"

	"paramforge/internal/class"
	"paramforge/internal/param"
)

// Concrete is any typed view over a class table. *class.Table is the
// fallback for classes without a registered wrapper.
type Concrete interface {
	ParamTable() *class.Table
}

// Factory wraps a table in its concrete type.
type Factory func(*class.Table) Concrete

// Dispatch is the ClassId dispatch table. It is filled at startup and
// read-only afterwards.
type Dispatch struct {
	reg  *class.Registry
	wrap map[uint16]Factory
}

func NewDispatch(reg *class.Registry) *Dispatch {
	return &Dispatch{reg: reg, wrap: map[uint16]Factory{}}
}

func (d *Dispatch) Registry() *class.Registry { return d.reg }

// Register installs the wrapper factory for a ClassId.
func (d *Dispatch) Register(id uint16, f Factory) error {
	if _, err := d.reg.ClassByID(id); err != nil {
		return err
	}
	d.wrap[id] = f
	return nil
}

func (d *Dispatch) factory(id uint16) Factory {
	if f, ok := d.wrap[id]; ok {
		return f
	}
	return func(t *class.Table) Concrete { return t }
}

// New boxes a fresh default table of the class with the given ClassId.
func (d *Dispatch) New(id uint16) (*Box, error) {
	c, err := d.reg.ClassByID(id)
	if err != nil {
		return nil, err
	}
	return d.Wrap(c.New()), nil
}

// NewByName boxes a fresh default table of the named final class.
func (d *Dispatch) NewByName(name string) (*Box, error) {
	t, err := d.reg.New(name)
	if err != nil {
		return nil, err
	}
	return d.Wrap(t), nil
}

// Wrap boxes an existing table.
func (d *Dispatch) Wrap(t *class.Table) *Box {
	f := d.factory(t.ClassID())
	return &Box{id: t.ClassID(), v: f(t), wrap: f}
}

// Box pairs a ClassId with the single table it owns.
type Box struct {
	id   uint16
	v    Concrete
	wrap Factory
}

func (b *Box) ClassID() uint16        { return b.id }
func (b *Box) Class() *class.Class    { return b.v.ParamTable().Class() }
func (b *Box) Table() *class.Table    { return b.v.ParamTable() }
func (b *Box) Value() Concrete        { return b.v }
func (b *Box) String() string         { return b.Table().String() }
func (b *Box) Equal(o *Box) bool      { return b.id == o.id && b.Table().Equal(o.Table()) }
func (b *Box) sameClass(o *Box) error { return checkClass(b, o.id, o.Class().Name()) }

func (b *Box) Clone() *Box {
	t := b.Table().Clone()
	return &Box{id: b.id, v: b.wrap(t), wrap: b.wrap}
}

// Diff boxes the partial table of entries in o that differ from b.
func (b *Box) Diff(o *Box) (*Box, error) {
	if err := b.sameClass(o); err != nil {
		return nil, err
	}
	t, err := b.Table().Diff(o.Table())
	if err != nil {
		return nil, err
	}
	return &Box{id: b.id, v: b.wrap(t), wrap: b.wrap}, nil
}

// Apply folds a diff of the same class into b.
func (b *Box) Apply(diff *Box) error {
	if err := b.sameClass(diff); err != nil {
		return err
	}
	return b.Table().Extend(diff.Table())
}

func checkClass(b *Box, id uint16, name string) error {
	if b.id != id {
		return param.NewError(param.KindWrongClass, "want", b.Class().Name(), "got", name)
	}
	return nil
}

// As downcasts the boxed value to T.
func As[T Concrete](b *Box) (T, error) {
	v, ok := b.v.(T)
	if !ok {
		var zero T
		return zero, param.NewError(param.KindWrongClass,
			"class", b.Class().Name(), "want", fmt.Sprintf("%T", zero), "got", fmt.Sprintf("%T", b.v))
	}
	return v, nil
}

// MustAs is As for paths that already validated the ClassId. A mismatch is
// a broken dispatch table and panics.
func MustAs[T Concrete](b *Box) T {
	v, err := As[T](b)
	if err != nil {
		panic(err)
	}
	return v
}
