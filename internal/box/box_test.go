package box

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paramforge/internal/class"
	"paramforge/internal/param"
)

type spawner struct{ t *class.Table }

func (s spawner) ParamTable() *class.Table { return s.t }
func (s spawner) Radius() param.Float      { return class.MustGet[param.Float](s.t, "radius") }

type portal struct{ t *class.Table }

func (p portal) ParamTable() *class.Table { return p.t }

func dispatch(t *testing.T) *Dispatch {
	t.Helper()
	reg := class.NewRegistry()
	_, err := reg.Define(class.Def{ID: 10, Name: "spawner", Final: true, Attrs: []class.AttrDef{
		{ID: 1, Name: "radius", Type: param.TypeFloat, Default: param.Float(2.5)},
	}})
	require.NoError(t, err)
	_, err = reg.Define(class.Def{ID: 11, Name: "portal", Final: true})
	require.NoError(t, err)

	d := NewDispatch(reg)
	require.NoError(t, d.Register(10, func(t *class.Table) Concrete { return spawner{t} }))
	require.NoError(t, d.Register(11, func(t *class.Table) Concrete { return portal{t} }))
	return d
}

func TestNewDispatchesByClassID(t *testing.T) {
	d := dispatch(t)
	b, err := d.New(10)
	require.NoError(t, err)
	assert.Equal(t, uint16(10), b.ClassID())

	s, err := As[spawner](b)
	require.NoError(t, err)
	assert.Equal(t, param.Float(2.5), s.Radius())

	_, err = d.New(99)
	assert.True(t, errors.Is(err, param.ErrUnknownClassID))
	assert.Error(t, d.Register(99, nil))
}

func TestWrongDowncast(t *testing.T) {
	d := dispatch(t)
	b, err := d.NewByName("portal")
	require.NoError(t, err)

	_, err = As[spawner](b)
	assert.True(t, errors.Is(err, param.ErrWrongClass))
	assert.Panics(t, func() { MustAs[spawner](b) })
	assert.NotPanics(t, func() { MustAs[portal](b) })
}

func TestUnregisteredClassFallsBackToTable(t *testing.T) {
	reg := class.NewRegistry()
	_, err := reg.Define(class.Def{ID: 1, Name: "plain", Final: true})
	require.NoError(t, err)
	b, err := NewDispatch(reg).New(1)
	require.NoError(t, err)
	_, err = As[*class.Table](b)
	assert.NoError(t, err)
}

func TestCloneDiffApply(t *testing.T) {
	d := dispatch(t)
	x, _ := d.New(10)
	y := x.Clone()
	_, err := As[spawner](y)
	require.NoError(t, err, "clone keeps the concrete type")

	require.NoError(t, y.Table().Set("radius", param.Float(9)))
	assert.False(t, x.Equal(y))

	diff, err := x.Diff(y)
	require.NoError(t, err)
	assert.Equal(t, 1, diff.Table().Len())

	require.NoError(t, x.Apply(diff))
	assert.True(t, x.Equal(y))

	other, _ := d.New(11)
	_, err = x.Diff(other)
	assert.True(t, errors.Is(err, param.ErrWrongClass))
	assert.True(t, errors.Is(x.Apply(other), param.ErrWrongClass))
}
