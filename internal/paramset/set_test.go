package paramset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paramforge/internal/param"
)

type attr struct {
	id   uint16
	name string
	typ  param.Type
}

func (a *attr) ID() uint16       { return a.id }
func (a *attr) Name() string     { return a.name }
func (a *attr) Type() param.Type { return a.typ }

var (
	hp   = &attr{1, "hp", param.TypeInt}
	tags = &attr{2, "tags", param.TypeVectorString}
	pos  = &attr{3, "pos", param.TypeVector3}
)

func table(h int32, t []string, p param.Vector3) *Set[*attr] {
	s := New[*attr]()
	_ = s.Set(hp, param.Int(h))
	_ = s.Set(tags, param.VectorString(t))
	_ = s.Set(pos, p)
	return s
}

func TestSetRejectsWrongType(t *testing.T) {
	s := New[*attr]()
	err := s.Set(hp, param.Float(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, param.ErrTypeMismatch))
	assert.Error(t, s.Set(hp, nil))
	assert.Equal(t, 0, s.Len())
}

func TestAllIsOrderedByID(t *testing.T) {
	s := New[*attr]()
	require.NoError(t, s.Set(pos, param.Vector3{}))
	require.NoError(t, s.Set(hp, param.Int(1)))

	var ids []uint16
	for a := range s.All() {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []uint16{1, 3}, ids)
}

func TestExtendOverwrites(t *testing.T) {
	s := table(1, []string{"a"}, param.Vector3{})
	patch := New[*attr]()
	require.NoError(t, patch.Set(hp, param.Int(7)))

	s.Extend(patch)
	v, _ := s.Get(hp)
	assert.Equal(t, param.Int(7), v)
	assert.Equal(t, 3, s.Len())
}

func TestDiffLaws(t *testing.T) {
	x := table(1, []string{"a"}, param.Vector3{X: 1})
	y := table(2, []string{"a"}, param.Vector3{X: 1, Y: 2})

	assert.Equal(t, 0, x.Diff(x).Len(), "diff with itself is empty")

	d := x.Diff(y)
	assert.ElementsMatch(t, []*attr{hp, pos}, d.Attrs())

	applied := x.Clone()
	applied.Extend(d)
	assert.True(t, applied.Equal(y))

	// not symmetric in content
	back := y.Diff(x)
	v, _ := back.Get(hp)
	assert.Equal(t, param.Int(1), v)
}

func TestDiffIncludesMissingEntries(t *testing.T) {
	x := New[*attr]()
	y := table(0, nil, param.Vector3{})
	assert.Equal(t, 3, x.Diff(y).Len())
}

func TestCloneIsDeep(t *testing.T) {
	x := table(1, []string{"a", "b"}, param.Vector3{})
	c := x.Clone()
	v, _ := c.Get(tags)
	v.(param.VectorString)[0] = "changed"

	orig, _ := x.Get(tags)
	assert.Equal(t, param.VectorString{"a", "b"}, orig)
	assert.False(t, x.Equal(c))
}
