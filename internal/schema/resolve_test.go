package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paramforge/internal/dsl"
	"paramforge/internal/param"
)

func resolve(t *testing.T, src string, opts Options) (*Graph, error) {
	t.Helper()
	ds, err := dsl.Parse(strings.NewReader(src), nil)
	require.NoError(t, err)
	return Resolve(ds, opts)
}

func mustResolve(t *testing.T, src string) *Graph {
	t.Helper()
	g, err := resolve(t, src, Options{})
	require.NoError(t, err)
	return g
}

const family = `
data_ver 3
class base uniqueid 1
class derived uniqueid 2
class derived extends base
class derived icon sword.png
class other uniqueid 3
class other extends base
paramid base.hp 1
base.hp type Int default 10
paramid base.name 2
base.name type String flag persistent
paramid derived.speed 3
derived.speed type Float default 1.5
paramid other.hp 1
other.hp default 25
`

func TestInheritedDefaultsPropagate(t *testing.T) {
	g := mustResolve(t, family)
	assert.Equal(t, 3, g.DataVersion)

	derived, ok := g.Class("derived")
	require.True(t, ok)
	assert.Equal(t, "sword.png", derived.Icon)

	base := g.Parent(derived)
	require.NotNil(t, base)
	assert.Equal(t, "base", base.Name)

	hp := derived.Resolved["hp"]
	require.NotNil(t, hp)
	assert.Equal(t, param.TypeInt, hp.Type)
	assert.True(t, param.Int(10).Equal(hp.Default))
	assert.Equal(t, "base", hp.Source)

	name := derived.Resolved["name"]
	require.NotNil(t, name)
	assert.Equal(t, param.FlagPersistent, name.Flags)
}

func TestLocalOptionOverridesOnlyItsClass(t *testing.T) {
	g := mustResolve(t, family)
	other, _ := g.Class("other")
	derived, _ := g.Class("derived")

	hp := other.Resolved["hp"]
	assert.Equal(t, "other", hp.Source)
	assert.Equal(t, param.TypeInt, hp.Type, "type comes from the ancestor")
	assert.True(t, param.Int(25).Equal(hp.Default))

	assert.True(t, param.Int(10).Equal(derived.Resolved["hp"].Default), "siblings are independent")
}

func TestFinality(t *testing.T) {
	g := mustResolve(t, family)
	var finals []string
	for _, c := range g.Finals() {
		finals = append(finals, c.Name)
	}
	assert.Equal(t, []string{"derived", "other"}, finals)

	base, _ := g.Class("base")
	assert.False(t, base.Final)

	g, err := resolve(t, family, Options{AlwaysFinal: []string{"base", "ghost"}})
	require.NoError(t, err)
	base, _ = g.Class("base")
	assert.True(t, base.Final)
}

func TestFinalIffNotExtended(t *testing.T) {
	g := mustResolve(t, family)
	extended := map[int]bool{}
	for _, c := range g.Classes {
		if c.Parent >= 0 {
			extended[c.Parent] = true
		}
	}
	for i, c := range g.Classes {
		assert.Equal(t, !extended[i], c.Final, c.Name)
	}
}

func TestVisibleOrderAndOwnership(t *testing.T) {
	g := mustResolve(t, family)
	derived, _ := g.Class("derived")
	other, _ := g.Class("other")

	want := []AttributeDef{
		{Name: "hp", ID: 1, Line: 9},
		{Name: "name", ID: 2, Line: 11},
		{Name: "speed", ID: 3, Line: 13},
	}
	if diff := cmp.Diff(want, g.Visible(derived)); diff != "" {
		t.Errorf("visible attributes (-want +got):\n%s", diff)
	}

	assert.True(t, g.ParamIsOwned(derived, "speed"))
	assert.False(t, g.ParamIsOwned(derived, "hp"))
	assert.False(t, g.ParamIsOwned(other, "hp"), "redeclared attribute belongs to the ancestor")
	assert.Empty(t, g.Owned(other))
	assert.Equal(t, "base", g.Owner(other, "hp").Name)
}

func TestClassReopenedLater(t *testing.T) {
	g := mustResolve(t, `
class a uniqueid 5
paramid a.x 1
a.x type Bool
class a bindsto Player
`)
	a, _ := g.Class("a")
	assert.Equal(t, []string{"Player"}, a.BindsTo)
	assert.Len(t, g.Classes, 1)
}

func TestMultipleOptionLinesMerge(t *testing.T) {
	g := mustResolve(t, `
class a uniqueid 5
paramid a.pos 1
a.pos type Vector3
a.pos flag uts
a.pos default "[1,2,3]"
`)
	a, _ := g.Class("a")
	opt := a.Resolved["pos"]
	assert.Equal(t, param.TypeVector3Uts, opt.Type)
	assert.True(t, param.Vector3Uts{Vec: param.Vector3{X: 1, Y: 2, Z: 3}}.Equal(opt.Default))
}

func TestResolveErrors(t *testing.T) {
	cases := map[string]string{
		"unknown parent":   "class a uniqueid 1\nclass a extends nope\n",
		"cycle":            "class a uniqueid 1\nclass a extends b\nclass b uniqueid 2\nclass b extends a\n",
		"final without id": "class a icon x\n",
		"duplicate ids":    "class a uniqueid 1\nclass b uniqueid 1\n",
		"id mismatch":      "class a uniqueid 1\nclass b uniqueid 2\nclass b extends a\nparamid a.x 1\na.x type Int\nparamid b.x 2\n",
		"id reused":        "class a uniqueid 1\nclass b uniqueid 2\nclass b extends a\nparamid a.x 1\na.x type Int\nparamid b.y 1\nb.y type Int\n",
		"no type":          "class a uniqueid 1\nparamid a.x 1\n",
		"bad late default": "class a uniqueid 1\nclass b uniqueid 2\nclass b extends a\nparamid a.x 1\na.x type Int\nb.x default nope\n",
		"type override":    "class a uniqueid 1\nclass b uniqueid 2\nclass b extends a\nparamid a.x 1\na.x type Int\nb.x type Float\n",
		"declared twice":   "class a uniqueid 1\nparamid a.x 1\nparamid a.x 2\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := resolve(t, src, Options{})
			assert.Error(t, err)
		})
	}
}

func TestUndeclaredClassIsUnknownClassName(t *testing.T) {
	_, err := resolve(t, "paramid ghost.x 1\n", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, param.ErrUnknownClassName))
	assert.Contains(t, err.Error(), "line 1")
}

func TestUnknownClassKeyIsSkipped(t *testing.T) {
	g := mustResolve(t, "class a uniqueid 1\nclass a colour red\n")
	_, ok := g.Class("a")
	assert.True(t, ok)
}

func TestLint(t *testing.T) {
	g := mustResolve(t, `
class a uniqueid 1
paramid a.x 1
a.x type Int flag serverOwn|clientOwn
paramid a.y 2
a.y type Int flag deprecated|persistent
a.z type Int
`)
	issues := Lint(g, []string{"ghost"})
	codes := map[string]bool{}
	for _, is := range issues {
		codes[is.Code] = true
	}
	for _, code := range []string{"always_final_unknown", "ownership_conflict", "deprecated_persistent", "option_undeclared"} {
		assert.True(t, codes[code], code)
	}
}
