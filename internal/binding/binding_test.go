package binding

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paramforge/internal/class"
	"paramforge/internal/dsl"
	"paramforge/internal/param"
	"paramforge/internal/schema"
)

const family = `
class base uniqueid 1
class derived uniqueid 2
class derived extends base
paramid base.hp 1
base.hp type Int default "10"
paramid base.label 2
base.label type String
paramid derived.speed 3
derived.speed type Float flag persistent
`

func build(t *testing.T, src string) (*class.Registry, error) {
	t.Helper()
	ds, err := dsl.Parse(strings.NewReader(src), nil)
	require.NoError(t, err)
	g, err := schema.Resolve(ds, schema.Options{})
	require.NoError(t, err)
	return Build(g)
}

func TestDerivedInheritsBaseDefault(t *testing.T) {
	reg, err := build(t, family)
	require.NoError(t, err)

	tbl, err := reg.New("derived")
	require.NoError(t, err)
	hp, err := class.Get[param.Int](tbl, "hp")
	require.NoError(t, err)
	assert.Equal(t, param.Int(10), hp)
	assert.True(t, tbl.Class().Implements("base"))

	a, err := tbl.Class().Attr("hp")
	require.NoError(t, err)
	assert.Equal(t, "base", a.Owner())

	speed, _ := tbl.Class().Attr("speed")
	assert.Equal(t, param.FlagPersistent, speed.Flags())
}

func TestBuildNeedsTypeForOwnedAttributes(t *testing.T) {
	_, err := build(t, `
class base uniqueid 1
class derived uniqueid 2
class derived extends base
paramid base.x 1
derived.x type Int
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no type information for owned attribute base.x")
}

func TestBuildDefinesParentsFirst(t *testing.T) {
	reg, err := build(t, `
class leaf uniqueid 3
class leaf extends mid
class mid uniqueid 2
class mid extends root
class root uniqueid 1
`)
	require.NoError(t, err)
	var names []string
	for _, c := range reg.Classes() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"root", "mid", "leaf"}, names)
}

// decls collects top-level type names, funcs and methods as "Recv.Name".
func decls(t *testing.T, src []byte) (map[string]*ast.TypeSpec, []string) {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, parser.ParseComments)
	require.NoError(t, err)

	types := map[string]*ast.TypeSpec{}
	var names []string
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			for _, s := range d.Specs {
				switch s := s.(type) {
				case *ast.TypeSpec:
					types[s.Name.Name] = s
					names = append(names, s.Name.Name)
				case *ast.ValueSpec:
					for _, n := range s.Names {
						if n.Name != "_" {
							names = append(names, n.Name)
						}
					}
				}
			}
		case *ast.FuncDecl:
			name := d.Name.Name
			if d.Recv != nil {
				name = d.Recv.List[0].Type.(*ast.Ident).Name + "." + name
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return types, names
}

func TestEmitGo(t *testing.T) {
	reg, err := build(t, family)
	require.NoError(t, err)
	src, err := EmitGo(reg, "game")
	require.NoError(t, err)

	types, names := decls(t, src)
	assert.Contains(t, names, "DerivedClass.Hp")
	assert.Contains(t, names, "DerivedClass.SetSpeed")
	assert.Contains(t, names, "DerivedClassID")
	assert.Contains(t, names, "DerivedHpID")
	assert.Contains(t, names, "NewDerivedClass")
	assert.Contains(t, names, "Register")
	assert.NotContains(t, names, "BaseClass", "non-final classes get a contract only")

	derived := types["DerivedParams"].Type.(*ast.InterfaceType)
	first := derived.Methods.List[0]
	assert.Empty(t, first.Names, "parent contract is embedded")
	assert.Equal(t, "BaseParams", first.Type.(*ast.Ident).Name)

	text := string(src)
	assert.Contains(t, text, "// Label returns the stored label; callers must not mutate it.")
	assert.NotContains(t, text, "// Hp returns")
	assert.True(t, strings.HasPrefix(text, "// Code generated by paramc"))
}

func TestEmitGoRejectsCollisions(t *testing.T) {
	reg, err := build(t, `
class a uniqueid 1
paramid a.max_hp 1
a.max_hp type Int
paramid a.maxHp 2
a.maxHp type Int
`)
	require.NoError(t, err)
	_, err = EmitGo(reg, "game")
	assert.Error(t, err)

	reg, err = build(t, `
class a uniqueid 1
paramid a.param_table 1
a.param_table type Int
`)
	require.NoError(t, err)
	_, err = EmitGo(reg, "game")
	assert.Error(t, err)
}

func TestCheckedInGamedataIsCurrent(t *testing.T) {
	schemaSrc, err := os.ReadFile("../gamedata/gamedata.schema")
	require.NoError(t, err)
	reg, err := build(t, string(schemaSrc))
	require.NoError(t, err)
	src, err := EmitGo(reg, "gamedata")
	require.NoError(t, err)

	checkedIn, err := os.ReadFile("../gamedata/params_gen.go")
	require.NoError(t, err)

	_, want := decls(t, checkedIn)
	_, got := decls(t, src)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("generated declarations drifted; run go generate ./internal/gamedata (-checked in +emitted):\n%s", diff)
	}
}

func TestExported(t *testing.T) {
	for in, want := range map[string]string{
		"hp":       "Hp",
		"max_hp":   "MaxHp",
		"maxHp":    "MaxHp",
		"2d_pos":   "X2dPos",
		"ItemBase": "ItemBase",
	} {
		assert.Equal(t, want, exported(in), in)
	}
}
