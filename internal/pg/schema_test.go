package pg

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paramforge/internal/class"
	"paramforge/internal/gamedata"
	"paramforge/internal/param"
)

func TestGenerateDDL(t *testing.T) {
	reg, err := gamedata.Registry(nil)
	require.NoError(t, err)
	ddl, err := GenerateDDL(reg)
	require.NoError(t, err)

	assert.Contains(t, ddl["000_schema"], `create schema if not exists "paramforge"`)

	swords := ddl["100_swords"]
	assert.Contains(t, swords, `create table if not exists "paramforge"."swords"`)
	assert.Contains(t, swords, `add column if not exists "weight" real`)
	assert.Contains(t, swords, `add column if not exists "damage" integer`)
	assert.NotContains(t, swords, `"owner"`, "owner is not persistent")

	assert.Contains(t, ddl["100_players"], `add column if not exists "hp" integer`)
	assert.NotContains(t, ddl["100_spawners"], "add column")
	assert.NotContains(t, ddl, "100_itembases", "only final classes get tables")
}

func TestGenerateDDLNaming(t *testing.T) {
	reg := class.NewRegistry()
	_, err := reg.Define(class.Def{ID: 1, Name: "Select", Final: true, Attrs: []class.AttrDef{
		{ID: 1, Name: "order", Type: param.TypeVectorInt, Flags: param.FlagPersistent},
		{ID: 2, Name: "mask", Type: param.TypeBitSetFilter, Flags: param.FlagPersistent},
	}})
	require.NoError(t, err)
	ddl, err := GenerateDDL(reg)
	require.NoError(t, err)
	assert.Contains(t, ddl["100_selects"], `"p_order" jsonb`)
	assert.Contains(t, ddl["100_selects"], `"mask" numeric(20)`)

	reg = class.NewRegistry()
	for i, name := range []string{"Box", "Boxs"} {
		_, err := reg.Define(class.Def{ID: uint16(i + 1), Name: name, Final: true})
		require.NoError(t, err)
	}
	_, err = GenerateDDL(reg)
	assert.Error(t, err, "table name collision")

	reg = class.NewRegistry()
	_, err = reg.Define(class.Def{ID: 1, Name: "Clock", Final: true, Attrs: []class.AttrDef{
		{ID: 1, Name: "version", Type: param.TypeInt, Flags: param.FlagPersistent},
	}})
	require.NoError(t, err)
	_, err = GenerateDDL(reg)
	assert.Error(t, err, "system column clash")
}

func TestColumnValue(t *testing.T) {
	g := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	for _, tc := range []struct {
		in   param.Value
		want any
	}{
		{param.Int(-3), int32(-3)},
		{param.Float(0.5), float64(0.5)},
		{param.LocalizedString("ui.x"), "ui.x"},
		{param.Guid(g), g.String()},
		{param.VectorString{"a"}, `["a"]`},
		{param.HashMapStringInt{"str": 10}, `{"str":10}`},
		{param.BitSetFilter(0).With(0).With(63), "9223372036854775809"},
	} {
		got, err := columnValue(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%T", tc.in)
	}
}
