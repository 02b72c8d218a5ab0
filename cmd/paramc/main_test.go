package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paramforge/internal/manifest"
)

const schemaSrc = `data_ver 3
class Unit uniqueid 10
class Tank uniqueid 1
class Tank extends Unit
paramid Unit.hp 1
Unit.hp type Int default 50
paramid Tank.armor 2
Tank.armor type Float flag persistent|uts
`

func TestCompile(t *testing.T) {
	t.Setenv("PARAMFORGE_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "units.schema")
	require.NoError(t, os.WriteFile(schemaPath, []byte(schemaSrc), 0o644))
	out := filepath.Join(dir, "gen")
	mf := filepath.Join(dir, "units.yaml")

	var logs bytes.Buffer
	err := run([]string{"-schema", schemaPath, "-out", out, "-package", "units", "-manifest", mf}, &logs)
	require.NoError(t, err, logs.String())

	src, err := os.ReadFile(filepath.Join(out, GenFile))
	require.NoError(t, err)
	f, err := parser.ParseFile(token.NewFileSet(), GenFile, src, 0)
	require.NoError(t, err)
	assert.Equal(t, "units", f.Name.Name)
	assert.Contains(t, string(src), "TankClassID uint16 = 1")

	reg, err := manifest.Load(mf)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.DataVersion)
	tank, err := reg.ClassByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Tank", tank.Name())

	assert.Contains(t, logs.String(), "schema compiled")
	assert.Contains(t, logs.String(), "uts_type", "lint warnings are logged")
}

func TestCompileFailsWithoutOutput(t *testing.T) {
	t.Setenv("PARAMFORGE_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "broken.schema")
	require.NoError(t, os.WriteFile(schemaPath, []byte("class A uniqueid 1\nclass A extends Missing\n"), 0o644))
	out := filepath.Join(dir, "gen")

	var logs bytes.Buffer
	err := run([]string{"-schema", schemaPath, "-out", out, "-manifest", filepath.Join(dir, "m.yaml")}, &logs)
	require.Error(t, err)
	assert.NoDirExists(t, out)
	assert.NoFileExists(t, filepath.Join(dir, "m.yaml"))
}
