package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paramforge/internal/box"
	"paramforge/internal/class"
	"paramforge/internal/config"
	"paramforge/internal/gamedata"
	"paramforge/internal/manifest"
	"paramforge/internal/param"
)

func TestLoadDispatch(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	d, source, err := loadDispatch(config.Config{ManifestPath: filepath.Join(t.TempDir(), "missing.yaml")}, log)
	require.NoError(t, err)
	assert.Equal(t, "gamedata", source)
	b, err := d.New(gamedata.SwordClassID)
	require.NoError(t, err)
	_, err = box.As[gamedata.SwordClass](b)
	assert.NoError(t, err, "fallback registers typed wrappers")

	reg := class.NewRegistry()
	reg.DataVersion = 9
	_, err = reg.Define(class.Def{ID: 5, Name: "Crate", Final: true, Attrs: []class.AttrDef{
		{ID: 1, Name: "loot", Type: param.TypeVectorString},
	}})
	require.NoError(t, err)
	m, err := manifest.FromRegistry(reg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, manifest.Write(path, m))

	d, source, err = loadDispatch(config.Config{ManifestPath: path}, log)
	require.NoError(t, err)
	assert.Equal(t, path, source)
	assert.Equal(t, 9, d.Registry().DataVersion)
	_, err = d.New(5)
	assert.NoError(t, err)
}
