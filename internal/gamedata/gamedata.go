// Package gamedata bundles a sample game schema together with the bindings
// and manifest paramc generated from it.
package gamedata

//go:generate go run ../../cmd/paramc -schema gamedata.schema -out . -package gamedata -manifest gamedata.yaml

import (
	_ "embed"
	"log/slog"

	"paramforge/internal/box"
	"paramforge/internal/class"
	"paramforge/internal/manifest"
)

//go:embed gamedata.yaml
var compiled []byte

// Registry loads the embedded manifest.
func Registry(log *slog.Logger) (*class.Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	m, err := manifest.Unmarshal(compiled)
	if err != nil {
		return nil, err
	}
	reg, err := m.Registry()
	if err != nil {
		return nil, err
	}
	log.Debug("bundled manifest loaded", "data_version", reg.DataVersion, "classes", len(reg.Classes()))
	return reg, nil
}

// Dispatch loads the embedded manifest and registers the typed wrappers.
func Dispatch(log *slog.Logger) (*box.Dispatch, error) {
	reg, err := Registry(log)
	if err != nil {
		return nil, err
	}
	d := box.NewDispatch(reg)
	if err := Register(d); err != nil {
		return nil, err
	}
	return d, nil
}
