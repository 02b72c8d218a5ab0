// Package manifest stores a compiled class registry as YAML.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"paramforge/internal/class"
	"paramforge/internal/param"
)

// FromRegistry captures reg in manifest form.
func FromRegistry(reg *class.Registry) (*Manifest, error) {
	m := &Manifest{DataVersion: reg.DataVersion, DefaultClasses: reg.DefaultClasses}
	for _, c := range reg.Classes() {
		d := c.Def()
		mc := Class{
			Name:         d.Name,
			ID:           d.ID,
			Parent:       d.Parent,
			Final:        d.Final,
			BindsTo:      d.BindsTo,
			Icon:         d.Icon,
			ContentTable: d.ContentTable,
		}
		for _, a := range d.Attrs {
			def, err := param.MarshalValue(a.Default)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", d.Name, a.Name, err)
			}
			mc.Attrs = append(mc.Attrs, Attr{
				Name:    a.Name,
				ID:      a.ID,
				Type:    a.Type.String(),
				Flags:   a.Flags.Names(),
				Owner:   a.Owner,
				Default: string(def),
			})
		}
		m.Classes = append(m.Classes, mc)
	}
	return m, nil
}

// Registry rebuilds the class registry described by m.
func (m *Manifest) Registry() (*class.Registry, error) {
	reg := class.NewRegistry()
	reg.DataVersion = m.DataVersion
	for k, v := range m.DefaultClasses {
		reg.DefaultClasses[k] = v
	}
	for _, mc := range m.Classes {
		d := class.Def{
			ID:           mc.ID,
			Name:         mc.Name,
			Parent:       mc.Parent,
			Final:        mc.Final,
			BindsTo:      mc.BindsTo,
			Icon:         mc.Icon,
			ContentTable: mc.ContentTable,
		}
		for _, a := range mc.Attrs {
			ad, err := attrDef(a)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", mc.Name, err)
			}
			d.Attrs = append(d.Attrs, ad)
		}
		if _, err := reg.Define(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func attrDef(a Attr) (class.AttrDef, error) {
	t, err := param.ParseType(a.Type)
	if err != nil {
		return class.AttrDef{}, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	flags, err := param.ParseFlags(a.Flags)
	if err != nil {
		return class.AttrDef{}, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	ad := class.AttrDef{ID: a.ID, Name: a.Name, Type: t, Flags: flags, Owner: a.Owner}
	if a.Default != "" {
		v, err := param.UnmarshalValue(t, []byte(a.Default))
		if err != nil {
			return class.AttrDef{}, fmt.Errorf("attribute %s default: %w", a.Name, err)
		}
		ad.Default = v
	}
	return ad, nil
}

func Marshal(m *Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}

func Unmarshal(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Write stores m at path, creating parent directories.
func Write(path string, m *Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a manifest file and rebuilds its registry.
func Load(path string) (*class.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m.Registry()
}
