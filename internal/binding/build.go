// Package binding turns a resolved class graph into runtime bindings: a
// class registry for startup loading and Go source with typed accessors.
package binding

import (
	"fmt"

	"paramforge/internal/class"
	"paramforge/internal/schema"
)

// Build defines every class of g in a new registry, parents first.
func Build(g *schema.Graph) (*class.Registry, error) {
	reg := class.NewRegistry()
	reg.DataVersion = g.DataVersion
	for k, v := range g.DefaultClasses {
		reg.DefaultClasses[k] = v
	}

	defined := map[string]bool{}
	var define func(c *schema.ClassDef) error
	define = func(c *schema.ClassDef) error {
		if defined[c.Name] {
			return nil
		}
		if p := g.Parent(c); p != nil {
			if err := define(p); err != nil {
				return err
			}
		}
		d, err := classDef(g, c)
		if err != nil {
			return err
		}
		if _, err := reg.Define(d); err != nil {
			return err
		}
		defined[c.Name] = true
		return nil
	}
	for _, c := range g.Classes {
		if err := define(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func classDef(g *schema.Graph, c *schema.ClassDef) (class.Def, error) {
	d := class.Def{
		ID:           c.ID,
		Name:         c.Name,
		Parent:       c.ParentName,
		Final:        c.Final,
		BindsTo:      c.BindsTo,
		Icon:         c.Icon,
		ContentTable: c.ContentTable,
	}
	for _, a := range g.Visible(c) {
		owner := g.Owner(c, a.Name)
		opt, ok := c.Resolved[a.Name]
		if !ok {
			return d, fmt.Errorf("no type information for owned attribute %s.%s (line %d)", owner.Name, a.Name, a.Line)
		}
		d.Attrs = append(d.Attrs, class.AttrDef{
			ID:      a.ID,
			Name:    a.Name,
			Type:    opt.Type,
			Default: opt.Default.Clone(),
			Flags:   opt.Flags,
			Owner:   owner.Name,
		})
	}
	return d, nil
}
