// Package schema resolves parsed directives into a class graph: parents are
// linked, final classes are marked and attribute metadata is propagated from
// ancestors to descendants.
package schema

import (
	"sort"

	"paramforge/internal/dsl"
	"paramforge/internal/param"
)

// AttributeDef is an attribute declared on a class by a paramid line.
type AttributeDef struct {
	Name string
	ID   uint16
	Line int
}

// Option is the resolved metadata of one attribute.
type Option struct {
	Type    param.Type
	Default param.Value
	Flags   param.Flag
	// Source names the class whose option line produced this record.
	Source string
}

// ClassDef is one node of the class graph. Parent is an index into
// Graph.Classes, or -1.
type ClassDef struct {
	Name         string
	ID           uint16
	HasID        bool
	ParentName   string
	Parent       int
	BindsTo      []string
	Icon         string
	ContentTable string
	Final        bool
	Line         int

	// Attrs are the attributes declared on this class, in schema order.
	Attrs []AttributeDef
	// Options are the option records declared on this class by name.
	Options map[string]*Option
	// Resolved holds, for every visible attribute, the local option or the
	// nearest ancestor's.
	Resolved map[string]*Option

	index   int
	pending map[string]*rawOption
}

type rawOption struct {
	typ        param.Type
	flags      param.Flag
	rawDefault *string
	line       int
}

// Graph is the arena of classes plus file-level directives.
type Graph struct {
	DataVersion    int
	DefaultClasses map[string]string
	Tables         []dsl.Table
	Classes        []*ClassDef

	byName map[string]int
}

// Class looks a class up by name.
func (g *Graph) Class(name string) (*ClassDef, bool) {
	i, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.Classes[i], true
}

// Parent returns the class's parent, or nil for a root.
func (g *Graph) Parent(c *ClassDef) *ClassDef {
	if c.Parent < 0 {
		return nil
	}
	return g.Classes[c.Parent]
}

// Ancestors lists the parent chain, nearest first.
func (g *Graph) Ancestors(c *ClassDef) []*ClassDef {
	var out []*ClassDef
	for p := g.Parent(c); p != nil; p = g.Parent(p) {
		out = append(out, p)
	}
	return out
}

// Chain lists the class followed by its ancestors, nearest first.
func (g *Graph) Chain(c *ClassDef) []*ClassDef {
	return append([]*ClassDef{c}, g.Ancestors(c)...)
}

// Visible returns every attribute visible on c: the root's attributes
// first, then each descendant's new ones down to c. An attribute
// redeclared lower in the chain keeps its ancestor's position.
func (g *Graph) Visible(c *ClassDef) []AttributeDef {
	chain := g.Chain(c)
	seen := map[string]bool{}
	var out []AttributeDef
	for i := len(chain) - 1; i >= 0; i-- {
		for _, a := range chain[i].Attrs {
			if seen[a.Name] {
				continue
			}
			seen[a.Name] = true
			out = append(out, a)
		}
	}
	return out
}

// Owner returns the topmost class of c's chain declaring name.
func (g *Graph) Owner(c *ClassDef, name string) *ClassDef {
	var owner *ClassDef
	for _, k := range g.Chain(c) {
		if k.declares(name) {
			owner = k
		}
	}
	return owner
}

// ParamIsOwned reports whether c declares name and no ancestor does.
func (g *Graph) ParamIsOwned(c *ClassDef, name string) bool {
	return c.declares(name) && g.Owner(c, name) == c
}

// Owned lists the attributes c owns, in declaration order.
func (g *Graph) Owned(c *ClassDef) []AttributeDef {
	var out []AttributeDef
	for _, a := range c.Attrs {
		if g.ParamIsOwned(c, a.Name) {
			out = append(out, a)
		}
	}
	return out
}

// Finals lists the final classes ordered by class id.
func (g *Graph) Finals() []*ClassDef {
	var out []*ClassDef
	for _, c := range g.Classes {
		if c.Final {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *ClassDef) declares(name string) bool {
	for _, a := range c.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}
