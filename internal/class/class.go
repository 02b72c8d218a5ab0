// Package class is the runtime binding of a resolved schema: per-class
// attribute enumerations, memoized default tables and the registry that maps
// class ids and names to classes.
package class

import (
	"fmt"

	"paramforge/internal/param"
	"paramforge/internal/paramset"
)

// Attr is one case of a class's attribute enumeration.
type Attr struct {
	id    uint16
	name  string
	typ   param.Type
	def   param.Value
	flags param.Flag
	owner string
}

func (a *Attr) ID() uint16        { return a.id }
func (a *Attr) Name() string      { return a.name }
func (a *Attr) Type() param.Type  { return a.typ }
func (a *Attr) Flags() param.Flag { return a.flags }

// Owner names the class that owns the attribute.
func (a *Attr) Owner() string { return a.owner }

// Default returns a fresh copy of the default value.
func (a *Attr) Default() param.Value { return a.def.Clone() }

func (a *Attr) String() string { return a.name }

// AttrDef describes an attribute when defining a class.
type AttrDef struct {
	ID      uint16
	Name    string
	Type    param.Type
	Default param.Value
	Flags   param.Flag
	Owner   string
}

// Def describes a class. Attrs lists every visible attribute in declaration
// order, inherited ones first.
type Def struct {
	ID           uint16
	Name         string
	Parent       string
	Final        bool
	BindsTo      []string
	Icon         string
	ContentTable string
	Attrs        []AttrDef
}

// Class is a resolved class.
type Class struct {
	id           uint16
	name         string
	parent       *Class
	final        bool
	bindsTo      []string
	icon         string
	contentTable string

	attrs    []*Attr
	byName   map[string]*Attr
	byID     map[uint16]*Attr
	defaults *paramset.Set[*Attr]
}

func newClass(d Def, parent *Class) (*Class, error) {
	c := &Class{
		id:           d.ID,
		name:         d.Name,
		parent:       parent,
		final:        d.Final,
		bindsTo:      append([]string(nil), d.BindsTo...),
		icon:         d.Icon,
		contentTable: d.ContentTable,
		byName:       make(map[string]*Attr, len(d.Attrs)),
		byID:         make(map[uint16]*Attr, len(d.Attrs)),
		defaults:     paramset.New[*Attr](),
	}
	for _, ad := range d.Attrs {
		if !ad.Type.Valid() {
			return nil, fmt.Errorf("class %s: attribute %s has no type information", d.Name, ad.Name)
		}
		if _, dup := c.byName[ad.Name]; dup {
			return nil, fmt.Errorf("class %s: duplicate attribute %s", d.Name, ad.Name)
		}
		if other, dup := c.byID[ad.ID]; dup {
			return nil, fmt.Errorf("class %s: attributes %s and %s share id %d", d.Name, other.name, ad.Name, ad.ID)
		}
		def := ad.Default
		if def == nil {
			def = param.Zero(ad.Type)
		}
		owner := ad.Owner
		if owner == "" {
			owner = d.Name
		}
		a := &Attr{id: ad.ID, name: ad.Name, typ: ad.Type, def: def, flags: ad.Flags, owner: owner}
		if err := c.defaults.Set(a, def.Clone()); err != nil {
			return nil, fmt.Errorf("class %s: default of %s: %w", d.Name, ad.Name, err)
		}
		c.attrs = append(c.attrs, a)
		c.byName[a.name] = a
		c.byID[a.id] = a
	}
	if parent != nil {
		for _, pa := range parent.attrs {
			a, ok := c.byName[pa.name]
			if !ok {
				return nil, fmt.Errorf("class %s: inherited attribute %s.%s missing", d.Name, parent.name, pa.name)
			}
			if a.id != pa.id || a.typ != pa.typ {
				return nil, fmt.Errorf("class %s: attribute %s disagrees with parent %s", d.Name, a.name, parent.name)
			}
		}
	}
	return c, nil
}

func (c *Class) ID() uint16        { return c.id }
func (c *Class) Name() string      { return c.name }
func (c *Class) Final() bool       { return c.final }
func (c *Class) Parent() *Class    { return c.parent }
func (c *Class) Icon() string      { return c.icon }
func (c *Class) BindsTo() []string { return c.bindsTo }

// ContentTable is the content table the class is bound to, if any.
func (c *Class) ContentTable() string { return c.contentTable }

// Attrs lists the visible attributes in declaration order.
func (c *Class) Attrs() []*Attr { return c.attrs }

// Owned lists the attributes this class owns.
func (c *Class) Owned() []*Attr {
	var out []*Attr
	for _, a := range c.attrs {
		if a.owner == c.name {
			out = append(out, a)
		}
	}
	return out
}

// ClientAttrs lists the attributes sent to clients, in declaration order.
func (c *Class) ClientAttrs() []*Attr {
	var out []*Attr
	for _, a := range c.attrs {
		if a.flags.ClientVisible() {
			out = append(out, a)
		}
	}
	return out
}

func (c *Class) Attr(name string) (*Attr, error) {
	if a, ok := c.byName[name]; ok {
		return a, nil
	}
	return nil, param.NewError(param.KindUnknownAttributeName, "class", c.name, "attr", name)
}

func (c *Class) AttrByID(id uint16) (*Attr, error) {
	if a, ok := c.byID[id]; ok {
		return a, nil
	}
	return nil, param.NewError(param.KindUnknownAttributeID, "class", c.name, "id", id)
}

// Contracts lists this class's name followed by its ancestors' names; a
// table of the class satisfies each of their accessor contracts.
func (c *Class) Contracts() []string {
	var out []string
	for k := c; k != nil; k = k.parent {
		out = append(out, k.name)
	}
	return out
}

// Implements reports whether name is c or one of its ancestors.
func (c *Class) Implements(name string) bool {
	for k := c; k != nil; k = k.parent {
		if k.name == name {
			return true
		}
	}
	return false
}

// New returns a table holding every attribute's default. Defaults are
// materialized once per class and copied here.
func (c *Class) New() *Table {
	return &Table{class: c, set: c.defaults.Clone()}
}

// Empty returns a table with no entries, used for partial updates.
func (c *Class) Empty() *Table {
	return &Table{class: c, set: paramset.New[*Attr]()}
}

// Def reconstructs the definition the class was built from.
func (c *Class) Def() Def {
	d := Def{
		ID:           c.id,
		Name:         c.name,
		Final:        c.final,
		BindsTo:      append([]string(nil), c.bindsTo...),
		Icon:         c.icon,
		ContentTable: c.contentTable,
	}
	if c.parent != nil {
		d.Parent = c.parent.name
	}
	for _, a := range c.attrs {
		d.Attrs = append(d.Attrs, AttrDef{
			ID: a.id, Name: a.name, Type: a.typ, Default: a.Default(), Flags: a.flags, Owner: a.owner,
		})
	}
	return d
}
