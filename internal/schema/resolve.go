package schema

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"paramforge/internal/dsl"
	"paramforge/internal/param"
)

// Options tune Resolve.
type Options struct {
	// AlwaysFinal names classes that are final even when other classes
	// extend them.
	AlwaysFinal []string
	Logger      *slog.Logger
}

type resolver struct {
	g       *Graph
	opts    Options
	log     *slog.Logger
	current *ClassDef
}

// Resolve builds the class graph from parsed directives. Classes are
// committed when a different class name or a paramid/option line follows.
// Any inconsistency is fatal.
func Resolve(ds []dsl.Directive, opts Options) (*Graph, error) {
	r := &resolver{
		g:    &Graph{DefaultClasses: map[string]string{}, byName: map[string]int{}},
		opts: opts,
		log:  opts.Logger,
	}
	if r.log == nil {
		r.log = slog.Default()
	}

	for _, d := range ds {
		if err := r.apply(d); err != nil {
			return nil, fmt.Errorf("line %d: %w", d.Line(), err)
		}
	}
	r.commit()

	steps := []func() error{
		r.link,
		r.markFinal,
		r.checkIDs,
		r.resolveOptions,
		r.checkDefaults,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return r.g, nil
}

func (r *resolver) apply(d dsl.Directive) error {
	switch d := d.(type) {
	case dsl.DataVersion:
		r.g.DataVersion = d.Version
	case dsl.DefaultClass:
		r.g.DefaultClasses[d.Kind] = d.Class
	case dsl.Table:
		r.g.Tables = append(r.g.Tables, d)
	case dsl.ClassProp:
		return r.classProp(d)
	case dsl.ParamID:
		r.commit()
		c, err := r.lookup(d.Class)
		if err != nil {
			return err
		}
		if c.declares(d.Attr) {
			return fmt.Errorf("attribute %s.%s declared twice", d.Class, d.Attr)
		}
		c.Attrs = append(c.Attrs, AttributeDef{Name: d.Attr, ID: d.ID, Line: d.Line()})
	case dsl.ParamOption:
		r.commit()
		c, err := r.lookup(d.Class)
		if err != nil {
			return err
		}
		raw := c.pending[d.Attr]
		if raw == nil {
			raw = &rawOption{line: d.Line()}
			c.pending[d.Attr] = raw
		}
		if d.Type != param.TypeInvalid {
			raw.typ = d.Type
		}
		raw.flags |= d.Flags
		if d.RawDefault != nil {
			raw.rawDefault = d.RawDefault
		}
	}
	return nil
}

func (r *resolver) lookup(name string) (*ClassDef, error) {
	c, ok := r.g.Class(name)
	if !ok {
		return nil, param.NewError(param.KindUnknownClassName, "class", name)
	}
	return c, nil
}

func (r *resolver) classProp(d dsl.ClassProp) error {
	if r.current != nil && r.current.Name != d.Class {
		r.commit()
	}
	if r.current == nil {
		if c, ok := r.g.Class(d.Class); ok {
			r.current = c
		} else {
			r.current = &ClassDef{
				Name:    d.Class,
				Parent:  -1,
				Line:    d.Line(),
				Options: map[string]*Option{},
				pending: map[string]*rawOption{},
				index:   -1,
			}
		}
	}
	c := r.current
	switch d.Key {
	case dsl.KeyUniqueID:
		id, err := strconv.ParseUint(d.Value, 10, 16)
		if err != nil {
			return fmt.Errorf("class %s uniqueid: %w", d.Class, err)
		}
		c.ID, c.HasID = uint16(id), true
	case dsl.KeyExtends:
		c.ParentName = d.Value
	case dsl.KeyBindsTo:
		c.BindsTo = append(c.BindsTo, strings.Fields(d.Value)...)
	case dsl.KeyContentTableBinding:
		c.ContentTable = d.Value
	case dsl.KeyIcon:
		c.Icon = d.Value
	default:
		r.log.Warn("unknown class key skipped", "line", d.Line(), "class", d.Class, "key", d.Key)
	}
	return nil
}

func (r *resolver) commit() {
	c := r.current
	if c == nil {
		return
	}
	r.current = nil
	if c.index >= 0 {
		return
	}
	c.index = len(r.g.Classes)
	r.g.Classes = append(r.g.Classes, c)
	r.g.byName[c.Name] = c.index
}

func (r *resolver) link() error {
	for _, c := range r.g.Classes {
		if c.ParentName == "" {
			continue
		}
		p, ok := r.g.byName[c.ParentName]
		if !ok {
			return fmt.Errorf("class %s extends unknown class %q", c.Name, c.ParentName)
		}
		c.Parent = p
	}
	for _, c := range r.g.Classes {
		steps := 0
		for p := c.Parent; p >= 0; p = r.g.Classes[p].Parent {
			steps++
			if steps > len(r.g.Classes) {
				return fmt.Errorf("class %s: inheritance cycle", c.Name)
			}
		}
	}
	return nil
}

// markFinal makes every class final unless another class extends it. Names
// in AlwaysFinal stay final regardless.
func (r *resolver) markFinal() error {
	extended := make([]bool, len(r.g.Classes))
	for _, c := range r.g.Classes {
		if c.Parent >= 0 {
			extended[c.Parent] = true
		}
	}
	always := map[string]bool{}
	for _, name := range r.opts.AlwaysFinal {
		always[name] = true
		if _, ok := r.g.byName[name]; !ok {
			r.log.Warn("always-final class not in schema", "class", name)
		}
	}
	ids := map[uint16]string{}
	for i, c := range r.g.Classes {
		c.Final = !extended[i] || always[c.Name]
		if !c.HasID {
			if c.Final {
				return fmt.Errorf("final class %s has no uniqueid", c.Name)
			}
			continue
		}
		if other, dup := ids[c.ID]; dup {
			return fmt.Errorf("classes %s and %s share uniqueid %d", other, c.Name, c.ID)
		}
		ids[c.ID] = c.Name
	}
	return nil
}

// checkIDs enforces that along any inheritance chain an attribute name maps
// to one id and an id to one name.
func (r *resolver) checkIDs() error {
	for _, c := range r.g.Classes {
		names := map[string]AttributeDef{}
		ids := map[uint16]string{}
		chain := r.g.Chain(c)
		for i := len(chain) - 1; i >= 0; i-- {
			for _, a := range chain[i].Attrs {
				if prev, ok := names[a.Name]; ok {
					if prev.ID != a.ID {
						return fmt.Errorf("line %d: %s.%s redeclared with id %d, inherited id is %d",
							a.Line, chain[i].Name, a.Name, a.ID, prev.ID)
					}
					continue
				}
				if other, ok := ids[a.ID]; ok {
					return fmt.Errorf("line %d: %s.%s reuses id %d of attribute %s",
						a.Line, chain[i].Name, a.Name, a.ID, other)
				}
				names[a.Name] = a
				ids[a.ID] = a.Name
			}
		}
	}
	return nil
}

// resolveOptions turns pending option lines into Option records, ancestors
// before descendants, then fills Resolved for every visible attribute.
func (r *resolver) resolveOptions() error {
	done := make([]bool, len(r.g.Classes))
	var visit func(c *ClassDef) error
	visit = func(c *ClassDef) error {
		if done[c.index] {
			return nil
		}
		if p := r.g.Parent(c); p != nil {
			if err := visit(p); err != nil {
				return err
			}
		}
		done[c.index] = true

		for name, raw := range c.pending {
			inherited := r.inherited(c, name)
			opt := &Option{Type: raw.typ, Flags: raw.flags, Source: c.Name}
			if opt.Type == param.TypeInvalid && inherited != nil {
				opt.Type = inherited.Type
			}
			if opt.Type == param.TypeInvalid {
				return fmt.Errorf("line %d: %s.%s: no type information", raw.line, c.Name, name)
			}
			if raw.flags == 0 && inherited != nil {
				opt.Flags = inherited.Flags
			}
			opt.Type = opt.Type.Resolve(opt.Flags)
			if inherited != nil && inherited.Type != opt.Type {
				return fmt.Errorf("line %d: %s.%s: type %s overrides inherited type %s",
					raw.line, c.Name, name, opt.Type, inherited.Type)
			}
			switch {
			case raw.rawDefault != nil:
				v, err := param.ParseDefault(opt.Type, *raw.rawDefault)
				if err != nil {
					return fmt.Errorf("line %d: %s.%s default: %w", raw.line, c.Name, name, err)
				}
				opt.Default = v
			case inherited != nil:
				opt.Default = inherited.Default.Clone()
			default:
				opt.Default = param.Zero(opt.Type)
			}
			c.Options[name] = opt
		}
		c.pending = nil

		c.Resolved = map[string]*Option{}
		for _, a := range r.g.Visible(c) {
			if opt := r.nearest(c, a.Name); opt != nil {
				c.Resolved[a.Name] = opt
			}
		}
		for name := range c.Options {
			if !r.visible(c, name) {
				r.log.Warn("option for undeclared attribute", "class", c.Name, "attr", name)
			}
		}
		return nil
	}
	for _, c := range r.g.Classes {
		if err := visit(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) inherited(c *ClassDef, name string) *Option {
	for _, a := range r.g.Ancestors(c) {
		if opt, ok := a.Options[name]; ok {
			return opt
		}
	}
	return nil
}

func (r *resolver) nearest(c *ClassDef, name string) *Option {
	if opt, ok := c.Options[name]; ok {
		return opt
	}
	return r.inherited(c, name)
}

func (r *resolver) visible(c *ClassDef, name string) bool {
	for _, k := range r.g.Chain(c) {
		if k.declares(name) {
			return true
		}
	}
	return false
}

// checkDefaults requires every attribute visible on a final class to carry
// type information.
func (r *resolver) checkDefaults() error {
	for _, c := range r.g.Classes {
		if !c.Final {
			continue
		}
		for _, a := range r.g.Visible(c) {
			if _, ok := c.Resolved[a.Name]; !ok {
				return fmt.Errorf("line %d: no type information for attribute %s.%s", a.Line, c.Name, a.Name)
			}
		}
	}
	return nil
}
