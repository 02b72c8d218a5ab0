package class

import (
	"fmt"
	"sort"

	"paramforge/internal/param"
)

// Registry maps class ids and names to classes. It is built once at startup
// and read-only afterwards.
type Registry struct {
	DataVersion    int
	DefaultClasses map[string]string

	classes []*Class
	byName  map[string]*Class
	byID    map[uint16]*Class
}

func NewRegistry() *Registry {
	return &Registry{
		DefaultClasses: map[string]string{},
		byName:         map[string]*Class{},
		byID:           map[uint16]*Class{},
	}
}

// Define adds a class. Its parent must already be defined. Only final
// classes are addressable by id.
func (r *Registry) Define(d Def) (*Class, error) {
	if _, dup := r.byName[d.Name]; dup {
		return nil, fmt.Errorf("class %s defined twice", d.Name)
	}
	var parent *Class
	if d.Parent != "" {
		p, ok := r.byName[d.Parent]
		if !ok {
			return nil, fmt.Errorf("class %s: parent %s not defined", d.Name, d.Parent)
		}
		parent = p
	}
	if d.Final {
		if other, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("classes %s and %s share id %d", other.name, d.Name, d.ID)
		}
	}
	c, err := newClass(d, parent)
	if err != nil {
		return nil, err
	}
	r.classes = append(r.classes, c)
	r.byName[c.name] = c
	if c.final {
		r.byID[c.id] = c
	}
	return c, nil
}

// Classes lists every class in definition order, parents first.
func (r *Registry) Classes() []*Class { return r.classes }

// Finals lists the instantiable classes by id.
func (r *Registry) Finals() []*Class {
	out := make([]*Class, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (r *Registry) ClassByName(name string) (*Class, error) {
	if c, ok := r.byName[name]; ok {
		return c, nil
	}
	return nil, param.NewError(param.KindUnknownClassName, "class", name)
}

// ClassByID resolves a ClassId. Non-final classes have no ClassId.
func (r *Registry) ClassByID(id uint16) (*Class, error) {
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, param.NewError(param.KindUnknownClassID, "id", id)
}

// New instantiates a final class by name with its defaults.
func (r *Registry) New(name string) (*Table, error) {
	c, err := r.ClassByName(name)
	if err != nil {
		return nil, err
	}
	if !c.final {
		return nil, param.NewError(param.KindWrongClass, "class", name, "reason", "not final")
	}
	return c.New(), nil
}
