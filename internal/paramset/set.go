// Package paramset holds the per-class mapping from attribute to value.
package paramset

import (
	"errors"
	"iter"
	"sort"

	"paramforge/internal/param"
)

// Attribute is one case of a class's attribute enumeration.
type Attribute interface {
	comparable
	ID() uint16
	Name() string
	Type() param.Type
}

// Set maps attributes to values. It has no internal locking; a set has a
// single owner.
type Set[A Attribute] struct {
	vals map[A]param.Value
}

func New[A Attribute]() *Set[A] {
	return &Set[A]{vals: make(map[A]param.Value)}
}

func (s *Set[A]) Len() int { return len(s.vals) }

func (s *Set[A]) Has(a A) bool {
	_, ok := s.vals[a]
	return ok
}

// Get returns the stored value. Reference-classified values are not copied.
func (s *Set[A]) Get(a A) (param.Value, bool) {
	v, ok := s.vals[a]
	return v, ok
}

// Set stores v under a, taking ownership of it. Values that would not
// survive the wire are rejected.
func (s *Set[A]) Set(a A, v param.Value) error {
	if v == nil || v.Type() != a.Type() {
		return mismatch(a, v)
	}
	if err := param.Check(v); err != nil {
		var pe *param.Error
		if errors.As(err, &pe) {
			pe.Context["attr"] = a.Name()
		}
		return err
	}
	s.vals[a] = v
	return nil
}

func (s *Set[A]) Delete(a A) { delete(s.vals, a) }

// Attrs lists the stored attributes by ascending id.
func (s *Set[A]) Attrs() []A {
	out := make([]A, 0, len(s.vals))
	for a := range s.vals {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// All iterates by ascending attribute id.
func (s *Set[A]) All() iter.Seq2[A, param.Value] {
	return func(yield func(A, param.Value) bool) {
		for _, a := range s.Attrs() {
			if !yield(a, s.vals[a]) {
				return
			}
		}
	}
}

// Extend copies every entry of other into s, overwriting entries with the
// same attribute.
func (s *Set[A]) Extend(other *Set[A]) {
	for a, v := range other.vals {
		s.vals[a] = v.Clone()
	}
}

// Diff returns the entries of other whose value differs from s, including
// entries s lacks. Applying the result to s with Extend yields other.
func (s *Set[A]) Diff(other *Set[A]) *Set[A] {
	out := New[A]()
	for a, v := range other.vals {
		if mine, ok := s.vals[a]; ok && mine.Equal(v) {
			continue
		}
		out.vals[a] = v.Clone()
	}
	return out
}

func (s *Set[A]) Clone() *Set[A] {
	out := &Set[A]{vals: make(map[A]param.Value, len(s.vals))}
	for a, v := range s.vals {
		out.vals[a] = v.Clone()
	}
	return out
}

func (s *Set[A]) Equal(other *Set[A]) bool {
	if len(s.vals) != len(other.vals) {
		return false
	}
	for a, v := range s.vals {
		o, ok := other.vals[a]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

func mismatch[A Attribute](a A, v param.Value) error {
	got := "nil"
	if v != nil {
		got = v.Type().String()
	}
	return param.NewError(param.KindTypeMismatch,
		"attr", a.Name(), "want", a.Type().String(), "got", got)
}
