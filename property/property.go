// Package property implements the named, typed properties that configure
// graph operations.
//
// An operation declares its properties as a list of Specs; the Store built
// from them accepts loosely typed values (as decoded from YAML, flags or
// environment variables) and coerces each one to the type of the declared
// default, so operations read back exactly the type they declared.
package property

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

var (
	// ErrUnknownProperty is returned when a property name is not declared.
	ErrUnknownProperty = errors.New("property: unknown property")

	// ErrInvalidValue is returned when a value cannot be coerced to the
	// declared type.
	ErrInvalidValue = errors.New("property: invalid value")
)

// Spec declares one property.
type Spec struct {
	// Name is the property name, unique within a Store.
	Name string

	// Default is the initial value; its dynamic type is the property type.
	// A nil Default accepts values of any type.
	Default any

	// Blurb is a one-line human readable description.
	Blurb string
}

// Store holds the current values of a fixed set of properties.
//
// Names are resolved to indices once by Index; At and SetAt avoid the map
// lookup on hot paths. Store is not safe for concurrent use.
type Store struct {
	specs  []Spec
	index  map[string]int
	values []any
}

// NewStore creates a store initialised with each spec's default.
// Duplicate names keep the first declaration.
func NewStore(specs ...Spec) *Store {
	s := &Store{
		index: make(map[string]int, len(specs)),
	}
	for _, spec := range specs {
		if _, dup := s.index[spec.Name]; dup {
			continue
		}
		s.index[spec.Name] = len(s.specs)
		s.specs = append(s.specs, spec)
		s.values = append(s.values, spec.Default)
	}
	return s
}

// Len returns the number of declared properties.
func (s *Store) Len() int { return len(s.specs) }

// Index returns the index of name.
func (s *Store) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Names returns the property names in declaration order.
func (s *Store) Names() []string {
	names := make([]string, len(s.specs))
	for i, spec := range s.specs {
		names[i] = spec.Name
	}
	return names
}

// Specs returns a copy of the declarations.
func (s *Store) Specs() []Spec {
	out := make([]Spec, len(s.specs))
	copy(out, s.specs)
	return out
}

// Get returns the value of name.
func (s *Store) Get(name string) (any, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.values[i], true
}

// At returns the value at index i.
func (s *Store) At(i int) any {
	return s.values[i]
}

// Set coerces v to the declared type of name and stores it.
func (s *Store) Set(name string, v any) error {
	i, ok := s.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return s.SetAt(i, v)
}

// SetAt coerces v to the declared type of property i and stores it.
func (s *Store) SetAt(i int, v any) error {
	spec := s.specs[i]
	coerced, err := coerce(spec.Default, v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, spec.Name, err)
	}
	s.values[i] = coerced
	return nil
}

// Reset restores every property to its default.
func (s *Store) Reset() {
	for i, spec := range s.specs {
		s.values[i] = spec.Default
	}
}

// Float64 returns the value of name as float64, or 0.
func (s *Store) Float64(name string) float64 {
	v, _ := s.Get(name)
	return cast.ToFloat64(v)
}

// Int returns the value of name as int, or 0.
func (s *Store) Int(name string) int {
	v, _ := s.Get(name)
	return cast.ToInt(v)
}

// String returns the value of name as string, or "".
func (s *Store) String(name string) string {
	v, _ := s.Get(name)
	return cast.ToString(v)
}

// Bool returns the value of name as bool, or false.
func (s *Store) Bool(name string) bool {
	v, _ := s.Get(name)
	return cast.ToBool(v)
}

// coerce converts v to the dynamic type of def.
func coerce(def, v any) (any, error) {
	switch def.(type) {
	case nil:
		return v, nil
	case float64:
		return cast.ToFloat64E(v)
	case float32:
		return cast.ToFloat32E(v)
	case int:
		return cast.ToIntE(v)
	case bool:
		return cast.ToBoolE(v)
	case string:
		return cast.ToStringE(v)
	}

	want := reflect.TypeOf(def)
	if v == nil {
		return reflect.Zero(want).Interface(), nil
	}
	got := reflect.TypeOf(v)
	if got.AssignableTo(want) {
		return v, nil
	}
	if got.ConvertibleTo(want) && got.Kind() == want.Kind() {
		return reflect.ValueOf(v).Convert(want).Interface(), nil
	}
	return nil, fmt.Errorf("want %s, got %s", want, got)
}
