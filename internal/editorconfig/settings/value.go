package settings

import "fmt"

// UnsetText is how Unset fields are rendered.
const UnsetText = "unset"

// Value is either a typed value or Unset. The zero value is Unset.
type Value[T comparable] struct {
	v   T
	set bool
}

// Of returns a set Value holding v.
func Of[T comparable](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

// Unset returns the Unset Value of type T.
func Unset[T comparable]() Value[T] {
	return Value[T]{}
}

// IsSet reports whether the value was set by a rule.
func (v Value[T]) IsSet() bool { return v.set }

// Get returns the value and whether it is set.
func (v Value[T]) Get() (T, bool) { return v.v, v.set }

// Or returns the value if set and fallback otherwise.
func (v Value[T]) Or(fallback T) T {
	if v.set {
		return v.v
	}
	return fallback
}

// Is reports whether the value is set and equal to want.
func (v Value[T]) Is(want T) bool {
	return v.set && v.v == want
}

// String renders the value, or "unset".
func (v Value[T]) String() string {
	if !v.set {
		return UnsetText
	}
	return fmt.Sprint(v.v)
}

// MarshalYAML renders Unset as the literal "unset".
func (v Value[T]) MarshalYAML() (any, error) {
	if !v.set {
		return UnsetText, nil
	}
	if s, ok := any(v.v).(fmt.Stringer); ok {
		return s.String(), nil
	}
	return v.v, nil
}
