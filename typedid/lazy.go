package typedid

import "fmt"

// Fetcher loads the value a Lazy[T] references by id, typically a closure
// over a client read such as client.GetInstanceWithHeadersT.
type Fetcher[T any] func(id TypedId[T]) (T, error)

// Lazy is a reference that may or may not have its value loaded: either a
// bare id (a reference), or an id plus the fetched value. It mirrors
// the derive's lazy-loading container without requiring a live connection
// to construct.
type Lazy[T any] struct {
	id     *TypedId[T]
	loaded bool
	value  T
}

// MakeReference builds a Lazy holding only an id, with no value loaded.
func MakeReference[T any](id TypedId[T]) Lazy[T] {
	return Lazy[T]{id: &id}
}

// Loaded builds a Lazy that already holds value, recovering its id via
// IDCarrier when value provides one.
func Loaded[T any](value T) Lazy[T] {
	l := Lazy[T]{loaded: true, value: value}
	if carrier, ok := any(&value).(IDCarrier); ok {
		if raw, has := carrier.InstanceID(); has {
			id, err := New[T](raw)
			if err == nil {
				l.id = &id
			}
		}
	}
	return l
}

// IsLoaded reports whether the value has been fetched.
func (l Lazy[T]) IsLoaded() bool { return l.loaded }

// ID returns the reference's id. Panics if neither an id nor a loaded
// value with a recoverable id is present — mirroring the derive's
// documented panic for lexically keyed models that haven't been saved yet.
func (l Lazy[T]) ID() TypedId[T] {
	if l.id == nil {
		panic("typedid: Lazy has no id set (model not yet saved?)")
	}
	return *l.id
}

// Get returns the loaded value, fetching it via fetch if necessary and
// caching the result.
func (l *Lazy[T]) Get(fetch Fetcher[T]) (T, error) {
	if l.loaded {
		return l.value, nil
	}
	if l.id == nil {
		var zero T
		return zero, fmt.Errorf("typedid: cannot fetch: Lazy has neither data nor id")
	}
	v, err := fetch(*l.id)
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.loaded = true
	return l.value, nil
}

// MustGet returns the loaded value, panicking if it hasn't been fetched.
func (l Lazy[T]) MustGet() T {
	if !l.loaded {
		panic("typedid: Lazy value not loaded")
	}
	return l.value
}

// MakeRef discards any loaded value, keeping only the id, so a nested
// model already known to exist isn't re-serialized into a transaction.
// Panics if no id is present or recoverable from the loaded value.
func (l *Lazy[T]) MakeRef() {
	if !l.loaded {
		return
	}
	if l.id == nil {
		if carrier, ok := any(&l.value).(IDCarrier); ok {
			if raw, has := carrier.InstanceID(); has {
				id, err := New[T](raw)
				if err == nil {
					l.id = &id
				}
			}
		}
		if l.id == nil {
			panic("typedid: cannot make_ref: Lazy has data but no id")
		}
	}
	l.loaded = false
	var zero T
	l.value = zero
}

// InstanceID implements instance.IDCarrier.
func (l Lazy[T]) InstanceID() (string, bool) {
	if l.id == nil {
		return "", false
	}
	return l.id.ID(), true
}

// SetInstanceID implements instance.IDCarrier.
func (l *Lazy[T]) SetInstanceID(id string) {
	className := schemaClassName[T]()
	typed := id
	if className != "" {
		typed = className + "/" + id
	}
	tid := TypedId[T]{typed: typed}
	l.id = &tid
}
