package typedid

import "encoding/json"

// issuedState discriminates a ServerIssuedId's three states: nothing yet,
// a client-supplied hint that the server may still override, and a value
// the server has confirmed.
type issuedState int

const (
	issuedNone issuedState = iota
	issuedClientHint
	issuedServer
)

// ServerIssuedId holds an id the server assigns (or confirms) on insert.
// A client can seed it with a hint before the insert; SetFromServer always
// wins once the server responds.
type ServerIssuedId[T any] struct {
	state issuedState
	value TypedId[T]
}

// NewClientHint seeds a ServerIssuedId with a client-proposed value that a
// later SetFromServer call may override.
func NewClientHint[T any](hint TypedId[T]) ServerIssuedId[T] {
	return ServerIssuedId[T]{state: issuedClientHint, value: hint}
}

// SetFromServer records the id the server actually assigned, always
// overriding any prior client hint.
func (s *ServerIssuedId[T]) SetFromServer(id TypedId[T]) {
	s.state = issuedServer
	s.value = id
}

// Reset returns the id to its initial, unissued state.
func (s *ServerIssuedId[T]) Reset() {
	s.state = issuedNone
	s.value = TypedId[T]{}
}

// Get returns the current id and whether one has been set (by client hint
// or server confirmation).
func (s ServerIssuedId[T]) Get() (TypedId[T], bool) {
	return s.value, s.state != issuedNone
}

// IsServerConfirmed reports whether the current id was confirmed by the
// server, as opposed to being only a client-side hint.
func (s ServerIssuedId[T]) IsServerConfirmed() bool {
	return s.state == issuedServer
}

func (s ServerIssuedId[T]) MarshalJSON() ([]byte, error) {
	if s.state == issuedNone {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

func (s *ServerIssuedId[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		s.Reset()
		return nil
	}
	var id TypedId[T]
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	s.state = issuedServer
	s.value = id
	return nil
}

// InstanceID implements instance.IDCarrier.
func (s ServerIssuedId[T]) InstanceID() (string, bool) {
	if s.state == issuedNone {
		return "", false
	}
	return s.value.ID(), true
}

// SetInstanceID implements instance.IDCarrier; an id supplied this way is
// treated as server-confirmed, matching how the codec only ever sees ids
// that came back from the server on read.
func (s *ServerIssuedId[T]) SetInstanceID(id string) {
	className := schemaClassName[T]()
	typed := id
	if className != "" {
		typed = className + "/" + id
	}
	s.state = issuedServer
	s.value = TypedId[T]{typed: typed}
}
