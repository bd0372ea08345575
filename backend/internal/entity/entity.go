// Package entity defines references to the people, places, things and events
// that relationships connect. Entity records themselves live outside this
// module; the graph and search layers only store references.
package entity

import (
	"fmt"
	"strings"
)

// Kind represents the type of a referenced entity
type Kind string

const (
	KindPerson  Kind = "person"
	KindPlace   Kind = "place"
	KindThing   Kind = "thing"
	KindEvent   Kind = "event"
	KindUnknown Kind = "unknown"
)

// Kinds lists every known kind in a stable order
var Kinds = []Kind{KindPerson, KindPlace, KindThing, KindEvent, KindUnknown}

// ParseKind maps a case-insensitive name onto a Kind. Unrecognized names
// become KindUnknown.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPerson:
		return KindPerson
	case KindPlace:
		return KindPlace
	case KindThing:
		return KindThing
	case KindEvent:
		return KindEvent
	default:
		return KindUnknown
	}
}

// Ref is a reference to one entity. The set of implementations is closed:
// Person, Place, Thing, Event and Unknown.
type Ref interface {
	ID() string
	Kind() Kind
	ref()
}

type (
	Person  string
	Place   string
	Thing   string
	Event   string
	Unknown string
)

func (p Person) ID() string { return string(p) }
func (p Person) Kind() Kind { return KindPerson }
func (Person) ref() {}
func (p Place) ID() string { return string(p) }
func (p Place) Kind() Kind { return KindPlace }
func (Place) ref() {}
func (t Thing) ID() string { return string(t) }
func (t Thing) Kind() Kind { return KindThing }
func (Thing) ref() {}
func (e Event) ID() string { return string(e) }
func (e Event) Kind() Kind { return KindEvent }
func (Event) ref() {}
func (u Unknown) ID() string { return string(u) }
func (u Unknown) Kind() Kind { return KindUnknown }
func (Unknown) ref() {}

// New builds the reference variant matching kind
func New(kind Kind, id string) Ref {
	switch kind {
	case KindPerson:
		return Person(id)
	case KindPlace:
		return Place(id)
	case KindThing:
		return Thing(id)
	case KindEvent:
		return Event(id)
	default:
		return Unknown(id)
	}
}

// Key returns the "kind:id" form of a reference
func Key(r Ref) string {
	return fmt.Sprintf("%s:%s", r.Kind(), r.ID())
}

// ParseRef parses a "kind:id" string. A bare id without a kind prefix is
// accepted as an Unknown reference.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty entity reference")
	}
	kind, id, found := strings.Cut(s, ":")
	if !found {
		return Unknown(s), nil
	}
	if id == "" {
		return nil, fmt.Errorf("invalid entity reference: %s", s)
	}
	return New(ParseKind(kind), id), nil
}
