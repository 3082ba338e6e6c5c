package message

import (
	"fmt"
	"reflect"
)

// Type is a comparable representation of an event's concrete type.
type Type struct {
	rt reflect.Type
}

// TypeOf returns the type of ev.
//
// It panics if ev is nil.
func TypeOf(ev Event) Type {
	if ev == nil {
		panic("event must not be nil")
	}

	return Type{reflect.TypeOf(ev)}
}

// TypeFor returns the type of T.
func TypeFor[T Event]() Type {
	return Type{reflect.TypeOf((*T)(nil)).Elem()}
}

// ReflectType returns the reflect.Type underlying t.
func (t Type) ReflectType() reflect.Type {
	if t.rt == nil {
		panic("type is not initialized")
	}

	return t.rt
}

// String returns a short representation of the type, such as
// "identity.UserDataEmitted".
func (t Type) String() string {
	if t.rt == nil {
		return "<uninitialized>"
	}

	return t.rt.String()
}

// Name returns the fully-qualified name of the type.
func (t Type) Name() string {
	rt := t.ReflectType()

	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}

	if rt.PkgPath() == "" {
		panic(fmt.Sprintf("%s is not a named type", rt))
	}

	return rt.PkgPath() + "." + rt.Name()
}
