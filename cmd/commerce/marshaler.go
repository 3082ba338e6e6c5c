package main

import (
	"reflect"

	"github.com/dogmatiq/marshalkit"
	"github.com/dogmatiq/marshalkit/codec"
	"github.com/dogmatiq/marshalkit/codec/json"
	"github.com/quayside/commerce/identity"
	"github.com/quayside/commerce/saga/signup"
	"github.com/quayside/commerce/saga/usersync"
)

// newMarshaler returns a marshaler that knows about every event and process
// root type used by the sagas.
func newMarshaler() marshalkit.Marshaler {
	m, err := codec.NewMarshaler(
		[]reflect.Type{
			reflect.TypeOf(identity.RegistrationStarted{}),
			reflect.TypeOf(identity.RegistrationConfirmed{}),
			reflect.TypeOf(identity.UserAccountCreated{}),
			reflect.TypeOf(identity.UserDataEmitted{}),
			reflect.TypeOf(&signup.State{}),
			reflect.TypeOf(&usersync.PropagationState{}),
		},
		[]codec.Codec{
			&json.Codec{},
		},
	)
	if err != nil {
		panic(err)
	}

	return m
}
