// Package fixtures contains test fixtures shared by the test suites.
package fixtures

import (
	"reflect"

	"github.com/dogmatiq/marshalkit"
	"github.com/dogmatiq/marshalkit/codec"
	"github.com/dogmatiq/marshalkit/codec/json"
	"github.com/quayside/commerce/identity"
	"github.com/quayside/commerce/saga/signup"
	"github.com/quayside/commerce/saga/usersync"
)

// Marshaler is a marshaler that knows about the event and process root types
// used within the tests.
var Marshaler marshalkit.Marshaler

func init() {
	var err error
	Marshaler, err = codec.NewMarshaler(
		[]reflect.Type{
			reflect.TypeOf(EventA{}),
			reflect.TypeOf(EventB{}),
			reflect.TypeOf(&ProcessRoot{}),
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
}
