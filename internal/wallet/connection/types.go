package connection

import (
	"context"
	"encoding/json"

	"github.com/mr-tron/base58"
)

// AddressLength is the size of a signer public key in bytes.
const AddressLength = 32

// Address is the public key of the connected signer.
type Address [AddressLength]byte

// String returns the base58 text form used at the boundary.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// State is either disconnected or connected to one signer address.
type State struct {
	Connected bool
	Address   Address
}

// Disconnected is the initial state.
var Disconnected = State{}

// ConnectedTo returns the state for a signer at addr.
func ConnectedTo(addr Address) State {
	return State{Connected: true, Address: addr}
}

func (s State) String() string {
	if !s.Connected {
		return "disconnected"
	}

	return "connected(" + s.Address.String() + ")"
}

// Service holds the current signer identity. It is the only writer of that
// state; everybody else reads or subscribes.
type Service interface {
	// HandleEvent applies one boundary notification. A payload that does not
	// decode to an address leaves the holder Disconnected.
	HandleEvent(payload json.RawMessage) State

	// Run applies events in order until the stream closes or ctx ends.
	Run(ctx context.Context, events <-chan json.RawMessage)

	// State returns the latest value.
	State() State

	// Subscribe returns the current state followed by every change.
	Subscribe() (<-chan State, func())
}
