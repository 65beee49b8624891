package connection

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/wallet-bridge/internal/observable"
)

var (
	ErrNoAddress      = errors.New("no address in payload")
	ErrInvalidAddress = errors.New("invalid address")
)

type service struct {
	state *observable.Value[State]
}

// NewService creates a holder starting out Disconnected.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService() Service {
	return &service{
		state: observable.New(Disconnected),
	}
}

func (s *service) HandleEvent(payload json.RawMessage) State {
	next := Disconnected

	addr, err := DecodeAddress(payload)
	if err != nil {
		log.Debug().Err(err).Msg("Signer disconnected")
	} else {
		next = ConnectedTo(addr)
		log.Info().Str("address", addr.String()).Msg("Signer connected")
	}

	s.state.Set(next)

	return next
}

func (s *service) Run(ctx context.Context, events <-chan json.RawMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-events:
			if !ok {
				return
			}
			s.HandleEvent(payload)
		}
	}
}

func (s *service) State() State {
	return s.state.Get()
}

func (s *service) Subscribe() (<-chan State, func()) {
	return s.state.Subscribe()
}

// DecodeAddress accepts the wallet's byte array form of a public key or its
// base58 string.
func DecodeAddress(payload json.RawMessage) (Address, error) {
	var addr Address

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return addr, ErrNoAddress
	}

	var raw []byte
	switch trimmed[0] {
	case '[':
		// []byte would expect base64, so decode as ints and range check
		var values []int
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return addr, errors.Wrap(ErrInvalidAddress, err.Error())
		}
		raw = make([]byte, 0, len(values))
		for _, v := range values {
			if v < 0 || v > 255 {
				return addr, errors.Wrapf(ErrInvalidAddress, "byte value %d out of range", v)
			}
			raw = append(raw, byte(v))
		}
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return addr, errors.Wrap(ErrInvalidAddress, err.Error())
		}
		decoded, err := base58.Decode(text)
		if err != nil {
			return addr, errors.Wrap(ErrInvalidAddress, err.Error())
		}
		raw = decoded
	default:
		return addr, errors.Wrap(ErrInvalidAddress, "unsupported payload")
	}

	if len(raw) != AddressLength {
		return addr, errors.Wrapf(ErrInvalidAddress, "expected %d bytes, got %d", AddressLength, len(raw))
	}

	copy(addr[:], raw)

	return addr, nil
}
