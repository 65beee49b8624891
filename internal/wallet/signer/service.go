package signer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

type service struct {
	dialer          Dialer
	decoder         Decoder
	responseTimeout time.Duration
}

// NewService creates a signer bridge over dialer. responseTimeout bounds how
// long one request waits for the signer; zero waits until ctx ends.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(dialer Dialer, decoder Decoder, responseTimeout time.Duration) Service {
	return &service{
		dialer:          dialer,
		decoder:         decoder,
		responseTimeout: responseTimeout,
	}
}

// RequestSignature implements Service.
//
//nolint:ireturn
func (s *service) RequestSignature(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	if tx == nil {
		return nil, rejected("nil transaction", nil)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, rejected("failed to serialize transaction", err)
	}

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, rejected("failed to open boundary channel", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Msg("Failed to close boundary channel")
		}
	}()

	if err := conn.Send(ctx, base64.StdEncoding.EncodeToString(raw)); err != nil {
		return nil, rejected("failed to send request", err)
	}

	recvCtx := ctx
	if s.responseTimeout > 0 {
		var cancel context.CancelFunc
		recvCtx, cancel = context.WithTimeout(ctx, s.responseTimeout)
		defer cancel()
	}

	resp, err := conn.Recv(recvCtx)
	if err != nil {
		return nil, rejected("no response from signer", err)
	}

	signedRaw, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}

	signed, err := s.decoder.Decode(signedRaw)
	if err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}

	return signed, nil
}

// decodeResponse accepts only a JSON string holding std base64.
func decodeResponse(resp json.RawMessage) ([]byte, error) {
	var b64 string
	if err := json.Unmarshal(resp, &b64); err != nil {
		return nil, rejected("non-conforming response", err)
	}

	signedRaw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, rejected("response is not base64", err)
	}

	if len(signedRaw) == 0 {
		return nil, rejected("empty response", nil)
	}

	return signedRaw, nil
}
