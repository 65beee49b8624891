package types

import (
	"encoding/json"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// PostWalletEventPayload is the detail of a wallet connection event.
type PostWalletEventPayload struct {
	// Pubkey is the wallet's public key as a byte array or base58 string;
	// null or absent means the wallet disconnected.
	Pubkey json.RawMessage `json:"pubkey"`
}

// Validate accepts any pubkey, malformed ones are read as a disconnect.
func (m *PostWalletEventPayload) Validate(_ strfmt.Registry) error {
	return nil
}

type ConnectionResponse struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
}

type SignerRequestResponse struct {
	ID  strfmt.UUID `json:"id"`
	B64 string      `json:"b64"`
}

func (m *SignerRequestResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.FormatOf("id", "body", "uuid", m.ID.String(), formats); err != nil {
		res = append(res, err)
	}
	if err := validate.RequiredString("b64", "body", m.B64); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

type PostSignFlowInvokePayload struct {
	// B64 is the std base64 wire encoding of the unsigned transaction.
	// Required: true
	// Min Length: 1
	B64 *string `json:"b64"`
}

func (m *PostSignFlowInvokePayload) Validate(_ strfmt.Registry) error {
	if err := validate.Required("b64", "body", m.B64); err != nil {
		return errors.CompositeValidationError(err)
	}
	if err := validate.MinLength("b64", "body", swag.StringValue(m.B64), 1); err != nil {
		return errors.CompositeValidationError(err)
	}

	return nil
}

type SignFlowStatus struct {
	Phase      string          `json:"phase"`
	Signature  string          `json:"signature,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Generation uint64          `json:"generation"`
	UpdatedAt  strfmt.DateTime `json:"updatedAt"`
}

type SignFlowResponse struct {
	ID        strfmt.UUID     `json:"id"`
	CreatedAt strfmt.DateTime `json:"createdAt"`
	Status    *SignFlowStatus `json:"status"`
}

func (m *SignFlowResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.FormatOf("id", "body", "uuid", m.ID.String(), formats); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("status", "body", m.Status); err != nil {
		res = append(res, err)
	} else if err := validate.Enum("status.phase", "body", m.Status.Phase, signFlowPhaseEnum); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

var signFlowPhaseEnum = []interface{}{"start", "waiting", "done", "done_with_error", "timeout"}

type LedgerAnchorResponse struct {
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Height uint64 `json:"height"`
	Slot   uint64 `json:"slot"`
}
