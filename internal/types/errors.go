package types

// Public error types returned in HTTPError.Type.
const (
	PublicHTTPErrorTypeGeneric            = "generic"
	PublicHTTPErrorTypeInvalidTransaction = "INVALID_TRANSACTION"
	PublicHTTPErrorTypeFlowNotFound       = "FLOW_NOT_FOUND"
	PublicHTTPErrorTypeFlowBusy           = "FLOW_BUSY"
	PublicHTTPErrorTypeTooManyFlows       = "TOO_MANY_FLOWS"
	PublicHTTPErrorTypeRequestNotFound    = "SIGNER_REQUEST_NOT_FOUND"
	PublicHTTPErrorTypeRequestAnswered    = "SIGNER_REQUEST_ALREADY_ANSWERED"
	PublicHTTPErrorTypeLedgerUnavailable  = "LEDGER_UNAVAILABLE"
)

// HTTPError is the JSON body of every error response.
type HTTPError struct {
	Code   *int64  `json:"status"`
	Type   *string `json:"type"`
	Title  *string `json:"title"`
	Detail string  `json:"detail,omitempty"`
}

// HTTPValidationErrorDetail points at one invalid input.
type HTTPValidationErrorDetail struct {
	Key   *string `json:"key"`
	In    *string `json:"in"`
	Error *string `json:"error"`
}

// HTTPValidationError is an HTTPError listing the invalid inputs.
type HTTPValidationError struct {
	HTTPError
	ValidationErrors []*HTTPValidationErrorDetail `json:"validationErrors"`
}
