package httperrors

import (
	"net/http"

	"github/chapool/wallet-bridge/internal/types"
)

var (
	ErrBadRequestInvalidTransaction = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidTransaction, "The transaction could not be decoded.")
	ErrNotFoundFlow                 = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeFlowNotFound, "Flow not found.")
	ErrConflictFlowBusy             = NewHTTPError(http.StatusConflict, types.PublicHTTPErrorTypeFlowBusy, "The flow is still waiting for its previous invocation.")
	ErrTooManyFlows                 = NewHTTPError(http.StatusTooManyRequests, types.PublicHTTPErrorTypeTooManyFlows, "Too many flows.")
	ErrNotFoundSignerRequest        = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeRequestNotFound, "Signature request not found.")
	ErrConflictSignerRequest        = NewHTTPError(http.StatusConflict, types.PublicHTTPErrorTypeRequestAnswered, "Signature request was already answered.")
	ErrServiceUnavailableLedger     = NewHTTPError(http.StatusServiceUnavailable, types.PublicHTTPErrorTypeLedgerUnavailable, "The ledger is unavailable.")
)
