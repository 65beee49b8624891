package sign

import (
	"github.com/go-openapi/strfmt"
	"github/chapool/wallet-bridge/internal/types"
	"github/chapool/wallet-bridge/internal/wallet/invoke"
)

func FlowResponse(flow *invoke.Flow, status invoke.Status) *types.SignFlowResponse {
	return &types.SignFlowResponse{
		ID:        strfmt.UUID(flow.ID),
		CreatedAt: strfmt.DateTime(flow.CreatedAt),
		Status: &types.SignFlowStatus{
			Phase:      status.Phase.String(),
			Signature:  status.Signature.String(),
			Reason:     status.Reason,
			Generation: status.Generation,
			UpdatedAt:  strfmt.DateTime(status.UpdatedAt),
		},
	}
}
