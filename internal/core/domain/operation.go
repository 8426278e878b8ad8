package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransferRequest is the raw, channel-tagged request accepted at the boundary.
type TransferRequest struct {
	OriginUserID string
	DestUserID   string
	Amount       decimal.Decimal
	Channel      Channel
	Gateway      Gateway
	Description  string
}

// OperationRequest is a routed transfer. The set of implementations is closed:
// InternalTopUp, SyncTransfer and AsyncTransfer.
type OperationRequest interface {
	Kind() OperationKind
	Origin() string
	Destination() string
	Value() decimal.Decimal
	isOperation()
}

// InternalTopUp moves value from a user's sync ledger into the same user's async ledger.
type InternalTopUp struct {
	UserID      string
	Amount      decimal.Decimal
	Description string
}

// SyncTransfer moves value between two sync ledgers over INTERNET.
type SyncTransfer struct {
	OriginUserID string
	DestUserID   string
	Amount       decimal.Decimal
	Gateway      Gateway
	Description  string
}

// AsyncTransfer moves value between two async ledgers over an offline channel.
type AsyncTransfer struct {
	OriginUserID string
	DestUserID   string
	Amount       decimal.Decimal
	Channel      Channel
	Gateway      Gateway
	Description  string
}

func (InternalTopUp) Kind() OperationKind { return OperationInternalTopUp }
func (o InternalTopUp) Origin() string { return o.UserID }
func (o InternalTopUp) Destination() string { return o.UserID }
func (o InternalTopUp) Value() decimal.Decimal { return o.Amount }
func (InternalTopUp) isOperation() {}
func (SyncTransfer) Kind() OperationKind { return OperationSyncTransfer }
func (o SyncTransfer) Origin() string { return o.OriginUserID }
func (o SyncTransfer) Destination() string { return o.DestUserID }
func (o SyncTransfer) Value() decimal.Decimal { return o.Amount }
func (SyncTransfer) isOperation() {}
func (AsyncTransfer) Kind() OperationKind { return OperationAsyncTransfer }
func (o AsyncTransfer) Origin() string { return o.OriginUserID }
func (o AsyncTransfer) Destination() string { return o.DestUserID }
func (o AsyncTransfer) Value() decimal.Decimal { return o.Amount }
func (AsyncTransfer) isOperation() {}

// ParseOperation validates req and routes it to its operation variant.
//
// Routing priority:
//  1. ASYNC_INTERNAL over the INTERNAL gateway to oneself is a top-up of the async ledger.
//  2. INTERNET is a sync-to-sync transfer.
//  3. SMS, NFC and BLUETOOTH are async-to-async transfers.
func ParseOperation(req TransferRequest) (OperationRequest, error) {
	origin := strings.TrimSpace(req.OriginUserID)
	dest := strings.TrimSpace(req.DestUserID)
	if origin == "" || dest == "" {
		return nil, fmt.Errorf("%w: origin and destination users are required", apperrors.ErrInvalidArgument)
	}
	if err := ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if !req.Channel.Valid() {
		return nil, fmt.Errorf("%w: unknown channel %q", apperrors.ErrInvalidArgument, req.Channel)
	}
	gateway := req.Gateway
	if gateway == "" {
		gateway = GatewayInternal
	}
	if !gateway.Valid() {
		return nil, fmt.Errorf("%w: unknown gateway %q", apperrors.ErrInvalidArgument, req.Gateway)
	}
	desc := TruncateDescription(req.Description)

	switch {
	case req.Channel == ChannelAsyncInternal:
		if gateway != GatewayInternal || origin != dest {
			return nil, fmt.Errorf("%w: %s is only valid for an INTERNAL top-up of one's own async ledger", apperrors.ErrInvalidArgument, ChannelAsyncInternal)
		}
		return InternalTopUp{UserID: origin, Amount: req.Amount, Description: desc}, nil
	case req.Channel == ChannelInternet:
		if origin == dest {
			return nil, fmt.Errorf("%w: origin and destination must differ", apperrors.ErrInvalidArgument)
		}
		return SyncTransfer{OriginUserID: origin, DestUserID: dest, Amount: req.Amount, Gateway: gateway, Description: desc}, nil
	case req.Channel.IsOffline():
		if origin == dest {
			return nil, fmt.Errorf("%w: origin and destination must differ", apperrors.ErrInvalidArgument)
		}
		return AsyncTransfer{OriginUserID: origin, DestUserID: dest, Amount: req.Amount, Channel: req.Channel, Gateway: gateway, Description: desc}, nil
	}
	return nil, fmt.Errorf("%w: channel %s cannot be routed", apperrors.ErrInvalidArgument, req.Channel)
}
