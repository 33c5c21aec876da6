package domain

import (
	"encoding/json"
	"errors"
)

// GatewayLeg names which gateway an attempt went to.
type GatewayLeg string

const (
	LegPrimary GatewayLeg = "primary"
	LegBackup  GatewayLeg = "backup"
	LegNone    GatewayLeg = "none"
)

// DeliveryParams are the parameters of a single gateway request.
// AccountID is set on the backup leg only.
type DeliveryParams struct {
	Recipient  string
	Text       string
	Credential string
	AccountID  string
}

// WithAccountID returns a copy of p carrying the backup account identifier.
func (p DeliveryParams) WithAccountID(accountID string) DeliveryParams {
	p.AccountID = accountID
	return p
}

// DeliveryResult is the classified outcome of a delivery attempt. Err is nil
// exactly when Delivered is true; otherwise it wraps one of the package's
// sentinel errors.
type DeliveryResult struct {
	Delivered  bool
	Leg        GatewayLeg
	StatusCode int
	Body       json.RawMessage
	Err        error
}

// Delivered builds a successful result.
func Delivered(leg GatewayLeg, statusCode int, body json.RawMessage) DeliveryResult {
	return DeliveryResult{Delivered: true, Leg: leg, StatusCode: statusCode, Body: body}
}

// Failed builds a failed result.
func Failed(leg GatewayLeg, statusCode int, err error) DeliveryResult {
	return DeliveryResult{Leg: leg, StatusCode: statusCode, Err: err}
}

// Outcome is a short label for logs and metrics.
func (r DeliveryResult) Outcome() string {
	switch {
	case r.Delivered:
		return "delivered"
	case r.Err == nil:
		return "failed"
	case errors.Is(r.Err, ErrNoConfiguration):
		return "no_configuration"
	case errors.Is(r.Err, ErrGatewayUnreachable):
		return "unreachable"
	case errors.Is(r.Err, ErrGatewayRejected):
		return "rejected"
	case errors.Is(r.Err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "failed"
	}
}
