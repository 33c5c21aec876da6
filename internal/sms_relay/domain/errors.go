package domain

import "errors"

var (
	// ErrNoConfiguration means no gateway configuration is stored. No gateway is contacted.
	ErrNoConfiguration = errors.New("no active gateway configuration")
	// ErrGatewayUnreachable covers connection errors, timeouts and cancelled attempts.
	ErrGatewayUnreachable = errors.New("gateway unreachable")
	// ErrGatewayRejected means the gateway answered with a non-2xx status.
	ErrGatewayRejected = errors.New("gateway rejected message")
	// ErrMalformedResponse means a 2xx status with a body that is not valid JSON.
	ErrMalformedResponse = errors.New("gateway returned malformed response")
)
