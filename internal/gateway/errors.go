package gateway

import "errors"

var (
	// ErrMalformedNotification means the body could not be parsed in any
	// supported format. No state change, no side effects.
	ErrMalformedNotification = errors.New("gateway: malformed notification")

	// ErrAuthenticationFailed means the MAC on a signed notification did not
	// verify. Logged as a potential fraud signal by the caller.
	ErrAuthenticationFailed = errors.New("gateway: MAC verification failed")

	// ErrMissingOrderID means an otherwise valid notification carried no
	// order identifier and cannot be correlated.
	ErrMissingOrderID = errors.New("gateway: missing order id")
)
