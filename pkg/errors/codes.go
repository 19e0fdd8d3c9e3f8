// Package errors provides the coded error types used across bookmarkhub.
package errors

// Code identifies a class of failure.
type Code string

// Configuration codes. Raised while building the client registry; they
// exclude the offending client but never abort startup.
const (
	// CodeConfigInvalid indicates a client config fragment failed validation.
	CodeConfigInvalid Code = "CONFIG_INVALID"

	// CodeConfigLoad indicates the process configuration could not be read.
	CodeConfigLoad Code = "CONFIG_LOAD"
)

// Routing codes. Routing misses are expected operational events, not faults.
const (
	// CodeRoutingMiss indicates a category resolved to zero clients or targets.
	CodeRoutingMiss Code = "ROUTING_MISS"

	// CodeClientUnknown indicates a routed client name is absent from the registry.
	CodeClientUnknown Code = "CLIENT_UNKNOWN"
)

// Delivery codes. Always caught inside a client's Send and reduced to false.
const (
	// CodeDeliveryFailed indicates a network error, timeout, non-2xx response,
	// or malformed response during a send.
	CodeDeliveryFailed Code = "DELIVERY_FAILED"

	// CodeAuthExpired indicates the messaging server rejected cached
	// credentials; Matrix re-authenticates once before reporting failure.
	CodeAuthExpired Code = "AUTH_EXPIRED"
)

// Boundary codes.
const (
	// CodeSinkFailed indicates the event sink rejected a store.
	CodeSinkFailed Code = "SINK_FAILED"

	// CodeInternal indicates an unclassified internal error.
	CodeInternal Code = "INTERNAL"
)

// Category returns the coarse error category for a code.
func Category(code Code) string {
	switch code {
	case CodeConfigInvalid, CodeConfigLoad:
		return "configuration"
	case CodeRoutingMiss, CodeClientUnknown:
		return "routing"
	case CodeDeliveryFailed, CodeAuthExpired:
		return "delivery"
	case CodeSinkFailed:
		return "sink"
	default:
		return "system"
	}
}
