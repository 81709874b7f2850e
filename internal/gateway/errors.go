package gateway

import "fmt"

// Kind classifies a gateway failure into the closed set the tool
// executor translates from.
type Kind int

const (
	// KindUnauthorized means the upstream rejected the credentials.
	KindUnauthorized Kind = iota
	// KindRateLimited means the upstream throttled the request.
	KindRateLimited
	// KindUpstream means the upstream returned a non-success status.
	KindUpstream
	// KindNetwork means the request never completed at the transport level.
	KindNetwork
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is a classified gateway failure.
type Error struct {
	Kind       Kind
	StatusCode int   // 0 for transport failures
	Err        error // underlying cause, may be nil
	Message    string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
