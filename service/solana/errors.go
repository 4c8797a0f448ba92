package solana

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two non-application failure classes of the RPC
// boundary. Callers branch with errors.Is.
var (
	// ErrNotFound indicates the remote service does not know the requested
	// transaction (pruned, too old, or the signature is malformed).
	ErrNotFound = errors.New("transaction not found")

	// ErrUnavailable indicates the remote service could not be reached at all
	// (network failure, timeout, connection refused).
	ErrUnavailable = errors.New("solana rpc unavailable")
)

// UpstreamError is an application-level error returned by the remote RPC
// service. The message is preserved for diagnostics.
type UpstreamError struct {
	Method  string
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("solana rpc error in %s (code %d): %s", e.Method, e.Code, e.Message)
}
