package probe

import "context"

// Attempt is the outcome of a single request against the target.
//
// Fields:
// - StatusCode: HTTP status code when a response arrived; 0 for transport errors.
// - Err: failure reason when Success is false.
type Attempt struct {
	Success    bool
	StatusCode int
	Err        string
}

// Checker performs one request against a target URL.
type Checker interface {
	Check(ctx context.Context, target string) Attempt
}
