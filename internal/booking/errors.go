package booking

import "fmt"

// StoreFailure classifies durable-store failures into the closed set the
// workflow controller routes on.
type StoreFailure string

const (
	// StoreSchemaMissing means the store is reachable but the expected
	// structure is absent. Treated the same as unreachable: the booking
	// is recorded locally instead.
	StoreSchemaMissing StoreFailure = "schema_missing"
	// StoreUnreachable covers network, auth and pool failures.
	StoreUnreachable StoreFailure = "unreachable"
	// StoreRejected means the store refused the write, e.g. the slot was
	// taken by a concurrent booking.
	StoreRejected StoreFailure = "rejected"
)

// StoreError is the only error type the persistence gateway returns.
type StoreError struct {
	Failure StoreFailure
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("booking store %s: %s: %v", e.Op, e.Failure, e.Err)
	}
	return fmt.Sprintf("booking store %s: %s", e.Op, e.Failure)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Unavailable reports whether the failure means the durable store is
// effectively unavailable and the degraded/local path applies.
func (e *StoreError) Unavailable() bool {
	return e.Failure != StoreRejected
}

// ValidationError blocks a state transition and is shown inline to the
// user. It never enters the failure-absorption path and never reaches the
// store or the payment gateway.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransitionError reports a workflow step attempted from the wrong state.
type TransitionError struct {
	From State
	Step string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from state %s", e.Step, e.From)
}
