package domain

// DeliveryOutcome classifies one delivery attempt. Failures are recorded,
// never propagated: one bad subscription must not stop the rest of a
// fan-out.
type DeliveryOutcome int

const (
	// OutcomeSent: the push service accepted the message (2xx).
	OutcomeSent DeliveryOutcome = iota
	// OutcomeExpired: the push service reported the endpoint gone
	// (404/410); the subscription should be pruned.
	OutcomeExpired
	// OutcomeFailed: transient or local failure (network error, non-2xx
	// other than 404/410, bad stored key material); the subscription is
	// retained.
	OutcomeFailed
)

// DeliveryResult is the per-subscription outcome of one attempt.
type DeliveryResult struct {
	Endpoint string
	Outcome  DeliveryOutcome
	// Reason is set for OutcomeFailed only.
	Reason error
}
