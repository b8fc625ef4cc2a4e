package enums

// OutboxDLQErrorReason classifies why the publisher retired an event.
// The reason steers remediation: unresolvable rows point at the code
// that emitted them, the other two at the transport.
type OutboxDLQErrorReason string

const (
	// OutboxDLQReasonUnresolvable marks rows the registry could not turn
	// into a publishable message: unknown event type, aggregate mismatch,
	// or an envelope that no longer decodes.
	OutboxDLQReasonUnresolvable OutboxDLQErrorReason = "unresolvable"
	// OutboxDLQReasonMaxAttempts marks rows that kept failing with
	// retryable publish errors until the attempt ceiling.
	OutboxDLQReasonMaxAttempts OutboxDLQErrorReason = "max_attempts"
	// OutboxDLQReasonNonRetryable marks rows rejected permanently at
	// publish time, typically a topic without a configured publisher.
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

var validOutboxDLQErrorReasons = []OutboxDLQErrorReason{
	OutboxDLQReasonUnresolvable,
	OutboxDLQReasonMaxAttempts,
	OutboxDLQReasonNonRetryable,
}

func (r OutboxDLQErrorReason) IsValid() bool {
	for _, candidate := range validOutboxDLQErrorReasons {
		if candidate == r {
			return true
		}
	}
	return false
}
