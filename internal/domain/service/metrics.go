package service

import "time"

// Login outcomes reported to LedgerMetrics.
const (
	LoginSucceeded = "success"
	LoginRejected  = "rejected"
)

// LedgerMetrics records business events for monitoring.
type LedgerMetrics interface {
	RentalCreated()
	RentalFinished(fined bool)
	RentalConflict()
	LoginAttempt(outcome string)
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}
