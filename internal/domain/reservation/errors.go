package reservation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDateRange marks a malformed, past, or over-long interval.
	// It is returned before any ledger row is touched.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrNoVehicleAvailable is the normal outcome of contention or fleet
	// exhaustion, not a system fault.
	ErrNoVehicleAvailable = errors.New("no vehicle available")

	ErrReservationNotFound = errors.New("reservation not found")

	// ErrReservationExpired is returned when confirming past the hold
	// deadline; the record is flipped to EXPIRED as a side effect.
	ErrReservationExpired = errors.New("reservation expired")

	ErrInvalidStateTransition = errors.New("invalid reservation state transition")

	// ErrStorageUnavailable covers transaction timeouts and transient
	// storage failures; callers may retry.
	ErrStorageUnavailable = errors.New("reservation storage unavailable")
)

// StateTransitionError reports an attempted confirm/cancel on a record that
// is not in the expected status. It unwraps to ErrInvalidStateTransition.
type StateTransitionError struct {
	ReservationID string
	Current       Status
	Expected      Status
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("reservation %s is %s, expected %s", e.ReservationID, e.Current, e.Expected)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }
