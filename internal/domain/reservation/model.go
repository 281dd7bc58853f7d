package reservation

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// BookingRecord is one row of the reservation ledger. Every hold attempt
// creates a new record; records are never deleted, only moved through
// PENDING -> CONFIRMED | CANCELLED | EXPIRED.
type BookingRecord struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	VehicleID string `json:"vehicle_id" gorm:"index;size:36;not null"`

	// BookingID is the caller-supplied external booking id, used as the
	// idempotency key: a live record for it is returned as-is on repeat
	// CreateHold calls.
	BookingID string `json:"booking_id" gorm:"index;size:36;not null"`

	// Half-open interval: StartDate inclusive, EndDate exclusive.
	StartDate time.Time `json:"start_date" gorm:"not null;index"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`

	Status Status `json:"status" gorm:"size:16;not null;index"`

	// ExpiresAt is set while the record is PENDING and cleared on confirm.
	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"index"`

	PaymentReference string `json:"payment_reference,omitempty" gorm:"size:128"`
	Notes            string `json:"notes,omitempty" gorm:"type:text"`

	CreatedAt     time.Time  `json:"created_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
}

func (BookingRecord) TableName() string { return "vehicle_booking_records" }

// IsExpired reports whether a PENDING record has passed its deadline.
func (r *BookingRecord) IsExpired(now time.Time) bool {
	return r.Status == StatusPending && r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// Live reports whether the record still occupies its vehicle: CONFIRMED, or
// PENDING with the deadline ahead.
func (r *BookingRecord) Live(now time.Time) bool {
	if r.Status == StatusConfirmed {
		return true
	}
	return r.Status == StatusPending && !r.IsExpired(now)
}

// HoldResult is what CreateHold returns to the booking orchestrator.
type HoldResult struct {
	ReservationID string    `json:"reservation_id"`
	VehicleID     string    `json:"vehicle_id"`
	BookingID     string    `json:"booking_id"`
	ExpiresAt     time.Time `json:"expires_at"`
}
