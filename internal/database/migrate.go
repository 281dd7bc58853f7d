package database

import (
	"gorm.io/gorm"

	"fleetservice/internal/domain/fleet"
	"fleetservice/internal/domain/reservation"
)

// Migrate creates the fleet and ledger tables. Both PostgreSQL and SQLite
// support the partial unique index that keeps at most one active (PENDING or
// CONFIRMED) ledger record per external booking id; terminal records do not
// block a fresh allocation for the same booking.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&fleet.CarModel{},
		&fleet.Vehicle{},
		&reservation.BookingRecord{},
	); err != nil {
		return err
	}

	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uk_active_booking
		ON vehicle_booking_records (booking_id)
		WHERE status IN ('PENDING', 'CONFIRMED')`).Error
}
