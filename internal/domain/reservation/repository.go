package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetservice/internal/domain/fleet"
)

// Repository is the data-access layer for the reservation ledger. All writes
// are single atomic statements or run inside a transaction obtained through
// Transaction, so the ledger never observes partial state.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn with a Repository bound to a single database
// transaction. The claim-and-insert of an allocation and the check-and-flip
// of confirm/cancel each live inside one of these.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// ClaimVehicleID picks one AVAILABLE vehicle of the model that has no
// overlapping live booking and claims its row. On PostgreSQL the select runs
// FOR UPDATE SKIP LOCKED: a candidate contended by a concurrent allocation is
// skipped instead of waited for, so simultaneous requesters succeed in
// parallel on different vehicles. Candidates are ordered by mileage then id,
// which spreads wear across the fleet and keeps outcomes deterministic.
//
// Returns ErrNoVehicleAvailable when every candidate is taken or contended.
func (r *Repository) ClaimVehicleID(ctx context.Context, modelPublicID string, start, end, now time.Time) (string, error) {
	q := r.db.WithContext(ctx).
		Model(&fleet.Vehicle{}).
		Select("fleet_vehicles.id").
		Joins("JOIN car_models ON car_models.id = fleet_vehicles.car_model_id").
		Where("car_models.public_id = ?", modelPublicID).
		Where("fleet_vehicles.status = ?", fleet.VehicleAvailable).
		Where(`NOT EXISTS (
			SELECT 1 FROM vehicle_booking_records r
			WHERE r.vehicle_id = fleet_vehicles.id
			  AND (r.status = ? OR (r.status = ? AND r.expires_at > ?))
			  AND r.start_date < ? AND r.end_date > ?
		)`, StatusConfirmed, StatusPending, now, end, start).
		Order("fleet_vehicles.mileage_km ASC, fleet_vehicles.id ASC").
		Limit(1)

	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: "fleet_vehicles"},
			Options:  "SKIP LOCKED",
		})
	}

	var candidates []struct {
		ID string
	}
	if err := q.Scan(&candidates).Error; err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", ErrNoVehicleAvailable
	}
	return candidates[0].ID, nil
}

func (r *Repository) Create(ctx context.Context, rec *BookingRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*BookingRecord, error) {
	var rec BookingRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindByIDForUpdate loads a record under row-level exclusivity so the status
// check and the following mutation cannot race a concurrent confirm, cancel,
// or reaper sweep on the same row.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id string) (*BookingRecord, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rec BookingRecord
	err := q.Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindActiveByBookingID returns the PENDING or CONFIRMED record for an
// external booking id. The partial unique index guarantees at most one such
// record exists.
func (r *Repository) FindActiveByBookingID(ctx context.Context, bookingID string) (*BookingRecord, error) {
	var rec BookingRecord
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status IN ?", bookingID, []Status{StatusPending, StatusConfirmed}).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ExpireRecord lazily flips one stale PENDING record to EXPIRED. The update
// is conditional on the deadline, so it can never turn a record that a
// concurrent confirm just rescued.
func (r *Repository) ExpireRecord(ctx context.Context, id string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&BookingRecord{}).
		Where("id = ? AND status = ? AND expires_at < ?", id, StatusPending, now).
		Updates(map[string]interface{}{
			"status":          StatusExpired,
			"last_updated_at": now,
		}).Error
}

func (r *Repository) Save(ctx context.Context, rec *BookingRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// ExpirePending bulk-flips every PENDING record past its deadline to EXPIRED
// in a single conditional update and reports how many rows changed. It only
// ever touches rows already past expiry, so it cannot race a legitimate
// confirm, which re-checks expires_at under the row lock.
func (r *Repository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&BookingRecord{}).
		Where("status = ? AND expires_at < ?", StatusPending, now).
		Updates(map[string]interface{}{
			"status":          StatusExpired,
			"last_updated_at": now,
		})
	return tx.RowsAffected, tx.Error
}

// CountAvailableVehicles counts AVAILABLE vehicles of the model without an
// overlapping live booking. Advisory only: no locks are taken and the result
// can be stale the instant a concurrent allocation commits.
func (r *Repository) CountAvailableVehicles(ctx context.Context, modelPublicID string, start, end, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&fleet.Vehicle{}).
		Joins("JOIN car_models ON car_models.id = fleet_vehicles.car_model_id").
		Where("car_models.public_id = ?", modelPublicID).
		Where("fleet_vehicles.status = ?", fleet.VehicleAvailable).
		Where(`NOT EXISTS (
			SELECT 1 FROM vehicle_booking_records r
			WHERE r.vehicle_id = fleet_vehicles.id
			  AND (r.status = ? OR (r.status = ? AND r.expires_at > ?))
			  AND r.start_date < ? AND r.end_date > ?
		)`, StatusConfirmed, StatusPending, now, end, start).
		Count(&count).Error
	return count, err
}

// IsUniqueViolation reports whether err is the unique-index rejection of a
// second active record for one booking id.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
