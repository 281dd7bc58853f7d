package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Config carries the tunables of the reservation core.
type Config struct {
	// HoldTTL is how long a PENDING hold blocks its vehicle while the
	// caller completes payment.
	HoldTTL time.Duration

	// MaxBookingSpan caps the length of a requested interval.
	MaxBookingSpan time.Duration

	// TxTimeout bounds every allocation/confirm/cancel transaction. On
	// timeout the transaction aborts with the ledger unchanged and the
	// caller sees a retryable failure.
	TxTimeout time.Duration
}

const (
	defaultHoldTTL        = 5 * time.Minute
	defaultMaxBookingSpan = 30 * 24 * time.Hour
	defaultTxTimeout      = 10 * time.Second
)

// Service implements the two-phase hold/confirm/cancel protocol over the
// booking ledger.
type Service struct {
	repo *Repository
	cfg  Config
	now  func() time.Time
}

func NewService(repo *Repository, cfg Config) *Service {
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = defaultHoldTTL
	}
	if cfg.MaxBookingSpan <= 0 {
		cfg.MaxBookingSpan = defaultMaxBookingSpan
	}
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = defaultTxTimeout
	}
	return &Service{repo: repo, cfg: cfg, now: time.Now}
}

// WithClock overrides the service's clock. Tests use this to move time past
// hold deadlines without sleeping.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateHold allocates one vehicle of the requested model for the interval
// and records a PENDING hold that expires after the configured TTL.
//
// A repeat call with a booking id that still has a live record returns that
// record unchanged instead of claiming a second vehicle. A prior record that
// ended up EXPIRED or CANCELLED does not block a fresh allocation.
func (s *Service) CreateHold(ctx context.Context, modelPublicID, bookingID string, start, end time.Time) (*HoldResult, error) {
	now := s.now()

	if err := s.validateDateRange(start, end, now); err != nil {
		return nil, err
	}
	if modelPublicID == "" || bookingID == "" {
		return nil, fmt.Errorf("%w: model and booking ids are required", ErrInvalidDateRange)
	}

	// Idempotency pre-check, outside any lock. An expired hold that the
	// reaper has not swept yet is expired lazily here so it neither blocks
	// the fresh allocation nor the unique active-booking index.
	if existing, err := s.repo.FindActiveByBookingID(ctx, bookingID); err == nil {
		if existing.Live(now) {
			log.Printf("reservation: duplicate hold request for booking %s, returning existing %s", bookingID, existing.ID)
			return holdResultOf(existing), nil
		}
		if err := s.repo.ExpireRecord(ctx, existing.ID, now); err != nil {
			return nil, classifyStorageErr(err)
		}
	} else if !errors.Is(err, ErrReservationNotFound) {
		return nil, classifyStorageErr(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	expiresAt := now.Add(s.cfg.HoldTTL)
	rec := &BookingRecord{
		ID:            uuid.NewString(),
		BookingID:     bookingID,
		StartDate:     start,
		EndDate:       end,
		Status:        StatusPending,
		ExpiresAt:     &expiresAt,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	err := s.repo.Transaction(ctx, func(txRepo *Repository) error {
		vehicleID, err := txRepo.ClaimVehicleID(ctx, modelPublicID, start, end, now)
		if err != nil {
			return err
		}
		rec.VehicleID = vehicleID
		return txRepo.Create(ctx, rec)
	})
	if err != nil {
		if errors.Is(err, ErrNoVehicleAvailable) {
			return nil, ErrNoVehicleAvailable
		}
		// A concurrent hold for the same booking id won the unique
		// index; return its record instead.
		if IsUniqueViolation(err) {
			if existing, ferr := s.repo.FindActiveByBookingID(ctx, bookingID); ferr == nil && existing.Live(now) {
				return holdResultOf(existing), nil
			}
		}
		return nil, classifyStorageErr(err)
	}

	log.Printf("reservation: hold %s created for booking %s on vehicle %s, expires %s",
		rec.ID, bookingID, rec.VehicleID, expiresAt.Format(time.RFC3339))
	return holdResultOf(rec), nil
}

// Confirm moves a PENDING hold to CONFIRMED, recording the caller-supplied
// payment reference. Confirming past the hold deadline fails with
// ErrReservationExpired and flips the record to EXPIRED in place, so any
// concurrent reader and the next reaper sweep see consistent state.
func (s *Service) Confirm(ctx context.Context, reservationID, paymentReference, notes string) (*BookingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	var (
		confirmed *BookingRecord
		outErr    error
	)
	err := s.repo.Transaction(ctx, func(txRepo *Repository) error {
		rec, err := txRepo.FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}

		if rec.Status != StatusPending {
			return &StateTransitionError{ReservationID: rec.ID, Current: rec.Status, Expected: StatusPending}
		}

		now := s.now()
		if rec.IsExpired(now) {
			// Lazy expiry: persist the EXPIRED flip, surface the
			// failure after commit.
			rec.Status = StatusExpired
			rec.LastUpdatedAt = now
			outErr = ErrReservationExpired
			return txRepo.Save(ctx, rec)
		}

		rec.Status = StatusConfirmed
		rec.PaymentReference = paymentReference
		if notes != "" {
			rec.Notes = notes
		}
		confirmedAt := now
		rec.ConfirmedAt = &confirmedAt
		rec.ExpiresAt = nil
		rec.LastUpdatedAt = now

		if err := txRepo.Save(ctx, rec); err != nil {
			return err
		}
		confirmed = rec
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) || errors.Is(err, ErrInvalidStateTransition) {
			return nil, err
		}
		return nil, classifyStorageErr(err)
	}
	if outErr != nil {
		log.Printf("reservation: confirm rejected, %s already past its deadline", reservationID)
		return nil, outErr
	}

	log.Printf("reservation: %s confirmed on vehicle %s", confirmed.ID, confirmed.VehicleID)
	return confirmed, nil
}

// Cancel moves a PENDING hold to CANCELLED, releasing the vehicle. Only
// PENDING records can be cancelled; anything else reports the actual status.
func (s *Service) Cancel(ctx context.Context, reservationID, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	var outErr error
	err := s.repo.Transaction(ctx, func(txRepo *Repository) error {
		rec, err := txRepo.FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}

		if rec.Status != StatusPending {
			return &StateTransitionError{ReservationID: rec.ID, Current: rec.Status, Expected: StatusPending}
		}

		now := s.now()
		if rec.IsExpired(now) {
			rec.Status = StatusExpired
			rec.LastUpdatedAt = now
			outErr = &StateTransitionError{ReservationID: rec.ID, Current: StatusExpired, Expected: StatusPending}
			return txRepo.Save(ctx, rec)
		}

		rec.Status = StatusCancelled
		cancelledAt := now
		rec.CancelledAt = &cancelledAt
		if reason != "" {
			rec.Notes = reason
		}
		rec.LastUpdatedAt = now
		return txRepo.Save(ctx, rec)
	})
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) || errors.Is(err, ErrInvalidStateTransition) {
			return err
		}
		return classifyStorageErr(err)
	}
	if outErr != nil {
		return outErr
	}

	log.Printf("reservation: %s cancelled (%s)", reservationID, reason)
	return nil
}

// CheckAvailability counts vehicles of the model free for the interval. The
// result is advisory: it can be stale the moment a concurrent hold commits.
func (s *Service) CheckAvailability(ctx context.Context, modelPublicID string, start, end time.Time) (int64, error) {
	now := s.now()
	if err := s.validateDateRange(start, end, now); err != nil {
		return 0, err
	}

	count, err := s.repo.CountAvailableVehicles(ctx, modelPublicID, start, end, now)
	if err != nil {
		return 0, classifyStorageErr(err)
	}
	return count, nil
}

// GetReservation returns one ledger record for an orchestrator or dashboard
// reader.
func (s *Service) GetReservation(ctx context.Context, reservationID string) (*BookingRecord, error) {
	rec, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return nil, err
		}
		return nil, classifyStorageErr(err)
	}
	return rec, nil
}

func (s *Service) validateDateRange(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidDateRange)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidDateRange)
	}
	if start.Before(now) {
		return fmt.Errorf("%w: start date cannot be in the past", ErrInvalidDateRange)
	}
	if end.Sub(start) > s.cfg.MaxBookingSpan {
		return fmt.Errorf("%w: booking duration cannot exceed %s", ErrInvalidDateRange, s.cfg.MaxBookingSpan)
	}
	return nil
}

func holdResultOf(rec *BookingRecord) *HoldResult {
	out := &HoldResult{
		ReservationID: rec.ID,
		VehicleID:     rec.VehicleID,
		BookingID:     rec.BookingID,
	}
	if rec.ExpiresAt != nil {
		out.ExpiresAt = *rec.ExpiresAt
	}
	return out
}

// classifyStorageErr separates transient storage failures, which callers may
// retry, from everything else.
func classifyStorageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization, deadlock, lock not available
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}
	return err
}
