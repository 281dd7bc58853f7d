package fleet

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the persistence layer for the catalog and the physical fleet.
type Repository interface {
	CreateModel(ctx context.Context, m *CarModel) error
	GetModelByPublicID(ctx context.Context, publicID string) (*CarModel, error)
	ListModels(ctx context.Context) ([]CarModel, error)

	CreateVehicle(ctx context.Context, v *Vehicle) error
	GetVehicleByID(ctx context.Context, id string) (*Vehicle, error)
	ListVehiclesByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Vehicle, int64, error)
	UpdateVehicleStatus(ctx context.Context, id string, status VehicleStatus, note string) error
	DashboardSummary(ctx context.Context, ownerID string) (*DashboardSummary, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateModel(ctx context.Context, m *CarModel) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateModel
		}
		return err
	}
	return nil
}

func (r *repository) GetModelByPublicID(ctx context.Context, publicID string) (*CarModel, error) {
	var m CarModel
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) ListModels(ctx context.Context) ([]CarModel, error) {
	var models []CarModel
	if err := r.db.WithContext(ctx).Order("manufacturer, model").Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *repository) CreateVehicle(ctx context.Context, v *Vehicle) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePlate
		}
		return err
	}
	return nil
}

func (r *repository) GetVehicleByID(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) ListVehiclesByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Vehicle, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Vehicle{})
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vehicles []Vehicle
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (r *repository) UpdateVehicleStatus(ctx context.Context, id string, status VehicleStatus, note string) error {
	updates := map[string]interface{}{
		"status":          status,
		"last_updated_at": time.Now().UTC(),
	}
	if status == VehicleUnderMaintenance {
		updates["maintenance_note"] = note
	} else {
		updates["maintenance_note"] = ""
	}

	tx := r.db.WithContext(ctx).Model(&Vehicle{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

func (r *repository) DashboardSummary(ctx context.Context, ownerID string) (*DashboardSummary, error) {
	var out DashboardSummary

	base := r.db.WithContext(ctx).Model(&Vehicle{}).Where("owner_id = ?", ownerID)
	if err := base.Session(&gorm.Session{}).Count(&out.TotalVehicles).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", VehicleAvailable).Count(&out.Available).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", VehicleUnderMaintenance).Count(&out.UnderMaintenance).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// SQLite reports constraint violations as plain strings.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
