package fleet

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreateModelRequest struct {
	Model        string `json:"model" binding:"required"`
	Manufacturer string `json:"manufacturer" binding:"required"`
	Seats        int    `json:"seats" binding:"required,min=1,max=10"`
	Transmission string `json:"transmission"`
	Category     string `json:"category"`
	FuelType     string `json:"fuel_type"`
	ImageURL     string `json:"image_url"`
}

type AddVehicleRequest struct {
	ModelPublicID   string  `json:"model_public_id" binding:"required"`
	OwnerID         string  `json:"owner_id" binding:"required"`
	LicensePlate    string  `json:"license_plate" binding:"required"`
	DailyPrice      float64 `json:"daily_price" binding:"required,gte=0"`
	MileageKm       int     `json:"mileage_km"`
	CurrentLocation string  `json:"current_location"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateModel(ctx context.Context, req CreateModelRequest) (*CarModel, error) {
	m := &CarModel{
		PublicID:     uuid.NewString(),
		Model:        strings.TrimSpace(req.Model),
		Manufacturer: strings.TrimSpace(req.Manufacturer),
		Seats:        req.Seats,
		Transmission: req.Transmission,
		Category:     req.Category,
		FuelType:     req.FuelType,
		ImageURL:     req.ImageURL,
		CreatedAt:    time.Now().UTC(),
	}
	if m.Model == "" || m.Manufacturer == "" {
		return nil, ErrValidation
	}

	if err := s.repo.CreateModel(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListModels(ctx context.Context) ([]CarModel, error) {
	return s.repo.ListModels(ctx)
}

func (s *Service) AddVehicle(ctx context.Context, req AddVehicleRequest) (*Vehicle, error) {
	m, err := s.repo.GetModelByPublicID(ctx, req.ModelPublicID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	v := &Vehicle{
		ID:              uuid.NewString(),
		CarModelID:      m.ID,
		OwnerID:         req.OwnerID,
		LicensePlate:    strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		DailyPrice:      req.DailyPrice,
		Status:          VehicleAvailable,
		MileageKm:       req.MileageKm,
		CurrentLocation: req.CurrentLocation,
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}
	if v.LicensePlate == "" {
		return nil, ErrValidation
	}

	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) ListVehicles(ctx context.Context, ownerID string, limit, offset int) ([]Vehicle, int64, error) {
	return s.repo.ListVehiclesByOwner(ctx, ownerID, limit, offset)
}

func (s *Service) UpdateVehicleStatus(ctx context.Context, id, status, note string) error {
	st := VehicleStatus(strings.ToUpper(strings.TrimSpace(status)))
	switch st {
	case VehicleAvailable, VehicleUnderMaintenance:
	default:
		return ErrUnknownStatus
	}
	return s.repo.UpdateVehicleStatus(ctx, id, st, note)
}

func (s *Service) Dashboard(ctx context.Context, ownerID string) (*DashboardSummary, error) {
	return s.repo.DashboardSummary(ctx, ownerID)
}
