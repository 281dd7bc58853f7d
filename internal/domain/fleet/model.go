package fleet

import "time"

type VehicleStatus string

const (
	VehicleAvailable        VehicleStatus = "AVAILABLE"
	VehicleUnderMaintenance VehicleStatus = "UNDER_MAINTENANCE"
)

// CarModel is the master template for a vehicle type. It is managed by
// platform admins and referenced by physical vehicles through CarModelID.
type CarModel struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	PublicID     string    `json:"public_id" gorm:"uniqueIndex;size:36;not null"`
	Model        string    `json:"model" gorm:"size:200;not null"`
	Manufacturer string    `json:"manufacturer" gorm:"size:200;not null"`
	Seats        int       `json:"seats" gorm:"not null"`
	Transmission string    `json:"transmission" gorm:"size:32"`
	Category     string    `json:"category" gorm:"size:64"`
	FuelType     string    `json:"fuel_type" gorm:"size:32"`
	ImageURL     string    `json:"image_url" gorm:"size:1024"`
	CreatedAt    time.Time `json:"created_at"`
}

func (CarModel) TableName() string { return "car_models" }

// Vehicle is one physical car in an operator's fleet. The reservation core
// only ever reads Status and MileageKm from it; all mutation happens through
// the fleet service.
type Vehicle struct {
	ID              string        `json:"id" gorm:"primaryKey;size:36"`
	CarModelID      int64         `json:"car_model_id" gorm:"index;not null"`
	OwnerID         string        `json:"owner_id" gorm:"index;size:36"`
	LicensePlate    string        `json:"license_plate" gorm:"uniqueIndex;size:32;not null"`
	DailyPrice      float64       `json:"daily_price" gorm:"not null"`
	Status          VehicleStatus `json:"status" gorm:"size:32;not null;index"`
	MileageKm       int           `json:"mileage_km"`
	CurrentLocation string        `json:"current_location,omitempty" gorm:"size:128"`
	MaintenanceNote string        `json:"maintenance_note,omitempty" gorm:"type:text"`
	CreatedAt       time.Time     `json:"created_at"`
	LastUpdatedAt   time.Time     `json:"last_updated_at"`
}

func (Vehicle) TableName() string { return "fleet_vehicles" }

// DashboardSummary aggregates an owner's fleet by status.
type DashboardSummary struct {
	TotalVehicles    int64 `json:"total_vehicles"`
	Available        int64 `json:"available"`
	UnderMaintenance int64 `json:"under_maintenance"`
}
