package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleStatus represents the operational state of a fleet vehicle.
type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusInactive    VehicleStatus = "inactive"
	VehicleStatusRetired     VehicleStatus = "retired"
)

// IsValidVehicleStatus checks if a vehicle status is valid
func IsValidVehicleStatus(status VehicleStatus) bool {
	switch status {
	case VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusInactive, VehicleStatusRetired:
		return true
	default:
		return false
	}
}

// FuelType represents the fuel type of a vehicle.
type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
	FuelCNG      FuelType = "cng"
)

// IsValidFuelType checks if a fuel type is valid
func IsValidFuelType(fuel FuelType) bool {
	switch fuel {
	case FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid, FuelCNG:
		return true
	default:
		return false
	}
}

// VehicleSpecs holds optional vehicle specifications.
type VehicleSpecs struct {
	Color           string `bson:"color,omitempty" json:"color,omitempty"`
	Transmission    string `bson:"transmission,omitempty" json:"transmission,omitempty"`
	SeatingCapacity int    `bson:"seating_capacity,omitempty" json:"seatingCapacity,omitempty"`
	Mileage         int    `bson:"mileage,omitempty" json:"mileage,omitempty"`
}

// Vehicle represents a fleet vehicle. Vehicle numbers are stored uppercase
// and are globally unique. DriverID is a non-owning reference to a user;
// Driver is only populated by a read-time join and never persisted.
type Vehicle struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	VehicleNumber string              `bson:"vehicle_number" json:"vehicleNumber"`
	Make          string              `bson:"make" json:"make"`
	Model         string              `bson:"model" json:"model"`
	Year          int                 `bson:"year" json:"year"`
	FuelType      FuelType            `bson:"fuel_type" json:"fuelType"`
	Status        VehicleStatus       `bson:"status" json:"status"`
	DriverID      *primitive.ObjectID `bson:"driver_id,omitempty" json:"driverId,omitempty"`
	Specs         *VehicleSpecs       `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Driver        *UserRef            `bson:"-" json:"driver,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updatedAt"`
}

// VehicleRef is a read-time summary of a referenced vehicle.
type VehicleRef struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	VehicleNumber string             `bson:"vehicle_number" json:"vehicleNumber"`
	Make          string             `bson:"make" json:"make"`
	Model         string             `bson:"model" json:"model"`
}
