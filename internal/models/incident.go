package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IncidentType classifies a safety event.
type IncidentType string

const (
	IncidentSpeeding          IncidentType = "speeding"
	IncidentHarshBraking      IncidentType = "harsh_braking"
	IncidentRapidAcceleration IncidentType = "rapid_acceleration"
	IncidentAccident          IncidentType = "accident"
	IncidentFatigue           IncidentType = "fatigue"
	IncidentDistraction       IncidentType = "distraction"
	IncidentTrafficViolation  IncidentType = "traffic_violation"
	IncidentMechanicalFailure IncidentType = "mechanical_failure"
	IncidentWeatherRelated    IncidentType = "weather_related"
	IncidentOther             IncidentType = "other"
)

// IncidentTypes lists every valid incident type.
var IncidentTypes = []IncidentType{
	IncidentSpeeding,
	IncidentHarshBraking,
	IncidentRapidAcceleration,
	IncidentAccident,
	IncidentFatigue,
	IncidentDistraction,
	IncidentTrafficViolation,
	IncidentMechanicalFailure,
	IncidentWeatherRelated,
	IncidentOther,
}

// IsValidIncidentType checks if an incident type is valid
func IsValidIncidentType(t IncidentType) bool {
	for _, known := range IncidentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Severity grades an incident.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValidSeverity checks if a severity level is valid
func IsValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Location is where an incident happened. Owned by the incident record.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

// VehicleData carries optional vehicle readings captured at the incident.
type VehicleData struct {
	Speed float64 `bson:"speed" json:"speed"`
}

// Resolution closes an incident. Set together with ResolvedBy/ResolvedAt
// in a single update; there is no un-resolve path.
type Resolution struct {
	Notes   string   `bson:"notes" json:"notes"`
	Actions []string `bson:"actions,omitempty" json:"actions,omitempty"`
}

// Incident represents a recorded safety event tied to one driver and one
// vehicle. Driver/Vehicle refs are joined at the read boundary, never stored.
type Incident struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DriverID    primitive.ObjectID  `bson:"driver_id" json:"driverId"`
	VehicleID   primitive.ObjectID  `bson:"vehicle_id" json:"vehicleId"`
	Type        IncidentType        `bson:"type" json:"type"`
	Severity    Severity            `bson:"severity" json:"severity"`
	Description string              `bson:"description" json:"description"`
	Location    Location            `bson:"location" json:"location"`
	VehicleData *VehicleData        `bson:"vehicle_data,omitempty" json:"vehicleData,omitempty"`
	Timestamp   time.Time           `bson:"timestamp" json:"timestamp"`
	Resolved    bool                `bson:"resolved" json:"resolved"`
	ResolvedBy  *primitive.ObjectID `bson:"resolved_by,omitempty" json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time          `bson:"resolved_at,omitempty" json:"resolvedAt,omitempty"`
	Resolution  *Resolution         `bson:"resolution,omitempty" json:"resolution,omitempty"`
	Driver      *UserRef            `bson:"-" json:"driver,omitempty"`
	Vehicle     *VehicleRef         `bson:"-" json:"vehicle,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updatedAt"`
}
