package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// TypeCount is an incident count grouped by type.
type TypeCount struct {
	Type  IncidentType `bson:"_id" json:"type"`
	Count int64        `bson:"count" json:"count"`
}

// SeverityCount is an incident count grouped by severity.
type SeverityCount struct {
	Severity Severity `bson:"_id" json:"severity"`
	Count    int64    `bson:"count" json:"count"`
}

// MonthlyCount is an incident count for one calendar month.
type MonthlyCount struct {
	Year  int   `bson:"year" json:"year"`
	Month int   `bson:"month" json:"month"`
	Count int64 `bson:"count" json:"count"`
}

// DriverPerformance aggregates incident metrics for one driver.
// SafetyScore is derived at presentation time and never persisted.
type DriverPerformance struct {
	DriverID          primitive.ObjectID `bson:"_id" json:"driverId"`
	DriverName        string             `bson:"driver_name" json:"driverName"`
	DriverEmail       string             `bson:"driver_email" json:"driverEmail"`
	TotalIncidents    int64              `bson:"total_incidents" json:"totalIncidents"`
	CriticalIncidents int64              `bson:"critical_incidents" json:"criticalIncidents"`
	ResolvedIncidents int64              `bson:"resolved_incidents" json:"resolvedIncidents"`
	SafetyScore       int64              `bson:"-" json:"safetyScore"`
}

// ComputeSafetyScore derives the display score from incident totals.
func (p *DriverPerformance) ComputeSafetyScore() int64 {
	score := 100 - 5*p.TotalIncidents - 15*p.CriticalIncidents
	if score < 0 {
		score = 0
	}
	return score
}

// DashboardStats is the combined dashboard summary.
type DashboardStats struct {
	TotalDrivers      int64 `json:"totalDrivers"`
	TotalVehicles     int64 `json:"totalVehicles"`
	TotalIncidents    int64 `json:"totalIncidents"`
	ActiveIncidents   int64 `json:"activeIncidents"`
	ResolvedIncidents int64 `json:"resolvedIncidents"`
	CriticalIncidents int64 `json:"criticalIncidents"`
}
