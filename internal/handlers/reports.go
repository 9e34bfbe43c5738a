package handlers

import (
	"net/http"
	"time"

	"github.com/fleetops/driver-safety/internal/db"
	"github.com/fleetops/driver-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// ReportsHandler serves read-only aggregations over the incident ledger.
// Every report is deterministic and side-effect free.
type ReportsHandler struct {
	incidents db.IncidentCollection
	users     db.UserCollection
	vehicles  db.VehicleCollection
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(incidents db.IncidentCollection, users db.UserCollection, vehicles db.VehicleCollection) *ReportsHandler {
	return &ReportsHandler{
		incidents: incidents,
		users:     users,
		vehicles:  vehicles,
	}
}

// IncidentsByType returns incident counts grouped by type.
func (h *ReportsHandler) IncidentsByType(w http.ResponseWriter, r *http.Request) {
	data, err := h.incidents.CountByType(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

// IncidentsBySeverity returns incident counts grouped by severity.
func (h *ReportsHandler) IncidentsBySeverity(w http.ResponseWriter, r *http.Request) {
	data, err := h.incidents.CountBySeverity(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

// MonthlyIncidents returns the incident trend for the trailing 12 months.
func (h *ReportsHandler) MonthlyIncidents(w http.ResponseWriter, r *http.Request) {
	since := time.Now().AddDate(-1, 0, 0)
	data, err := h.incidents.MonthlyTrend(r.Context(), since)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

// DriverPerformance returns per-driver incident metrics. The safety score
// is derived here at presentation time and is never stored.
func (h *ReportsHandler) DriverPerformance(w http.ResponseWriter, r *http.Request) {
	data, err := h.users.DriverPerformance(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	for i := range data {
		data[i].SafetyScore = data[i].ComputeSafetyScore()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

// Dashboard returns the summary counts. The six counts fan out
// concurrently; the first failure aborts the whole response.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var stats models.DashboardStats

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		stats.TotalDrivers, err = h.users.CountDrivers(ctx)
		return
	})
	g.Go(func() (err error) {
		stats.TotalVehicles, err = h.vehicles.CountVehicles(ctx)
		return
	})
	g.Go(func() (err error) {
		stats.TotalIncidents, err = h.incidents.CountIncidents(ctx, bson.M{})
		return
	})
	g.Go(func() (err error) {
		stats.ActiveIncidents, err = h.incidents.CountIncidents(ctx, bson.M{"resolved": false})
		return
	})
	g.Go(func() (err error) {
		stats.ResolvedIncidents, err = h.incidents.CountIncidents(ctx, bson.M{"resolved": true})
		return
	})
	g.Go(func() (err error) {
		stats.CriticalIncidents, err = h.incidents.CountIncidents(ctx, bson.M{"severity": models.SeverityCritical})
		return
	})

	if err := g.Wait(); err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}
