package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fleetops/driver-safety/internal/db"
	"github.com/fleetops/driver-safety/internal/events"
	"github.com/fleetops/driver-safety/internal/middleware"
	"github.com/fleetops/driver-safety/internal/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IncidentHandler manages the incident ledger. Incidents are filed, listed
// with role-scoped visibility, and resolved; they are never deleted.
type IncidentHandler struct {
	incidents db.IncidentCollection
	users     db.UserCollection
	vehicles  db.VehicleCollection
	publisher events.Publisher
}

// NewIncidentHandler creates a new incident handler
func NewIncidentHandler(incidents db.IncidentCollection, users db.UserCollection, vehicles db.VehicleCollection, publisher events.Publisher) *IncidentHandler {
	return &IncidentHandler{
		incidents: incidents,
		users:     users,
		vehicles:  vehicles,
		publisher: publisher,
	}
}

type incidentLocation struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

type incidentVehicleData struct {
	Speed *float64 `json:"speed"`
}

type incidentRequest struct {
	DriverID    string               `json:"driverId"`
	VehicleID   string               `json:"vehicleId"`
	Type        models.IncidentType  `json:"type"`
	Severity    models.Severity      `json:"severity"`
	Description string               `json:"description"`
	Location    incidentLocation     `json:"location"`
	VehicleData *incidentVehicleData `json:"vehicleData"`
}

// validate collects every violated field. requireDriver is set on the
// admin route, where the payload must name the driver explicitly.
func (req *incidentRequest) validate(requireDriver bool) []FieldError {
	var errs []FieldError
	if requireDriver && req.DriverID == "" {
		errs = append(errs, FieldError{Field: "driverId", Message: "Driver ID is required"})
	}
	if req.DriverID != "" {
		if _, err := primitive.ObjectIDFromHex(req.DriverID); err != nil {
			errs = append(errs, FieldError{Field: "driverId", Message: "Invalid driver id"})
		}
	}
	if req.VehicleID == "" {
		errs = append(errs, FieldError{Field: "vehicleId", Message: "Vehicle ID is required"})
	} else if _, err := primitive.ObjectIDFromHex(req.VehicleID); err != nil {
		errs = append(errs, FieldError{Field: "vehicleId", Message: "Invalid vehicle id"})
	}
	if req.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "Incident type is required"})
	} else if !models.IsValidIncidentType(req.Type) {
		errs = append(errs, FieldError{Field: "type", Message: "Invalid incident type"})
	}
	if req.Severity == "" {
		errs = append(errs, FieldError{Field: "severity", Message: "Severity is required"})
	} else if !models.IsValidSeverity(req.Severity) {
		errs = append(errs, FieldError{Field: "severity", Message: "Invalid severity"})
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "Description is required"})
	} else if len(description) > 1000 {
		errs = append(errs, FieldError{Field: "description", Message: "Description cannot be more than 1000 characters"})
	}
	if req.Location.Latitude == nil {
		errs = append(errs, FieldError{Field: "location.latitude", Message: "Valid latitude is required"})
	}
	if req.Location.Longitude == nil {
		errs = append(errs, FieldError{Field: "location.longitude", Message: "Valid longitude is required"})
	}
	if req.VehicleData != nil && req.VehicleData.Speed != nil && *req.VehicleData.Speed < 0 {
		errs = append(errs, FieldError{Field: "vehicleData.speed", Message: "Speed cannot be negative"})
	}
	return errs
}

// Create files an incident for the caller. The persisted driver id is
// always the caller's own id; any driverId in the payload is ignored, so
// a driver cannot file incidents on someone else's record.
func (h *IncidentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	var req incidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.DriverID = identity.ID.Hex()
	if errs := req.validate(false); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	h.insert(w, r, &req)
}

// CreateAsAdmin files an incident on behalf of a named driver. Reached only
// through the admin/manager route; the payload must supply driverId.
func (h *IncidentHandler) CreateAsAdmin(w http.ResponseWriter, r *http.Request) {
	var req incidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if errs := req.validate(true); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	h.insert(w, r, &req)
}

func (h *IncidentHandler) insert(w http.ResponseWriter, r *http.Request, req *incidentRequest) {
	driverID, _ := primitive.ObjectIDFromHex(req.DriverID)
	vehicleID, _ := primitive.ObjectIDFromHex(req.VehicleID)

	incident := models.Incident{
		DriverID:    driverID,
		VehicleID:   vehicleID,
		Type:        req.Type,
		Severity:    req.Severity,
		Description: strings.TrimSpace(req.Description),
		Location: models.Location{
			Latitude:  *req.Location.Latitude,
			Longitude: *req.Location.Longitude,
			Address:   strings.TrimSpace(req.Location.Address),
		},
	}
	if req.VehicleData != nil && req.VehicleData.Speed != nil {
		incident.VehicleData = &models.VehicleData{Speed: *req.VehicleData.Speed}
	}

	created, err := h.incidents.InsertIncident(r.Context(), incident)
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	h.publisher.IncidentCreated(created)

	single := []models.Incident{*created}
	if err := h.joinRefs(r, single); err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"incident": single[0]})
}

// List returns incidents newest-first. Drivers only see their own records;
// admins and managers see the full ledger.
func (h *IncidentHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	filter := bson.M{}
	if identity.Role == models.RoleDriver {
		filter["driver_id"] = identity.ID
	}

	incidents, err := h.incidents.FindIncidents(r.Context(), filter)
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	if err := h.joinRefs(r, incidents); err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(incidents),
		"incidents": incidents,
	})
}

type resolveRequest struct {
	Notes   string   `json:"notes"`
	Actions []string `json:"actions"`
}

// Resolve closes an incident, recording resolver, time and notes in one
// atomic update. Re-resolving overwrites the previous resolution.
func (h *IncidentHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	var req resolveRequest
	if r.Body != nil {
		// An empty body resolves with empty notes.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	incident, err := h.incidents.ResolveIncident(r.Context(), chi.URLParam(r, "id"), identity.ID, models.Resolution{
		Notes:   req.Notes,
		Actions: req.Actions,
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			writeError(w, http.StatusNotFound, "Incident not found")
			return
		}
		writeServerError(w, r, err)
		return
	}

	h.publisher.IncidentResolved(incident)

	single := []models.Incident{*incident}
	if err := h.joinRefs(r, single); err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"incident": single[0]})
}

// joinRefs resolves driver and vehicle references at the read boundary.
func (h *IncidentHandler) joinRefs(r *http.Request, incidents []models.Incident) error {
	var driverIDs, vehicleIDs []primitive.ObjectID
	seenDrivers := map[primitive.ObjectID]bool{}
	seenVehicles := map[primitive.ObjectID]bool{}
	for _, inc := range incidents {
		if !seenDrivers[inc.DriverID] {
			seenDrivers[inc.DriverID] = true
			driverIDs = append(driverIDs, inc.DriverID)
		}
		if !seenVehicles[inc.VehicleID] {
			seenVehicles[inc.VehicleID] = true
			vehicleIDs = append(vehicleIDs, inc.VehicleID)
		}
	}

	driverRefs, err := h.users.FindUserRefs(r.Context(), driverIDs)
	if err != nil {
		return err
	}
	vehicleRefs, err := h.vehicles.FindVehicleRefs(r.Context(), vehicleIDs)
	if err != nil {
		return err
	}

	for i := range incidents {
		if ref, ok := driverRefs[incidents[i].DriverID]; ok {
			incidents[i].Driver = &ref
		}
		if ref, ok := vehicleRefs[incidents[i].VehicleID]; ok {
			incidents[i].Vehicle = &ref
		}
	}
	return nil
}
