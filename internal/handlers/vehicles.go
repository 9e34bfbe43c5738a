package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fleetops/driver-safety/internal/db"
	"github.com/fleetops/driver-safety/internal/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleHandler manages the fleet registry.
type VehicleHandler struct {
	vehicles db.VehicleCollection
	users    db.UserCollection
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles db.VehicleCollection, users db.UserCollection) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, users: users}
}

type vehicleRequest struct {
	VehicleNumber string               `json:"vehicleNumber"`
	Make          string               `json:"make"`
	Model         string               `json:"model"`
	Year          int                  `json:"year"`
	FuelType      models.FuelType      `json:"fuelType"`
	Status        models.VehicleStatus `json:"status"`
	DriverID      string               `json:"driverId"`
	Specs         *models.VehicleSpecs `json:"specifications"`
}

// Create registers a new vehicle.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.VehicleNumber = strings.ToUpper(strings.TrimSpace(req.VehicleNumber))
	if req.Status == "" {
		req.Status = models.VehicleStatusActive
	}

	var errs []FieldError
	if req.VehicleNumber == "" {
		errs = append(errs, FieldError{Field: "vehicleNumber", Message: "Vehicle number is required"})
	}
	if strings.TrimSpace(req.Make) == "" {
		errs = append(errs, FieldError{Field: "make", Message: "Vehicle make is required"})
	}
	if strings.TrimSpace(req.Model) == "" {
		errs = append(errs, FieldError{Field: "model", Message: "Vehicle model is required"})
	}
	if req.Year < 1900 || req.Year > time.Now().Year()+1 {
		errs = append(errs, FieldError{Field: "year", Message: "Valid year is required"})
	}
	if !models.IsValidFuelType(req.FuelType) {
		errs = append(errs, FieldError{Field: "fuelType", Message: "Fuel type is required"})
	}
	if !models.IsValidVehicleStatus(req.Status) {
		errs = append(errs, FieldError{Field: "status", Message: "Invalid status"})
	}

	var driverID *primitive.ObjectID
	if req.DriverID != "" {
		oid, err := primitive.ObjectIDFromHex(req.DriverID)
		if err != nil {
			errs = append(errs, FieldError{Field: "driverId", Message: "Invalid driver id"})
		} else {
			driverID = &oid
		}
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	vehicle, err := h.vehicles.InsertVehicle(r.Context(), models.Vehicle{
		VehicleNumber: req.VehicleNumber,
		Make:          strings.TrimSpace(req.Make),
		Model:         strings.TrimSpace(req.Model),
		Year:          req.Year,
		FuelType:      req.FuelType,
		Status:        req.Status,
		DriverID:      driverID,
		Specs:         req.Specs,
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicateVehicleNumber) {
			writeError(w, http.StatusBadRequest, "Vehicle number already exists")
			return
		}
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"vehicle": vehicle})
}

// List returns all vehicles with assigned drivers joined in.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	if err := h.joinDrivers(r, vehicles); err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

// Get returns a single vehicle.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		writeServerError(w, r, err)
		return
	}

	single := []models.Vehicle{*vehicle}
	if err := h.joinDrivers(r, single); err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"vehicle": single[0]})
}

type vehicleUpdateRequest struct {
	VehicleNumber *string               `json:"vehicleNumber"`
	Make          *string               `json:"make"`
	Model         *string               `json:"model"`
	Year          *int                  `json:"year"`
	FuelType      *models.FuelType      `json:"fuelType"`
	Status        *models.VehicleStatus `json:"status"`
	DriverID      *string               `json:"driverId"`
	Specs         *models.VehicleSpecs  `json:"specifications"`
}

// Update applies a partial update to a vehicle. Driver assignment is a
// nullable reference: an explicit empty driverId clears it.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		writeServerError(w, r, err)
		return
	}

	var req vehicleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var errs []FieldError
	if req.VehicleNumber != nil {
		number := strings.ToUpper(strings.TrimSpace(*req.VehicleNumber))
		if number == "" {
			errs = append(errs, FieldError{Field: "vehicleNumber", Message: "Vehicle number is required"})
		} else {
			vehicle.VehicleNumber = number
		}
	}
	if req.Make != nil {
		if strings.TrimSpace(*req.Make) == "" {
			errs = append(errs, FieldError{Field: "make", Message: "Vehicle make is required"})
		} else {
			vehicle.Make = strings.TrimSpace(*req.Make)
		}
	}
	if req.Model != nil {
		if strings.TrimSpace(*req.Model) == "" {
			errs = append(errs, FieldError{Field: "model", Message: "Vehicle model is required"})
		} else {
			vehicle.Model = strings.TrimSpace(*req.Model)
		}
	}
	if req.Year != nil {
		if *req.Year < 1900 || *req.Year > time.Now().Year()+1 {
			errs = append(errs, FieldError{Field: "year", Message: "Valid year is required"})
		} else {
			vehicle.Year = *req.Year
		}
	}
	if req.FuelType != nil {
		if !models.IsValidFuelType(*req.FuelType) {
			errs = append(errs, FieldError{Field: "fuelType", Message: "Invalid fuel type"})
		} else {
			vehicle.FuelType = *req.FuelType
		}
	}
	if req.Status != nil {
		if !models.IsValidVehicleStatus(*req.Status) {
			errs = append(errs, FieldError{Field: "status", Message: "Invalid status"})
		} else {
			vehicle.Status = *req.Status
		}
	}
	if req.DriverID != nil {
		if *req.DriverID == "" {
			vehicle.DriverID = nil
		} else if oid, err := primitive.ObjectIDFromHex(*req.DriverID); err != nil {
			errs = append(errs, FieldError{Field: "driverId", Message: "Invalid driver id"})
		} else {
			vehicle.DriverID = &oid
		}
	}
	if req.Specs != nil {
		vehicle.Specs = req.Specs
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	if err := h.vehicles.UpdateVehicle(r.Context(), id, *vehicle); err != nil {
		if errors.Is(err, db.ErrDuplicateVehicleNumber) {
			writeError(w, http.StatusBadRequest, "Vehicle number already exists")
			return
		}
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		writeServerError(w, r, err)
		return
	}

	single := []models.Vehicle{*vehicle}
	if err := h.joinDrivers(r, single); err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"vehicle": single[0]})
}

// Delete removes a vehicle from the registry.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.vehicles.DeleteVehicle(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle deleted successfully"})
}

// joinDrivers resolves the non-owning driver references at the read boundary.
func (h *VehicleHandler) joinDrivers(r *http.Request, vehicles []models.Vehicle) error {
	var ids []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, v := range vehicles {
		if v.DriverID != nil && !seen[*v.DriverID] {
			seen[*v.DriverID] = true
			ids = append(ids, *v.DriverID)
		}
	}

	refs, err := h.users.FindUserRefs(r.Context(), ids)
	if err != nil {
		return err
	}
	for i := range vehicles {
		if vehicles[i].DriverID == nil {
			continue
		}
		if ref, ok := refs[*vehicles[i].DriverID]; ok {
			vehicles[i].Driver = &ref
		}
	}
	return nil
}
