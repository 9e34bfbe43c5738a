package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fleetops/driver-safety/internal/db"
	"github.com/fleetops/driver-safety/internal/models"
	"github.com/go-chi/chi/v5"
)

// DriverHandler manages driver accounts. Drivers are users with the driver
// role; other users are never exposed through this surface.
type DriverHandler struct {
	users db.UserCollection
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(users db.UserCollection) *DriverHandler {
	return &DriverHandler{users: users}
}

// List returns all drivers, newest first.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.users.FindDrivers(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(drivers),
		"drivers": drivers,
	})
}

// Get returns a single driver.
func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	driver, err := h.findDriver(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Driver not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"driver": driver})
}

type driverUpdateRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	LicenseNumber *string `json:"licenseNumber"`
	IsActive      *bool   `json:"isActive"`
}

// Update applies a partial update to a driver account.
func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	driver, err := h.findDriver(r, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Driver not found")
		return
	}

	var req driverUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var errs []FieldError
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 50 {
			errs = append(errs, FieldError{Field: "name", Message: "Name must be between 1 and 50 characters"})
		} else {
			driver.Name = name
		}
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if !validEmail(email) {
			errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email"})
		} else {
			if existing, err := h.users.FindUserByEmail(r.Context(), email); err == nil && existing.ID != driver.ID {
				writeError(w, http.StatusBadRequest, "User already exists with this email")
				return
			}
			driver.Email = email
		}
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			errs = append(errs, FieldError{Field: "phone", Message: "Phone number is required"})
		} else {
			driver.Phone = phone
		}
	}
	if req.LicenseNumber != nil {
		license := strings.ToUpper(strings.TrimSpace(*req.LicenseNumber))
		if license == "" {
			errs = append(errs, FieldError{Field: "licenseNumber", Message: "License number is required for drivers"})
		} else {
			driver.LicenseNumber = license
		}
	}
	if req.IsActive != nil {
		driver.IsActive = *req.IsActive
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	if err := h.users.UpdateUser(r.Context(), id, *driver); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "User already exists with this email")
			return
		}
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			writeError(w, http.StatusNotFound, "Driver not found")
			return
		}
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"driver": driver})
}

// Delete removes a driver account.
func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.findDriver(r, id); err != nil {
		writeError(w, http.StatusNotFound, "Driver not found")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			writeError(w, http.StatusNotFound, "Driver not found")
			return
		}
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Driver deleted successfully"})
}

func (h *DriverHandler) findDriver(r *http.Request, id string) (*models.User, error) {
	user, err := h.users.FindUserByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleDriver {
		return nil, db.ErrNotFound
	}
	return user, nil
}
