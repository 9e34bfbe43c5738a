package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fleetops/driver-safety/internal/auth"
	"github.com/fleetops/driver-safety/internal/db"
	"github.com/fleetops/driver-safety/internal/middleware"
	"github.com/fleetops/driver-safety/internal/models"
	log "github.com/sirupsen/logrus"
)

// AuthHandler handles registration, login and profile reads.
type AuthHandler struct {
	authService *auth.Service
	users       db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, users db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.LicenseNumber = strings.ToUpper(strings.TrimSpace(req.LicenseNumber))
	if req.Role == "" {
		req.Role = models.RoleDriver
	}

	var errs []FieldError
	if req.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	} else if len(req.Name) > 50 {
		errs = append(errs, FieldError{Field: "name", Message: "Name cannot be more than 50 characters"})
	}
	if !validEmail(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if strings.TrimSpace(req.Phone) == "" {
		errs = append(errs, FieldError{Field: "phone", Message: "Phone number is required"})
	}
	if !models.IsValidRole(req.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "Invalid role"})
	}
	if req.Role == models.RoleDriver && req.LicenseNumber == "" {
		errs = append(errs, FieldError{Field: "licenseNumber", Message: "License number is required for drivers"})
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	// Pre-check for a friendlier message; the unique index still backs this up.
	if _, err := h.users.FindUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "User already exists with this email")
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	user, err := h.users.InsertUser(r.Context(), models.User{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  passwordHash,
		Role:          req.Role,
		Phone:         strings.TrimSpace(req.Phone),
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "User already exists with this email")
			return
		}
		writeServerError(w, r, err)
		return
	}

	token, err := h.authService.GenerateToken(user.ID.Hex())
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    *user,
	})
}

// Login handles user login. Unknown email and wrong password produce the
// same message so callers cannot enumerate accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Email = normalizeEmail(req.Email)

	var errs []FieldError
	if !validEmail(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.users.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsActive {
		writeError(w, http.StatusUnauthorized, "Account is deactivated. Please contact administrator.")
		return
	}

	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.users.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		// Login still succeeds; the timestamp is advisory.
		log.WithError(err).Warn("failed to update last login")
	}

	token, err := h.authService.GenerateToken(user.ID.Hex())
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    *user,
	})
}

// Me returns the current user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	user, err := h.users.FindUserByID(r.Context(), identity.ID.Hex())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
