package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleDriver  Role = "driver"
)

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleDriver:
		return true
	default:
		return false
	}
}

// CanReview reports whether the role may resolve incidents and access
// fleet-wide reports.
func (r Role) CanReview() bool {
	return r == RoleAdmin || r == RoleManager
}

// Address is an optional postal address attached to a user.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zip_code,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// EmergencyContact is an optional contact attached to a user.
type EmergencyContact struct {
	Name         string `bson:"name,omitempty" json:"name,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	Relationship string `bson:"relationship,omitempty" json:"relationship,omitempty"`
}

// User represents a user in the system. Emails are stored lowercase and
// license numbers uppercase; the password hash never serializes to JSON.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	PasswordHash     string             `bson:"password_hash" json:"-"`
	Role             Role               `bson:"role" json:"role"`
	Phone            string             `bson:"phone" json:"phone"`
	LicenseNumber    string             `bson:"license_number,omitempty" json:"licenseNumber,omitempty"`
	IsActive         bool               `bson:"is_active" json:"isActive"`
	LastLogin        *time.Time         `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	Address          *Address           `bson:"address,omitempty" json:"address,omitempty"`
	EmergencyContact *EmergencyContact  `bson:"emergency_contact,omitempty" json:"emergencyContact,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}

// UserRef is a read-time summary of a referenced user. Incidents and
// vehicles hold non-owning ids; this is what a join resolves them to.
type UserRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	ID    primitive.ObjectID
	Role  Role
	Name  string
	Email string
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          Role   `json:"role"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"licenseNumber"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents a successful register or login response
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}
