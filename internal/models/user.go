package models

import (
	"errors"
	"strings"
	"time"
)

// UserRole represents the role of a user account
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAgency   UserRole = "agency"
	RoleAdmin    UserRole = "admin"
)

// User represents a marketplace account
type User struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Email          string     `json:"email" db:"email"`
	Password       string     `json:"-" db:"password"`
	Role           UserRole   `json:"role" db:"role"`
	Phone          *string    `json:"phone,omitempty" db:"phone"`
	Avatar         *string    `json:"avatar,omitempty" db:"avatar"`
	Bio            *string    `json:"bio,omitempty" db:"bio"`
	Country        *string    `json:"country,omitempty" db:"country"`
	City           *string    `json:"city,omitempty" db:"city"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty" db:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time `json:"-" db:"deleted_at"`
}

// RegisterRequest represents the request to register an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=customer agency"`
	Phone    string `json:"phone,omitempty"`

	// Agency-only fields
	BusinessName string `json:"business_name,omitempty"`
	RucTaxID     string `json:"ruc_tax_id,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to rotate an access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents the request to update a user profile
type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Avatar  *string `json:"avatar,omitempty"`
	Bio     *string `json:"bio,omitempty"`
	Country *string `json:"country,omitempty"`
	City    *string `json:"city,omitempty"`
}

// Validate validates the register request
func (r *RegisterRequest) Validate() error {
	if UserRole(r.Role) == RoleAgency {
		if strings.TrimSpace(r.BusinessName) == "" {
			return errors.New("business_name is required for agency accounts")
		}
		if len(strings.TrimSpace(r.RucTaxID)) != 11 {
			return errors.New("ruc_tax_id must be 11 characters")
		}
		if strings.TrimSpace(r.Address) == "" {
			return errors.New("address is required for agency accounts")
		}
		if strings.TrimSpace(r.City) == "" {
			return errors.New("city is required for agency accounts")
		}
	}

	return nil
}

// IsCustomer checks if the user has the customer role
func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

// IsAgency checks if the user has the agency role
func (u *User) IsAgency() bool {
	return u.Role == RoleAgency
}

// IsAdmin checks if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
