package models

import "time"

// Agency represents a tour operator profile linked to an agency user
type Agency struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	BusinessName string     `json:"business_name" db:"business_name"`
	RucTaxID     string     `json:"ruc_tax_id" db:"ruc_tax_id"`
	Description  *string    `json:"description,omitempty" db:"description"`
	Logo         *string    `json:"logo,omitempty" db:"logo"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	Website      *string    `json:"website,omitempty" db:"website"`
	Address      *string    `json:"address,omitempty" db:"address"`
	City         *string    `json:"city,omitempty" db:"city"`
	Country      *string    `json:"country,omitempty" db:"country"`
	Rating       float64    `json:"rating" db:"rating"`
	TotalReviews int        `json:"total_reviews" db:"total_reviews"`
	IsVerified   bool       `json:"is_verified" db:"is_verified"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// UpdateAgencyProfileRequest represents the request to update an agency profile
type UpdateAgencyProfileRequest struct {
	BusinessName *string `json:"business_name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Logo         *string `json:"logo,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Website      *string `json:"website,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	Country      *string `json:"country,omitempty"`
}

// AgencyStatistics aggregates an agency's operational numbers
type AgencyStatistics struct {
	TotalTours     int     `json:"total_tours" db:"total_tours"`
	ActiveBookings int     `json:"active_bookings" db:"active_bookings"`
	TotalRevenue   float64 `json:"total_revenue" db:"total_revenue"`
	TotalReviews   int     `json:"total_reviews" db:"total_reviews"`
}
