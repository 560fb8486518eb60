package models

import "time"

// Review represents a customer review of a tour
type Review struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	TourID        string     `json:"tour_id" db:"tour_id"`
	BookingID     *string    `json:"booking_id,omitempty" db:"booking_id"`
	AgencyID      string     `json:"agency_id" db:"agency_id"`
	Rating        int        `json:"rating" db:"rating"`
	Title         *string    `json:"title,omitempty" db:"title"`
	Comment       string     `json:"comment" db:"comment"`
	ServiceRating *int       `json:"service_rating,omitempty" db:"service_rating"`
	ValueRating   *int       `json:"value_rating,omitempty" db:"value_rating"`
	GuideRating   *int       `json:"guide_rating,omitempty" db:"guide_rating"`
	IsVerified    bool       `json:"is_verified" db:"is_verified"`
	IsApproved    bool       `json:"is_approved" db:"is_approved"`
	HelpfulCount  int        `json:"helpful_count" db:"helpful_count"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"-" db:"deleted_at"`
}

// CreateReviewRequest represents the request to store a review.
// Submitting a second review for the same tour updates the existing one.
type CreateReviewRequest struct {
	TourID        string  `json:"tour_id" binding:"required"`
	BookingID     *string `json:"booking_id,omitempty"`
	Rating        int     `json:"rating" binding:"required,min=1,max=5"`
	Title         *string `json:"title,omitempty"`
	Comment       string  `json:"comment" binding:"required,min=10"`
	ServiceRating *int    `json:"service_rating,omitempty" binding:"omitempty,min=1,max=5"`
	ValueRating   *int    `json:"value_rating,omitempty" binding:"omitempty,min=1,max=5"`
	GuideRating   *int    `json:"guide_rating,omitempty" binding:"omitempty,min=1,max=5"`
}

// ReviewFilter carries the public review listing filters
type ReviewFilter struct {
	TourID  string
	UserID  string
	Rating  *int
	Page    int
	PerPage int
}
