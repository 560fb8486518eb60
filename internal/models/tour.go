package models

import (
	"errors"
	"time"
)

// TourDifficulty represents the physical difficulty of a tour
type TourDifficulty string

const (
	DifficultyEasy     TourDifficulty = "easy"
	DifficultyModerate TourDifficulty = "moderate"
	DifficultyHard     TourDifficulty = "hard"
)

// Tour represents a bookable tour published by an agency
type Tour struct {
	ID            string         `json:"id" db:"id"`
	AgencyID      string         `json:"agency_id" db:"agency_id"`
	CategoryID    string         `json:"category_id" db:"category_id"`
	Title         string         `json:"title" db:"title"`
	Slug          string         `json:"slug" db:"slug"`
	Description   string         `json:"description" db:"description"`
	Itinerary     *string        `json:"itinerary,omitempty" db:"itinerary"`
	Includes      *string        `json:"includes,omitempty" db:"includes"`
	Excludes      *string        `json:"excludes,omitempty" db:"excludes"`
	Requirements  *string        `json:"requirements,omitempty" db:"requirements"`
	Price         float64        `json:"price" db:"price"`
	DiscountPrice *float64       `json:"discount_price,omitempty" db:"discount_price"`
	DurationDays  int            `json:"duration_days" db:"duration_days"`
	DurationHours *int           `json:"duration_hours,omitempty" db:"duration_hours"`
	MaxPeople     int            `json:"max_people" db:"max_people"`
	MinPeople     int            `json:"min_people" db:"min_people"`
	Difficulty    TourDifficulty `json:"difficulty" db:"difficulty"`
	City          string         `json:"city" db:"city"`
	Region        *string        `json:"region,omitempty" db:"region"`
	Country       string         `json:"country" db:"country"`
	Latitude      *float64       `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64       `json:"longitude,omitempty" db:"longitude"`
	FeaturedImage *string        `json:"featured_image,omitempty" db:"featured_image"`
	Rating        float64        `json:"rating" db:"rating"`
	TotalReviews  int            `json:"total_reviews" db:"total_reviews"`
	TotalBookings int            `json:"total_bookings" db:"total_bookings"`
	IsFeatured    bool           `json:"is_featured" db:"is_featured"`
	IsActive      bool           `json:"is_active" db:"is_active"`
	IsPublished   bool           `json:"is_published" db:"is_published"`
	PublishedAt   *time.Time     `json:"published_at,omitempty" db:"published_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time     `json:"-" db:"deleted_at"`
}

// TourFilter carries the catalog listing filters
type TourFilter struct {
	Search     string
	Location   string
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	MinRating  *float64
	Duration   string // short, medium, day, multi
	Difficulty string
	SortBy     string // price_asc, price_desc, rating, popular, created_at
	Page       int
	PerPage    int
}

// CreateTourRequest represents the request to create a tour
type CreateTourRequest struct {
	CategoryID    string   `json:"category_id" binding:"required"`
	Title         string   `json:"title" binding:"required,min=5,max=200"`
	Description   string   `json:"description" binding:"required,min=20"`
	Itinerary     *string  `json:"itinerary,omitempty"`
	Includes      *string  `json:"includes,omitempty"`
	Excludes      *string  `json:"excludes,omitempty"`
	Requirements  *string  `json:"requirements,omitempty"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	DurationDays  int      `json:"duration_days" binding:"required,min=1"`
	DurationHours *int     `json:"duration_hours,omitempty"`
	MaxPeople     int      `json:"max_people" binding:"required,min=1"`
	MinPeople     int      `json:"min_people" binding:"required,min=1"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=easy moderate hard"`
	City          string   `json:"city" binding:"required"`
	Region        *string  `json:"region,omitempty"`
	Country       string   `json:"country" binding:"required"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	FeaturedImage *string  `json:"featured_image,omitempty"`
}

// UpdateTourRequest represents the request to update a tour
type UpdateTourRequest struct {
	CategoryID    *string  `json:"category_id,omitempty"`
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Itinerary     *string  `json:"itinerary,omitempty"`
	Includes      *string  `json:"includes,omitempty"`
	Excludes      *string  `json:"excludes,omitempty"`
	Requirements  *string  `json:"requirements,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	DurationDays  *int     `json:"duration_days,omitempty"`
	DurationHours *int     `json:"duration_hours,omitempty"`
	MaxPeople     *int     `json:"max_people,omitempty"`
	MinPeople     *int     `json:"min_people,omitempty"`
	Difficulty    *string  `json:"difficulty,omitempty"`
	City          *string  `json:"city,omitempty"`
	Region        *string  `json:"region,omitempty"`
	Country       *string  `json:"country,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	FeaturedImage *string  `json:"featured_image,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// Validate validates the create tour request
func (r *CreateTourRequest) Validate() error {
	if r.DiscountPrice != nil && *r.DiscountPrice >= r.Price {
		return errors.New("discount_price must be lower than price")
	}

	if r.MaxPeople < r.MinPeople {
		return errors.New("max_people must be greater than or equal to min_people")
	}

	return nil
}

// CurrentPrice returns the effective price per person
func (t *Tour) CurrentPrice() float64 {
	if t.DiscountPrice != nil && *t.DiscountPrice > 0 && *t.DiscountPrice < t.Price {
		return *t.DiscountPrice
	}
	return t.Price
}

// HasDiscount checks if the tour has an active discount
func (t *Tour) HasDiscount() bool {
	return t.DiscountPrice != nil && *t.DiscountPrice > 0 && *t.DiscountPrice < t.Price
}

// IsBookable checks if the tour accepts new bookings
func (t *Tour) IsBookable() bool {
	return t.IsActive && t.IsPublished && t.DeletedAt == nil
}

// AcceptsPartySize checks if a group of the given size fits the tour limits
func (t *Tour) AcceptsPartySize(people int) bool {
	return people >= t.MinPeople && people <= t.MaxPeople
}
