package models

import "time"

// Favorite represents a tour saved by a customer
type Favorite struct {
	UserID    string    `json:"user_id" db:"user_id"`
	TourID    string    `json:"tour_id" db:"tour_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
