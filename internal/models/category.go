package models

import "time"

// Category represents a tour category
type Category struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Slug       string    `json:"slug" db:"slug"`
	Icon       *string   `json:"icon,omitempty" db:"icon"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	ToursCount int       `json:"tours_count" db:"tours_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
