package models

import (
	"errors"
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusRefunded   BookingStatus = "refunded"
)

// Booking represents a reservation of a tour by a customer
type Booking struct {
	ID                  string        `json:"id" db:"id"`
	BookingNumber       string        `json:"booking_number" db:"booking_number"`
	UserID              string        `json:"user_id" db:"user_id"`
	TourID              string        `json:"tour_id" db:"tour_id"`
	AgencyID            string        `json:"agency_id" db:"agency_id"`
	CouponID            *string       `json:"coupon_id,omitempty" db:"coupon_id"`
	BookingDate         time.Time     `json:"booking_date" db:"booking_date"`
	BookingTime         *string       `json:"booking_time,omitempty" db:"booking_time"`
	NumberOfPeople      int           `json:"number_of_people" db:"number_of_people"`
	PricePerPerson      float64       `json:"price_per_person" db:"price_per_person"`
	Subtotal            float64       `json:"subtotal" db:"subtotal"`
	Discount            float64       `json:"discount" db:"discount"`
	Tax                 float64       `json:"tax" db:"tax"`
	TotalPrice          float64       `json:"total_price" db:"total_price"`
	CustomerName        string        `json:"customer_name" db:"customer_name"`
	CustomerEmail       string        `json:"customer_email" db:"customer_email"`
	CustomerPhone       *string       `json:"customer_phone,omitempty" db:"customer_phone"`
	SpecialRequirements *string       `json:"special_requirements,omitempty" db:"special_requirements"`
	Status              BookingStatus `json:"status" db:"status"`
	ConfirmedAt         *time.Time    `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CheckedInAt         *time.Time    `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CompletedAt         *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt         *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancellationReason  *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	TourID              string  `json:"tour_id" binding:"required"`
	BookingDate         string  `json:"booking_date" binding:"required"` // YYYY-MM-DD
	BookingTime         *string `json:"booking_time,omitempty"`
	NumberOfPeople      int     `json:"number_of_people" binding:"required,min=1"`
	CouponCode          *string `json:"coupon_code,omitempty"`
	CustomerName        string  `json:"customer_name" binding:"required"`
	CustomerEmail       string  `json:"customer_email" binding:"required,email"`
	CustomerPhone       *string `json:"customer_phone,omitempty"`
	SpecialRequirements *string `json:"special_requirements,omitempty"`
}

// CancelBookingRequest represents the request to cancel a booking
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// BookingFilter carries booking listing filters
type BookingFilter struct {
	Status   string
	Upcoming bool
	Past     bool
	Page     int
	PerPage  int
}

// ParseBookingDate parses and validates the booking date
func (r *CreateBookingRequest) ParseBookingDate() (time.Time, error) {
	date, err := time.Parse("2006-01-02", r.BookingDate)
	if err != nil {
		return time.Time{}, errors.New("booking_date must be in YYYY-MM-DD format")
	}

	today := time.Now().Truncate(24 * time.Hour)
	if !date.After(today) {
		return time.Time{}, errors.New("booking_date must be in the future")
	}

	return date, nil
}

// IsTerminal checks if the booking is in a state that admits no further transitions
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefunded:
		return true
	}
	return false
}

// CanBeCancelled checks if the booking can still be cancelled by the customer.
// Bookings whose date has already passed cannot be cancelled even while pending.
func (b *Booking) CanBeCancelled() bool {
	if b.Status != BookingStatusPending && b.Status != BookingStatusConfirmed {
		return false
	}
	return b.BookingDate.After(time.Now())
}

// CanBeConfirmed checks if the booking can move to confirmed
func (b *Booking) CanBeConfirmed() bool {
	return b.Status == BookingStatusPending
}

// CanCheckIn checks if the booking can move to in_progress
func (b *Booking) CanCheckIn() bool {
	return b.Status == BookingStatusConfirmed
}

// CanBeCompleted checks if the booking can move to completed
func (b *Booking) CanBeCompleted() bool {
	return b.Status == BookingStatusInProgress
}

// CanBeRefunded checks if the booking can move to refunded
func (b *Booking) CanBeRefunded() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusInProgress
}

// Cancel cancels the booking
func (b *Booking) Cancel(reason *string) error {
	if !b.CanBeCancelled() {
		return errors.New("booking cannot be cancelled in its current state")
	}

	now := time.Now()
	b.Status = BookingStatusCancelled
	b.CancelledAt = &now
	b.CancellationReason = reason
	b.UpdatedAt = now

	return nil
}

// Confirm moves the booking to confirmed
func (b *Booking) Confirm() error {
	if !b.CanBeConfirmed() {
		return errors.New("booking cannot be confirmed in its current state")
	}

	now := time.Now()
	b.Status = BookingStatusConfirmed
	b.ConfirmedAt = &now
	b.UpdatedAt = now

	return nil
}

// CheckIn moves the booking to in_progress
func (b *Booking) CheckIn() error {
	if !b.CanCheckIn() {
		return errors.New("booking cannot be checked in, it must be confirmed first")
	}

	now := time.Now()
	b.Status = BookingStatusInProgress
	b.CheckedInAt = &now
	b.UpdatedAt = now

	return nil
}

// Complete moves the booking to completed
func (b *Booking) Complete() error {
	if !b.CanBeCompleted() {
		return errors.New("booking cannot be completed, it must be in progress first")
	}

	now := time.Now()
	b.Status = BookingStatusCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now

	return nil
}

// Refund moves the booking to refunded
func (b *Booking) Refund() error {
	if !b.CanBeRefunded() {
		return errors.New("booking cannot be refunded in its current state")
	}

	b.Status = BookingStatusRefunded
	b.UpdatedAt = time.Now()

	return nil
}

// IsUpcoming checks if the booking date is in the future
func (b *Booking) IsUpcoming() bool {
	return b.BookingDate.After(time.Now())
}
