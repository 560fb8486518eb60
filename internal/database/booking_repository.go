package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, booking_number, user_id, tour_id, agency_id, coupon_id,
	booking_date, booking_time, number_of_people, price_per_person, subtotal,
	discount, tax, total_price, customer_name, customer_email, customer_phone,
	special_requirements, status, confirmed_at, checked_in_at, completed_at,
	cancelled_at, cancellation_reason, created_at, updated_at`

// Create inserts a new booking inside the given transaction
func (r *BookingRepository) Create(run Runner, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, booking_number, user_id, tour_id, agency_id, coupon_id,
			booking_date, booking_time, number_of_people, price_per_person,
			subtotal, discount, tax, total_price, customer_name, customer_email,
			customer_phone, special_requirements, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := run.QueryRow(
		query,
		booking.ID, booking.BookingNumber, booking.UserID, booking.TourID,
		booking.AgencyID, booking.CouponID, booking.BookingDate, booking.BookingTime,
		booking.NumberOfPeople, booking.PricePerPerson, booking.Subtotal,
		booking.Discount, booking.Tax, booking.TotalPrice, booking.CustomerName,
		booking.CustomerEmail, booking.CustomerPhone, booking.SpecialRequirements,
		booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking models.Booking
	if err := r.db.Get(&booking, query, bookingID); err != nil {
		return nil, err
	}

	return &booking, nil
}

// GetByNumber retrieves a booking by its booking number
func (r *BookingRepository) GetByNumber(number string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_number = $1`

	var booking models.Booking
	if err := r.db.Get(&booking, query, number); err != nil {
		return nil, err
	}

	return &booking, nil
}

func bookingFilterClauses(filter models.BookingFilter, args *[]interface{}) []string {
	where := []string{}

	if filter.Status != "" {
		*args = append(*args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(*args)))
	}
	if filter.Upcoming {
		where = append(where, "booking_date > NOW()")
	}
	if filter.Past {
		where = append(where, "booking_date <= NOW()")
	}

	return where
}

// ListByUser retrieves a customer's bookings matching the filter, newest first
func (r *BookingRepository) ListByUser(userID string, filter models.BookingFilter) ([]models.Booking, int, error) {
	args := []interface{}{userID}
	where := append([]string{"user_id = $1"}, bookingFilterClauses(filter, &args)...)
	whereClause := strings.Join(where, " AND ")

	return r.list(whereClause, args, filter)
}

// ListByAgency retrieves an agency's bookings matching the filter, newest first
func (r *BookingRepository) ListByAgency(agencyID string, filter models.BookingFilter) ([]models.Booking, int, error) {
	args := []interface{}{agencyID}
	where := append([]string{"agency_id = $1"}, bookingFilterClauses(filter, &args)...)
	whereClause := strings.Join(where, " AND ")

	return r.list(whereClause, args, filter)
}

func (r *BookingRepository) list(whereClause string, args []interface{}, filter models.BookingFilter) ([]models.Booking, int, error) {
	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM bookings WHERE "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	query := fmt.Sprintf(
		"SELECT %s FROM bookings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		bookingColumns, whereClause, len(args)-1, len(args),
	)

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListRecentByAgency retrieves the agency's latest bookings
func (r *BookingRepository) ListRecentByAgency(agencyID string, limit int) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE agency_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query, agencyID, limit); err != nil {
		return nil, err
	}

	return bookings, nil
}

// UpdateStatus persists a status transition together with its timestamps.
// The previous status guards the update so concurrent transitions cannot
// move a booking out of a terminal state.
func (r *BookingRepository) UpdateStatus(run Runner, booking *models.Booking, previous models.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $2, confirmed_at = $3, checked_in_at = $4, completed_at = $5,
			cancelled_at = $6, cancellation_reason = $7, updated_at = NOW()
		WHERE id = $1 AND status = $8
		RETURNING updated_at
	`

	err := run.QueryRow(
		query,
		booking.ID, booking.Status, booking.ConfirmedAt, booking.CheckedInAt,
		booking.CompletedAt, booking.CancelledAt, booking.CancellationReason,
		previous,
	).Scan(&booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	return nil
}

// OwnerAndAgencyUser returns the booking's customer and the user account
// behind the operating agency, used for conversation participant checks
func (r *BookingRepository) OwnerAndAgencyUser(bookingID string) (ownerID, agencyUserID string, err error) {
	query := `
		SELECT b.user_id, a.user_id
		FROM bookings b
		JOIN agencies a ON a.id = b.agency_id
		WHERE b.id = $1
	`

	err = r.db.QueryRow(query, bookingID).Scan(&ownerID, &agencyUserID)
	return ownerID, agencyUserID, err
}

// HasCompletedBookingForTour checks if the user finished a booking of the tour
func (r *BookingRepository) HasCompletedBookingForTour(userID, tourID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND tour_id = $2 AND status = 'completed'
		)
	`

	var exists bool
	if err := r.db.Get(&exists, query, userID, tourID); err != nil {
		return false, err
	}

	return exists, nil
}
