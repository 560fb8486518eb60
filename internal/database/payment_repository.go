package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// PaymentRepository handles database operations for the payments table
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, user_id, transaction_id, payment_method,
	amount, currency, status, paid_at, refunded_at, error_message, created_at, updated_at`

// Create inserts a new payment inside the given transaction
func (r *PaymentRepository) Create(run Runner, payment *models.Payment) error {
	query := `
		INSERT INTO payments (
			id, booking_id, user_id, transaction_id, payment_method,
			amount, currency, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	err := run.QueryRow(
		query,
		payment.ID, payment.BookingID, payment.UserID, payment.TransactionID,
		payment.PaymentMethod, payment.Amount, payment.Currency, payment.Status,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(paymentID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var payment models.Payment
	if err := r.db.Get(&payment, query, paymentID); err != nil {
		return nil, err
	}

	return &payment, nil
}

// ListByBooking retrieves a booking's payments, newest first
func (r *PaymentRepository) ListByBooking(bookingID string) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC`

	payments := []models.Payment{}
	if err := r.db.Select(&payments, query, bookingID); err != nil {
		return nil, err
	}

	return payments, nil
}

// HasCompletedPayment checks if the booking already has a completed payment
func (r *PaymentRepository) HasCompletedPayment(bookingID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id = $1 AND status = 'completed')`

	var exists bool
	if err := r.db.Get(&exists, query, bookingID); err != nil {
		return false, err
	}

	return exists, nil
}

// UpdateStatus persists a payment status change inside the given transaction
func (r *PaymentRepository) UpdateStatus(run Runner, payment *models.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, paid_at = $3, refunded_at = $4, error_message = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := run.QueryRow(
		query,
		payment.ID, payment.Status, payment.PaidAt, payment.RefundedAt, payment.ErrorMessage,
	).Scan(&payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return nil
}
