package models

import "time"

// PaymentStatus represents the status of a payment attempt
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// PaymentMethod represents the customer-selected payment channel
type PaymentMethod string

const (
	PaymentMethodCard        PaymentMethod = "card"
	PaymentMethodPaypal      PaymentMethod = "paypal"
	PaymentMethodTransfer    PaymentMethod = "transfer"
	PaymentMethodYape        PaymentMethod = "yape"
	PaymentMethodPlin        PaymentMethod = "plin"
	PaymentMethodMercadoPago PaymentMethod = "mercadopago"
)

// Payment represents a payment attempt against a booking
type Payment struct {
	ID            string        `json:"id" db:"id"`
	BookingID     string        `json:"booking_id" db:"booking_id"`
	UserID        string        `json:"user_id" db:"user_id"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	Amount        float64       `json:"amount" db:"amount"`
	Currency      string        `json:"currency" db:"currency"`
	Status        PaymentStatus `json:"status" db:"status"`
	PaidAt        *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	RefundedAt    *time.Time    `json:"refunded_at,omitempty" db:"refunded_at"`
	ErrorMessage  *string       `json:"error_message,omitempty" db:"error_message"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// CreatePaymentRequest represents the request to pay for a booking
type CreatePaymentRequest struct {
	BookingID     string `json:"booking_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=card paypal transfer yape plin mercadopago"`
}

// IsCompleted checks if the payment went through
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// IsRefunded checks if the payment was refunded
func (p *Payment) IsRefunded() bool {
	return p.Status == PaymentStatusRefunded
}
