package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
	"github.com/bookandgo/booking-backend/pkg/mail"
)

var (
	// ErrAlreadyPaid is returned when the booking already has a completed payment
	ErrAlreadyPaid = errors.New("booking already has a completed payment")
	// ErrPaymentNotRefundable is returned when the payment is not in a refundable state
	ErrPaymentNotRefundable = errors.New("payment cannot be refunded")
)

// PaymentService runs the simulated payment gateway. Payments are approved
// immediately and the booking is confirmed in the same transaction.
type PaymentService struct {
	db          database.DB
	paymentRepo *database.PaymentRepository
	bookingRepo *database.BookingRepository
	currency    string
	mailer      mail.Sender
	logger      *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	db database.DB,
	paymentRepo *database.PaymentRepository,
	bookingRepo *database.BookingRepository,
	currency string,
	mailer mail.Sender,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		db:          db,
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		currency:    currency,
		mailer:      mailer,
		logger:      logger,
	}
}

// generateTransactionID builds a gateway-style reference like TXN-8C01F2A3B4D5
func generateTransactionID() string {
	buf := make([]byte, 6)
	rand.Read(buf)
	return "TXN-" + strings.ToUpper(hex.EncodeToString(buf))
}

// Create charges the booking through the simulated gateway. The completed
// payment and the pending-to-confirmed booking transition commit together.
func (s *PaymentService) Create(user *models.User, booking *models.Booking, method models.PaymentMethod) (*models.Payment, error) {
	if !booking.CanBeConfirmed() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}

	paid, err := s.paymentRepo.HasCompletedPayment(booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing payments: %w", err)
	}
	if paid {
		return nil, ErrAlreadyPaid
	}

	now := time.Now()
	payment := &models.Payment{
		BookingID:     booking.ID,
		UserID:        user.ID,
		TransactionID: generateTransactionID(),
		PaymentMethod: method,
		Amount:        booking.TotalPrice,
		Currency:      s.currency,
		Status:        models.PaymentStatusCompleted,
		PaidAt:        &now,
	}

	previous := booking.Status
	if err := booking.Confirm(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, err.Error())
	}

	err = database.WithTx(s.db, func(tx *sqlx.Tx) error {
		if err := s.paymentRepo.Create(tx, payment); err != nil {
			return err
		}
		// paid_at is not part of the insert, persist it separately
		if err := s.paymentRepo.UpdateStatus(tx, payment); err != nil {
			return err
		}
		return s.bookingRepo.UpdateStatus(tx, booking, previous)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"transaction_id": payment.TransactionID,
		"booking_id":     booking.ID,
		"amount":         payment.Amount,
	}).Info("Payment completed")

	s.sendConfirmation(booking, payment)

	return payment, nil
}

// Confirm finalizes a payment. Completed payments are returned as-is so the
// endpoint stays idempotent; pending or processing ones are run through the
// simulated approval.
func (s *PaymentService) Confirm(payment *models.Payment, booking *models.Booking) (*models.Payment, error) {
	if payment.IsCompleted() {
		return payment, nil
	}

	if payment.Status != models.PaymentStatusPending && payment.Status != models.PaymentStatusProcessing {
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidTransition, payment.Status)
	}

	now := time.Now()
	payment.Status = models.PaymentStatusCompleted
	payment.PaidAt = &now

	err := database.WithTx(s.db, func(tx *sqlx.Tx) error {
		if err := s.paymentRepo.UpdateStatus(tx, payment); err != nil {
			return err
		}
		if booking.CanBeConfirmed() {
			previous := booking.Status
			if err := booking.Confirm(); err != nil {
				return err
			}
			return s.bookingRepo.UpdateStatus(tx, booking, previous)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(booking, payment)

	return payment, nil
}

// Refund reverses a completed payment and moves the booking to refunded
func (s *PaymentService) Refund(payment *models.Payment, booking *models.Booking) error {
	if !payment.IsCompleted() {
		return ErrPaymentNotRefundable
	}

	previous := booking.Status
	if err := booking.Refund(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, err.Error())
	}

	now := time.Now()
	payment.Status = models.PaymentStatusRefunded
	payment.RefundedAt = &now

	err := database.WithTx(s.db, func(tx *sqlx.Tx) error {
		if err := s.paymentRepo.UpdateStatus(tx, payment); err != nil {
			return err
		}
		return s.bookingRepo.UpdateStatus(tx, booking, previous)
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"booking_id": booking.ID,
		"amount":     payment.Amount,
	}).Info("Payment refunded")

	return nil
}

func (s *PaymentService) sendConfirmation(booking *models.Booking, payment *models.Payment) {
	msg := mail.Message{
		To:      booking.CustomerEmail,
		Subject: fmt.Sprintf("Booking %s confirmed", booking.BookingNumber),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour booking %s is confirmed. We received your payment of %s %.2f (transaction %s).\n\nSee you soon,\nBookAndGo",
			booking.CustomerName, booking.BookingNumber, payment.Currency, payment.Amount, payment.TransactionID,
		),
	}

	if err := s.mailer.Send(msg); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send confirmation email")
	}
}
