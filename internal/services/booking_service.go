package services

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
)

var (
	// ErrTourNotFound is returned when the requested tour does not exist
	ErrTourNotFound = errors.New("tour not found")
	// ErrTourNotBookable is returned for unpublished or deactivated tours
	ErrTourNotBookable = errors.New("tour is not accepting bookings")
	// ErrPartySize is returned when the group size falls outside the tour limits
	ErrPartySize = errors.New("number of people is outside the tour limits")
	// ErrCouponRejected wraps the reason a coupon could not be applied
	ErrCouponRejected = errors.New("coupon cannot be applied")
	// ErrInvalidTransition is returned when a booking cannot make the requested move
	ErrInvalidTransition = errors.New("booking status does not allow this operation")
	// ErrInvalidBookingDate wraps a malformed or non-future booking date
	ErrInvalidBookingDate = errors.New("invalid booking date")
)

// BookingService orchestrates the booking lifecycle
type BookingService struct {
	db          database.DB
	bookingRepo *database.BookingRepository
	tourRepo    *database.TourRepository
	couponRepo  *database.CouponRepository
	taxRate     float64
	logger      *logrus.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(
	db database.DB,
	bookingRepo *database.BookingRepository,
	tourRepo *database.TourRepository,
	couponRepo *database.CouponRepository,
	taxRate float64,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		db:          db,
		bookingRepo: bookingRepo,
		tourRepo:    tourRepo,
		couponRepo:  couponRepo,
		taxRate:     taxRate,
		logger:      logger,
	}
}

// generateBookingNumber builds a customer-facing reference like BG-3F9A01B2C4D5
func generateBookingNumber() string {
	buf := make([]byte, 6)
	rand.Read(buf)
	return "BG-" + strings.ToUpper(hex.EncodeToString(buf))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Create prices and stores a new booking. When a coupon code is supplied the
// redemption, the booking insert and the tour counter update commit together,
// so an exhausted coupon can never end up attached to a stored booking.
func (s *BookingService) Create(user *models.User, req *models.CreateBookingRequest) (*models.Booking, error) {
	bookingDate, err := req.ParseBookingDate()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBookingDate, err.Error())
	}

	tour, err := s.tourRepo.GetByID(req.TourID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}

	if !tour.IsBookable() {
		return nil, ErrTourNotBookable
	}
	if !tour.AcceptsPartySize(req.NumberOfPeople) {
		return nil, fmt.Errorf("%w: between %d and %d people", ErrPartySize, tour.MinPeople, tour.MaxPeople)
	}

	pricePerPerson := tour.CurrentPrice()
	subtotal := round2(pricePerPerson * float64(req.NumberOfPeople))

	var coupon *models.Coupon
	discount := 0.0
	if req.CouponCode != nil && *req.CouponCode != "" {
		coupon, err = s.couponRepo.GetByCode(*req.CouponCode)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: coupon not found", ErrCouponRejected)
			}
			return nil, fmt.Errorf("failed to load coupon: %w", err)
		}

		calc, err := coupon.ApplyToAmount(subtotal, time.Now())
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCouponRejected, err.Error())
		}
		discount = calc.Discount
	}

	// tax applies to the undiscounted subtotal
	tax := round2(subtotal * s.taxRate)

	booking := &models.Booking{
		BookingNumber:       generateBookingNumber(),
		UserID:              user.ID,
		TourID:              tour.ID,
		AgencyID:            tour.AgencyID,
		BookingDate:         bookingDate,
		BookingTime:         req.BookingTime,
		NumberOfPeople:      req.NumberOfPeople,
		PricePerPerson:      pricePerPerson,
		Subtotal:            subtotal,
		Discount:            discount,
		Tax:                 tax,
		TotalPrice:          round2(subtotal - discount + tax),
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		SpecialRequirements: req.SpecialRequirements,
		Status:              models.BookingStatusPending,
	}
	if coupon != nil {
		booking.CouponID = &coupon.ID
	}

	err = database.WithTx(s.db, func(tx *sqlx.Tx) error {
		if coupon != nil {
			if err := s.couponRepo.Redeem(tx, coupon.ID); err != nil {
				if errors.Is(err, database.ErrCouponExhausted) {
					return fmt.Errorf("%w: %s", ErrCouponRejected, err.Error())
				}
				return err
			}
		}
		if err := s.bookingRepo.Create(tx, booking); err != nil {
			return err
		}
		return s.tourRepo.IncrementBookings(tx, tour.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"booking_number": booking.BookingNumber,
		"tour_id":        tour.ID,
		"total_price":    booking.TotalPrice,
	}).Info("Booking created")

	return booking, nil
}

// Cancel moves the booking to cancelled on behalf of the customer
func (s *BookingService) Cancel(booking *models.Booking, reason *string) error {
	previous := booking.Status
	if err := booking.Cancel(reason); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, err.Error())
	}

	return s.persistTransition(booking, previous)
}

// Confirm moves a pending booking to confirmed
func (s *BookingService) Confirm(booking *models.Booking) error {
	previous := booking.Status
	if err := booking.Confirm(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, err.Error())
	}

	return s.persistTransition(booking, previous)
}

// CheckIn moves a confirmed booking to in_progress on the tour day
func (s *BookingService) CheckIn(booking *models.Booking) error {
	previous := booking.Status
	if err := booking.CheckIn(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, err.Error())
	}

	return s.persistTransition(booking, previous)
}

// Complete moves a booking that is in progress to completed
func (s *BookingService) Complete(booking *models.Booking) error {
	previous := booking.Status
	if err := booking.Complete(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, err.Error())
	}

	return s.persistTransition(booking, previous)
}

func (s *BookingService) persistTransition(booking *models.Booking, previous models.BookingStatus) error {
	if err := s.bookingRepo.UpdateStatus(s.db, booking, previous); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"from":       previous,
		"to":         booking.Status,
	}).Info("Booking status changed")

	return nil
}
