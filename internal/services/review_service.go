package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
)

// ErrBookingMismatch is returned when the referenced booking does not belong
// to the reviewer or covers a different tour
var ErrBookingMismatch = errors.New("booking does not match the reviewer and tour")

// ReviewService stores reviews and keeps the rating aggregates in sync
type ReviewService struct {
	db          database.DB
	reviewRepo  *database.ReviewRepository
	tourRepo    *database.TourRepository
	agencyRepo  *database.AgencyRepository
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewReviewService creates a new review service
func NewReviewService(
	db database.DB,
	reviewRepo *database.ReviewRepository,
	tourRepo *database.TourRepository,
	agencyRepo *database.AgencyRepository,
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
) *ReviewService {
	return &ReviewService{
		db:          db,
		reviewRepo:  reviewRepo,
		tourRepo:    tourRepo,
		agencyRepo:  agencyRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Submit stores the user's review of a tour. A user holds at most one review
// per tour: resubmitting overwrites the previous one, and a review the user
// had deleted earlier is revived instead of duplicated. The review write and
// both rating aggregates commit together.
func (s *ReviewService) Submit(user *models.User, req *models.CreateReviewRequest) (*models.Review, bool, error) {
	tour, err := s.tourRepo.GetByID(req.TourID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrTourNotFound
		}
		return nil, false, fmt.Errorf("failed to load tour: %w", err)
	}

	if req.BookingID != nil {
		booking, err := s.bookingRepo.GetByID(*req.BookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, false, ErrBookingMismatch
			}
			return nil, false, fmt.Errorf("failed to load booking: %w", err)
		}
		if booking.UserID != user.ID || booking.TourID != tour.ID {
			return nil, false, ErrBookingMismatch
		}
	}

	verified, err := s.bookingRepo.HasCompletedBookingForTour(user.ID, tour.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check booking history: %w", err)
	}

	existing, err := s.reviewRepo.GetByUserAndTour(user.ID, tour.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to load existing review: %w", err)
	}

	var review *models.Review
	created := existing == nil

	if existing != nil {
		existing.Rating = req.Rating
		existing.Title = req.Title
		existing.Comment = req.Comment
		existing.ServiceRating = req.ServiceRating
		existing.ValueRating = req.ValueRating
		existing.GuideRating = req.GuideRating
		existing.BookingID = req.BookingID
		existing.IsVerified = verified
		review = existing
	} else {
		review = &models.Review{
			UserID:        user.ID,
			TourID:        tour.ID,
			BookingID:     req.BookingID,
			AgencyID:      tour.AgencyID,
			Rating:        req.Rating,
			Title:         req.Title,
			Comment:       req.Comment,
			ServiceRating: req.ServiceRating,
			ValueRating:   req.ValueRating,
			GuideRating:   req.GuideRating,
			IsVerified:    verified,
			IsApproved:    true,
		}
	}

	err = database.WithTx(s.db, func(tx *sqlx.Tx) error {
		if created {
			if err := s.reviewRepo.Create(tx, review); err != nil {
				return err
			}
		} else {
			if err := s.reviewRepo.Restore(tx, review); err != nil {
				return err
			}
		}
		if err := s.tourRepo.RecalculateRating(tx, tour.ID); err != nil {
			return err
		}
		return s.agencyRepo.RecalculateRating(tx, tour.AgencyID)
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.WithFields(logrus.Fields{
		"review_id": review.ID,
		"tour_id":   tour.ID,
		"rating":    review.Rating,
		"created":   created,
	}).Info("Review stored")

	return review, created, nil
}
