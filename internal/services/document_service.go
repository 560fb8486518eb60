package services

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
	"github.com/bookandgo/booking-backend/pkg/pdf"
	"github.com/bookandgo/booking-backend/pkg/storage"
)

// DocumentService renders booking PDFs and keeps them in blob storage
type DocumentService struct {
	docRepo    *database.DocumentRepository
	tourRepo   *database.TourRepository
	agencyRepo *database.AgencyRepository
	renderer   *pdf.Renderer
	store      storage.Storage
	currency   string
	logger     *logrus.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo *database.DocumentRepository,
	tourRepo *database.TourRepository,
	agencyRepo *database.AgencyRepository,
	renderer *pdf.Renderer,
	store storage.Storage,
	currency string,
	logger *logrus.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:    docRepo,
		tourRepo:   tourRepo,
		agencyRepo: agencyRepo,
		renderer:   renderer,
		store:      store,
		currency:   currency,
		logger:     logger,
	}
}

// GenerateVoucher renders the booking voucher. Repeated calls return the
// document generated earlier instead of rendering again; the second return
// value reports whether the PDF is fresh.
func (s *DocumentService) GenerateVoucher(booking *models.Booking) (*models.BookingDocument, bool, error) {
	existing, err := s.existingDocument(booking.ID, models.DocumentTypeVoucher)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	tour, agency, err := s.loadContext(booking)
	if err != nil {
		return nil, false, err
	}

	data := pdf.VoucherData{
		BookingNumber:  booking.BookingNumber,
		TourTitle:      tour.Title,
		AgencyName:     agency.BusinessName,
		CustomerName:   booking.CustomerName,
		CustomerEmail:  booking.CustomerEmail,
		BookingDate:    booking.BookingDate,
		NumberOfPeople: booking.NumberOfPeople,
		MeetingPoint:   tour.City,
		TotalPrice:     booking.TotalPrice,
		Currency:       s.currency,
	}
	if booking.BookingTime != nil {
		data.BookingTime = *booking.BookingTime
	}

	content, err := s.renderer.RenderVoucher(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to render voucher: %w", err)
	}

	fileName := fmt.Sprintf("voucher-%s.pdf", booking.BookingNumber)
	doc, err := s.persist(booking, models.DocumentTypeVoucher, fileName, content)
	if err != nil {
		return nil, false, err
	}

	return doc, true, nil
}

// GenerateInvoice renders the booking invoice with the customer's billing
// details. Unlike vouchers, every request renders a fresh invoice: the
// billing details come from the request, so the previous document is
// replaced instead of reused.
func (s *DocumentService) GenerateInvoice(booking *models.Booking, req *models.GenerateInvoiceRequest) (*models.BookingDocument, bool, error) {
	existing, err := s.docRepo.GetByBookingAndType(booking.ID, models.DocumentTypeInvoice)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up invoice: %w", err)
	}
	if existing != nil {
		if err := s.docRepo.Delete(existing.ID); err != nil {
			return nil, false, fmt.Errorf("failed to replace invoice: %w", err)
		}
		if err := s.store.Delete(existing.FilePath); err != nil {
			s.logger.WithError(err).WithField("document_id", existing.ID).Warn("Failed to delete stored file")
		}
	}

	tour, agency, err := s.loadContext(booking)
	if err != nil {
		return nil, false, err
	}

	count, err := s.docRepo.CountInvoices()
	if err != nil {
		return nil, false, fmt.Errorf("failed to count invoices: %w", err)
	}

	now := time.Now()
	data := pdf.InvoiceData{
		InvoiceNumber:  fmt.Sprintf("INV-%d-%06d", now.Year(), count+1),
		BookingNumber:  booking.BookingNumber,
		IssuedAt:       now,
		Ruc:            req.Ruc,
		BusinessName:   req.BusinessName,
		Address:        req.Address,
		TourTitle:      tour.Title,
		AgencyName:     agency.BusinessName,
		NumberOfPeople: booking.NumberOfPeople,
		PricePerPerson: booking.PricePerPerson,
		Subtotal:       booking.Subtotal,
		Discount:       booking.Discount,
		Tax:            booking.Tax,
		TotalPrice:     booking.TotalPrice,
		Currency:       s.currency,
	}

	content, err := s.renderer.RenderInvoice(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to render invoice: %w", err)
	}

	fileName := fmt.Sprintf("invoice-%s.pdf", booking.BookingNumber)
	doc, err := s.persist(booking, models.DocumentTypeInvoice, fileName, content)
	if err != nil {
		return nil, false, err
	}

	return doc, true, nil
}

// Open streams a stored document and bumps its download counter
func (s *DocumentService) Open(doc *models.BookingDocument) (io.ReadCloser, error) {
	reader, err := s.store.Open(doc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	if err := s.docRepo.RecordDownload(doc.ID); err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Warn("Failed to record download")
	}

	return reader, nil
}

// Delete removes the document record and its stored file
func (s *DocumentService) Delete(doc *models.BookingDocument) error {
	if err := s.docRepo.Delete(doc.ID); err != nil {
		return err
	}

	if err := s.store.Delete(doc.FilePath); err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Warn("Failed to delete stored file")
	}

	return nil
}

func (s *DocumentService) existingDocument(bookingID string, docType models.DocumentType) (*models.BookingDocument, error) {
	doc, err := s.docRepo.GetByBookingAndType(bookingID, docType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load existing document: %w", err)
	}

	// regenerate when the stored file disappeared
	if !s.store.Exists(doc.FilePath) {
		if err := s.docRepo.Delete(doc.ID); err != nil {
			return nil, fmt.Errorf("failed to drop stale document: %w", err)
		}
		return nil, nil
	}

	return doc, nil
}

func (s *DocumentService) loadContext(booking *models.Booking) (*models.Tour, *models.Agency, error) {
	tour, err := s.tourRepo.GetByID(booking.TourID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tour: %w", err)
	}

	agency, err := s.agencyRepo.GetByID(booking.AgencyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load agency: %w", err)
	}

	return tour, agency, nil
}

func (s *DocumentService) persist(booking *models.Booking, docType models.DocumentType, fileName string, content []byte) (*models.BookingDocument, error) {
	filePath := fmt.Sprintf("documents/%s/%s", booking.BookingNumber, fileName)

	size, err := s.store.Put(filePath, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.BookingDocument{
		BookingID:   booking.ID,
		Type:        docType,
		FileName:    fileName,
		FilePath:    filePath,
		FileURL:     s.store.URL(filePath),
		FileSize:    size,
		MimeType:    "application/pdf",
		GeneratedAt: time.Now(),
	}

	if err := s.docRepo.Create(doc); err != nil {
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"booking_id":  booking.ID,
		"type":        docType,
		"size":        size,
	}).Info("Document generated")

	return doc, nil
}
