package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// DocumentRepository handles database operations for the booking_documents table
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, booking_id, type, file_name, file_path, file_url,
	file_size, mime_type, generated_at, download_count, last_downloaded_at,
	created_at, updated_at`

// Create inserts a new booking document
func (r *DocumentRepository) Create(doc *models.BookingDocument) error {
	query := `
		INSERT INTO booking_documents (
			id, booking_id, type, file_name, file_path, file_url,
			file_size, mime_type, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		doc.ID, doc.BookingID, doc.Type, doc.FileName, doc.FilePath,
		doc.FileURL, doc.FileSize, doc.MimeType, doc.GeneratedAt,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking document: %w", err)
	}

	return nil
}

// GetByID retrieves a booking document by ID
func (r *DocumentRepository) GetByID(documentID string) (*models.BookingDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM booking_documents WHERE id = $1`

	var doc models.BookingDocument
	if err := r.db.Get(&doc, query, documentID); err != nil {
		return nil, err
	}

	return &doc, nil
}

// GetByBookingAndType retrieves a booking's document of the given type
func (r *DocumentRepository) GetByBookingAndType(bookingID string, docType models.DocumentType) (*models.BookingDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM booking_documents
		WHERE booking_id = $1 AND type = $2
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var doc models.BookingDocument
	if err := r.db.Get(&doc, query, bookingID, docType); err != nil {
		return nil, err
	}

	return &doc, nil
}

// ListByBooking retrieves all documents of a booking
func (r *DocumentRepository) ListByBooking(bookingID string) ([]models.BookingDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM booking_documents WHERE booking_id = $1 ORDER BY generated_at DESC`

	docs := []models.BookingDocument{}
	if err := r.db.Select(&docs, query, bookingID); err != nil {
		return nil, err
	}

	return docs, nil
}

// RecordDownload bumps the download counter
func (r *DocumentRepository) RecordDownload(documentID string) error {
	query := `
		UPDATE booking_documents
		SET download_count = download_count + 1,
			last_downloaded_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, documentID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("document not found")
	}

	return nil
}

// Delete removes a booking document row
func (r *DocumentRepository) Delete(documentID string) error {
	result, err := r.db.Exec(`DELETE FROM booking_documents WHERE id = $1`, documentID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("document not found")
	}

	return nil
}

// CountInvoices returns the number of invoices ever generated, used for numbering
func (r *DocumentRepository) CountInvoices() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM booking_documents WHERE type = 'invoice'`)
	return count, err
}
