package models

import "time"

// DocumentType represents the kind of booking document
type DocumentType string

const (
	DocumentTypeVoucher DocumentType = "voucher"
	DocumentTypeInvoice DocumentType = "invoice"
)

// BookingDocument represents a generated PDF attached to a booking
type BookingDocument struct {
	ID               string       `json:"id" db:"id"`
	BookingID        string       `json:"booking_id" db:"booking_id"`
	Type             DocumentType `json:"type" db:"type"`
	FileName         string       `json:"file_name" db:"file_name"`
	FilePath         string       `json:"file_path" db:"file_path"`
	FileURL          string       `json:"file_url" db:"file_url"`
	FileSize         int64        `json:"file_size" db:"file_size"`
	MimeType         string       `json:"mime_type" db:"mime_type"`
	GeneratedAt      time.Time    `json:"generated_at" db:"generated_at"`
	DownloadCount    int          `json:"download_count" db:"download_count"`
	LastDownloadedAt *time.Time   `json:"last_downloaded_at,omitempty" db:"last_downloaded_at"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// GenerateInvoiceRequest represents the billing details required for an invoice
type GenerateInvoiceRequest struct {
	Ruc          string `json:"ruc" binding:"required,len=11"`
	BusinessName string `json:"business_name" binding:"required"`
	Address      string `json:"address" binding:"required"`
}
