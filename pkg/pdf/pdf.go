package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// VoucherData carries everything printed on a booking voucher
type VoucherData struct {
	BookingNumber  string
	TourTitle      string
	AgencyName     string
	CustomerName   string
	CustomerEmail  string
	BookingDate    time.Time
	BookingTime    string
	NumberOfPeople int
	MeetingPoint   string
	TotalPrice     float64
	Currency       string
}

// InvoiceData carries everything printed on a booking invoice
type InvoiceData struct {
	InvoiceNumber  string
	BookingNumber  string
	IssuedAt       time.Time
	Ruc            string
	BusinessName   string
	Address        string
	TourTitle      string
	AgencyName     string
	NumberOfPeople int
	PricePerPerson float64
	Subtotal       float64
	Discount       float64
	Tax            float64
	TotalPrice     float64
	Currency       string
}

// Renderer renders booking documents as PDF bytes
type Renderer struct {
	brand string
}

// NewRenderer creates a document renderer with the given brand name
func NewRenderer(brand string) *Renderer {
	return &Renderer{brand: brand}
}

func (r *Renderer) newDocument(title string) *gofpdf.Fpdf {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, false)
	doc.SetAuthor(r.brand, false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(30, 64, 175)
	doc.CellFormat(0, 12, r.brand, "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	doc.Ln(4)

	return doc
}

func writeRow(doc *gofpdf.Fpdf, label, value string) {
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}

// RenderVoucher renders a booking voucher
func (r *Renderer) RenderVoucher(data VoucherData) ([]byte, error) {
	doc := r.newDocument("Booking Voucher")

	writeRow(doc, "Booking Number", data.BookingNumber)
	writeRow(doc, "Tour", data.TourTitle)
	writeRow(doc, "Operated By", data.AgencyName)
	writeRow(doc, "Customer", data.CustomerName)
	writeRow(doc, "Email", data.CustomerEmail)
	writeRow(doc, "Date", data.BookingDate.Format("02 Jan 2006"))
	if data.BookingTime != "" {
		writeRow(doc, "Time", data.BookingTime)
	}
	writeRow(doc, "Travelers", fmt.Sprintf("%d", data.NumberOfPeople))
	if data.MeetingPoint != "" {
		writeRow(doc, "Meeting Point", data.MeetingPoint)
	}
	writeRow(doc, "Total Paid", fmt.Sprintf("%s %.2f", data.Currency, data.TotalPrice))

	doc.Ln(8)
	doc.SetFont("Helvetica", "I", 9)
	doc.SetTextColor(100, 100, 100)
	doc.MultiCell(0, 5, "Present this voucher to the tour operator on the day of the activity. "+
		"The booking number above identifies your reservation.", "", "L", false)

	return output(doc)
}

// RenderInvoice renders a booking invoice
func (r *Renderer) RenderInvoice(data InvoiceData) ([]byte, error) {
	doc := r.newDocument("Invoice " + data.InvoiceNumber)

	writeRow(doc, "Invoice Number", data.InvoiceNumber)
	writeRow(doc, "Issued", data.IssuedAt.Format("02 Jan 2006"))
	writeRow(doc, "Booking Number", data.BookingNumber)
	doc.Ln(4)

	writeRow(doc, "Billed To", data.BusinessName)
	writeRow(doc, "RUC", data.Ruc)
	writeRow(doc, "Address", data.Address)
	doc.Ln(4)

	writeRow(doc, "Tour", data.TourTitle)
	writeRow(doc, "Operated By", data.AgencyName)
	writeRow(doc, "Travelers", fmt.Sprintf("%d x %s %.2f", data.NumberOfPeople, data.Currency, data.PricePerPerson))
	doc.Ln(4)

	writeRow(doc, "Subtotal", fmt.Sprintf("%s %.2f", data.Currency, data.Subtotal))
	if data.Discount > 0 {
		writeRow(doc, "Discount", fmt.Sprintf("-%s %.2f", data.Currency, data.Discount))
	}
	if data.Tax > 0 {
		writeRow(doc, "Tax", fmt.Sprintf("%s %.2f", data.Currency, data.Tax))
	}

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(55, 9, "Total", "T", 0, "L", false, 0, "")
	doc.CellFormat(0, 9, fmt.Sprintf("%s %.2f", data.Currency, data.TotalPrice), "T", 1, "L", false, 0, "")

	return output(doc)
}

func output(doc *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
