package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVoucher(t *testing.T) {
	renderer := NewRenderer("BookAndGo")

	content, err := renderer.RenderVoucher(VoucherData{
		BookingNumber:  "BG-A1B2C3D4E5F6",
		TourTitle:      "Machu Picchu Full Day",
		AgencyName:     "Andes Travel",
		CustomerName:   "Maria Lopez",
		CustomerEmail:  "maria@example.com",
		BookingDate:    time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
		BookingTime:    "06:00",
		NumberOfPeople: 2,
		TotalPrice:     270,
		Currency:       "PEN",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestRenderInvoice(t *testing.T) {
	renderer := NewRenderer("BookAndGo")

	content, err := renderer.RenderInvoice(InvoiceData{
		InvoiceNumber:  "INV-000123",
		BookingNumber:  "BG-A1B2C3D4E5F6",
		IssuedAt:       time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Ruc:            "20123456789",
		BusinessName:   "Importaciones SAC",
		Address:        "Av. Arequipa 1234, Lima",
		TourTitle:      "Machu Picchu Full Day",
		AgencyName:     "Andes Travel",
		NumberOfPeople: 2,
		PricePerPerson: 135,
		Subtotal:       270,
		Discount:       27,
		Tax:            0,
		TotalPrice:     243,
		Currency:       "PEN",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}
