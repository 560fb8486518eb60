package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookandgo/booking-backend/internal/models"
)

var (
	customer = Actor{UserID: "user-1", Role: models.RoleCustomer}
	operator = Actor{UserID: "agency-user-1", Role: models.RoleAgency, AgencyID: "agency-1"}
	admin    = Actor{UserID: "admin-1", Role: models.RoleAdmin}
	stranger = Actor{UserID: "user-2", Role: models.RoleCustomer}

	booking = Resource{Type: ResourceBooking, OwnerID: "user-1", AgencyID: "agency-1"}
)

func TestAdminBypass(t *testing.T) {
	for _, resourceType := range []ResourceType{
		ResourceBooking, ResourceTour, ResourcePayment, ResourceDocument,
		ResourceMessage, ResourceReview, ResourceCoupon, ResourceSetting,
	} {
		assert.True(t, Allowed(admin, Resource{Type: resourceType}, ActionManage),
			"admin should be allowed to manage %s", resourceType)
	}
}

func TestBookingPermissions(t *testing.T) {
	t.Run("View", func(t *testing.T) {
		assert.True(t, Allowed(customer, booking, ActionView))
		assert.True(t, Allowed(operator, booking, ActionView))
		assert.False(t, Allowed(stranger, booking, ActionView))
	})

	t.Run("Cancel Is Owner Only", func(t *testing.T) {
		assert.True(t, Allowed(customer, booking, ActionCancel))
		assert.False(t, Allowed(operator, booking, ActionCancel))
		assert.False(t, Allowed(stranger, booking, ActionCancel))
	})

	t.Run("Lifecycle Transitions Are Operator Only", func(t *testing.T) {
		for _, action := range []Action{ActionConfirm, ActionCheckIn, ActionComplete, ActionRefund} {
			assert.True(t, Allowed(operator, booking, action))
			assert.False(t, Allowed(customer, booking, action))
		}
	})

	t.Run("Other Agency Denied", func(t *testing.T) {
		other := Actor{UserID: "agency-user-2", Role: models.RoleAgency, AgencyID: "agency-2"}
		assert.False(t, Allowed(other, booking, ActionConfirm))
	})
}

func TestTourPermissions(t *testing.T) {
	tour := Resource{Type: ResourceTour, AgencyID: "agency-1"}

	assert.True(t, Allowed(stranger, tour, ActionView))
	assert.True(t, Allowed(operator, tour, ActionUpdate))
	assert.True(t, Allowed(operator, tour, ActionPublish))
	assert.False(t, Allowed(customer, tour, ActionUpdate))
	assert.False(t, Allowed(customer, tour, ActionDelete))
}

func TestPaymentPermissions(t *testing.T) {
	payment := Resource{Type: ResourcePayment, OwnerID: "user-1", AgencyID: "agency-1"}

	assert.True(t, Allowed(customer, payment, ActionView))
	assert.False(t, Allowed(stranger, payment, ActionView))
	assert.True(t, Allowed(operator, payment, ActionRefund))
	assert.False(t, Allowed(customer, payment, ActionRefund))
}

func TestDocumentPermissions(t *testing.T) {
	document := Resource{Type: ResourceDocument, OwnerID: "user-1", AgencyID: "agency-1"}

	assert.True(t, Allowed(customer, document, ActionDownload))
	assert.True(t, Allowed(operator, document, ActionView))
	assert.False(t, Allowed(stranger, document, ActionDownload))
	assert.True(t, Allowed(operator, document, ActionDelete))
	assert.False(t, Allowed(customer, document, ActionDelete))
}

func TestMessagePermissions(t *testing.T) {
	message := Resource{Type: ResourceMessage, OwnerID: "user-1", AgencyID: "agency-1", SenderID: "user-1"}

	assert.True(t, Allowed(customer, message, ActionSend))
	assert.True(t, Allowed(operator, message, ActionView))
	assert.False(t, Allowed(stranger, message, ActionView))

	t.Run("Delete Is Sender Only", func(t *testing.T) {
		assert.True(t, Allowed(customer, message, ActionDelete))

		fromAgency := Resource{Type: ResourceMessage, OwnerID: "user-1", AgencyID: "agency-1", SenderID: "agency-user-1"}
		assert.False(t, Allowed(customer, fromAgency, ActionDelete))
	})
}

func TestAdminOnlyResources(t *testing.T) {
	coupon := Resource{Type: ResourceCoupon}
	setting := Resource{Type: ResourceSetting}

	assert.False(t, Allowed(customer, coupon, ActionManage))
	assert.False(t, Allowed(operator, coupon, ActionManage))
	assert.False(t, Allowed(operator, setting, ActionManage))
	assert.True(t, Allowed(admin, setting, ActionManage))
}
