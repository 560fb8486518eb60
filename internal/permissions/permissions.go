// Package permissions centralizes authorization decisions. Handlers build an
// Actor from the authenticated user and a Resource from the record they
// loaded, then ask for a single allow/deny answer instead of spreading
// role and ownership checks across the codebase.
package permissions

import "github.com/bookandgo/booking-backend/internal/models"

// Action is an operation attempted on a resource
type Action string

const (
	ActionView     Action = "view"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionCancel   Action = "cancel"
	ActionConfirm  Action = "confirm"
	ActionCheckIn  Action = "check_in"
	ActionComplete Action = "complete"
	ActionRefund   Action = "refund"
	ActionPublish  Action = "publish"
	ActionDownload Action = "download"
	ActionSend     Action = "send"
	ActionManage   Action = "manage"
)

// ResourceType identifies the kind of record an action targets
type ResourceType string

const (
	ResourceBooking  ResourceType = "booking"
	ResourceTour     ResourceType = "tour"
	ResourcePayment  ResourceType = "payment"
	ResourceDocument ResourceType = "document"
	ResourceMessage  ResourceType = "message"
	ResourceReview   ResourceType = "review"
	ResourceCoupon   ResourceType = "coupon"
	ResourceSetting  ResourceType = "setting"
)

// Actor is the authenticated principal attempting an action
type Actor struct {
	UserID   string
	Role     models.UserRole
	AgencyID string // set when the actor is an agency user
}

// Resource describes the record an action targets. OwnerID is the customer
// that owns the record, AgencyID the operating agency, SenderID the message
// author. Fields irrelevant to a resource type stay empty.
type Resource struct {
	Type     ResourceType
	OwnerID  string
	AgencyID string
	SenderID string
}

// Allowed decides whether the actor may perform the action on the resource.
// Administrators pass every check.
func Allowed(actor Actor, resource Resource, action Action) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}

	isOwner := actor.UserID != "" && actor.UserID == resource.OwnerID
	isOperator := actor.Role == models.RoleAgency && actor.AgencyID != "" && actor.AgencyID == resource.AgencyID

	switch resource.Type {
	case ResourceBooking:
		switch action {
		case ActionView:
			return isOwner || isOperator
		case ActionCancel:
			return isOwner
		case ActionConfirm, ActionCheckIn, ActionComplete, ActionRefund:
			return isOperator
		}

	case ResourceTour:
		switch action {
		case ActionView:
			return true
		case ActionUpdate, ActionDelete, ActionPublish:
			return isOperator
		}

	case ResourcePayment:
		switch action {
		case ActionView:
			return isOwner
		case ActionRefund:
			return isOperator
		}

	case ResourceDocument:
		switch action {
		case ActionView:
			return isOwner || isOperator
		case ActionDownload:
			return isOwner || isOperator
		case ActionDelete:
			return isOperator
		}

	case ResourceMessage:
		switch action {
		case ActionView, ActionSend:
			return isOwner || isOperator
		case ActionDelete:
			return actor.UserID != "" && actor.UserID == resource.SenderID
		}

	case ResourceReview:
		switch action {
		case ActionView:
			return true
		case ActionUpdate, ActionDelete:
			return isOwner
		}

	case ResourceCoupon, ResourceSetting:
		// Admin-only resources, handled by the admin bypass above
		return false
	}

	return false
}
