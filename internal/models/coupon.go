package models

import (
	"errors"
	"strings"
	"time"
)

// CouponType represents how a coupon discounts an amount
type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFixed      CouponType = "fixed"
)

// Coupon represents a discount coupon managed by administrators
type Coupon struct {
	ID          string     `json:"id" db:"id"`
	Code        string     `json:"code" db:"code"`
	Description *string    `json:"description,omitempty" db:"description"`
	Type        CouponType `json:"type" db:"type"`
	Value       float64    `json:"value" db:"value"`
	MinPurchase *float64   `json:"min_purchase,omitempty" db:"min_purchase"`
	MaxUses     *int       `json:"max_uses,omitempty" db:"max_uses"`
	UsedCount   int        `json:"used_count" db:"used_count"`
	ValidFrom   *time.Time `json:"valid_from,omitempty" db:"valid_from"`
	ValidUntil  *time.Time `json:"valid_until,omitempty" db:"valid_until"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedBy   *string    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// CouponCalculation is the result of applying a coupon to an amount
type CouponCalculation struct {
	OriginalAmount     float64 `json:"original_amount"`
	Discount           float64 `json:"discount"`
	FinalAmount        float64 `json:"final_amount"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

// ValidateCouponRequest represents the request to validate a coupon against an amount
type ValidateCouponRequest struct {
	Code   string  `json:"code" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CreateCouponRequest represents the request to create a coupon
type CreateCouponRequest struct {
	Code        string   `json:"code" binding:"required,min=3,max=50"`
	Description *string  `json:"description,omitempty"`
	Type        string   `json:"type" binding:"required,oneof=percentage fixed"`
	Value       float64  `json:"value" binding:"required,gt=0"`
	MinPurchase *float64 `json:"min_purchase,omitempty"`
	MaxUses     *int     `json:"max_uses,omitempty"`
	ValidFrom   *string  `json:"valid_from,omitempty"`  // YYYY-MM-DD
	ValidUntil  *string  `json:"valid_until,omitempty"` // YYYY-MM-DD
	IsActive    *bool    `json:"is_active,omitempty"`
}

// UpdateCouponRequest represents the request to update a coupon
type UpdateCouponRequest struct {
	Description *string  `json:"description,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Value       *float64 `json:"value,omitempty"`
	MinPurchase *float64 `json:"min_purchase,omitempty"`
	MaxUses     *int     `json:"max_uses,omitempty"`
	ValidFrom   *string  `json:"valid_from,omitempty"`
	ValidUntil  *string  `json:"valid_until,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// CouponFilter carries the admin coupon listing filters
type CouponFilter struct {
	IsActive *bool
	Type     string
	Valid    *bool
	Page     int
	PerPage  int
}

// Validate validates the create coupon request
func (r *CreateCouponRequest) Validate() error {
	if CouponType(r.Type) == CouponTypePercentage && r.Value > 100 {
		return errors.New("percentage value cannot exceed 100")
	}

	if r.MinPurchase != nil && *r.MinPurchase < 0 {
		return errors.New("min_purchase cannot be negative")
	}

	if r.MaxUses != nil && *r.MaxUses < 1 {
		return errors.New("max_uses must be at least 1")
	}

	return nil
}

// NormalizedCode returns the code as stored, upper-cased and trimmed
func (r *CreateCouponRequest) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(r.Code))
}

// IsValid checks if the coupon can be redeemed at the given time
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}

	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return false
	}

	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}

	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}

	return true
}

// InvalidReason explains why the coupon cannot be redeemed at the given time
func (c *Coupon) InvalidReason(now time.Time) string {
	if !c.IsActive {
		return "coupon is not active"
	}

	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return "coupon has reached its usage limit"
	}

	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return "coupon is not valid yet"
	}

	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return "coupon has expired"
	}

	return ""
}

// CalculateDiscount returns the discount the coupon grants on an amount.
// Percentage coupons take value percent of the amount; fixed coupons take
// their value but never more than the amount itself.
func (c *Coupon) CalculateDiscount(amount float64) float64 {
	switch c.Type {
	case CouponTypePercentage:
		return amount * c.Value / 100
	case CouponTypeFixed:
		if c.Value > amount {
			return amount
		}
		return c.Value
	}
	return 0
}

// ApplyToAmount validates the coupon against an amount and returns the calculation
func (c *Coupon) ApplyToAmount(amount float64, now time.Time) (*CouponCalculation, error) {
	if !c.IsValid(now) {
		return nil, errors.New(c.InvalidReason(now))
	}

	if c.MinPurchase != nil && amount < *c.MinPurchase {
		return nil, errors.New("amount is below the coupon minimum purchase")
	}

	discount := c.CalculateDiscount(amount)
	final := amount - discount

	calc := &CouponCalculation{
		OriginalAmount: amount,
		Discount:       discount,
		FinalAmount:    final,
	}
	if amount > 0 {
		calc.DiscountPercentage = discount / amount * 100
	}

	return calc, nil
}

// HasRemainingUses checks if the coupon usage counter allows another redemption
func (c *Coupon) HasRemainingUses() bool {
	return c.MaxUses == nil || c.UsedCount < *c.MaxUses
}
