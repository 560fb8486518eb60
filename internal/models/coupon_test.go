package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int              { return &v }
func floatPtr(v float64) *float64    { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestCouponCalculateDiscount(t *testing.T) {
	t.Run("Percentage", func(t *testing.T) {
		coupon := &Coupon{Code: "BIENVENIDO2025", Type: CouponTypePercentage, Value: 10, IsActive: true}

		assert.Equal(t, 15.0, coupon.CalculateDiscount(150))
		assert.Equal(t, 0.0, coupon.CalculateDiscount(0))
	})

	t.Run("Fixed", func(t *testing.T) {
		coupon := &Coupon{Code: "FLAT50", Type: CouponTypeFixed, Value: 50, IsActive: true}

		assert.Equal(t, 50.0, coupon.CalculateDiscount(200))
	})

	t.Run("Fixed Never Exceeds Amount", func(t *testing.T) {
		coupon := &Coupon{Code: "FLAT50", Type: CouponTypeFixed, Value: 50, IsActive: true}

		assert.Equal(t, 30.0, coupon.CalculateDiscount(30))
	})
}

func TestCouponIsValid(t *testing.T) {
	now := time.Now()

	t.Run("Active Without Limits", func(t *testing.T) {
		coupon := &Coupon{Code: "OPEN", Type: CouponTypePercentage, Value: 10, IsActive: true}

		assert.True(t, coupon.IsValid(now))
	})

	t.Run("Inactive", func(t *testing.T) {
		coupon := &Coupon{Code: "OFF", Type: CouponTypePercentage, Value: 10, IsActive: false}

		assert.False(t, coupon.IsValid(now))
		assert.Equal(t, "coupon is not active", coupon.InvalidReason(now))
	})

	t.Run("Usage Limit Reached", func(t *testing.T) {
		coupon := &Coupon{
			Code:      "MAXED",
			Type:      CouponTypePercentage,
			Value:     10,
			IsActive:  true,
			MaxUses:   intPtr(100),
			UsedCount: 100,
		}

		assert.False(t, coupon.IsValid(now))
		assert.False(t, coupon.HasRemainingUses())
		assert.Equal(t, "coupon has reached its usage limit", coupon.InvalidReason(now))
	})

	t.Run("One Use Remaining", func(t *testing.T) {
		coupon := &Coupon{
			Code:      "ALMOST",
			Type:      CouponTypePercentage,
			Value:     10,
			IsActive:  true,
			MaxUses:   intPtr(100),
			UsedCount: 99,
		}

		assert.True(t, coupon.IsValid(now))
		assert.True(t, coupon.HasRemainingUses())
	})

	t.Run("Not Started Yet", func(t *testing.T) {
		coupon := &Coupon{
			Code:      "SOON",
			Type:      CouponTypeFixed,
			Value:     20,
			IsActive:  true,
			ValidFrom: timePtr(now.Add(24 * time.Hour)),
		}

		assert.False(t, coupon.IsValid(now))
		assert.Equal(t, "coupon is not valid yet", coupon.InvalidReason(now))
	})

	t.Run("Expired", func(t *testing.T) {
		coupon := &Coupon{
			Code:       "LATE",
			Type:       CouponTypeFixed,
			Value:      20,
			IsActive:   true,
			ValidUntil: timePtr(now.Add(-24 * time.Hour)),
		}

		assert.False(t, coupon.IsValid(now))
		assert.Equal(t, "coupon has expired", coupon.InvalidReason(now))
	})
}

func TestCouponApplyToAmount(t *testing.T) {
	now := time.Now()

	t.Run("Welcome Coupon", func(t *testing.T) {
		coupon := &Coupon{
			Code:        "BIENVENIDO2025",
			Type:        CouponTypePercentage,
			Value:       10,
			MinPurchase: floatPtr(100),
			MaxUses:     intPtr(100),
			UsedCount:   3,
			IsActive:    true,
		}

		calc, err := coupon.ApplyToAmount(150, now)
		require.NoError(t, err)
		assert.Equal(t, 150.0, calc.OriginalAmount)
		assert.Equal(t, 15.0, calc.Discount)
		assert.Equal(t, 135.0, calc.FinalAmount)
		assert.InDelta(t, 10.0, calc.DiscountPercentage, 0.001)
	})

	t.Run("Below Minimum Purchase", func(t *testing.T) {
		coupon := &Coupon{
			Code:        "BIENVENIDO2025",
			Type:        CouponTypePercentage,
			Value:       10,
			MinPurchase: floatPtr(100),
			IsActive:    true,
		}

		_, err := coupon.ApplyToAmount(80, now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "minimum purchase")
	})

	t.Run("Invalid Coupon", func(t *testing.T) {
		coupon := &Coupon{Code: "OFF", Type: CouponTypePercentage, Value: 10, IsActive: false}

		_, err := coupon.ApplyToAmount(150, now)
		assert.Error(t, err)
	})

	t.Run("Fixed Discount Cannot Turn Total Negative", func(t *testing.T) {
		coupon := &Coupon{Code: "FLAT200", Type: CouponTypeFixed, Value: 200, IsActive: true}

		calc, err := coupon.ApplyToAmount(120, now)
		require.NoError(t, err)
		assert.Equal(t, 120.0, calc.Discount)
		assert.Equal(t, 0.0, calc.FinalAmount)
	})
}

func TestCreateCouponRequestValidate(t *testing.T) {
	t.Run("Percentage Over 100 Rejected", func(t *testing.T) {
		req := &CreateCouponRequest{Code: "BIG", Type: "percentage", Value: 150}

		assert.Error(t, req.Validate())
	})

	t.Run("Code Normalization", func(t *testing.T) {
		req := &CreateCouponRequest{Code: "  verano2025 ", Type: "fixed", Value: 20}

		require.NoError(t, req.Validate())
		assert.Equal(t, "VERANO2025", req.NormalizedCode())
	})
}
