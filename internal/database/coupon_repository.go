package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// ErrCouponExhausted is returned when a redemption would exceed the usage limit
var ErrCouponExhausted = fmt.Errorf("coupon has reached its usage limit")

// ErrCouponInUse is returned when deleting a coupon that has been redeemed
var ErrCouponInUse = fmt.Errorf("coupon has been redeemed and cannot be deleted")

// CouponRepository handles database operations for the coupons table
type CouponRepository struct {
	db DB
}

// NewCouponRepository creates a new CouponRepository
func NewCouponRepository(db DB) *CouponRepository {
	return &CouponRepository{db: db}
}

const couponColumns = `id, code, description, type, value, min_purchase, max_uses,
	used_count, valid_from, valid_until, is_active, created_by, created_at, updated_at`

// Create inserts a new coupon
func (r *CouponRepository) Create(coupon *models.Coupon) error {
	query := `
		INSERT INTO coupons (
			id, code, description, type, value, min_purchase, max_uses,
			valid_from, valid_until, is_active, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		coupon.ID, coupon.Code, coupon.Description, coupon.Type, coupon.Value,
		coupon.MinPurchase, coupon.MaxUses, coupon.ValidFrom, coupon.ValidUntil,
		coupon.IsActive, coupon.CreatedBy,
	).Scan(&coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

// GetByID retrieves a coupon by ID
func (r *CouponRepository) GetByID(couponID string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	var coupon models.Coupon
	if err := r.db.Get(&coupon, query, couponID); err != nil {
		return nil, err
	}

	return &coupon, nil
}

// GetByCode retrieves a coupon by code, case-insensitively
func (r *CouponRepository) GetByCode(code string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = UPPER($1)`

	var coupon models.Coupon
	if err := r.db.Get(&coupon, query, strings.TrimSpace(code)); err != nil {
		return nil, err
	}

	return &coupon, nil
}

// CodeExists checks if a coupon code is already taken
func (r *CouponRepository) CodeExists(code string) (bool, error) {
	var exists bool
	err := r.db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM coupons WHERE code = UPPER($1))`, code)
	return exists, err
}

// List retrieves coupons matching the admin filter, newest first
func (r *CouponRepository) List(filter models.CouponFilter) ([]models.Coupon, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Valid != nil {
		validClause := `(is_active = true
			AND (valid_from IS NULL OR valid_from <= NOW())
			AND (valid_until IS NULL OR valid_until >= NOW())
			AND (max_uses IS NULL OR used_count < max_uses))`
		if *filter.Valid {
			where = append(where, validClause)
		} else {
			where = append(where, "NOT "+validClause)
		}
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM coupons WHERE "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	query := fmt.Sprintf(
		"SELECT %s FROM coupons WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		couponColumns, whereClause, len(args)-1, len(args),
	)

	coupons := []models.Coupon{}
	if err := r.db.Select(&coupons, query, args...); err != nil {
		return nil, 0, err
	}

	return coupons, total, nil
}

// Update applies a partial coupon update and returns the fresh row
func (r *CouponRepository) Update(couponID string, req *models.UpdateCouponRequest, validFrom, validUntil *time.Time) (*models.Coupon, error) {
	query := `
		UPDATE coupons
		SET description = COALESCE($2, description),
			type = COALESCE($3, type),
			value = COALESCE($4, value),
			min_purchase = COALESCE($5, min_purchase),
			max_uses = COALESCE($6, max_uses),
			valid_from = COALESCE($7, valid_from),
			valid_until = COALESCE($8, valid_until),
			is_active = COALESCE($9, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + couponColumns

	var coupon models.Coupon
	err := r.db.Get(&coupon, query, couponID,
		req.Description, req.Type, req.Value, req.MinPurchase, req.MaxUses,
		validFrom, validUntil, req.IsActive)
	if err != nil {
		return nil, err
	}

	return &coupon, nil
}

// Delete removes a coupon that has never been redeemed
func (r *CouponRepository) Delete(couponID string) error {
	result, err := r.db.Exec(`DELETE FROM coupons WHERE id = $1 AND used_count = 0`, couponID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		var exists bool
		if err := r.db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM coupons WHERE id = $1)`, couponID); err != nil {
			return err
		}
		if exists {
			return ErrCouponInUse
		}
		return fmt.Errorf("coupon not found")
	}

	return nil
}

// ToggleStatus flips a coupon's is_active flag and returns the fresh row
func (r *CouponRepository) ToggleStatus(couponID string) (*models.Coupon, error) {
	query := `
		UPDATE coupons
		SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + couponColumns

	var coupon models.Coupon
	if err := r.db.Get(&coupon, query, couponID); err != nil {
		return nil, err
	}

	return &coupon, nil
}

// Redeem increments the usage counter inside the given transaction. The
// increment is guarded by the usage limit in the same statement, so two
// concurrent redemptions of the last remaining use cannot both succeed.
func (r *CouponRepository) Redeem(run Runner, couponID string) error {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1
		  AND is_active = true
		  AND (max_uses IS NULL OR used_count < max_uses)
	`

	result, err := run.Exec(query, couponID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrCouponExhausted
	}

	return nil
}

// CouponStatistics aggregates coupon usage for the admin dashboard
type CouponStatistics struct {
	TotalCoupons  int             `json:"total_coupons" db:"total_coupons"`
	ActiveCoupons int             `json:"active_coupons" db:"active_coupons"`
	TotalUses     int             `json:"total_uses" db:"total_uses"`
	ExpiredCount  int             `json:"expired_count" db:"expired_count"`
	ByType        map[string]int  `json:"by_type" db:"-"`
	MostUsed      []models.Coupon `json:"most_used" db:"-"`
}

// Statistics computes the admin coupon statistics
func (r *CouponRepository) Statistics() (*CouponStatistics, error) {
	query := `
		SELECT COUNT(*) AS total_coupons,
			   COUNT(*) FILTER (WHERE is_active = true) AS active_coupons,
			   COALESCE(SUM(used_count), 0) AS total_uses,
			   COUNT(*) FILTER (WHERE valid_until IS NOT NULL AND valid_until < NOW()) AS expired_count
		FROM coupons
	`

	var stats CouponStatistics
	if err := r.db.Get(&stats, query); err != nil {
		return nil, err
	}

	type typeCount struct {
		Type  string `db:"type"`
		Count int    `db:"count"`
	}
	byType := []typeCount{}
	if err := r.db.Select(&byType, `SELECT type, COUNT(*) AS count FROM coupons GROUP BY type`); err != nil {
		return nil, err
	}
	stats.ByType = make(map[string]int, len(byType))
	for _, tc := range byType {
		stats.ByType[tc.Type] = tc.Count
	}

	mostUsed := []models.Coupon{}
	query = `SELECT ` + couponColumns + ` FROM coupons WHERE used_count > 0 ORDER BY used_count DESC LIMIT 5`
	if err := r.db.Select(&mostUsed, query); err != nil {
		return nil, err
	}
	stats.MostUsed = mostUsed

	return &stats, nil
}
