package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// UserRepository handles database operations for the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password, role, phone, avatar, bio,
	country, city, is_active, last_activity_at, created_at, updated_at, deleted_at`

// Create inserts a new user inside the given transaction
func (r *UserRepository) Create(run Runner, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password, role, phone, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	err := run.QueryRow(
		query,
		user.ID, user.Name, user.Email, user.Password, user.Role, user.Phone, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`

	var user models.User
	if err := r.db.Get(&user, query, userID); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`

	var user models.User
	if err := r.db.Get(&user, query, email); err != nil {
		return nil, err
	}

	return &user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.Get(&exists, query, email); err != nil {
		return false, err
	}

	return exists, nil
}

// UpdateProfile applies a partial profile update and returns the fresh row
func (r *UserRepository) UpdateProfile(userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			avatar = COALESCE($4, avatar),
			bio = COALESCE($5, bio),
			country = COALESCE($6, country),
			city = COALESCE($7, city),
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + userColumns

	var user models.User
	err := r.db.Get(&user, query, userID, req.Name, req.Phone, req.Avatar, req.Bio, req.Country, req.City)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateAvatar replaces the user's avatar URL
func (r *UserRepository) UpdateAvatar(userID, url string) error {
	result, err := r.db.Exec(
		`UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		userID, url,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// TouchActivity records the user's last seen moment and device
func (r *UserRepository) TouchActivity(userID, ip, device string) error {
	query := `
		UPDATE users
		SET last_activity_at = NOW(),
			last_ip = $2,
			last_device = $3
		WHERE id = $1
	`

	_, err := r.db.Exec(query, userID, ip, device)
	return err
}
