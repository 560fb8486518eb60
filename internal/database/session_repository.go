package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// SessionRepository handles database operations for the sessions table.
// Refresh tokens are never stored verbatim, only their SHA-256 hash.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// hashToken hashes a refresh token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Store records a freshly issued refresh token
func (r *SessionRepository) Store(userID, token string, expiresAt time.Time, ip, userAgent *string) error {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(query, uuid.New().String(), userID, hashToken(token), ip, userAgent, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// GetByToken retrieves the session behind a refresh token
func (r *SessionRepository) GetByToken(token string) (*models.Session, error) {
	query := `
		SELECT id, user_id, token_hash, ip_address, user_agent,
			   expires_at, revoked, revoked_at, created_at
		FROM sessions
		WHERE token_hash = $1
	`

	var session models.Session
	if err := r.db.Get(&session, query, hashToken(token)); err != nil {
		return nil, err
	}

	return &session, nil
}

// Revoke marks the session behind a refresh token as revoked
func (r *SessionRepository) Revoke(token string) error {
	query := `
		UPDATE sessions
		SET revoked = true, revoked_at = NOW()
		WHERE token_hash = $1 AND revoked = false
	`

	_, err := r.db.Exec(query, hashToken(token))
	return err
}

// RevokeAllForUser revokes every live session of a user
func (r *SessionRepository) RevokeAllForUser(userID string) error {
	query := `
		UPDATE sessions
		SET revoked = true, revoked_at = NOW()
		WHERE user_id = $1 AND revoked = false
	`

	_, err := r.db.Exec(query, userID)
	return err
}

// DeleteExpired purges sessions past their expiry
func (r *SessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
