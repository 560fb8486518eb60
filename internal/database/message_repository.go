package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// MessageRepository handles database operations for the messages table
type MessageRepository struct {
	db DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, booking_id, sender_id, receiver_id, body, attachments, is_read, read_at, created_at`

// Create inserts a new message
func (r *MessageRepository) Create(message *models.Message) error {
	query := `
		INSERT INTO messages (id, booking_id, sender_id, receiver_id, body, attachments)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		message.ID, message.BookingID, message.SenderID, message.ReceiverID, message.Body,
		message.Attachments,
	).Scan(&message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(messageID string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	var message models.Message
	if err := r.db.Get(&message, query, messageID); err != nil {
		return nil, err
	}

	return &message, nil
}

// ListByBooking retrieves a booking's messages, oldest first
func (r *MessageRepository) ListByBooking(bookingID string, page, perPage int) ([]models.Message, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM messages WHERE booking_id = $1`, bookingID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE booking_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	messages := []models.Message{}
	if err := r.db.Select(&messages, query, bookingID, perPage, (page-1)*perPage); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// MarkAllRead marks the user's received messages in a booking as read
func (r *MessageRepository) MarkAllRead(bookingID, receiverID string) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = true, read_at = NOW()
		WHERE booking_id = $1 AND receiver_id = $2 AND is_read = false
	`

	result, err := r.db.Exec(query, bookingID, receiverID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// UnreadCount returns the user's total unread message count
func (r *MessageRepository) UnreadCount(userID string) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = false`

	var count int
	if err := r.db.Get(&count, query, userID); err != nil {
		return 0, err
	}

	return count, nil
}

// Delete removes a message
func (r *MessageRepository) Delete(messageID string) error {
	result, err := r.db.Exec(`DELETE FROM messages WHERE id = $1`, messageID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("message not found")
	}

	return nil
}

// Conversations lists the bookings where the user exchanges messages, with
// the other participant, the last message and the unread count per thread
func (r *MessageRepository) Conversations(userID string) ([]models.Conversation, error) {
	query := `
		SELECT b.id AS booking_id,
			   b.booking_number,
			   t.title AS tour_title,
			   other.id AS other_party_id,
			   other.name AS other_party_name,
			   last.body AS last_message,
			   last.created_at AS last_message_at,
			   (SELECT COUNT(*) FROM messages
				WHERE booking_id = b.id AND receiver_id = $1 AND is_read = false) AS unread_count
		FROM bookings b
		JOIN tours t ON t.id = b.tour_id
		JOIN LATERAL (
			SELECT body, created_at, sender_id, receiver_id
			FROM messages
			WHERE booking_id = b.id
			ORDER BY created_at DESC
			LIMIT 1
		) last ON true
		JOIN users other ON other.id = CASE
			WHEN last.sender_id = $1 THEN last.receiver_id
			ELSE last.sender_id
		END
		WHERE EXISTS (
			SELECT 1 FROM messages
			WHERE booking_id = b.id AND (sender_id = $1 OR receiver_id = $1)
		)
		ORDER BY last.created_at DESC
	`

	conversations := []models.Conversation{}
	if err := r.db.Select(&conversations, query, userID); err != nil {
		return nil, err
	}

	return conversations, nil
}
