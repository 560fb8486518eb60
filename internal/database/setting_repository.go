package database

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bookandgo/booking-backend/internal/models"
)

// ErrUnknownSettingKey is returned when a group update names a key that does
// not exist inside that group
var ErrUnknownSettingKey = errors.New("unknown setting key for group")

// SettingRepository handles database operations for the system_settings table
type SettingRepository struct {
	db DB
}

// NewSettingRepository creates a new SettingRepository
func NewSettingRepository(db DB) *SettingRepository {
	return &SettingRepository{db: db}
}

const settingColumns = `id, key, value, type, "group", is_public, description, created_at, updated_at`

// List retrieves all settings, optionally restricted to one group
func (r *SettingRepository) List(group string) ([]models.SystemSetting, error) {
	query := `SELECT ` + settingColumns + ` FROM system_settings`
	args := []interface{}{}
	if group != "" {
		query += ` WHERE "group" = $1`
		args = append(args, group)
	}
	query += ` ORDER BY "group", key`

	settings := []models.SystemSetting{}
	if err := r.db.Select(&settings, query, args...); err != nil {
		return nil, err
	}

	return settings, nil
}

// ListPublic retrieves public settings as a key to value map
func (r *SettingRepository) ListPublic() (map[string]string, error) {
	type kv struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}

	rows := []kv{}
	if err := r.db.Select(&rows, `SELECT key, value FROM system_settings WHERE is_public = true ORDER BY key`); err != nil {
		return nil, err
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}

	return settings, nil
}

// GetByKey retrieves a setting by key
func (r *SettingRepository) GetByKey(key string) (*models.SystemSetting, error) {
	query := `SELECT ` + settingColumns + ` FROM system_settings WHERE key = $1`

	var setting models.SystemSetting
	if err := r.db.Get(&setting, query, key); err != nil {
		return nil, err
	}

	return &setting, nil
}

// GetFloat retrieves a numeric setting, falling back to the default when the
// key is missing or not parseable
func (r *SettingRepository) GetFloat(key string, fallback float64) float64 {
	setting, err := r.GetByKey(key)
	if err != nil {
		return fallback
	}

	value, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		return fallback
	}

	return value
}

// Upsert creates the setting or replaces its value and metadata
func (r *SettingRepository) Upsert(setting *models.SystemSetting) error {
	query := `
		INSERT INTO system_settings (id, key, value, type, "group", is_public, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
			type = EXCLUDED.type,
			"group" = EXCLUDED."group",
			is_public = EXCLUDED.is_public,
			description = EXCLUDED.description,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	if setting.ID == "" {
		setting.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		setting.ID, setting.Key, setting.Value, setting.Type,
		setting.Group, setting.IsPublic, setting.Description,
	).Scan(&setting.ID, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	return nil
}

// UpdateGroup replaces the values of existing settings within one group. An
// unknown key rolls the whole batch back.
func (r *SettingRepository) UpdateGroup(group string, values map[string]string) (int, error) {
	updated := 0
	err := WithTx(r.db, func(tx *sqlx.Tx) error {
		for key, value := range values {
			result, err := tx.Exec(
				`UPDATE system_settings SET value = $1, updated_at = NOW() WHERE key = $2 AND "group" = $3`,
				value, key, group,
			)
			if err != nil {
				return err
			}

			rows, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if rows == 0 {
				return fmt.Errorf("%w: %s", ErrUnknownSettingKey, key)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}

// Delete removes a setting by key
func (r *SettingRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM system_settings WHERE key = $1`, key)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("setting not found")
	}

	return nil
}
