package models

import "time"

// SystemSetting represents a key/value configuration entry managed by administrators
type SystemSetting struct {
	ID          string    `json:"id" db:"id"`
	Key         string    `json:"key" db:"key"`
	Value       string    `json:"value" db:"value"`
	Type        string    `json:"type" db:"type"` // string, integer, float, boolean, json
	Group       string    `json:"group" db:"group"`
	IsPublic    bool      `json:"is_public" db:"is_public"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UpsertSettingRequest represents the request to create or replace a setting
type UpsertSettingRequest struct {
	Key         string  `json:"key" binding:"required"`
	Value       string  `json:"value" binding:"required"`
	Type        string  `json:"type" binding:"omitempty,oneof=string integer float boolean json"`
	Group       string  `json:"group,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateSettingsGroupRequest represents the request to bulk-update the values
// of one settings group
type UpdateSettingsGroupRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
