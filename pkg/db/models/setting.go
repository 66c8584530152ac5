package models

import (
	"time"

	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

// Setting is a keyed configuration value editable by admins at runtime.
type Setting struct {
	Key       string          `gorm:"column:key;type:text;primaryKey"`
	Value     types.JSONValue `gorm:"column:value;type:jsonb;not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
