package models

import "time"

const SettingWhatsAppNumber = "whatsapp_number"

// SiteSetting is a key/value entry editable from the back office.
type SiteSetting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
