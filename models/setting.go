package models

import "time"

// Setting is one key-value entry in the local persistent store. All app
// state that must survive restarts (endpoint config, history cache, trial
// bookkeeping) lives in this table.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
