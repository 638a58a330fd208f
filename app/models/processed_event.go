package models

import "time"

// ProcessedEvent records a provider event id that has been claimed for
// processing. Existence of a row is the whole contract: once inserted, the
// event must never be applied again. Rows are never updated or deleted.
type ProcessedEvent struct {
	ID        string    `gorm:"primaryKey;type:varchar(191)" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
