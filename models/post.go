package models

import "time"

// MaxPostBytes is the largest post body accepted, measured in UTF-8 bytes.
const MaxPostBytes = 1 << 20

// Post is a short text entry owned by a single user.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	Text      string    `gorm:"size:1048576;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
