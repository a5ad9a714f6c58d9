package domain

import "time"

// PushSubscription is one browser's push registration. The endpoint is
// its natural identity: a browser that re-subscribes gets a new endpoint
// and orphans the old row, which is pruned when the push service reports
// it gone.
type PushSubscription struct {
	ID       string `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"index;not null"`
	Endpoint string `json:"endpoint" gorm:"uniqueIndex;not null"`
	// Key material stays base64url-encoded at rest and is never exposed
	// in JSON.
	P256dh    string    `json:"-" gorm:"not null"`
	Auth      string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
