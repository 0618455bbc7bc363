package models

import "time"

type Post struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Content       string    `db:"content" json:"content"`
	ScheduledTime time.Time `db:"scheduled_time" json:"scheduled_time"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
	Status        string    `db:"status" json:"status"` // draft, scheduled, posted, failed
	Platform      string    `db:"platform" json:"platform"`
	PostID        string    `db:"post_id" json:"post_id"` // platform-assigned id, set after publishing
	ImageFilename string    `db:"image_filename" json:"image_filename"`
	ImageURL      string    `db:"image_url" json:"image_url"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
)

// PlatformX is the only publishing target currently supported.
const PlatformX = "x"
