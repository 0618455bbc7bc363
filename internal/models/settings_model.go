package models

import "time"

// Setting is a single key/value row. Values hold either a JSON document or a
// bare string; decoding is the settings service's concern.
type Setting struct {
	ID        int64     `db:"id" json:"id"`
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
