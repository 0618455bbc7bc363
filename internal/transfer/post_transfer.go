package transfer

// PostCreation is the create-post request body. ScheduledTime accepts RFC 3339
// with or without an offset; offset-less values are read as US Eastern.
type PostCreation struct {
	Content       string `json:"content"`
	ScheduledTime string `json:"scheduled_time"`
	Platform      string `json:"platform"`
	ImageFilename string `json:"image_filename"`
	ImageURL      string `json:"image_url"`
}

// PostUpdate is a partial update. Nil pointers leave the field unchanged; an
// empty string clears the image fields. Status "post_now" publishes
// immediately instead of patching.
type PostUpdate struct {
	Content       *string `json:"content"`
	ScheduledTime *string `json:"scheduled_time"`
	Platform      *string `json:"platform"`
	Status        *string `json:"status"`
	ImageFilename *string `json:"image_filename"`
	ImageURL      *string `json:"image_url"`
}

// PostResponse renders a post with the scheduled time converted to the
// display timezone.
type PostResponse struct {
	ID            int64  `json:"id"`
	Content       string `json:"content"`
	ScheduledTime string `json:"scheduled_time"`
	Status        string `json:"status"`
	Platform      string `json:"platform"`
	PostID        string `json:"post_id"`
	ImageFilename string `json:"image_filename"`
	ImageURL      string `json:"image_url"`
	Warning       string `json:"warning,omitempty"`
}
