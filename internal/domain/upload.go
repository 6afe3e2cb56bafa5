package domain

import (
	"time"
)

// MediaUpload is a presigned slot for an exercise demo video. The client PUTs
// the file to UploadURL and then confirms ObjectKey.
type MediaUpload struct {
	UploadURL   string    `json:"uploadUrl"`
	ObjectKey   string    `json:"objectKey"` // The key client needs to report back on confirm
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// MediaLink is a temporary download URL for an exercise video.
type MediaLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
