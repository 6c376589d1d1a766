package domain

import "time"

// Video constraints shared by every upload backend.
const (
	MaxVideoBytes       int64 = 500 * 1024 * 1024
	MaxVideoDurationSec       = 120
	UploadSlotTTL             = 30 * time.Minute
)

// AllowedVideoTypes maps accepted content types to their storage file extension.
var AllowedVideoTypes = map[string]string{
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
	"video/webm":      "webm",
}

// UploadMode names the upload backend variant.
type UploadMode string

const (
	UploadModePresigned UploadMode = "presigned"
	UploadModeBlob      UploadMode = "blob"
	UploadModeLocal     UploadMode = "local"
)

type UploadSlotRequest struct {
	ContentType string  `json:"content_type" validate:"required"`
	Size        int64   `json:"size" validate:"required,gt=0"`
	DurationSec float64 `json:"duration_sec" validate:"required,gt=0"`
	Email       string  `json:"email" validate:"omitempty,email"`
}

// UploadConstraints is echoed to clients with every slot.
type UploadConstraints struct {
	MaxSizeMB      int64    `json:"max_size_mb"`
	MaxDurationSec int      `json:"max_duration_sec"`
	AllowedTypes   []string `json:"allowed_types"`
}

func VideoConstraints() UploadConstraints {
	return UploadConstraints{
		MaxSizeMB:      MaxVideoBytes / 1024 / 1024,
		MaxDurationSec: MaxVideoDurationSec,
		AllowedTypes:   []string{"video/mp4", "video/quicktime", "video/webm"},
	}
}

// UploadSlot is a write location handed to the client.
// For the blob mode UploadURL already carries the SAS credential.
type UploadSlot struct {
	Mode        UploadMode        `json:"mode"`
	Key         string            `json:"key,omitempty"`
	UploadURL   string            `json:"upload_url"`
	PublicURL   string            `json:"public_url,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	ExpiresAt   time.Time         `json:"expires_at,omitzero"`
	Constraints UploadConstraints `json:"constraints"`
}

// UploadInfo is the result of a metadata probe on a stored object.
type UploadInfo struct {
	Exists      bool
	Size        int64
	ContentType string
}

type FinalizeRequest struct {
	VideoKey         string  `json:"video_key" validate:"required"`
	VideoURL         string  `json:"video_url" validate:"required"`
	VideoDurationSec float64 `json:"video_duration_sec" validate:"required,gte=1,lte=120"`
}
