package asset

import (
	"strings"
	"time"
)

// Record is a stored asset. Immutable once inserted; the store hands out
// payload copies so callers can never mutate stored bytes.
type Record struct {
	ID          string    `json:"id"`
	Payload     []byte    `json:"-"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"` // zero = never expires
}

// Expired reports whether the record's TTL has passed at the given instant.
func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// AllowedContentType reports whether a MIME type is on the binary media
// allow-list (image, audio and video only).
func AllowedContentType(contentType string) bool {
	mediaType := contentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return strings.HasPrefix(mediaType, "image/") ||
		strings.HasPrefix(mediaType, "audio/") ||
		strings.HasPrefix(mediaType, "video/")
}
