package relay_errors

import (
	"errors"
)

// Common errors
var (
	ErrMalformedInput        = errors.New("malformed input")
	ErrUnsupportedMediaType  = errors.New("unsupported media type")
	ErrPayloadTooLarge       = errors.New("payload too large")
	ErrCapacityExceeded      = errors.New("store capacity exceeded")
	ErrNotFound              = errors.New("not found")
	ErrAssetExpiredOrMissing = errors.New("asset expired or not found")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrNoFile                = errors.New("no file uploaded")
	ErrRateLimited           = errors.New("rate limited")
)
