package services

import (
	"encoding/base64"
	"fmt"
	"strings"

	relay_errors "asset-relay/pkg/errors"
)

// parseDataURL decodes a data:<mime>;base64,<payload> string into its media
// type and raw bytes. Anything that does not match that shape is rejected as
// malformed; content-type policy is the caller's concern.
func parseDataURL(raw string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return "", nil, fmt.Errorf("missing data: prefix: %w", relay_errors.ErrMalformedInput)
	}

	header, body, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("missing payload separator: %w", relay_errors.ErrMalformedInput)
	}

	mediaType, encoding, ok := strings.Cut(header, ";")
	if !ok || encoding != "base64" {
		return "", nil, fmt.Errorf("payload is not base64 encoded: %w", relay_errors.ErrMalformedInput)
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "" {
		return "", nil, fmt.Errorf("missing media type: %w", relay_errors.ErrMalformedInput)
	}

	payload, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", relay_errors.ErrMalformedInput)
	}
	if len(payload) == 0 {
		return "", nil, fmt.Errorf("empty payload: %w", relay_errors.ErrMalformedInput)
	}
	return mediaType, payload, nil
}
