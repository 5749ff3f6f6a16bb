package services

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relay_errors "asset-relay/pkg/errors"
)

func TestParseDataURL(t *testing.T) {
	payload := []byte("hello bytes")
	raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	mediaType, decoded, err := parseDataURL(raw)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, payload, decoded)
}

func TestParseDataURLNormalizesMediaType(t *testing.T) {
	raw := "data:IMAGE/JPEG;base64," + base64.StdEncoding.EncodeToString([]byte{1})

	mediaType, _, err := parseDataURL(raw)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediaType)
}

func TestParseDataURLMalformed(t *testing.T) {
	cases := map[string]string{
		"missing prefix":     "image/png;base64,AAAA",
		"missing comma":      "data:image/png;base64",
		"missing base64 tag": "data:image/png,AAAA",
		"bad encoding tag":   "data:image/png;base32,AAAA",
		"invalid base64":     "data:image/png;base64,!!!not-base64!!!",
		"empty media type":   "data:;base64,AAAA",
		"empty payload":      "data:image/png;base64,",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseDataURL(raw)
			assert.ErrorIs(t, err, relay_errors.ErrMalformedInput)
		})
	}
}
