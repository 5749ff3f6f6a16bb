package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"asset-relay/internal/domain/asset"
	"asset-relay/internal/storage"
	"asset-relay/internal/store"
	relay_errors "asset-relay/pkg/errors"
	"asset-relay/pkg/logger"

	"github.com/google/uuid"
)

// IngestService validates untrusted input and turns it into stored asset
// records. Beyond the store write (and the optional archive copy) it has no
// side effects.
type IngestService struct {
	store         *store.ContentStore
	archive       *storage.Client
	maxAssetBytes int64
	defaultTTL    time.Duration
	logger        *logger.Logger
}

func NewIngestService(st *store.ContentStore, archive *storage.Client, maxAssetBytes int64, defaultTTL time.Duration, l *logger.Logger) *IngestService {
	return &IngestService{
		store:         st,
		archive:       archive,
		maxAssetBytes: maxAssetBytes,
		defaultTTL:    defaultTTL,
		logger:        l,
	}
}

// IngestDataURL decodes a data:<mime>;base64,<payload> string and stores the
// result under a freshly generated identifier.
func (s *IngestService) IngestDataURL(ctx context.Context, dataURL string) (asset.Record, error) {
	contentType, payload, err := parseDataURL(dataURL)
	if err != nil {
		return asset.Record{}, err
	}
	return s.ingest(ctx, payload, contentType)
}

// IngestUpload runs the same pipeline over a raw upload body. The declared
// content type is checked against the allow-list and the size ceiling but is
// not sniffed against the actual bytes; that is a documented limitation.
func (s *IngestService) IngestUpload(ctx context.Context, body io.Reader, declaredContentType string) (asset.Record, error) {
	// Read one byte past the ceiling so oversized bodies are detected
	// without buffering them whole.
	payload, err := io.ReadAll(io.LimitReader(body, s.maxAssetBytes+1))
	if err != nil {
		return asset.Record{}, fmt.Errorf("reading upload body: %w", relay_errors.ErrMalformedInput)
	}
	if len(payload) == 0 {
		return asset.Record{}, fmt.Errorf("empty upload body: %w", relay_errors.ErrMalformedInput)
	}
	return s.ingest(ctx, payload, declaredContentType)
}

func (s *IngestService) ingest(ctx context.Context, payload []byte, contentType string) (asset.Record, error) {
	if !asset.AllowedContentType(contentType) {
		return asset.Record{}, fmt.Errorf("content type %q: %w", contentType, relay_errors.ErrUnsupportedMediaType)
	}
	if int64(len(payload)) > s.maxAssetBytes {
		return asset.Record{}, fmt.Errorf("%d bytes over %d byte ceiling: %w", len(payload), s.maxAssetBytes, relay_errors.ErrPayloadTooLarge)
	}

	now := time.Now()
	rec := asset.Record{
		ID:          uuid.New().String(),
		Payload:     payload,
		ContentType: contentType,
		SizeBytes:   int64(len(payload)),
		CreatedAt:   now,
	}
	if s.defaultTTL > 0 {
		rec.ExpiresAt = now.Add(s.defaultTTL)
	}

	if err := s.store.Put(rec); err != nil {
		return asset.Record{}, err
	}

	if s.archive != nil {
		if err := s.archive.PutObject(ctx, rec.ID, rec.ContentType, rec.Payload); err != nil {
			// Archival is best effort; the in-memory record is already live.
			if s.logger != nil {
				s.logger.Warnf("archiving asset %s failed: %s", rec.ID, err)
			}
		}
	}
	return rec, nil
}
