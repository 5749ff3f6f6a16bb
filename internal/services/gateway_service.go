package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"asset-relay/internal/domain/asset"
	"asset-relay/internal/proxy"
	"asset-relay/internal/storage"
	"asset-relay/internal/store"
	relay_errors "asset-relay/pkg/errors"
	"asset-relay/pkg/logger"
)

// GatewayConfig configures the retrieval gateway.
type GatewayConfig struct {
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	WriteThrough    bool
	MaxAssetBytes   int64
	DefaultTTL      time.Duration
}

// GatewayService serves stored assets by identifier and proxies unknown
// attachment paths to the upstream origin, normalizing its error quirks into
// the service's own error taxonomy.
type GatewayService struct {
	store    *store.ContentStore
	archive  *storage.Client
	rewrites proxy.RewriteTable
	client   *http.Client
	config   GatewayConfig
	logger   *logger.Logger
}

func NewGatewayService(st *store.ContentStore, archive *storage.Client, rewrites proxy.RewriteTable, cfg GatewayConfig, l *logger.Logger) *GatewayService {
	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GatewayService{
		store:    st,
		archive:  archive,
		rewrites: rewrites,
		client:   &http.Client{Timeout: timeout},
		config:   cfg,
		logger:   l,
	}
}

// FetchLocal returns a stored record by id, consulting the archive tier on a
// memory miss when one is configured.
func (g *GatewayService) FetchLocal(ctx context.Context, id string) (asset.Record, error) {
	rec, err := g.store.Get(id)
	if err == nil {
		return rec, nil
	}

	if g.archive != nil {
		payload, contentType, archiveErr := g.archive.GetObject(ctx, id)
		if archiveErr == nil && len(payload) > 0 {
			rec = asset.Record{
				ID:          id,
				Payload:     payload,
				ContentType: contentType,
				SizeBytes:   int64(len(payload)),
				CreatedAt:   time.Now(),
			}
			if g.config.DefaultTTL > 0 {
				rec.ExpiresAt = rec.CreatedAt.Add(g.config.DefaultTTL)
			}
			if putErr := g.store.Put(rec); putErr != nil && g.logger != nil {
				g.logger.Warnf("restoring archived asset %s into store failed: %s", id, putErr)
			}
			return rec, nil
		}
	}
	return asset.Record{}, relay_errors.ErrNotFound
}

// ProxyAttachment serves an upstream attachment path, preferring a locally
// cached copy. Upstream placeholder bodies for expired assets are mapped to
// ErrAssetExpiredOrMissing instead of being passed through as binary.
func (g *GatewayService) ProxyAttachment(ctx context.Context, channel, message, attachment string) (asset.Record, error) {
	key := path.Join("attachments", channel, message, attachment)

	if rec, err := g.store.Get(key); err == nil {
		return rec, nil
	}

	upstreamURL, err := g.upstreamURL(key)
	if err != nil {
		return asset.Record{}, fmt.Errorf("building upstream url: %w", relay_errors.ErrMalformedInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstreamURL, nil)
	if err != nil {
		return asset.Record{}, fmt.Errorf("building upstream request: %w", relay_errors.ErrUpstreamUnavailable)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		// Client disconnects surface as context cancellation, not as an
		// upstream failure. Never retried within the request.
		if ctx.Err() != nil {
			return asset.Record{}, ctx.Err()
		}
		if g.logger != nil {
			g.logger.Errorf("upstream request for %s failed: %s", key, err)
		}
		return asset.Record{}, fmt.Errorf("contacting upstream: %w", relay_errors.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	rec, err := g.classify(resp, key)
	if err != nil {
		return asset.Record{}, err
	}

	if g.config.WriteThrough && rec.SizeBytes <= g.config.MaxAssetBytes {
		cached := rec
		if g.config.DefaultTTL > 0 {
			cached.ExpiresAt = cached.CreatedAt.Add(g.config.DefaultTTL)
		}
		if putErr := g.store.Put(cached); putErr != nil && g.logger != nil {
			// A full store never fails the client response.
			g.logger.Warnf("write-through for %s failed: %s", key, putErr)
		}
	}
	return rec, nil
}

func (g *GatewayService) upstreamURL(key string) (string, error) {
	base, err := url.Parse(g.config.UpstreamBaseURL)
	if err != nil {
		return "", err
	}
	base.Path = path.Join(base.Path, key)
	return g.rewrites.Rewrite(base).String(), nil
}

// classify maps an upstream response onto the gateway's error taxonomy. The
// upstream answers expired or deleted attachments with a plain-text
// placeholder body, which must never be served as asset bytes.
func (g *GatewayService) classify(resp *http.Response, key string) (asset.Record, error) {
	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode == http.StatusNotFound {
		return asset.Record{}, fmt.Errorf("upstream has no %s: %w", key, relay_errors.ErrAssetExpiredOrMissing)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if g.logger != nil {
			g.logger.Errorf("upstream returned %d for %s", resp.StatusCode, key)
		}
		return asset.Record{}, fmt.Errorf("upstream status %d: %w", resp.StatusCode, relay_errors.ErrUpstreamUnavailable)
	}
	if isExpiredSignature(contentType) {
		return asset.Record{}, fmt.Errorf("upstream placeholder for %s: %w", key, relay_errors.ErrAssetExpiredOrMissing)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return asset.Record{}, fmt.Errorf("reading upstream body: %w", relay_errors.ErrUpstreamUnavailable)
	}

	return asset.Record{
		ID:          key,
		Payload:     payload,
		ContentType: contentType,
		SizeBytes:   int64(len(payload)),
		CreatedAt:   time.Now(),
	}, nil
}

// isExpiredSignature reports whether an upstream content type is the known
// text placeholder returned for expired or missing assets.
func isExpiredSignature(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return mediaType == "text/plain" || mediaType == "text/html"
}
