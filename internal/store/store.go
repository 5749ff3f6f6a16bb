package store

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"asset-relay/internal/domain/asset"
	relay_errors "asset-relay/pkg/errors"
	"asset-relay/pkg/logger"
)

// Policy selects which records are evicted first when the store is full.
type Policy string

var (
	PolicyOldest Policy = "oldest" // evict by insertion age
	PolicyLRU    Policy = "lru"    // evict by last access
)

// ParsePolicy maps a config string onto a Policy, defaulting to oldest-first.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyLRU {
		return PolicyLRU
	}
	return PolicyOldest
}

type Config struct {
	CapacityBytes int64
	Policy        Policy
	SweepInterval time.Duration
}

// ContentStore is a capacity-bounded, TTL-expiring map from identifiers to
// asset records. Writers are serialized; readers proceed concurrently.
type ContentStore struct {
	mu         sync.RWMutex
	config     Config
	records    map[string]*entry
	totalBytes int64
	seq        uint64
	logger     *logger.Logger
}

type entry struct {
	rec asset.Record
	seq uint64
	// accessed is a unix-nano stamp updated on Get under the LRU policy.
	// It only orders eviction, it never extends expiry.
	accessed atomic.Int64
}

func New(cfg Config, l *logger.Logger) *ContentStore {
	if cfg.Policy == "" {
		cfg.Policy = PolicyOldest
	}
	return &ContentStore{
		config:  cfg,
		records: make(map[string]*entry),
		logger:  l,
	}
}

// Put inserts a fully-formed record. The payload is copied, so callers keep
// no aliases into stored bytes. Expired records are swept lazily first; if
// the payload still cannot fit, enough of the oldest (or least recently
// used) records are evicted. A payload larger than the whole capacity fails
// with ErrCapacityExceeded and leaves the store unchanged.
func (s *ContentStore) Put(rec asset.Record) error {
	rec.SizeBytes = int64(len(rec.Payload))
	if rec.ID == "" {
		return relay_errors.ErrMalformedInput
	}
	if rec.SizeBytes > s.config.CapacityBytes {
		return relay_errors.ErrCapacityExceeded
	}

	payload := make([]byte, len(rec.Payload))
	copy(payload, rec.Payload)
	rec.Payload = payload

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked(now)

	// Re-inserting an existing id replaces the old record.
	s.removeLocked(rec.ID)

	if err := s.makeRoomLocked(rec.SizeBytes); err != nil {
		return err
	}

	s.seq++
	e := &entry{rec: rec, seq: s.seq}
	e.accessed.Store(now.UnixNano())
	s.records[rec.ID] = e
	s.totalBytes += rec.SizeBytes
	return nil
}

// Get looks up a record by id. Expired records are reported as not found
// even before the sweep removes them. The returned payload is a copy.
func (s *ContentStore) Get(id string) (asset.Record, error) {
	now := time.Now()

	s.mu.RLock()
	e, ok := s.records[id]
	if !ok || e.rec.Expired(now) {
		s.mu.RUnlock()
		return asset.Record{}, relay_errors.ErrNotFound
	}
	rec := e.rec
	payload := make([]byte, len(rec.Payload))
	copy(payload, rec.Payload)
	rec.Payload = payload
	s.mu.RUnlock()

	if s.config.Policy == PolicyLRU {
		e.accessed.Store(now.UnixNano())
	}
	return rec, nil
}

// Remove deletes a record by id. Idempotent; returns false if absent.
func (s *ContentStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

// EvictExpired removes every record whose TTL has passed and returns the
// number removed.
func (s *ContentStore) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictExpiredLocked(time.Now())
}

// Len returns the number of live records.
func (s *ContentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// TotalBytes returns the summed payload size of all live records.
func (s *ContentStore) TotalBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalBytes
}

// Run drives the periodic expiry sweep until ctx is cancelled.
func (s *ContentStore) Run(ctx context.Context) {
	interval := s.config.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if count := s.EvictExpired(); count > 0 && s.logger != nil {
				s.logger.Infof("expiry sweep evicted %d records", count)
			}
		}
	}
}

func (s *ContentStore) removeLocked(id string) bool {
	e, ok := s.records[id]
	if !ok {
		return false
	}
	delete(s.records, id)
	s.totalBytes -= e.rec.SizeBytes
	return true
}

func (s *ContentStore) evictExpiredLocked(now time.Time) int {
	count := 0
	for id, e := range s.records {
		if e.rec.Expired(now) {
			delete(s.records, id)
			s.totalBytes -= e.rec.SizeBytes
			count++
		}
	}
	return count
}

// makeRoomLocked evicts live records in policy order until sizeBytes fits
// under the capacity ceiling.
func (s *ContentStore) makeRoomLocked(sizeBytes int64) error {
	if s.totalBytes+sizeBytes <= s.config.CapacityBytes {
		return nil
	}

	victims := make([]*entry, 0, len(s.records))
	for _, e := range s.records {
		victims = append(victims, e)
	}
	if s.config.Policy == PolicyLRU {
		sort.Slice(victims, func(i, j int) bool {
			ai, aj := victims[i].accessed.Load(), victims[j].accessed.Load()
			if ai != aj {
				return ai < aj
			}
			return victims[i].seq < victims[j].seq
		})
	} else {
		sort.Slice(victims, func(i, j int) bool {
			return victims[i].seq < victims[j].seq
		})
	}

	for _, e := range victims {
		if s.totalBytes+sizeBytes <= s.config.CapacityBytes {
			break
		}
		s.removeLocked(e.rec.ID)
	}
	if s.totalBytes+sizeBytes > s.config.CapacityBytes {
		return relay_errors.ErrCapacityExceeded
	}
	return nil
}
