// Copyright (C) 2026 TinyFedi Project
//
// This file is part of fedcore.
//
// fedcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fedcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fedcore.  If not, see <https://www.gnu.org/licenses/>.

package resolver

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/metrics"
)

// DefaultKeyTTL bounds how long a fetched public key is trusted
// without refetching. There is no invalidation hook: a rotated key is
// picked up at most one TTL later, an accepted tradeoff.
const DefaultKeyTTL = time.Hour

// DocumentFetcher fetches a remote JSON document with ActivityPub
// content negotiation. Satisfied by client.HTTPClient.
type DocumentFetcher interface {
	FetchJSON(ctx context.Context, url string) (map[string]any, error)
}

type cachedKey struct {
	pem       string
	fetchedAt time.Time
}

// ActorKeyResolver resolves a keyId URL (actor URL plus key fragment)
// to the PEM public key published in the actor's document. Results are
// cached per keyId; expired entries are evicted lazily on lookup.
type ActorKeyResolver struct {
	fetcher DocumentFetcher
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	cache map[string]cachedKey

	now func() time.Time
}

// New creates an ActorKeyResolver. A zero ttl selects DefaultKeyTTL;
// a nil logger is replaced with a no-op one; metrics may be nil.
func New(fetcher DocumentFetcher, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *ActorKeyResolver {
	if ttl <= 0 {
		ttl = DefaultKeyTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActorKeyResolver{
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
		cache:   make(map[string]cachedKey),
		now:     time.Now,
	}
}

// Resolve maps keyID to a PEM public key. The second return is false
// when the key cannot be resolved for any reason: network failure,
// malformed document, or no publicKey entry whose id matches keyID.
// Errors never propagate to the caller.
func (r *ActorKeyResolver) Resolve(ctx context.Context, keyID string) (string, bool) {
	if pem, ok := r.cached(keyID); ok {
		r.metrics.RecordKeyCache(true)
		return pem, true
	}
	r.metrics.RecordKeyCache(false)

	fetchURL, err := documentURL(keyID)
	if err != nil {
		r.logger.Warn("keyId is not a valid URL", zap.String("keyId", keyID), zap.Error(err))
		r.metrics.RecordKeyFetchFailure()
		return "", false
	}

	doc, err := r.fetcher.FetchJSON(ctx, fetchURL)
	if err != nil {
		r.logger.Warn("failed to fetch actor document",
			zap.String("keyId", keyID), zap.String("url", fetchURL), zap.Error(err))
		r.metrics.RecordKeyFetchFailure()
		return "", false
	}

	pem, ok := selectKey(doc, keyID)
	if !ok {
		r.logger.Warn("no matching publicKey in actor document", zap.String("keyId", keyID))
		r.metrics.RecordKeyFetchFailure()
		return "", false
	}

	r.store(keyID, pem)
	return pem, true
}

// cached returns a non-expired cache entry for keyID.
func (r *ActorKeyResolver) cached(keyID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cache[keyID]
	if !ok {
		return "", false
	}
	if r.now().Sub(entry.fetchedAt) >= r.ttl {
		delete(r.cache, keyID)
		return "", false
	}
	return entry.pem, true
}

func (r *ActorKeyResolver) store(keyID, pem string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[keyID] = cachedKey{pem: pem, fetchedAt: r.now()}
}

// documentURL strips the fragment from a keyId, keeping the query, to
// obtain the actor document URL to fetch.
func documentURL(keyID string) (string, error) {
	u, err := url.Parse(keyID)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	return u.String(), nil
}

// selectKey finds the publicKey entry whose id equals the original
// fragment-bearing keyID. The publicKey field may be a single object
// or an array; some implementations publish multiple keys per actor.
func selectKey(doc map[string]any, keyID string) (string, bool) {
	var candidates []any
	switch pk := doc["publicKey"].(type) {
	case map[string]any:
		candidates = []any{pk}
	case []any:
		candidates = pk
	default:
		return "", false
	}

	for _, candidate := range candidates {
		obj, ok := candidate.(map[string]any)
		if !ok {
			continue
		}
		if id, _ := obj["id"].(string); id != keyID {
			continue
		}
		if pem, ok := obj["publicKeyPem"].(string); ok && pem != "" {
			return pem, true
		}
	}
	return "", false
}
