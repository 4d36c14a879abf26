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

package verifier

import (
	"context"
	"net/mail"
	"time"

	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/httpsig"
	"github.com/tinyfedi/fedcore/pkg/metrics"
)

// DefaultMaxClockSkew is the accepted distance between a request's
// Date header and local time, in either direction.
const DefaultMaxClockSkew = 300 * time.Second

// KeyResolver resolves a keyId to a PEM public key. Satisfied by
// resolver.ActorKeyResolver.
type KeyResolver interface {
	Resolve(ctx context.Context, keyID string) (string, bool)
}

// Policy makes the soft header checks explicit. With both flags false
// a request lacking a Digest or Date header skips that check (logged,
// not rejected); with a flag set the absent header is a rejection.
type Policy struct {
	RequireDigest bool
	RequireDate   bool

	// MaxClockSkew bounds |now - Date| for the freshness check; zero
	// selects DefaultMaxClockSkew.
	MaxClockSkew time.Duration
}

// RequestVerifier makes the full verification decision for an inbound
// request: body digest, date freshness, and HTTP signature.
type RequestVerifier struct {
	codec   *httpsig.Codec
	keys    KeyResolver
	policy  Policy
	logger  *zap.Logger
	metrics *metrics.Metrics

	now func() time.Time
}

// New creates a RequestVerifier. A nil logger is replaced with a
// no-op one; metrics may be nil.
func New(codec *httpsig.Codec, keys KeyResolver, policy Policy, logger *zap.Logger, m *metrics.Metrics) *RequestVerifier {
	if policy.MaxClockSkew <= 0 {
		policy.MaxClockSkew = DefaultMaxClockSkew
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestVerifier{
		codec:   codec,
		keys:    keys,
		policy:  policy,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Verify runs the three independent checks; all must pass. Failures
// are reported as false with a logged reason, never as an error.
func (v *RequestVerifier) Verify(ctx context.Context, signatureHeader, method, path string, headers map[string]string, body []byte) bool {
	ok := v.verify(ctx, signatureHeader, method, path, headers, body)
	v.metrics.RecordVerification(ok)
	return ok
}

func (v *RequestVerifier) verify(ctx context.Context, signatureHeader, method, path string, headers map[string]string, body []byte) bool {
	if !v.checkDigest(headers, body) {
		return false
	}
	if !v.checkDate(headers) {
		return false
	}

	lookup := func(keyID string) (string, bool) {
		return v.keys.Resolve(ctx, keyID)
	}
	if !v.codec.Verify(signatureHeader, method, path, headers, body, lookup) {
		v.logger.Warn("signature verification failed", zap.String("path", path))
		return false
	}

	v.logger.Debug("request verification passed", zap.String("path", path))
	return true
}

// checkDigest recomputes the body digest and requires byte-equality
// with the declared Digest header. An absent header is soft unless the
// policy requires it.
func (v *RequestVerifier) checkDigest(headers map[string]string, body []byte) bool {
	declared, ok := httpsig.HeaderValue(headers, "digest")
	if !ok {
		if v.policy.RequireDigest {
			v.logger.Warn("digest header required by policy but absent")
			return false
		}
		v.logger.Warn("no digest header present, skipping digest check")
		return true
	}

	expected := httpsig.ComputeDigest(body)
	if declared != expected {
		v.logger.Warn("digest mismatch",
			zap.String("declared", declared), zap.String("expected", expected))
		return false
	}
	return true
}

// checkDate parses the Date header as an RFC 2822 date and requires
// |now - date| within the skew window. Stale and future-dated requests
// are rejected symmetrically.
func (v *RequestVerifier) checkDate(headers map[string]string) bool {
	value, ok := httpsig.HeaderValue(headers, "date")
	if !ok {
		if v.policy.RequireDate {
			v.logger.Warn("date header required by policy but absent")
			return false
		}
		v.logger.Warn("no date header present, skipping freshness check")
		return true
	}

	requestTime, err := mail.ParseDate(value)
	if err != nil {
		v.logger.Warn("could not parse date header", zap.String("date", value), zap.Error(err))
		return false
	}

	age := v.now().Sub(requestTime)
	if age < 0 {
		age = -age
	}
	if age > v.policy.MaxClockSkew {
		v.logger.Warn("date outside freshness window",
			zap.Duration("age", age), zap.Duration("max", v.policy.MaxClockSkew))
		return false
	}
	return true
}
