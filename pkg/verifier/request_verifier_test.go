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
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/httpsig"
)

// staticResolver resolves every keyId to one fixed PEM key
type staticResolver struct {
	pem string
	ok  bool
}

func (s *staticResolver) Resolve(ctx context.Context, keyID string) (string, bool) {
	return s.pem, s.ok
}

type signedRequest struct {
	sigHeader string
	method    string
	path      string
	headers   map[string]string
	body      []byte
}

// newSignedRequest signs a request body dated at the given time with a
// fresh keypair, returning the request and a resolver for its key.
func newSignedRequest(t *testing.T, date time.Time) (signedRequest, *staticResolver) {
	t.Helper()

	priv, err := httpsig.GenerateKeyPair()
	require.NoError(t, err)
	pubPEM, err := httpsig.EncodePublicKeyPEM(&priv.PublicKey)
	require.NoError(t, err)

	body := []byte(`{"type":"Follow","actor":"https://b.example/actor"}`)
	headers := map[string]string{
		"host":         "a.example",
		"date":         httpsig.FormatDate(date),
		"content-type": "application/activity+json",
	}

	codec := httpsig.NewCodec(zap.NewNop())
	sig, err := codec.Sign("POST", "/activitypub/inbox", headers, body,
		httpsig.EncodePrivateKeyPEM(priv), "https://b.example/actor#main-key")
	require.NoError(t, err)

	return signedRequest{
		sigHeader: sig,
		method:    "POST",
		path:      "/activitypub/inbox",
		headers:   headers,
		body:      body,
	}, &staticResolver{pem: pubPEM, ok: true}
}

// signWithHeaders signs over an explicit header set, for requests that
// deliberately omit digest or date.
func signWithHeaders(t *testing.T, signedHeaders []string, method, path string, headers map[string]string) (string, *staticResolver) {
	t.Helper()

	priv, err := httpsig.GenerateKeyPair()
	require.NoError(t, err)
	pubPEM, err := httpsig.EncodePublicKeyPEM(&priv.PublicKey)
	require.NoError(t, err)

	codec := httpsig.NewCodec(zap.NewNop())
	signingString := codec.BuildSigningString(signedHeaders, method, path, headers)
	hashed := sha256.Sum256([]byte(signingString))
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, hashed[:])
	require.NoError(t, err)

	h := httpsig.Header{
		KeyID:     "https://b.example/actor#main-key",
		Algorithm: httpsig.Algorithm,
		Headers:   signedHeaders,
		Signature: base64.StdEncoding.EncodeToString(sig),
	}
	return h.String(), &staticResolver{pem: pubPEM, ok: true}
}

func newVerifier(keys KeyResolver, policy Policy, at time.Time) *RequestVerifier {
	v := New(httpsig.NewCodec(zap.NewNop()), keys, policy, zap.NewNop(), nil)
	v.now = func() time.Time { return at }
	return v
}

func TestVerify_SignedRequestPasses(t *testing.T) {
	// Test Case 1: a freshly signed request passes all three checks

	now := time.Now()
	req, keys := newSignedRequest(t, now)
	v := newVerifier(keys, Policy{}, now)

	assert.True(t, v.Verify(context.Background(), req.sigHeader, req.method, req.path, req.headers, req.body))
}

func TestVerify_TamperedBody(t *testing.T) {
	// Test Case 2: one changed body byte fails the digest check

	now := time.Now()
	req, keys := newSignedRequest(t, now)
	v := newVerifier(keys, Policy{}, now)

	tampered := []byte(strings.Replace(string(req.body), "Follow", "follow", 1))

	assert.False(t, v.Verify(context.Background(), req.sigHeader, req.method, req.path, req.headers, tampered))
}

func TestVerify_FreshnessBoundary(t *testing.T) {
	// Test Case 3: exactly 300s old passes; 301s old or 301s in the
	// future fails (symmetric window)

	// The Date header carries second precision, so sub-second parts of
	// base would otherwise push the boundary case past the window.
	base := time.Now().Truncate(time.Second)

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"exactly 300s past", 300 * time.Second, true},
		{"301s past", 301 * time.Second, false},
		{"301s future", -301 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, keys := newSignedRequest(t, base)
			v := newVerifier(keys, Policy{}, base.Add(tt.offset))
			got := v.Verify(context.Background(), req.sigHeader, req.method, req.path, req.headers, req.body)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerify_BadDateHeader(t *testing.T) {
	// Test Case 4: an unparseable Date header is a rejection

	now := time.Now()
	req, keys := newSignedRequest(t, now)
	req.headers["date"] = "not a date"
	v := newVerifier(keys, Policy{}, now)

	assert.False(t, v.Verify(context.Background(), req.sigHeader, req.method, req.path, req.headers, req.body))
}

func TestVerify_MissingDigestSoft(t *testing.T) {
	// Test Case 5: absent Digest header skips the digest check by default

	now := time.Now()
	headers := map[string]string{
		"host": "a.example",
		"date": httpsig.FormatDate(now),
	}
	sig, keys := signWithHeaders(t, []string{"(request-target)", "host", "date"}, "POST", "/inbox", headers)
	v := newVerifier(keys, Policy{}, now)

	assert.True(t, v.Verify(context.Background(), sig, "POST", "/inbox", headers, []byte("{}")))
}

func TestVerify_MissingDigestRequired(t *testing.T) {
	// Test Case 6: RequireDigest turns the absent header into a rejection

	now := time.Now()
	headers := map[string]string{
		"host": "a.example",
		"date": httpsig.FormatDate(now),
	}
	sig, keys := signWithHeaders(t, []string{"(request-target)", "host", "date"}, "POST", "/inbox", headers)
	v := newVerifier(keys, Policy{RequireDigest: true}, now)

	assert.False(t, v.Verify(context.Background(), sig, "POST", "/inbox", headers, []byte("{}")))
}

func TestVerify_MissingDateSoft(t *testing.T) {
	// Test Case 7: absent Date header skips the freshness check by default

	headers := map[string]string{"host": "a.example"}
	sig, keys := signWithHeaders(t, []string{"(request-target)", "host"}, "POST", "/inbox", headers)
	v := newVerifier(keys, Policy{}, time.Now())

	assert.True(t, v.Verify(context.Background(), sig, "POST", "/inbox", headers, []byte("{}")))
}

func TestVerify_MissingDateRequired(t *testing.T) {
	// Test Case 8: RequireDate turns the absent header into a rejection

	headers := map[string]string{"host": "a.example"}
	sig, keys := signWithHeaders(t, []string{"(request-target)", "host"}, "POST", "/inbox", headers)
	v := newVerifier(keys, Policy{RequireDate: true}, time.Now())

	assert.False(t, v.Verify(context.Background(), sig, "POST", "/inbox", headers, []byte("{}")))
}

func TestVerify_UnresolvableKey(t *testing.T) {
	// Test Case 9: a key the resolver cannot produce fails verification

	now := time.Now()
	req, _ := newSignedRequest(t, now)
	v := newVerifier(&staticResolver{ok: false}, Policy{}, now)

	assert.False(t, v.Verify(context.Background(), req.sigHeader, req.method, req.path, req.headers, req.body))
}

func TestVerify_CustomSkewWindow(t *testing.T) {
	// Test Case 10: the skew window is configurable

	base := time.Now()
	req, keys := newSignedRequest(t, base)
	v := newVerifier(keys, Policy{MaxClockSkew: 10 * time.Second}, base.Add(11*time.Second))

	assert.False(t, v.Verify(context.Background(), req.sigHeader, req.method, req.path, req.headers, req.body))
}
