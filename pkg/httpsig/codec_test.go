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

package httpsig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testKeyPair generates a keypair and returns both sides as PEM.
func testKeyPair(t testing.TB) (privPEM, pubPEM string) {
	t.Helper()

	priv, err := GenerateKeyPair()
	require.NoError(t, err)

	pubPEM, err = EncodePublicKeyPEM(&priv.PublicKey)
	require.NoError(t, err)

	return EncodePrivateKeyPEM(priv), pubPEM
}

func staticLookup(pem string) KeyLookup {
	return func(keyID string) (string, bool) { return pem, true }
}

func TestBuildSigningString_RequestTarget(t *testing.T) {
	// Test Case 1: pseudo-header expands to lowercased method + path

	codec := NewCodec(zap.NewNop())

	s := codec.BuildSigningString(
		[]string{"(request-target)", "host", "date"},
		"POST", "/activitypub/inbox",
		map[string]string{
			"host": "remote.example",
			"date": "Sun, 21 Sep 2025 14:30:22 GMT",
		},
	)

	expected := "(request-target): post /activitypub/inbox\n" +
		"host: remote.example\n" +
		"date: Sun, 21 Sep 2025 14:30:22 GMT"
	assert.Equal(t, expected, s)
	assert.False(t, strings.HasSuffix(s, "\n"), "no trailing newline")
}

func TestBuildSigningString_CasingStability(t *testing.T) {
	// Test Case 2: output is identical regardless of header-name casing

	codec := NewCodec(zap.NewNop())
	names := []string{"(request-target)", "host", "date", "content-type"}

	variants := []map[string]string{
		{"host": "a.example", "date": "d", "content-type": "application/activity+json"},
		{"Host": "a.example", "Date": "d", "Content-Type": "application/activity+json"},
		{"HOST": "a.example", "DATE": "d", "CONTENT-TYPE": "application/activity+json"},
	}

	first := codec.BuildSigningString(names, "POST", "/inbox", variants[0])
	for _, headers := range variants[1:] {
		assert.Equal(t, first, codec.BuildSigningString(names, "POST", "/inbox", headers))
	}
}

func TestBuildSigningString_MissingHeader(t *testing.T) {
	// Test Case 3: absent headers are emitted with an empty value, not dropped

	codec := NewCodec(zap.NewNop())

	s := codec.BuildSigningString(
		[]string{"host", "digest"},
		"POST", "/inbox",
		map[string]string{"host": "a.example"},
	)

	assert.Equal(t, "host: a.example\ndigest: ", s)
}

func TestComputeDigest(t *testing.T) {
	// Test Case 4: fixed label and known SHA-256 vector

	assert.Equal(t, "SHA-256=47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", ComputeDigest(nil))
	assert.True(t, strings.HasPrefix(ComputeDigest([]byte(`{"type":"Follow"}`)), "SHA-256="))
}

func TestParseHeader(t *testing.T) {
	// Test Case 5: wire format round-trip and defaults

	raw := `keyId="https://a.example/actor#main-key",algorithm="hs2019",headers="(request-target) host date",signature="c2ln"`
	h := ParseHeader(raw)

	assert.Equal(t, "https://a.example/actor#main-key", h.KeyID)
	assert.Equal(t, "hs2019", h.Algorithm)
	assert.Equal(t, []string{"(request-target)", "host", "date"}, h.Headers)
	assert.Equal(t, "c2ln", h.Signature)
	assert.Equal(t, raw, h.String())

	// headers parameter absent
	h = ParseHeader(`keyId="https://a.example/actor#main-key",signature="c2ln"`)
	assert.Empty(t, h.Headers)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	// Test Case 6: verify(sign(...)) succeeds with the matching key

	codec := NewCodec(zap.NewNop())
	privPEM, pubPEM := testKeyPair(t)

	headers := map[string]string{
		"host":         "remote.example",
		"date":         "Sun, 21 Sep 2025 14:30:22 GMT",
		"content-type": "application/activity+json",
	}
	body := []byte(`{"type":"Follow","actor":"https://b.example/actor"}`)

	sig, err := codec.Sign("POST", "/inbox", headers, body, privPEM, "https://b.example/actor#main-key")
	require.NoError(t, err)

	// Sign must have injected the digest header for the caller to send
	assert.Equal(t, ComputeDigest(body), headers["digest"])

	ok := codec.Verify(sig, "POST", "/inbox", headers, body, staticLookup(pubPEM))
	assert.True(t, ok)
}

func TestSignVerify_TamperedHeader(t *testing.T) {
	// Test Case 7: changing a signed header after signing breaks verification

	codec := NewCodec(zap.NewNop())
	privPEM, pubPEM := testKeyPair(t)

	headers := map[string]string{
		"host":         "remote.example",
		"date":         "Sun, 21 Sep 2025 14:30:22 GMT",
		"content-type": "application/activity+json",
	}
	sig, err := codec.Sign("POST", "/inbox", headers, []byte("{}"), privPEM, "key")
	require.NoError(t, err)

	headers["date"] = "Sun, 21 Sep 2025 15:30:22 GMT"

	assert.False(t, codec.Verify(sig, "POST", "/inbox", headers, []byte("{}"), staticLookup(pubPEM)))
}

func TestSignVerify_WrongKey(t *testing.T) {
	// Test Case 8: a different public key must not verify

	codec := NewCodec(zap.NewNop())
	privPEM, _ := testKeyPair(t)
	_, otherPubPEM := testKeyPair(t)

	headers := map[string]string{
		"host":         "remote.example",
		"date":         "Sun, 21 Sep 2025 14:30:22 GMT",
		"content-type": "application/activity+json",
	}
	sig, err := codec.Sign("POST", "/inbox", headers, []byte("{}"), privPEM, "key")
	require.NoError(t, err)

	assert.False(t, codec.Verify(sig, "POST", "/inbox", headers, []byte("{}"), staticLookup(otherPubPEM)))
}

func TestVerify_FailureModesCollapseToFalse(t *testing.T) {
	// Test Case 9: malformed input never panics or errors, only returns false

	codec := NewCodec(zap.NewNop())
	_, pubPEM := testKeyPair(t)
	headers := map[string]string{"host": "a.example", "date": "d"}

	// Missing keyId
	assert.False(t, codec.Verify(`signature="c2ln"`, "POST", "/inbox", headers, nil, staticLookup(pubPEM)))

	// Missing signature
	assert.False(t, codec.Verify(`keyId="k"`, "POST", "/inbox", headers, nil, staticLookup(pubPEM)))

	// Unresolvable key
	noKey := func(string) (string, bool) { return "", false }
	assert.False(t, codec.Verify(`keyId="k",signature="c2ln"`, "POST", "/inbox", headers, nil, noKey))

	// Signature is not base64
	assert.False(t, codec.Verify(`keyId="k",signature="%%%"`, "POST", "/inbox", headers, nil, staticLookup(pubPEM)))

	// Key is not PEM
	assert.False(t, codec.Verify(`keyId="k",signature="c2ln"`, "POST", "/inbox", headers, nil, staticLookup("garbage")))
}

func TestVerify_DefaultSignedHeaders(t *testing.T) {
	// Test Case 10: headers parameter absent falls back to
	// (request-target) host date

	codec := NewCodec(zap.NewNop())
	privPEM, pubPEM := testKeyPair(t)

	headers := map[string]string{
		"host":         "remote.example",
		"date":         "Sun, 21 Sep 2025 14:30:22 GMT",
		"content-type": "application/activity+json",
	}
	sig, err := codec.Sign("POST", "/inbox", headers, []byte("{}"), privPEM, "key")
	require.NoError(t, err)

	// Strip the headers parameter: the default set differs from the
	// signed one, so verification must fail rather than guess right.
	h := ParseHeader(sig)
	h.Headers = nil
	stripped := `keyId="` + h.KeyID + `",algorithm="hs2019",signature="` + h.Signature + `"`

	assert.False(t, codec.Verify(stripped, "POST", "/inbox", headers, []byte("{}"), staticLookup(pubPEM)))
}
