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
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// KeyLookup resolves a keyId URL to a PEM public key. The second
// return reports whether the key could be resolved.
type KeyLookup func(keyID string) (string, bool)

// Codec builds and checks draft-cavage signatures. One Codec instance
// serves both the signing and the verifying side; the signing string
// routine is shared so the canonical form cannot drift.
type Codec struct {
	logger *zap.Logger
}

// NewCodec creates a Codec. A nil logger is replaced with a no-op one.
func NewCodec(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{logger: logger}
}

// BuildSigningString assembles the canonical string covered by the
// signature. Header names are emitted lowercased in the given order;
// the (request-target) pseudo-header expands to the lowercased method
// and the path. A header absent from the request is emitted with an
// empty value so that verification fails downstream instead of here.
func (c *Codec) BuildSigningString(headerNames []string, method, path string, headers map[string]string) string {
	parts := make([]string, 0, len(headerNames))

	for _, name := range headerNames {
		if name == RequestTarget {
			parts = append(parts, fmt.Sprintf("%s: %s %s", RequestTarget, strings.ToLower(method), path))
			continue
		}

		value, ok := HeaderValue(headers, name)
		if !ok {
			c.logger.Warn("header missing from request, signing string will not verify",
				zap.String("header", name))
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(name), value))
	}

	return strings.Join(parts, "\n")
}

// ComputeDigest returns the Digest header value for a request body:
// SHA-256 over the raw bytes, base64-encoded, with a fixed algorithm
// label.
func ComputeDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return "SHA-256=" + base64.StdEncoding.EncodeToString(sum[:])
}

// Sign produces a Signature header value for an outgoing request.
//
// The signed header set is fixed to OutgoingSignedHeaders. As a side
// effect the supplied header map gains a digest entry computed from
// body; the caller must transmit it with the request.
func (c *Codec) Sign(method, path string, headers map[string]string, body []byte, privateKeyPEM, keyID string) (string, error) {
	headers["digest"] = ComputeDigest(body)

	signedHeaders := strings.Fields(OutgoingSignedHeaders)
	signingString := c.BuildSigningString(signedHeaders, method, path, headers)

	priv, err := ParsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return "", fmt.Errorf("failed to load private key: %w", err)
	}

	hashed := sha256.Sum256([]byte(signingString))
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, hashed[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}

	h := Header{
		KeyID:     keyID,
		Algorithm: Algorithm,
		Headers:   signedHeaders,
		Signature: base64.StdEncoding.EncodeToString(sig),
	}
	return h.String(), nil
}

// Verify checks a Signature header against the request it arrived on.
// Every failure mode (missing parameters, unresolvable key, malformed
// base64, bad key PEM, signature mismatch) is reported as false, never
// as an error.
func (c *Codec) Verify(signatureHeader, method, path string, headers map[string]string, body []byte, lookup KeyLookup) bool {
	h := ParseHeader(signatureHeader)

	if h.KeyID == "" || h.Signature == "" {
		c.logger.Warn("signature header missing keyId or signature")
		return false
	}

	signedHeaders := h.Headers
	if len(signedHeaders) == 0 {
		signedHeaders = strings.Fields(DefaultSignedHeaders)
	}

	publicKeyPEM, ok := lookup(h.KeyID)
	if !ok {
		c.logger.Warn("could not resolve public key", zap.String("keyId", h.KeyID))
		return false
	}

	signingString := c.BuildSigningString(signedHeaders, method, path, headers)

	sig, err := base64.StdEncoding.DecodeString(h.Signature)
	if err != nil {
		c.logger.Warn("signature is not valid base64", zap.Error(err))
		return false
	}

	pub, err := ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		c.logger.Warn("could not load public key", zap.String("keyId", h.KeyID), zap.Error(err))
		return false
	}

	hashed := sha256.Sum256([]byte(signingString))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, hashed[:], sig); err != nil {
		c.logger.Warn("signature verification failed", zap.String("keyId", h.KeyID), zap.Error(err))
		return false
	}

	c.logger.Debug("signature verified", zap.String("keyId", h.KeyID))
	return true
}

// HeaderValue finds a header value trying the exact name, then the
// lowercase form, then the canonical Title-Case form.
func HeaderValue(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	if v, ok := headers[strings.ToLower(name)]; ok {
		return v, true
	}
	if v, ok := headers[titleCase(name)]; ok {
		return v, true
	}
	return "", false
}

// titleCase upper-cases the first letter of each hyphen-separated
// segment, e.g. "content-type" -> "Content-Type".
func titleCase(name string) string {
	segs := strings.Split(strings.ToLower(name), "-")
	for i, s := range segs {
		if s == "" {
			continue
		}
		segs[i] = strings.ToUpper(s[:1]) + s[1:]
	}
	return strings.Join(segs, "-")
}
