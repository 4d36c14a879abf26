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
	"testing"

	"go.uber.org/zap"
)

func BenchmarkSign(b *testing.B) {
	codec := NewCodec(zap.NewNop())
	privPEM, _ := testKeyPair(b)
	body := []byte(`{"type":"Follow","actor":"https://b.example/actor"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		headers := map[string]string{
			"host":         "remote.example",
			"date":         "Sun, 21 Sep 2025 14:30:22 GMT",
			"content-type": "application/activity+json",
		}
		if _, err := codec.Sign("POST", "/inbox", headers, body, privPEM, "key"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	codec := NewCodec(zap.NewNop())
	privPEM, pubPEM := testKeyPair(b)
	body := []byte(`{"type":"Follow","actor":"https://b.example/actor"}`)
	headers := map[string]string{
		"host":         "remote.example",
		"date":         "Sun, 21 Sep 2025 14:30:22 GMT",
		"content-type": "application/activity+json",
	}
	sig, err := codec.Sign("POST", "/inbox", headers, body, privPEM, "key")
	if err != nil {
		b.Fatal(err)
	}
	lookup := staticLookup(pubPEM)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !codec.Verify(sig, "POST", "/inbox", headers, body, lookup) {
			b.Fatal("verification failed")
		}
	}
}

func BenchmarkBuildSigningString(b *testing.B) {
	codec := NewCodec(zap.NewNop())
	names := []string{"(request-target)", "host", "date", "digest", "content-type"}
	headers := map[string]string{
		"host":         "remote.example",
		"date":         "Sun, 21 Sep 2025 14:30:22 GMT",
		"digest":       ComputeDigest([]byte("{}")),
		"content-type": "application/activity+json",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		codec.BuildSigningString(names, "POST", "/inbox", headers)
	}
}
