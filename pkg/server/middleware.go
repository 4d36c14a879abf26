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

package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestVerifier is the verification decision the middleware
// delegates to. Satisfied by verifier.RequestVerifier.
type RequestVerifier interface {
	Verify(ctx context.Context, signatureHeader, method, path string, headers map[string]string, body []byte) bool
}

// SignatureMiddleware verifies the HTTP signature of inbound requests.
// The body is buffered so verification and the handler both read the
// full payload. Unsigned or failing requests are rejected with 401.
func SignatureMiddleware(v RequestVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()

			signatureHeader := r.Header.Get("Signature")
			if signatureHeader == "" {
				logger.Warn("unsigned inbox request rejected",
					zap.String("remote", c.RealIP()))
				return echo.NewHTTPError(http.StatusUnauthorized, "missing signature header")
			}

			var body []byte
			if r.Body != nil {
				var err error
				body, err = io.ReadAll(r.Body)
				if err != nil {
					return echo.NewHTTPError(http.StatusBadRequest, "could not read body")
				}
				r.Body.Close()
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if !v.Verify(r.Context(), signatureHeader, r.Method, r.URL.Path, headerMap(r), body) {
				logger.Warn("inbox request failed verification",
					zap.String("remote", c.RealIP()), zap.String("path", r.URL.Path))
				return echo.NewHTTPError(http.StatusUnauthorized, "signature verification failed")
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			return next(c)
		}
	}
}

// headerMap flattens the request headers to single values. Go moves
// the Host header out of the header map, so it is restored here for
// the signing string.
func headerMap(r *http.Request) map[string]string {
	headers := make(map[string]string, len(r.Header)+1)
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[strings.ToLower(name)] = values[0]
		}
	}
	headers["host"] = r.Host
	return headers
}
