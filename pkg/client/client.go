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

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/activitypub"
	"github.com/tinyfedi/fedcore/pkg/jsonx"
)

// HTTPClient is the outbound HTTP surface of the federation core: it
// fetches remote JSON documents (actor profiles) and posts signed
// activity bodies to remote inboxes.
type HTTPClient struct {
	rc     *resty.Client
	logger *zap.Logger
}

// New creates an HTTPClient. userAgent identifies this server to its
// peers; timeout bounds every request end to end. A nil logger is
// replaced with a no-op one.
func New(userAgent string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &HTTPClient{rc: rc, logger: logger}
}

// FetchJSON GETs a URL with ActivityPub content negotiation and
// decodes the response body as a JSON object. Non-2xx statuses are
// errors.
func (c *HTTPClient) FetchJSON(ctx context.Context, url string) (map[string]any, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Accept", activitypub.AcceptHeader).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status())
	}

	var doc map[string]any
	if err := jsonx.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("fetch %s: decode body: %w", url, err)
	}
	return doc, nil
}

// Post sends a raw body to a URL with the given headers and returns
// the response status code. The caller supplies all headers, signature
// included; this method adds nothing beyond the client's User-Agent.
func (c *HTTPClient) Post(ctx context.Context, url string, body []byte, headers map[string]string) (int, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(url)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", url, err)
	}
	return resp.StatusCode(), nil
}
