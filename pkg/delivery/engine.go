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

package delivery

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/activitypub"
	"github.com/tinyfedi/fedcore/pkg/httpsig"
	"github.com/tinyfedi/fedcore/pkg/jsonx"
	"github.com/tinyfedi/fedcore/pkg/metrics"
)

// Client is the outbound HTTP surface the engine needs. Satisfied by
// client.HTTPClient.
type Client interface {
	FetchJSON(ctx context.Context, url string) (map[string]any, error)
	Post(ctx context.Context, url string, body []byte, headers map[string]string) (int, error)
}

// FollowerSource lists the follower actor URLs a broadcast targets.
// Satisfied by dispatch.FollowerStore.
type FollowerSource interface {
	List() ([]string, error)
}

// Engine delivers signed activities. It holds the local actor's signing
// identity: the private key and the keyId remote servers resolve to the
// matching public key.
type Engine struct {
	client        Client
	codec         *httpsig.Codec
	followers     FollowerSource
	keyID         string
	privateKeyPEM string
	logger        *zap.Logger
	metrics       *metrics.Metrics

	now func() time.Time
}

// New creates an Engine. keyID is the local actor's publicKey.id. A nil
// logger is replaced with a no-op one; metrics may be nil.
func New(client Client, codec *httpsig.Codec, followers FollowerSource,
	keyID, privateKeyPEM string, logger *zap.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		client:        client,
		codec:         codec,
		followers:     followers,
		keyID:         keyID,
		privateKeyPEM: privateKeyPEM,
		logger:        logger,
		metrics:       m,
		now:           time.Now,
	}
}

// FetchInbox resolves an actor URL to its inbox URL. Any fetch or
// shape problem reports no inbox; the failure is logged, not raised.
func (e *Engine) FetchInbox(ctx context.Context, actorURL string) (string, bool) {
	doc, err := e.client.FetchJSON(ctx, actorURL)
	if err != nil {
		e.logger.Warn("could not fetch actor document",
			zap.String("actor", actorURL), zap.Error(err))
		return "", false
	}

	inbox, ok := doc["inbox"].(string)
	if !ok || inbox == "" {
		e.logger.Warn("actor document has no inbox", zap.String("actor", actorURL))
		return "", false
	}
	return inbox, true
}

// Deliver signs the activity and POSTs it to an inbox URL. One
// attempt; any network failure or non-2xx status is reported as false.
func (e *Engine) Deliver(ctx context.Context, activity activitypub.Activity, inboxURL string) bool {
	ok := e.deliver(ctx, activity, inboxURL)
	e.metrics.RecordDelivery(ok)
	return ok
}

func (e *Engine) deliver(ctx context.Context, activity activitypub.Activity, inboxURL string) bool {
	body, err := jsonx.Marshal(activity)
	if err != nil {
		e.logger.Error("could not encode activity",
			zap.String("id", activity.ID()), zap.Error(err))
		return false
	}

	target, err := url.Parse(inboxURL)
	if err != nil || target.Host == "" {
		e.logger.Warn("invalid inbox url", zap.String("inbox", inboxURL), zap.Error(err))
		return false
	}

	headers := map[string]string{
		"host":         target.Host,
		"date":         httpsig.FormatDate(e.now()),
		"content-type": activitypub.ContentTypeActivityJSON,
	}

	signature, err := e.codec.Sign("POST", target.RequestURI(), headers, body, e.privateKeyPEM, e.keyID)
	if err != nil {
		e.logger.Error("could not sign delivery", zap.String("inbox", inboxURL), zap.Error(err))
		return false
	}
	headers["signature"] = signature

	status, err := e.client.Post(ctx, inboxURL, body, headers)
	if err != nil {
		e.logger.Warn("delivery failed", zap.String("inbox", inboxURL), zap.Error(err))
		return false
	}
	if status < 200 || status > 299 {
		e.logger.Warn("inbox rejected delivery",
			zap.String("inbox", inboxURL), zap.Int("status", status))
		return false
	}

	e.logger.Info("activity delivered",
		zap.String("id", activity.ID()), zap.String("inbox", inboxURL))
	return true
}

// DeliverToActor resolves the actor's inbox and delivers to it.
func (e *Engine) DeliverToActor(ctx context.Context, activity activitypub.Activity, actorURL string) bool {
	inbox, ok := e.FetchInbox(ctx, actorURL)
	if !ok {
		e.metrics.RecordDelivery(false)
		return false
	}
	return e.Deliver(ctx, activity, inbox)
}

// BroadcastToFollowers delivers to every follower in one snapshot of
// the collection, attempting all of them regardless of individual
// failures, and returns the per-actor outcome map.
func (e *Engine) BroadcastToFollowers(ctx context.Context, activity activitypub.Activity) (map[string]bool, error) {
	targets, err := e.followers.List()
	if err != nil {
		return nil, err
	}

	results := make(map[string]bool, len(targets))
	for _, actorURL := range targets {
		results[actorURL] = e.DeliverToActor(ctx, activity, actorURL)
	}

	e.logger.Info("broadcast finished", zap.Int("targets", len(targets)))
	return results, nil
}
