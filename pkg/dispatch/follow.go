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

package dispatch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/activitypub"
	"github.com/tinyfedi/fedcore/pkg/jsonx"
	"github.com/tinyfedi/fedcore/pkg/queue"
)

// ActivitiesNamespace is the store namespace for generated activities.
const ActivitiesNamespace = "activities"

// ErrMissingActor marks an inbound activity without an actor field.
var ErrMissingActor = errors.New("activity has no actor field")

// Deliverer is the delivery surface handlers use to send generated
// activities back out. Satisfied by delivery.Engine.
type Deliverer interface {
	DeliverToActor(ctx context.Context, activity activitypub.Activity, actorURL string) bool
}

// FollowHandler applies an inbound Follow: with auto-accept enabled it
// adds the follower, then generates, persists, and best-effort delivers
// an Accept. With auto-accept disabled the Follow is left for
// out-of-band review and still reports success.
type FollowHandler struct {
	followers  *FollowerStore
	store      queue.BlobStore
	deliverer  Deliverer
	baseURL    string
	actorID    string
	autoAccept bool
	logger     *zap.Logger
}

// NewFollowHandler creates a FollowHandler. baseURL is the local
// namespace root under which generated activity IDs live; actorID is
// the local actor document URL.
func NewFollowHandler(followers *FollowerStore, store queue.BlobStore, deliverer Deliverer,
	baseURL, actorID string, autoAccept bool, logger *zap.Logger) *FollowHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowHandler{
		followers:  followers,
		store:      store,
		deliverer:  deliverer,
		baseURL:    baseURL,
		actorID:    actorID,
		autoAccept: autoAccept,
		logger:     logger,
	}
}

func (h *FollowHandler) Handle(ctx context.Context, activity activitypub.Activity) error {
	actor := activity.Actor()
	if actor == "" {
		return ErrMissingActor
	}

	if !h.autoAccept {
		h.logger.Info("auto-accept disabled, leaving follow for review",
			zap.String("actor", actor))
		return nil
	}

	added, err := h.followers.Add(actor)
	if err != nil {
		return fmt.Errorf("failed to update followers: %w", err)
	}
	if !added {
		h.logger.Info("follower already exists", zap.String("actor", actor))
	}

	// An Accept is generated on every processing, even a repeat: the
	// remote side may have missed the earlier one.
	accept, localID := activitypub.NewAccept(h.baseURL, h.actorID, activity)
	data, err := jsonx.Marshal(accept)
	if err != nil {
		return fmt.Errorf("failed to encode accept: %w", err)
	}
	if err := h.store.Put(ActivitiesNamespace+"/"+localID+".json", data); err != nil {
		return fmt.Errorf("failed to persist accept: %w", err)
	}

	if !h.deliverer.DeliverToActor(ctx, accept, actor) {
		h.logger.Warn("accept delivery failed, follower kept",
			zap.String("actor", actor), zap.String("accept", accept.ID()))
	}
	return nil
}
