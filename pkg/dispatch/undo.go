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

	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/activitypub"
)

// UndoHandler re-dispatches an Undo on the type of the activity being
// undone, against its own inner registry. Undoing a type nothing is
// registered for is handled and ignored, not failed.
type UndoHandler struct {
	inner  map[string]Handler
	logger *zap.Logger
}

// NewUndoHandler creates an UndoHandler with an empty inner registry.
func NewUndoHandler(logger *zap.Logger) *UndoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UndoHandler{inner: make(map[string]Handler), logger: logger}
}

// RegisterInner binds a handler to an undone activity type.
func (h *UndoHandler) RegisterInner(innerType string, handler Handler) {
	h.inner[innerType] = handler
}

func (h *UndoHandler) Handle(ctx context.Context, activity activitypub.Activity) error {
	innerType := activity.ObjectType()
	inner, ok := h.inner[innerType]
	if !ok {
		h.logger.Info("no handler for undone type, ignoring",
			zap.String("innerType", innerType), zap.String("id", activity.ID()))
		return nil
	}
	return inner.Handle(ctx, activity)
}

// UndoFollowHandler removes the undoing actor from the followers
// collection. Unfollowing an actor that is not a follower succeeds
// without changing anything.
type UndoFollowHandler struct {
	followers *FollowerStore
	logger    *zap.Logger
}

// NewUndoFollowHandler creates an UndoFollowHandler.
func NewUndoFollowHandler(followers *FollowerStore, logger *zap.Logger) *UndoFollowHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UndoFollowHandler{followers: followers, logger: logger}
}

func (h *UndoFollowHandler) Handle(ctx context.Context, activity activitypub.Activity) error {
	actor := activity.Actor()
	if actor == "" {
		// Some servers only set the actor on the wrapped Follow.
		if inner, ok := activity.Object(); ok {
			actor = inner.Actor()
		}
	}
	if actor == "" {
		return ErrMissingActor
	}

	removed, err := h.followers.Remove(actor)
	if err != nil {
		return err
	}
	if !removed {
		h.logger.Info("unfollow for an actor that was not a follower",
			zap.String("actor", actor))
	}
	return nil
}
