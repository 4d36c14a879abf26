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
	"github.com/tinyfedi/fedcore/pkg/queue"
)

// Handler processes one activity. A nil return removes the queue
// entry; an error keeps it queued for a later drain.
type Handler interface {
	Handle(ctx context.Context, activity activitypub.Activity) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, activity activitypub.Activity) error

func (f HandlerFunc) Handle(ctx context.Context, activity activitypub.Activity) error {
	return f(ctx, activity)
}

// Registry maps activity types to handlers. Registration happens once
// at startup; Dispatch only reads.
type Registry struct {
	handlers map[string]Handler
	logger   *zap.Logger
}

// NewRegistry creates an empty registry. A nil logger is replaced with
// a no-op one.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{handlers: make(map[string]Handler), logger: logger}
}

// Register binds a handler to an activity type, replacing any previous
// binding.
func (r *Registry) Register(activityType string, h Handler) {
	r.handlers[activityType] = h
}

// Dispatch looks up the handler for the activity's type and runs it.
// An untyped activity fails; a type with no handler reports unknown so
// the queue keeps the entry.
func (r *Registry) Dispatch(ctx context.Context, activity activitypub.Activity) queue.Status {
	activityType := activity.Type()
	if activityType == "" {
		r.logger.Warn("activity has no type field", zap.String("id", activity.ID()))
		return queue.StatusFailed
	}

	h, ok := r.handlers[activityType]
	if !ok {
		return queue.StatusUnknownType
	}

	if err := h.Handle(ctx, activity); err != nil {
		r.logger.Warn("handler failed",
			zap.String("type", activityType),
			zap.String("id", activity.ID()),
			zap.Error(err))
		return queue.StatusFailed
	}
	return queue.StatusProcessed
}
