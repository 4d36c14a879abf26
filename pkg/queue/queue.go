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

package queue

import (
	"context"

	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/activitypub"
	"github.com/tinyfedi/fedcore/pkg/jsonx"
	"github.com/tinyfedi/fedcore/pkg/metrics"
)

// Namespace is the store namespace holding queue refs.
const Namespace = "queue"

// Status is a dispatcher's verdict on one activity.
type Status int

const (
	// StatusProcessed removes the queue entry.
	StatusProcessed Status = iota
	// StatusFailed leaves the entry queued for a later drain.
	StatusFailed
	// StatusUnknownType leaves the entry queued; unregistered types are
	// never silently discarded.
	StatusUnknownType
)

// Dispatcher turns an activity into a Status. Satisfied by
// dispatch.Registry.
type Dispatcher interface {
	Dispatch(ctx context.Context, activity activitypub.Activity) Status
}

// RefStore is the store surface the queue itself needs.
type RefStore interface {
	List(namespace string) ([]string, error)
	Delete(name string) error
	LinkInto(namespace, sourceName string) (Ref, error)
	PayloadResolver
}

// InboxQueue is the durable at-least-once queue of accepted activities.
type InboxQueue struct {
	store   RefStore
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates an InboxQueue. A nil logger is replaced with a no-op one;
// metrics may be nil.
func New(store RefStore, logger *zap.Logger, m *metrics.Metrics) *InboxQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InboxQueue{store: store, logger: logger, metrics: m}
}

// Enqueue records a reference to a stored activity in the queue
// namespace. Enqueueing the same activity twice is a no-op.
func (q *InboxQueue) Enqueue(sourceName string) error {
	ref, err := q.store.LinkInto(Namespace, sourceName)
	if err != nil {
		return err
	}
	q.metrics.RecordEnqueue()
	q.logger.Debug("activity enqueued", zap.String("ref", string(ref)))
	return nil
}

// DrainResult counts the outcomes of one drain pass.
type DrainResult struct {
	Processed int
	Failed    int
	Unknown   int
}

// Drain runs one single-threaded pass over a snapshot of the queue
// listing. Entries are removed only when the dispatcher reports them
// processed; load failures, handler failures, and unknown types keep
// the entry for the next pass. Entries linked during the pass are not
// guaranteed to be seen by it.
func (q *InboxQueue) Drain(ctx context.Context, d Dispatcher) (DrainResult, error) {
	entries, err := q.store.List(Namespace)
	if err != nil {
		return DrainResult{}, err
	}

	var res DrainResult
	for _, entry := range entries {
		ref := Ref(Namespace + "/" + entry)

		payload, err := q.store.ResolveRef(ref)
		if err != nil {
			q.logger.Warn("could not resolve queued ref, keeping entry",
				zap.String("ref", string(ref)), zap.Error(err))
			res.Failed++
			q.metrics.RecordQueueFailed()
			continue
		}

		var activity activitypub.Activity
		if err := jsonx.Unmarshal(payload, &activity); err != nil {
			q.logger.Warn("queued activity is not valid JSON, keeping entry",
				zap.String("ref", string(ref)), zap.Error(err))
			res.Failed++
			q.metrics.RecordQueueFailed()
			continue
		}

		switch d.Dispatch(ctx, activity) {
		case StatusProcessed:
			if err := q.store.Delete(string(ref)); err != nil {
				q.logger.Error("processed entry could not be removed",
					zap.String("ref", string(ref)), zap.Error(err))
				res.Failed++
				q.metrics.RecordQueueFailed()
				continue
			}
			res.Processed++
			q.metrics.RecordQueueProcessed()

		case StatusUnknownType:
			q.logger.Warn("no handler for activity type, keeping entry",
				zap.String("ref", string(ref)), zap.String("type", activity.Type()))
			res.Unknown++
			q.metrics.RecordQueueUnknownType()

		default:
			q.logger.Warn("handler failed, keeping entry", zap.String("ref", string(ref)))
			res.Failed++
			q.metrics.RecordQueueFailed()
		}
	}

	q.logger.Info("queue drain finished",
		zap.Int("processed", res.Processed),
		zap.Int("failed", res.Failed),
		zap.Int("unknown", res.Unknown))
	return res, nil
}
