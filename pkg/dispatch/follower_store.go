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
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/activitypub"
	"github.com/tinyfedi/fedcore/pkg/jsonx"
	"github.com/tinyfedi/fedcore/pkg/queue"
)

// FollowersBlob is the store name of the followers collection.
const FollowersBlob = "followers.json"

// FollowerStore is read-modify-write access to the followers
// collection through the blob store. The mutex serializes mutations
// within this process; the single-writer assumption covers the rest.
type FollowerStore struct {
	store        queue.BlobStore
	collectionID string
	logger       *zap.Logger

	mu sync.Mutex
}

// NewFollowerStore creates a FollowerStore. collectionID is the URL of
// the followers collection, written into the document on first create.
func NewFollowerStore(store queue.BlobStore, collectionID string, logger *zap.Logger) *FollowerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowerStore{store: store, collectionID: collectionID, logger: logger}
}

// Load reads the collection, creating and persisting an empty one if
// none is stored yet.
func (fs *FollowerStore) Load() (*activitypub.Followers, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.load()
}

func (fs *FollowerStore) load() (*activitypub.Followers, error) {
	data, err := fs.store.Get(FollowersBlob)
	if err != nil {
		fs.logger.Debug("no followers collection stored, creating empty one", zap.Error(err))
		followers := activitypub.NewFollowers(fs.collectionID)
		if err := fs.save(followers); err != nil {
			return nil, err
		}
		return followers, nil
	}

	var followers activitypub.Followers
	if err := jsonx.Unmarshal(data, &followers); err != nil {
		return nil, fmt.Errorf("followers collection is corrupt: %w", err)
	}
	return &followers, nil
}

func (fs *FollowerStore) save(followers *activitypub.Followers) error {
	data, err := jsonx.MarshalIndent(followers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode followers collection: %w", err)
	}
	return fs.store.Put(FollowersBlob, data)
}

// Add inserts an actor URL, reporting whether it was newly added.
// Adding a present actor is a persisted no-op.
func (fs *FollowerStore) Add(actorURL string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	followers, err := fs.load()
	if err != nil {
		return false, err
	}
	if !followers.Add(actorURL) {
		return false, nil
	}
	return true, fs.save(followers)
}

// Remove deletes an actor URL, reporting whether it was present.
// Removing an absent actor is a no-op, not an error.
func (fs *FollowerStore) Remove(actorURL string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	followers, err := fs.load()
	if err != nil {
		return false, err
	}
	if !followers.Remove(actorURL) {
		return false, nil
	}
	return true, fs.save(followers)
}

// List returns a snapshot of the follower actor URLs.
func (fs *FollowerStore) List() ([]string, error) {
	followers, err := fs.Load()
	if err != nil {
		return nil, err
	}
	return followers.Items, nil
}
