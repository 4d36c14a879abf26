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

// A Ref is an opaque token naming a queued reference. It identifies the
// entry inside the queue namespace, not the payload; the payload is
// reached through a PayloadResolver.
type Ref string

// BlobStore is the persistence surface the federation core writes
// through. Names are slash-separated relative paths whose first segment
// is the namespace ("inbox/follow-20250921-143022.json").
type BlobStore interface {
	// Put writes data under name, creating the namespace if needed.
	Put(name string, data []byte) error

	// Get reads the blob stored under name.
	Get(name string) ([]byte, error)

	// List returns the entry names directly inside a namespace, without
	// the namespace prefix. A namespace that does not exist yet lists
	// as empty.
	List(namespace string) ([]string, error)

	// Delete removes the blob stored under name.
	Delete(name string) error

	// LinkInto records a reference to sourceName inside namespace and
	// returns its Ref. Linking the same source into the same namespace
	// twice returns the existing Ref.
	LinkInto(namespace, sourceName string) (Ref, error)
}

// PayloadResolver resolves a Ref to the payload bytes of the blob it
// points at. A ref whose target has been removed resolves with an
// error.
type PayloadResolver interface {
	ResolveRef(ref Ref) ([]byte, error)
}
