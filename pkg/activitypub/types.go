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

package activitypub

const (
	// ContextActivityStreams is the base JSON-LD context
	ContextActivityStreams = "https://www.w3.org/ns/activitystreams"

	// ContextSecurity carries the publicKey vocabulary
	ContextSecurity = "https://w3id.org/security/v1"

	// ContentTypeActivityJSON is the media type served and accepted on
	// federation endpoints
	ContentTypeActivityJSON = "application/activity+json"

	// ContentTypeLDJSON is the long-form equivalent some servers send
	ContentTypeLDJSON = `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`

	// AcceptHeader is sent when fetching remote actor documents
	AcceptHeader = "application/activity+json, application/ld+json"
)

// PublicKey is the key object embedded in an actor document.
type PublicKey struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// Actor is a local actor profile document.
type Actor struct {
	Context           []string  `json:"@context"`
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	PreferredUsername string    `json:"preferredUsername"`
	Name              string    `json:"name,omitempty"`
	Summary           string    `json:"summary,omitempty"`
	Inbox             string    `json:"inbox"`
	Outbox            string    `json:"outbox,omitempty"`
	Followers         string    `json:"followers,omitempty"`
	Following         string    `json:"following,omitempty"`
	URL               string    `json:"url,omitempty"`
	PublicKey         PublicKey `json:"publicKey"`
}

// WebFinger is the response served on /.well-known/webfinger.
type WebFinger struct {
	Subject string `json:"subject"`
	Links   []Link `json:"links"`
}

// Link is a single WebFinger link entry.
type Link struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

// Followers is the followers OrderedCollection. TotalItems is derived
// from Items on every mutation and never trusted independently.
type Followers struct {
	Context    string   `json:"@context"`
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	TotalItems int      `json:"totalItems"`
	Items      []string `json:"orderedItems"`
}

// NewFollowers creates an empty followers collection.
func NewFollowers(id string) *Followers {
	return &Followers{
		Context: ContextActivityStreams,
		ID:      id,
		Type:    "OrderedCollection",
		Items:   []string{},
	}
}

// Contains reports whether actorURL is in the collection.
func (f *Followers) Contains(actorURL string) bool {
	for _, item := range f.Items {
		if item == actorURL {
			return true
		}
	}
	return false
}

// Add inserts actorURL if absent and reports whether it was added.
func (f *Followers) Add(actorURL string) bool {
	if f.Contains(actorURL) {
		return false
	}
	f.Items = append(f.Items, actorURL)
	f.TotalItems = len(f.Items)
	return true
}

// Remove deletes actorURL if present and reports whether it was removed.
func (f *Followers) Remove(actorURL string) bool {
	for i, item := range f.Items {
		if item == actorURL {
			f.Items = append(f.Items[:i], f.Items[i+1:]...)
			f.TotalItems = len(f.Items)
			return true
		}
	}
	return false
}
