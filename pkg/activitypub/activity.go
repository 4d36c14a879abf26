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

import "time"

// Activity is an open JSON activity object. Remote servers attach
// vocabulary we do not model, so the shape stays a map with typed
// accessors for the fields the pipeline relies on.
type Activity map[string]any

func (a Activity) str(key string) string {
	v, _ := a[key].(string)
	return v
}

// Type returns the activity type, or "" if absent or non-string.
func (a Activity) Type() string { return a.str("type") }

// Actor returns the actor URL, or "" if absent or non-string.
func (a Activity) Actor() string { return a.str("actor") }

// ID returns the activity id, or "".
func (a Activity) ID() string { return a.str("id") }

// Published returns the published timestamp string, or "".
func (a Activity) Published() string { return a.str("published") }

// Object returns the embedded object if the object field is itself a
// JSON object. A string object (a bare URL) reports false.
func (a Activity) Object() (Activity, bool) {
	switch obj := a["object"].(type) {
	case map[string]any:
		return Activity(obj), true
	case Activity:
		return obj, true
	default:
		return nil, false
	}
}

// ObjectType returns the type of an embedded object, or "" when the
// object is absent, a bare URL, or untyped.
func (a Activity) ObjectType() string {
	obj, ok := a.Object()
	if !ok {
		return ""
	}
	return obj.Type()
}

// NewAccept wraps a Follow activity in an Accept addressed back to its
// sender. baseURL is the local namespace root
// (e.g. "https://blog.example/activitypub"); actorID is the local
// actor id. The returned localID names the persisted activity file.
func NewAccept(baseURL, actorID string, follow Activity) (Activity, string) {
	localID := GenerateActivityID("Accept")
	accept := Activity{
		"@context":  ContextActivityStreams,
		"id":        baseURL + "/activities/" + localID,
		"type":      "Accept",
		"actor":     actorID,
		"object":    map[string]any(follow),
		"published": time.Now().UTC().Format(time.RFC3339),
	}
	return accept, localID
}

// NewFollow builds a Follow activity, used by tests and the CLI.
func NewFollow(id, actorID, targetID string) Activity {
	return Activity{
		"@context": ContextActivityStreams,
		"id":       id,
		"type":     "Follow",
		"actor":    actorID,
		"object":   targetID,
	}
}

// NewCreate wraps a freshly-created object (a post) in a Create
// activity from the local actor.
func NewCreate(baseURL, actorID string, object Activity) (Activity, string) {
	localID := GenerateActivityID("Create")
	published := object.Published()
	if published == "" {
		published = time.Now().UTC().Format(time.RFC3339)
	}
	create := Activity{
		"@context":  ContextActivityStreams,
		"id":        baseURL + "/activities/" + localID,
		"type":      "Create",
		"actor":     actorID,
		"object":    map[string]any(object),
		"published": published,
		"to":        []any{ContextActivityStreams + "#Public"},
	}
	return create, localID
}
