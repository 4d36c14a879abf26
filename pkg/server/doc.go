// Package server exposes the federation HTTP surface: WebFinger, the
// actor document, outbox, followers, stored posts and activities, and
// the inbox.
//
// The inbox route is the only write path. It accepts a POST when the
// content type is an ActivityPub media type and the request passes
// signature verification; the activity is persisted and a reference is
// placed on the inbox queue, then the route answers 202. Processing
// happens later, on a queue drain.
package server
