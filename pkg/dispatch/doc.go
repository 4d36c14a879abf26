// Package dispatch routes queued activities to typed handlers.
//
// A Registry maps an activity type ("Follow", "Undo", ...) to a
// Handler. Wrapped activities dispatch in two levels: the registered
// Undo handler reads the inner object's type and re-dispatches against
// its own inner registry, so "Undo of a Follow" reaches the unfollow
// handler while "Undo of a Like" (nothing registered) is handled and
// ignored.
//
// Handlers must be idempotent. The queue re-attempts entries on every
// drain until they succeed, so adding an existing follower or removing
// an absent one are no-ops, not errors.
package dispatch
