// Package delivery sends signed activities to remote inboxes.
//
// Every delivery is a single attempt: the engine resolves the target
// actor's inbox, signs the request with the local actor's key, POSTs,
// and reports success or failure. It never retries on its own; the
// caller (the queue drain, the CLI) decides whether and when to try
// again. Broadcasts attempt every follower and return the full result
// map so partial failures stay visible.
package delivery
