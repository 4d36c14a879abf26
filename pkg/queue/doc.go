// Package queue provides the durable inbox queue: a namespace of
// references to stored activities, drained one snapshot pass at a time.
//
// The queue holds references, not copies. The route layer persists an
// accepted activity once and calls Enqueue with its storage name; the
// store records a ref entry in the queue namespace pointing back at the
// original. Enqueueing the same activity twice is a no-op.
//
// Drain resolves each ref to its payload, hands the decoded activity to
// a Dispatcher, and removes the entry only when the dispatcher reports
// it processed. Failures, unknown activity types, and broken refs all
// leave the entry queued; re-running Drain later is the retry
// mechanism, so handlers must tolerate running twice.
package queue
