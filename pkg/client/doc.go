// Package client wraps the outbound HTTP plumbing shared by the key
// resolver and the delivery engine: ActivityPub content negotiation on
// fetches, a pinned User-Agent, and per-client timeouts (resolution
// uses a short one, delivery a longer one).
package client
