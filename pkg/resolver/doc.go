// Package resolver maps a signature keyId to the public key the remote
// actor publishes in its profile document.
//
// Resolution follows the ActivityPub HTTP signature convention: the
// fragment is stripped from the keyId to obtain the document URL, the
// document is fetched with activity/linked-data Accept headers, and
// the publicKey entry (object or array) whose id equals the original
// keyId, fragment included, supplies the PEM key.
//
//	fetcher := client.New(userAgent, 10*time.Second, logger)
//	keys := resolver.New(fetcher, resolver.DefaultKeyTTL, logger, m)
//	pem, ok := keys.Resolve(ctx, "https://b.example/actor#main-key")
//
// Every failure collapses to ok=false; the caller treats it as an
// unverifiable signature, never as a fault.
package resolver
