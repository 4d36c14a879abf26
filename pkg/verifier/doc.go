// Package verifier combines the signature codec, the actor key
// resolver, and a date-freshness window into one verification decision
// for an inbound federation request.
//
//	keys := resolver.New(fetcher, resolver.DefaultKeyTTL, logger, m)
//	v := verifier.New(httpsig.NewCodec(logger), keys, verifier.Policy{}, logger, m)
//
//	if !v.Verify(ctx, sigHeader, r.Method, r.URL.Path, headers, body) {
//	    // reject with 401
//	}
//
// Three checks run in order and all must pass:
//
//  1. Digest: the declared Digest header must byte-equal the SHA-256
//     digest recomputed over the body
//  2. Freshness: |now - Date| must be within the skew window in either
//     direction, bounding replay and clock skew symmetrically
//  3. Signature: the draft-cavage signature must verify against the
//     key resolved from its keyId
//
// A request missing the Digest or Date header skips that check by
// default; the Policy flags RequireDigest and RequireDate turn the
// absence into a rejection so operators can see and choose the
// behavior instead of inheriting it.
package verifier
