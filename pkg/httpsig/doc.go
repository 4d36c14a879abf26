// Package httpsig implements draft-cavage HTTP Message Signatures as
// used for ActivityPub server-to-server authentication.
//
// This package covers both directions of the exchange:
//
//   - Signing outgoing requests with an RSA private key
//   - Verifying incoming requests against a fetched RSA public key
//
// # Signing
//
//	codec := httpsig.NewCodec(logger)
//	headers := map[string]string{
//	    "Host":         "remote.example",
//	    "Date":         httpsig.FormatDate(time.Now()),
//	    "Content-Type": "application/activity+json",
//	}
//	sig, err := codec.Sign("POST", "/inbox", headers, body, privateKeyPEM, keyID)
//
// Sign inserts a Digest header into the supplied header map as a side
// effect; callers must transmit that header alongside Signature.
//
// # Verifying
//
//	ok := codec.Verify(sigHeader, "POST", "/inbox", headers, body, lookup)
//
// The lookup callback maps a keyId URL to a PEM public key; see
// pkg/resolver for the network-backed implementation.
//
// # Signing string
//
// Signer and verifier share one BuildSigningString routine so the
// canonical form cannot drift between the two sides. The signed header
// set on outgoing requests is fixed to
//
//	(request-target) host date digest content-type
//
// and the receiver re-uses the order embedded in the Signature header
// verbatim.
//
// # Wire format
//
//	Signature: keyId="<url>",algorithm="hs2019",headers="<list>",signature="<base64>"
//	Digest: SHA-256=<base64>
//
// # Security Considerations
//
//   - Verification failure is reported as a boolean, never an error,
//     so a malformed header cannot take down an inbox route
//   - Pair signature checks with a Date freshness window (pkg/verifier)
//     to bound replay
package httpsig
