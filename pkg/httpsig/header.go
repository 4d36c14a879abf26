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

package httpsig

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// RequestTarget is the pseudo-header covering method and path
	RequestTarget = "(request-target)"

	// Algorithm is the algorithm tag emitted on outgoing signatures.
	// hs2019 leaves the actual algorithm to key metadata; in practice
	// this library signs RSASSA-PKCS1-v1_5 over SHA-256.
	Algorithm = "hs2019"

	// DefaultSignedHeaders is assumed when a Signature header carries
	// no headers parameter
	DefaultSignedHeaders = "(request-target) host date"

	// OutgoingSignedHeaders is the header set signed on every outgoing
	// request. The order is embedded in the Signature header and
	// replayed verbatim by the receiver.
	OutgoingSignedHeaders = "(request-target) host date digest content-type"
)

// Header is the parsed form of a Signature header value.
type Header struct {
	KeyID     string
	Algorithm string
	Headers   []string
	Signature string // base64
}

var headerParamRe = regexp.MustCompile(`(\w+)="([^"]*)"`)

// ParseHeader parses a Signature header of the form
// keyId="...",algorithm="...",headers="...",signature="...".
// Unknown parameters are ignored; missing parameters are left zero.
func ParseHeader(value string) Header {
	var h Header
	for _, m := range headerParamRe.FindAllStringSubmatch(value, -1) {
		switch m[1] {
		case "keyId":
			h.KeyID = m[2]
		case "algorithm":
			h.Algorithm = m[2]
		case "headers":
			h.Headers = strings.Fields(m[2])
		case "signature":
			h.Signature = m[2]
		}
	}
	return h
}

// String serializes the header back to its wire form.
func (h Header) String() string {
	return fmt.Sprintf(`keyId="%s",algorithm="%s",headers="%s",signature="%s"`,
		h.KeyID, h.Algorithm, strings.Join(h.Headers, " "), h.Signature)
}
