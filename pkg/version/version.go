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

// Package version provides version information for fedcore and the
// protocol documents it implements.
package version

const (
	// Version is the current version of fedcore
	Version = "0.3.0"

	// SignatureDraft is the HTTP Signatures draft this library implements
	// See: https://datatracker.ietf.org/doc/html/draft-cavage-http-signatures-12
	SignatureDraft = "draft-cavage-http-signatures-12"

	// ActivityPubRecommendation is the ActivityPub recommendation targeted
	ActivityPubRecommendation = "2018-01-23"

	// DefaultUserAgent identifies fedcore on outgoing federation requests
	DefaultUserAgent = "fedcore/" + Version
)

// Info contains detailed version information
type Info struct {
	FedcoreVersion            string
	SignatureDraft            string
	ActivityPubRecommendation string
	UserAgent                 string
}

// Get returns detailed version information
func Get() Info {
	return Info{
		FedcoreVersion:            Version,
		SignatureDraft:            SignatureDraft,
		ActivityPubRecommendation: ActivityPubRecommendation,
		UserAgent:                 DefaultUserAgent,
	}
}
