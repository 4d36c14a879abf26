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

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionConstants(t *testing.T) {
	// Verify version constants are not empty
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, SignatureDraft, "SignatureDraft should not be empty")
	assert.NotEmpty(t, ActivityPubRecommendation, "ActivityPubRecommendation should not be empty")
	assert.NotEmpty(t, DefaultUserAgent, "DefaultUserAgent should not be empty")

	// Verify expected values
	assert.Equal(t, "draft-cavage-http-signatures-12", SignatureDraft)
	assert.Equal(t, "fedcore/"+Version, DefaultUserAgent)
}

func TestGet(t *testing.T) {
	info := Get()

	// Verify all fields are populated
	assert.Equal(t, Version, info.FedcoreVersion)
	assert.Equal(t, SignatureDraft, info.SignatureDraft)
	assert.Equal(t, ActivityPubRecommendation, info.ActivityPubRecommendation)
	assert.Equal(t, DefaultUserAgent, info.UserAgent)
}
