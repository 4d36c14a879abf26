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

package activitypub

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idTimestampLayout = "20060102-150405"

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts free text into a short URL-safe slug.
func Slugify(text string) string {
	slug := slugStripRe.ReplaceAllString(strings.ToLower(text), "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 30 {
		slug = strings.Trim(slug[:30], "-")
	}
	return slug
}

// GeneratePostID builds a post identifier from the current time plus
// an optional title-derived suffix: "20250913-143022-my-post".
func GeneratePostID(title string) string {
	ts := time.Now().UTC().Format(idTimestampLayout)
	if suffix := Slugify(title); suffix != "" {
		return ts + "-" + suffix
	}
	return ts
}

// GenerateActivityID builds an activity identifier of the form
// "{type}-{timestamp}-{discriminator}". The discriminator keeps two
// activities generated within the same second from colliding on the
// filename they are persisted under.
func GenerateActivityID(activityType string) string {
	ts := time.Now().UTC().Format(idTimestampLayout)
	return strings.ToLower(activityType) + "-" + ts + "-" + uuid.New().String()[:8]
}

// ParseActorURL extracts the domain and, where the path follows one of
// the common fediverse shapes (/users/alice, /@alice, /u/alice), the
// username from an actor URL. Username is "" when not extractable.
func ParseActorURL(actorURL string) (domain, username string) {
	parsed, err := url.Parse(actorURL)
	if err != nil || parsed.Host == "" {
		return "unknown", ""
	}

	path := strings.Trim(parsed.Path, "/")
	switch {
	case strings.HasPrefix(path, "users/"):
		username = strings.SplitN(path, "/", 3)[1]
	case strings.HasPrefix(path, "@"):
		username = strings.TrimPrefix(path, "@")
	case strings.HasPrefix(path, "u/"):
		username = strings.SplitN(path, "/", 3)[1]
	}

	return parsed.Host, username
}
