// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package youtube contains the clients that talk to the video platform:
// URL resolution, metadata lookup, and transcript retrieval. This file
// implements URL resolution: extracting the canonical 11-character video
// identifier from the handful of known URL shapes (watch, short-link,
// embed) and a cheap structural check used to reject obviously-invalid
// input before spending a network call.
package youtube

import (
	"regexp"
	"strings"
)

// videoIDPatterns are the known URL shapes a video identifier can appear
// in, tried in order. The generic "v=" pattern comes last so the more
// specific shapes win.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?.*?v=([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`/v/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`[?&]v=([0-9A-Za-z_-]{11})`),
}

// videoIDShape validates the extracted identifier's character set.
var videoIDShape = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// wellFormedPattern is the quick structural check for a plausible video URL.
var wellFormedPattern = regexp.MustCompile(`(?i)^(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)`)

// ExtractVideoID normalizes the URL string and matches it against the known
// URL shapes, returning the 11-character video identifier. The second
// return value is false when no pattern matches; callers must treat that as
// "skip this input", not as a fatal condition.
func ExtractVideoID(rawURL string) (string, bool) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return "", false
	}
	for _, pattern := range videoIDPatterns {
		match := pattern.FindStringSubmatch(url)
		if match == nil {
			continue
		}
		if videoIDShape.MatchString(match[1]) {
			return match[1], true
		}
	}
	return "", false
}

// IsWellFormed reports whether the URL structurally looks like a video URL.
// It is independent of identifier extraction and exists to short-circuit
// obviously-invalid entries cheaply.
func IsWellFormed(rawURL string) bool {
	return wellFormedPattern.MatchString(strings.TrimSpace(rawURL))
}
