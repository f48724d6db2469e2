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

// Package model defines the core data structures for the application.
// This file holds the timestamp and duration conversions shared by the
// concept extractor and the time-range annotator: clock strings ("MM:SS",
// "H:MM:SS") to seconds and back, and ISO-8601 durations to seconds.
package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// isoDurationPattern matches the subset of ISO-8601 durations the YouTube
// Data API emits: P[n]DT[n]H[n]M[n]S with every component optional.
var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseClock converts a "MM:SS" or "H:MM:SS" clock string into total
// seconds. Unparseable input yields 0, never an error; the pipeline treats
// a bad timestamp as the start of the video.
func ParseClock(clock string) int {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	switch len(parts) {
	case 2:
		m, errM := strconv.Atoi(parts[0])
		s, errS := strconv.Atoi(parts[1])
		if errM != nil || errS != nil {
			return 0
		}
		return m*60 + s
	case 3:
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		s, errS := strconv.Atoi(parts[2])
		if errH != nil || errM != nil || errS != nil {
			return 0
		}
		return h*3600 + m*60 + s
	default:
		return 0
	}
}

// FormatClock renders seconds as "MM:SS", switching to "H:MM:SS" once the
// minute count reaches 60. Negative input renders as "00:00".
func FormatClock(seconds int) string {
	if seconds <= 0 {
		return "00:00"
	}
	m := seconds / 60
	s := seconds % 60
	if m >= 60 {
		h := m / 60
		m = m % 60
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ParseISODuration converts an ISO-8601 duration string (e.g. "PT3M32S")
// into total seconds. Unparseable or empty input defaults to 0 so callers
// can fall back to a fixed window instead of failing the request.
func ParseISODuration(iso string) int {
	match := isoDurationPattern.FindStringSubmatch(strings.TrimSpace(iso))
	if match == nil {
		return 0
	}
	atoi := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}
	days := atoi(match[1])
	hours := atoi(match[2])
	minutes := atoi(match[3])
	seconds := atoi(match[4])
	return days*86400 + hours*3600 + minutes*60 + seconds
}
