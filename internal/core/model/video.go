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
// This file contains the video-side records: the metadata and transcript
// of a single source video as returned by the fetch fan-out. A VideoRecord
// is immutable once built; it is owned by the course build for the lifetime
// of one request and returned to the caller as part of the course payload.
package model

// TranscriptEntry is a single timed caption line from a video transcript.
// Entries arrive in chronological order and entries with near-empty text
// (fewer than three characters after trimming) are discarded at fetch time.
type TranscriptEntry struct {
	Start    float64 `json:"start"`    // Offset of the entry from the start of the video, in seconds.
	Duration float64 `json:"duration"` // How long the entry stays on screen, in seconds.
	Text     string  `json:"text"`     // The caption text with newlines collapsed to spaces.
}

// VideoRecord holds everything the pipeline knows about one source video:
// the metadata from the YouTube Data API plus the transcript, when one could
// be retrieved. The Duration field keeps the ISO-8601 form the API returns
// (e.g. "PT3M32S"); it is parsed into seconds only where needed.
type VideoRecord struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Duration      string             `json:"duration"` // ISO-8601 duration string as returned by the API.
	Thumbnail     string             `json:"thumbnail"`
	Channel       string             `json:"channel"`
	PublishedAt   string             `json:"published_at"`
	ViewCount     uint64             `json:"view_count"`
	LikeCount     uint64             `json:"like_count"`
	CommentCount  uint64             `json:"comment_count"`
	URL           string             `json:"url"`
	Transcript    []*TranscriptEntry `json:"transcript,omitempty"`
	HasTranscript bool               `json:"has_transcript"`
}
