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
// This file contains the course-side records: the concepts extracted by the
// generative model, the quiz questions attached to them, and the assembled
// Course document returned to the caller. None of these are persisted; the
// Course is the response payload and is owned by the caller after return.
package model

// QuizQuestion is one multiple-choice question attached to a concept.
// Invariant: Correct must be a valid index into Options, and Options must
// hold at least two entries. A batch of concepts that violates this anywhere
// is rejected as a whole during validation.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"` // Zero-based index of the right answer in Options.
	Explanation string   `json:"explanation"`
}

// Concept is one extracted teachable unit tied to a timestamp range within a
// source video. The extractor fills the name/timestamp/summary/quiz fields;
// the time-range annotator later adds the end-timestamp pair, and course
// assembly adds the video back-references. After assembly a concept is never
// mutated again. Invariant: TimestampEndSeconds >= TimestampSeconds.
type Concept struct {
	Name                string          `json:"name"`
	Timestamp           string          `json:"timestamp"` // "MM:SS" or "H:MM:SS" of the first explanation.
	TimestampSeconds    int             `json:"timestamp_seconds"`
	TimestampEnd        string          `json:"timestamp_end,omitempty"`
	TimestampEndSeconds int             `json:"timestamp_end_seconds"`
	Summary             string          `json:"summary"`
	Quiz                []*QuizQuestion `json:"quiz,omitempty"`

	// Back-references to the source video, attached during course assembly
	// so each concept is self-describing in the response payload.
	VideoID        string `json:"video_id,omitempty"`
	VideoTitle     string `json:"video_title,omitempty"`
	VideoURL       string `json:"video_url,omitempty"`
	VideoThumbnail string `json:"video_thumbnail,omitempty"`
	VideoChannel   string `json:"video_channel,omitempty"`
	VideoDuration  string `json:"video_duration,omitempty"` // ISO-8601, copied from the video record.
}

// ConceptSet is the envelope the generative model is asked to produce. The
// prompt specifies a single JSON document with a top-level "concepts" array;
// this struct is the unmarshal target for that reply.
type ConceptSet struct {
	Concepts []*Concept `json:"concepts"`
}

// Module is a named grouping of concepts within a course. Grouping is
// currently a single "Core Concepts" bucket; no topic clustering exists.
type Module struct {
	ModuleName string     `json:"module_name"`
	Concepts   []*Concept `json:"concepts"`
}

// SuccessRate returns processed/provided as a percentage rounded to one
// decimal place. A non-positive provided count yields zero.
func SuccessRate(processed, provided int) float64 {
	if provided <= 0 {
		return 0
	}
	rate := float64(processed) / float64(provided) * 100
	return float64(int(rate*10+0.5)) / 10
}

// ProcessingStats reports the aggregate outcome of a course build so callers
// can detect degraded results: partial failures are invisible in the happy
// path, but their counts always show up here.
type ProcessingStats struct {
	TotalURLsProvided    int     `json:"total_urls_provided"`
	ValidVideosProcessed int     `json:"valid_videos_processed"`
	ConceptsExtracted    int     `json:"concepts_extracted"`
	SuccessRate          float64 `json:"success_rate"` // Percentage of provided URLs that became videos.
}

// Course is the final aggregated structure returned for a batch of input
// URLs. Built once per request, never persisted.
type Course struct {
	ID                    string           `json:"id"`
	CourseTitle           string           `json:"course_title"`
	Modules               []*Module        `json:"modules"`
	TotalConcepts         int              `json:"total_concepts"`
	EstimatedDuration     string           `json:"estimated_duration"`
	Videos                []*VideoRecord   `json:"videos"`
	TotalVideos           int              `json:"total_videos"`
	VideosWithTranscripts int              `json:"videos_with_transcripts"`
	ConceptsPerVideo      float64          `json:"concepts_per_video"`
	ProcessingStats       *ProcessingStats `json:"processing_stats"`
}

// BuildError is the structured error object returned when a course build
// fails as a whole (bad input, zero usable videos, or zero usable concepts).
// It is distinct from a partial-success result, which is returned as a
// Course even if some URLs failed.
type BuildError struct {
	Err                   string `json:"error"`
	Message               string `json:"message,omitempty"`
	ProcessedVideos       int    `json:"processed_videos"`
	InvalidURLs           int    `json:"invalid_urls,omitempty"`
	VideosWithTranscripts int    `json:"videos_with_transcripts,omitempty"`
	ConceptsExtracted     int    `json:"concepts_extracted"`
}

// PreviewStats mirrors ProcessingStats for the lightweight preview endpoint.
type PreviewStats struct {
	TotalURLsProvided int     `json:"total_urls_provided"`
	ValidVideosFound  int     `json:"valid_videos_found"`
	SuccessRate       float64 `json:"success_rate"`
}

// VideoPreview is the response of the preview operation: the same fetch
// fan-out as a course build, but with transcript payloads stripped from each
// record to save bandwidth before the caller commits to full extraction.
type VideoPreview struct {
	Videos          []*VideoRecord `json:"videos"`
	TotalVideos     int            `json:"total_videos"`
	PreviewOnly     bool           `json:"preview_only"`
	ProcessingStats *PreviewStats  `json:"processing_stats"`
}
