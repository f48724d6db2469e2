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

// This file ties URL resolution, metadata lookup, and transcript retrieval
// into one operation per video URL. Metadata is required; a missing
// transcript only degrades the record, since concept extraction has
// description-based fallbacks.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studyweave/studyweave/internal/core/model"
)

// ErrInvalidURL indicates the input is not recognizable as a video URL, so
// no network lookup was attempted.
var ErrInvalidURL = errors.New("invalid video url")

// Service resolves a raw video URL into a complete VideoRecord.
type Service struct {
	Metadata    *MetadataFetcher
	Transcripts *TranscriptFetcher
}

// NewService builds the combined video data service.
func NewService(metadata *MetadataFetcher, transcripts *TranscriptFetcher) *Service {
	return &Service{Metadata: metadata, Transcripts: transcripts}
}

// GetVideoData resolves the URL to a video identifier, fetches its
// metadata, and attaches the transcript when one is available. A missing
// transcript is logged and reflected in HasTranscript rather than failing
// the call.
func (s *Service) GetVideoData(ctx context.Context, rawURL string) (*model.VideoRecord, error) {
	if !IsWellFormed(rawURL) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	videoID, ok := ExtractVideoID(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	record, err := s.Metadata.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	entries, err := s.Transcripts.Fetch(ctx, videoID)
	if err != nil {
		slog.WarnContext(ctx, "transcript unavailable", "video_id", videoID, "error", err)
		record.HasTranscript = false
		return record, nil
	}
	record.Transcript = entries
	record.HasTranscript = len(entries) > 0
	return record, nil
}
