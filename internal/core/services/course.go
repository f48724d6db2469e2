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

// This file implements the course service: the entry point the HTTP
// handlers call. It validates the request, runs the appropriate workflow
// chain, and translates chain failures into the structured error payloads
// the API contract promises. A build that produced a course is a success
// even when some URLs were skipped; per-URL outcomes show up in the
// statistics, not as errors.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyweave/studyweave/internal/cloud"
	"github.com/studyweave/studyweave/internal/core/commands"
	"github.com/studyweave/studyweave/internal/core/cor"
	"github.com/studyweave/studyweave/internal/core/model"
)

// Defaults applied when the configuration leaves the request caps unset.
const (
	defaultMaxVideoURLs = 10
	defaultMaxURLLength = 500
)

// CourseService validates requests and runs the course-building and
// preview workflows.
type CourseService struct {
	Config    *cloud.Config
	Builder   cor.Chain
	Preview   cor.Chain
	Extractor *ConceptExtractor
}

// NewCourseService wires the service to its chains and extractor.
func NewCourseService(config *cloud.Config, builder cor.Chain, preview cor.Chain, extractor *ConceptExtractor) *CourseService {
	return &CourseService{
		Config:    config,
		Builder:   builder,
		Preview:   preview,
		Extractor: extractor,
	}
}

// maxVideoURLs returns the configured per-request URL cap.
func (s *CourseService) maxVideoURLs() int {
	if s.Config != nil && s.Config.Application.MaxVideoURLs > 0 {
		return s.Config.Application.MaxVideoURLs
	}
	return defaultMaxVideoURLs
}

// maxURLLength returns the configured per-URL length cap.
func (s *CourseService) maxURLLength() int {
	if s.Config != nil && s.Config.Application.MaxURLLength > 0 {
		return s.Config.Application.MaxURLLength
	}
	return defaultMaxURLLength
}

// validateRequest applies the request caps shared by build and preview.
// It returns nil when the request is acceptable.
func (s *CourseService) validateRequest(urls []string) *model.BuildError {
	if len(urls) == 0 {
		return &model.BuildError{Err: "No video URLs provided"}
	}
	if len(urls) > s.maxVideoURLs() {
		return &model.BuildError{
			Err:     fmt.Sprintf("Too many video URLs provided, maximum is %d", s.maxVideoURLs()),
			Message: fmt.Sprintf("%d URLs submitted", len(urls)),
		}
	}
	for _, url := range urls {
		if len(url) > s.maxURLLength() {
			return &model.BuildError{
				Err:     fmt.Sprintf("Video URL exceeds maximum length of %d characters", s.maxURLLength()),
				Message: url[:50] + "...",
			}
		}
	}
	return nil
}

// BuildCourse runs the full pipeline for a batch of video URLs. It returns
// either the assembled course or a structured error describing why no
// course could be built.
func (s *CourseService) BuildCourse(ctx context.Context, urls []string) (*model.Course, *model.BuildError) {
	if buildErr := s.validateRequest(urls); buildErr != nil {
		return nil, buildErr
	}

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, urls)
	chainCtx.Add(commands.URLCountParamName, len(urls))

	s.Builder.Execute(chainCtx)

	if chainCtx.HasErrors() {
		return nil, s.translateChainErrors(chainCtx, len(urls))
	}

	course, ok := chainCtx.Get(commands.CourseOutputParamName).(*model.Course)
	if !ok {
		return nil, &model.BuildError{Err: "Course assembly produced no result"}
	}
	return course, nil
}

// PreviewVideos runs only the video fan-out for a batch of URLs and
// returns the resolved records with their transcript payloads stripped.
func (s *CourseService) PreviewVideos(ctx context.Context, urls []string) (*model.VideoPreview, *model.BuildError) {
	if buildErr := s.validateRequest(urls); buildErr != nil {
		return nil, buildErr
	}

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, urls)

	s.Preview.Execute(chainCtx)

	if chainCtx.HasErrors() {
		return nil, s.translateChainErrors(chainCtx, len(urls))
	}

	videos, _ := chainCtx.Get(commands.VideoListParamName).([]*model.VideoRecord)
	for _, video := range videos {
		// HasTranscript stays set so the caller knows what a full build
		// would have to work with.
		video.Transcript = nil
	}

	return &model.VideoPreview{
		Videos:      videos,
		TotalVideos: len(videos),
		PreviewOnly: true,
		ProcessingStats: &model.PreviewStats{
			TotalURLsProvided: len(urls),
			ValidVideosFound:  len(videos),
			SuccessRate:       model.SuccessRate(len(videos), len(urls)),
		},
	}, nil
}

// AnswerQuestion answers a student question grounded on the optional video
// and concept context.
func (s *CourseService) AnswerQuestion(ctx context.Context, question string, video *model.VideoRecord, concept *model.Concept) string {
	return s.Extractor.AnswerQuestion(ctx, question, video, concept)
}

// translateChainErrors maps the sentinel errors the commands record onto
// the structured payloads the API contract promises.
func (s *CourseService) translateChainErrors(chainCtx cor.Context, urlCount int) *model.BuildError {
	videos, _ := chainCtx.Get(commands.VideoListParamName).([]*model.VideoRecord)
	withTranscripts := 0
	for _, video := range videos {
		if video.HasTranscript {
			withTranscripts++
		}
	}

	for _, err := range chainCtx.GetErrors() {
		if errors.Is(err, commands.ErrNoUsableVideos) {
			return &model.BuildError{
				Err:             "No valid videos could be processed from the provided URLs",
				ProcessedVideos: 0,
				InvalidURLs:     urlCount,
			}
		}
		if errors.Is(err, commands.ErrNoConcepts) {
			return &model.BuildError{
				Err:                   "No concepts could be extracted from the provided videos",
				Message:               "Videos may not have available transcripts or captions",
				ProcessedVideos:       len(videos),
				VideosWithTranscripts: withTranscripts,
			}
		}
	}

	// An unexpected failure; surface the first error text.
	for name, err := range chainCtx.GetErrors() {
		return &model.BuildError{
			Err:             "Course build failed",
			Message:         fmt.Sprintf("%s: %v", name, err),
			ProcessedVideos: len(videos),
		}
	}
	return &model.BuildError{Err: "Course build failed"}
}
