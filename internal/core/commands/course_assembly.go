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

// This file defines CourseAssembly: the final command of the pipeline. It
// takes the annotated concepts and the resolved video records and builds
// the Course document: a derived title, a single "Core Concepts" module,
// the duration estimate, and the processing statistics. The assembled
// course is stored under a named output parameter in addition to the
// chain's piped output, because the chain clears the piped slot after the
// last command runs.
package commands

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/studyweave/studyweave/internal/core/cor"
	"github.com/studyweave/studyweave/internal/core/model"
)

const (
	// URLCountParamName is the context key holding the count of URLs the
	// caller originally submitted, used for the success-rate statistic.
	URLCountParamName = "__url_count__"

	// CourseOutputParamName is the context key the assembled course is
	// stored under for the service to read after the chain completes.
	CourseOutputParamName = "__course_output__"
)

// coreModuleName is the single grouping bucket concepts are placed in.
const coreModuleName = "Core Concepts"

// CourseAssembly builds the final course document from the annotated
// concepts and the resolved video records.
type CourseAssembly struct {
	cor.BaseCommand
}

// NewCourseAssembly creates the assembly command.
func NewCourseAssembly(name string) *CourseAssembly {
	return &CourseAssembly{BaseCommand: *cor.NewBaseCommand(name)}
}

// IsExecutable verifies both the annotated concepts and the resolved video
// list are present in the context.
func (a *CourseAssembly) IsExecutable(context cor.Context) bool {
	if !a.BaseCommand.IsExecutable(context) {
		return false
	}
	if _, ok := context.Get(a.GetInputParam()).([]*model.Concept); !ok {
		return false
	}
	_, ok := context.Get(VideoListParamName).([]*model.VideoRecord)
	return ok
}

// Execute assembles the course and stores it under CourseOutputParamName
// and the command's output parameter.
func (a *CourseAssembly) Execute(context cor.Context) {
	ctx := context.GetContext()
	concepts := context.Get(a.GetInputParam()).([]*model.Concept)
	videos := context.Get(VideoListParamName).([]*model.VideoRecord)

	urlCount := len(videos)
	if count, ok := context.Get(URLCountParamName).(int); ok && count > 0 {
		urlCount = count
	}

	withTranscripts := 0
	for _, video := range videos {
		if video.HasTranscript {
			withTranscripts++
		}
	}

	conceptsPerVideo := 0.0
	if len(videos) > 0 {
		conceptsPerVideo = float64(len(concepts)) / float64(len(videos))
	}

	course := &model.Course{
		ID:          uuid.NewString(),
		CourseTitle: deriveCourseTitle(videos),
		Modules: []*model.Module{
			{ModuleName: coreModuleName, Concepts: concepts},
		},
		TotalConcepts:         len(concepts),
		EstimatedDuration:     fmt.Sprintf("%d-%d minutes", len(concepts)*10, len(concepts)*15),
		Videos:                videos,
		TotalVideos:           len(videos),
		VideosWithTranscripts: withTranscripts,
		ConceptsPerVideo:      conceptsPerVideo,
		ProcessingStats: &model.ProcessingStats{
			TotalURLsProvided:    urlCount,
			ValidVideosProcessed: len(videos),
			ConceptsExtracted:    len(concepts),
			SuccessRate:          model.SuccessRate(len(videos), urlCount),
		},
	}

	a.GetSuccessCounter().Add(ctx, 1)
	context.Add(CourseOutputParamName, course)
	context.Add(a.GetOutputParam(), course)
}

// deriveCourseTitle names the course after its content: a single video
// lends its own title, while a multi-video batch is titled after the
// leading word of the first video.
func deriveCourseTitle(videos []*model.VideoRecord) string {
	if len(videos) == 0 {
		return "Untitled Course"
	}
	if len(videos) == 1 {
		return fmt.Sprintf("Learning: %s", videos[0].Title)
	}
	firstWord := videos[0].Title
	if fields := strings.Fields(firstWord); len(fields) > 0 {
		firstWord = fields[0]
	}
	return fmt.Sprintf("Complete Guide: %s Course", firstWord)
}
