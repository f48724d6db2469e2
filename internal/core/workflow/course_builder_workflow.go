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

// Package workflow assembles the pipeline commands into executable chains.
// Two chains exist: the full course build (resolve videos, extract
// concepts, annotate time ranges, assemble the course) and the lightweight
// preview, which stops after the video fan-out.
package workflow

import (
	"github.com/studyweave/studyweave/internal/cloud"
	"github.com/studyweave/studyweave/internal/core/commands"
	"github.com/studyweave/studyweave/internal/core/cor"
)

// NewCourseBuilderWorkflow creates the full course-building chain. The
// chain's input is the slice of video URLs; its named output (under
// commands.CourseOutputParamName) is the assembled course.
func NewCourseBuilderWorkflow(
	config *cloud.Config,
	source commands.VideoSource,
	extractor commands.ConceptSource) cor.Chain {

	fanOut := commands.NewVideoFanOut("video-fan-out", source, config.Application.ThreadPoolSize)
	extraction := commands.NewConceptExtraction("concept-extraction", extractor)
	annotator := commands.NewTimeRangeAnnotator("time-range-annotator")
	assembly := commands.NewCourseAssembly("course-assembly")

	return cor.NewBaseChain("course-builder").
		AddCommand(fanOut).
		AddCommand(extraction).
		AddCommand(annotator).
		AddCommand(assembly)
}

// NewVideoPreviewWorkflow creates the preview chain: the same video
// fan-out as the course build, with nothing after it. The resolved records
// are read from commands.VideoListParamName.
func NewVideoPreviewWorkflow(config *cloud.Config, source commands.VideoSource) cor.Chain {
	fanOut := commands.NewVideoFanOut("preview-fan-out", source, config.Application.ThreadPoolSize)
	return cor.NewBaseChain("video-preview").AddCommand(fanOut)
}
