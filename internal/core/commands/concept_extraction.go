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

// This file defines ConceptExtraction: the command that runs the concept
// extractor over each resolved video in turn and stamps every concept with
// back-references to its source video. Extraction itself never fails per
// video; the command only fails when the whole batch yields zero concepts.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyweave/studyweave/internal/core/cor"
	"github.com/studyweave/studyweave/internal/core/model"
)

// ErrNoConcepts indicates that no video in the batch produced any concepts.
var ErrNoConcepts = errors.New("no concepts extracted")

// ConceptSource extracts teaching concepts from one video. The
// services.ConceptExtractor satisfies it in production.
type ConceptSource interface {
	Extract(ctx context.Context, video *model.VideoRecord) []*model.Concept
}

// ConceptExtraction runs concept extraction sequentially over the resolved
// videos. Sequential on purpose: the extractor's model wrapper already
// rate-limits, and one in-flight generation per course keeps quota
// consumption predictable.
type ConceptExtraction struct {
	cor.BaseCommand
	extractor ConceptSource
}

// NewConceptExtraction creates the extraction command.
func NewConceptExtraction(name string, extractor ConceptSource) *ConceptExtraction {
	return &ConceptExtraction{
		BaseCommand: *cor.NewBaseCommand(name),
		extractor:   extractor,
	}
}

// IsExecutable verifies the input parameter holds the resolved video list.
func (c *ConceptExtraction) IsExecutable(context cor.Context) bool {
	if !c.BaseCommand.IsExecutable(context) {
		return false
	}
	_, ok := context.Get(c.GetInputParam()).([]*model.VideoRecord)
	return ok
}

// Execute extracts concepts for every video, attaches the video
// back-references each concept needs to stand alone in a course, and
// stores the flat concept list as the command output.
func (c *ConceptExtraction) Execute(context cor.Context) {
	ctx := context.GetContext()
	videos := context.Get(c.GetInputParam()).([]*model.VideoRecord)

	var concepts []*model.Concept
	for _, video := range videos {
		for _, concept := range c.extractor.Extract(ctx, video) {
			concept.VideoID = video.ID
			concept.VideoTitle = video.Title
			concept.VideoURL = video.URL
			concept.VideoThumbnail = video.Thumbnail
			concept.VideoChannel = video.Channel
			concept.VideoDuration = video.Duration
			concepts = append(concepts, concept)
		}
	}

	if len(concepts) == 0 {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), fmt.Errorf("%w: %d videos processed", ErrNoConcepts, len(videos)))
		return
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), concepts)
}
