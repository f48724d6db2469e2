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

// This file defines TimeRangeAnnotator: the command that assigns an end
// timestamp to every concept. Within one video the concepts are ordered by
// start time and each concept ends one second before the next begins; the
// last concept runs to the end of the video, or to start plus two minutes
// when the video duration is unknown.
package commands

import (
	"sort"

	"github.com/studyweave/studyweave/internal/core/cor"
	"github.com/studyweave/studyweave/internal/core/model"
)

// defaultConceptSpanSeconds is the assumed length of the last concept when
// the video's total duration cannot be determined.
const defaultConceptSpanSeconds = 120

// TimeRangeAnnotator assigns end timestamps to concepts, per source video.
type TimeRangeAnnotator struct {
	cor.BaseCommand
}

// NewTimeRangeAnnotator creates the annotation command.
func NewTimeRangeAnnotator(name string) *TimeRangeAnnotator {
	return &TimeRangeAnnotator{BaseCommand: *cor.NewBaseCommand(name)}
}

// IsExecutable verifies the input parameter holds the flat concept list.
func (t *TimeRangeAnnotator) IsExecutable(context cor.Context) bool {
	if !t.BaseCommand.IsExecutable(context) {
		return false
	}
	_, ok := context.Get(t.GetInputParam()).([]*model.Concept)
	return ok
}

// Execute groups the flat concept list by source video, annotates each
// group, and passes the list through as output. Group order and the
// concepts' membership are unchanged; only the end-time fields are set.
func (t *TimeRangeAnnotator) Execute(context cor.Context) {
	ctx := context.GetContext()
	concepts := context.Get(t.GetInputParam()).([]*model.Concept)

	groups := make(map[string][]*model.Concept)
	var order []string
	for _, concept := range concepts {
		if _, seen := groups[concept.VideoID]; !seen {
			order = append(order, concept.VideoID)
		}
		groups[concept.VideoID] = append(groups[concept.VideoID], concept)
	}

	for _, videoID := range order {
		group := groups[videoID]
		Annotate(group, group[0].VideoDuration)
	}

	t.GetSuccessCounter().Add(ctx, 1)
	context.Add(t.GetOutputParam(), concepts)
}

// Annotate sorts one video's concepts by start time and assigns each an end
// timestamp: one second before the next concept starts, never earlier than
// its own start. The final concept ends at the video's total duration when
// isoDuration parses to a positive value, otherwise a fixed span past its
// start.
func Annotate(concepts []*model.Concept, isoDuration string) {
	if len(concepts) == 0 {
		return
	}
	sort.SliceStable(concepts, func(i, j int) bool {
		return concepts[i].TimestampSeconds < concepts[j].TimestampSeconds
	})

	total := model.ParseISODuration(isoDuration)
	for i, concept := range concepts {
		var end int
		if i < len(concepts)-1 {
			end = concepts[i+1].TimestampSeconds - 1
		} else if total > 0 {
			end = total
		} else {
			end = concept.TimestampSeconds + defaultConceptSpanSeconds
		}
		if end < concept.TimestampSeconds {
			end = concept.TimestampSeconds
		}
		concept.TimestampEndSeconds = end
		concept.TimestampEnd = model.FormatClock(end)
	}
}
