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

// Package commands implements the individual workflow commands for the
// course-building pipeline. This file defines VideoFanOut: the command
// that resolves a batch of video URLs into video records using a bounded
// worker pool. Individual URL failures are logged and skipped; only a
// batch yielding zero records fails the command.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/studyweave/studyweave/internal/core/cor"
	"github.com/studyweave/studyweave/internal/core/model"
)

// VideoListParamName is the context key the resolved video records are
// stored under, in addition to the chain's piped output.
const VideoListParamName = "__video_list__"

// ErrNoUsableVideos indicates that none of the submitted URLs produced a
// video record.
var ErrNoUsableVideos = errors.New("no usable videos")

// VideoSource resolves one raw video URL into a complete record. The
// youtube.Service satisfies it in production; tests substitute fakes.
type VideoSource interface {
	GetVideoData(ctx context.Context, rawURL string) (*model.VideoRecord, error)
}

// VideoFanOut resolves each input URL to a video record on a bounded
// worker pool, preserving the input order of the successes.
type VideoFanOut struct {
	cor.BaseCommand
	source  VideoSource
	workers int
}

// fanOutJob carries one URL and its input position through the pool.
type fanOutJob struct {
	index int
	url   string
}

// fanOutResult carries a resolved record back with its input position so
// the output order matches the request order.
type fanOutResult struct {
	index  int
	record *model.VideoRecord
}

// NewVideoFanOut creates the fan-out command. workers bounds the number of
// concurrent URL resolutions; non-positive values fall back to three.
func NewVideoFanOut(name string, source VideoSource, workers int) *VideoFanOut {
	if workers <= 0 {
		workers = 3
	}
	return &VideoFanOut{
		BaseCommand: *cor.NewBaseCommand(name),
		source:      source,
		workers:     workers,
	}
}

// IsExecutable verifies the input parameter holds a URL slice.
func (v *VideoFanOut) IsExecutable(context cor.Context) bool {
	if !v.BaseCommand.IsExecutable(context) {
		return false
	}
	_, ok := context.Get(v.GetInputParam()).([]string)
	return ok
}

// Execute resolves all input URLs concurrently and stores the surviving
// records under both VideoListParamName and the command's output parameter.
func (v *VideoFanOut) Execute(context cor.Context) {
	ctx := context.GetContext()
	urls := context.Get(v.GetInputParam()).([]string)

	jobs := make(chan fanOutJob, len(urls))
	results := make(chan fanOutResult, len(urls))
	var wg sync.WaitGroup

	for w := 0; w < v.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				record, err := v.source.GetVideoData(ctx, job.url)
				if err != nil {
					slog.WarnContext(ctx, "skipping video url", "url", job.url, "error", err)
					continue
				}
				results <- fanOutResult{index: job.index, record: record}
			}
		}()
	}

	for i, url := range urls {
		jobs <- fanOutJob{index: i, url: url}
	}
	close(jobs)
	wg.Wait()
	close(results)

	ordered := make([]*model.VideoRecord, len(urls))
	count := 0
	for result := range results {
		ordered[result.index] = result.record
		count++
	}

	if count == 0 {
		v.GetErrorCounter().Add(ctx, 1)
		context.AddError(v.GetName(), fmt.Errorf("%w: %d urls submitted", ErrNoUsableVideos, len(urls)))
		return
	}

	records := make([]*model.VideoRecord, 0, count)
	for _, record := range ordered {
		if record != nil {
			records = append(records, record)
		}
	}

	v.GetSuccessCounter().Add(ctx, 1)
	context.Add(VideoListParamName, records)
	context.Add(v.GetOutputParam(), records)
}
