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

// Package test provides helpers shared by the test suite: a cached test
// configuration and canned video records for exercising the pipeline
// without network access.
package test

import (
	"log"
	"os"

	"github.com/studyweave/studyweave/internal/cloud"
	"github.com/studyweave/studyweave/internal/core/model"
)

// StateManager caches the test configuration so it is loaded once per run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// SetupOS points the configuration loader at the test TOML files.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is the singleton accessor for the test configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// GetTestVideoRecord returns a fully populated video record with a short
// transcript, representing the happy path for extraction tests.
func GetTestVideoRecord() *model.VideoRecord {
	return &model.VideoRecord{
		ID:            "dQw4w9WgXcQ",
		Title:         "Introduction to Go Concurrency",
		Description:   "Learn goroutines and channels.\n- Goroutines are lightweight threads\n- Channels pass values between goroutines",
		Duration:      "PT3M32S",
		Thumbnail:     "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		Channel:       "Go Academy",
		PublishedAt:   "2024-01-15T10:00:00Z",
		URL:           "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		HasTranscript: true,
		Transcript: []*model.TranscriptEntry{
			{Start: 0, Duration: 4.2, Text: "Welcome to this introduction to Go concurrency."},
			{Start: 12.5, Duration: 5.1, Text: "A goroutine is a lightweight thread managed by the runtime."},
			{Start: 65.0, Duration: 6.3, Text: "Channels let goroutines communicate by passing values."},
			{Start: 130.2, Duration: 4.8, Text: "Select waits on multiple channel operations at once."},
		},
	}
}

// GetTestVideoRecordNoTranscript returns a record whose captions could not
// be fetched, for exercising the description fallback.
func GetTestVideoRecordNoTranscript() *model.VideoRecord {
	return &model.VideoRecord{
		ID:            "abcdefghijk",
		Title:         "Silent Lecture",
		Description:   "- Understanding the basics of memory allocation\n- How garbage collection reclaims unused objects",
		Duration:      "PT10M",
		Channel:       "Go Academy",
		URL:           "https://www.youtube.com/watch?v=abcdefghijk",
		HasTranscript: false,
	}
}
