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

// Package main contains the setup and initialization logic for the server.
// This file builds the application state: configuration, the Gemini and
// YouTube clients, the workflow chains, and the course service they feed.
// Everything hangs off one StateManager instance so the route handlers
// have a single place to reach their dependencies.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"google.golang.org/api/option"

	"github.com/studyweave/studyweave/internal/cloud"
	"github.com/studyweave/studyweave/internal/core/services"
	"github.com/studyweave/studyweave/internal/core/workflow"
	"github.com/studyweave/studyweave/internal/youtube"
)

// conceptExtractorModelKey is the agent-model profile used for concept
// extraction and question answering.
const conceptExtractorModelKey = "concept-extractor"

// StateManager holds the shared dependencies for the server: the loaded
// configuration, the cloud clients, and the course service the handlers
// call.
type StateManager struct {
	config        *cloud.Config
	cloud         *cloud.ServiceClients
	courseService *services.CourseService
	configValid   bool
}

var state = &StateManager{}

// SetupOS points the configuration loader at the local runtime's TOML
// files. The loader reads ".env.toml" and overlays ".env.local.toml".
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides the singleton application configuration, loading it
// from the TOML files on first use.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState builds the full dependency graph: Gemini clients, the YouTube
// metadata and transcript fetchers, the concept extractor, the workflow
// chains, and the course service. Missing API keys are logged but not
// fatal so the health endpoint can report the problem.
func InitState(ctx context.Context) {
	config := GetConfig()

	missing := cloud.ValidateConfig(config)
	state.configValid = len(missing) == 0
	for _, key := range missing {
		slog.Warn("configuration key missing", "key", key)
	}

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	retry := cloud.NewRetryPolicy(config.Retry.MaxAttempts, time.Duration(config.Retry.BackoffMillis)*time.Millisecond)

	var metadataOpts []option.ClientOption
	if config.YouTube.Endpoint != "" {
		metadataOpts = append(metadataOpts, option.WithEndpoint(config.YouTube.Endpoint))
	}
	metadata, err := youtube.NewMetadataFetcher(ctx, config.YouTube.APIKey, retry, metadataOpts...)
	if err != nil {
		panic(err)
	}
	transcripts := youtube.NewTranscriptFetcher(config.YouTube.TranscriptBaseURL, nil)
	videoService := youtube.NewService(metadata, transcripts)

	generator, ok := cloudClients.AgentModels[conceptExtractorModelKey]
	if !ok {
		log.Fatalf("agent model %q is not configured", conceptExtractorModelKey)
	}
	extractor, err := services.NewConceptExtractor(config, generator)
	if err != nil {
		panic(err)
	}

	builder := workflow.NewCourseBuilderWorkflow(config, videoService, extractor)
	preview := workflow.NewVideoPreviewWorkflow(config, videoService)
	state.courseService = services.NewCourseService(config, builder, preview, extractor)
}
