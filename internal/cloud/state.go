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

// Package cloud provides components for interacting with external services.
// This file is responsible for initializing the shared service clients the
// pipeline depends on. Holding them in one container keeps dependency
// management explicit: the container is built once at startup and handed to
// the components that need it.
//
// Structs:
//   - ServiceClients: container for the GenAI client and the configured,
//     rate-limited agent models.
package cloud

import (
	"context"
	"time"

	"google.golang.org/genai"
)

// ServiceClients is the central container for external service clients,
// built once at startup from the application configuration.
type ServiceClients struct {
	GenAIClient *genai.Client                           // Client for the Gemini generative-language API.
	AgentModels map[string]*QuotaAwareGenerativeAIModel // Rate-limited model wrappers keyed by logical name.
}

// NewCloudServiceClients initializes the Gemini client and builds one
// quota-aware wrapper per configured agent model. Sampling parameters,
// system instructions, and rate limits all come from the configuration.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	retry := NewRetryPolicy(config.Retry.MaxAttempts, time.Duration(config.Retry.BackoffMillis)*time.Millisecond)

	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]
		contentConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		agentModels[amKey] = NewQuotaAwareModel(contentConfig, values.Model, gc.Models, values.RateLimit, retry)
	}

	return &ServiceClients{
		GenAIClient: gc,
		AgentModels: agentModels,
	}, nil
}
