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
// This file wraps the Generative AI client with a decorator that adds rate
// limiting and bounded retry, so callers never exceed the model's quota and
// transient request failures are absorbed here instead of in every caller.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: wraps a genai model handle with a
//     rate.Limiter, a RetryPolicy, and token-usage metrics.
//
// Interfaces:
//   - TextGenerator: the narrow text-in/text-out surface the concept
//     extractor depends on, so tests can substitute a fake.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// TextGenerator is the minimal generative-text surface the pipeline
// consumes: one prompt in, one text reply out.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// QuotaAwareGenerativeAIModel decorates a genai model handle with rate
// limiting and retry. All concept-extraction and question-answering calls
// go through GenerateText.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // Sampling parameters and system instructions.
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               *rate.Limiter
	Retry                   RetryPolicy

	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

var _ TextGenerator = (*QuotaAwareGenerativeAIModel)(nil)

// NewQuotaAwareModel creates the wrapped model. requestsPerSecond bounds the
// call rate against the model's quota; retry bounds how many times a failed
// generation is re-attempted before the error is surfaced.
func NewQuotaAwareModel(
	wrapped *genai.GenerateContentConfig,
	name string,
	modelHandle *genai.Models,
	requestsPerSecond int,
	retry RetryPolicy) *QuotaAwareGenerativeAIModel {

	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	out := &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		RateLimit:               rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		Retry:                   retry,
	}

	meter := otel.Meter("github.com/studyweave/studyweave")
	out.inputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.input", name))
	out.outputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.output", name))
	out.retryCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.retry", name))

	return out
}

// GenerateText sends a single text prompt to the model and returns the
// concatenated text of the reply. It waits for a rate-limiter token first,
// then retries transient failures per the configured policy, recording
// token usage on success. Markdown code fences around JSON replies are
// stripped before returning.
func (q *QuotaAwareGenerativeAIModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return "", err
	}

	attempt := 0
	var resp *genai.GenerateContentResponse
	err := q.Retry.Do(ctx, func() error {
		if attempt > 0 {
			q.retryCounter.Add(ctx, 1)
		}
		attempt++
		var genErr error
		resp, genErr = q.ModelHandle.GenerateContent(ctx, q.ModelName, genai.Text(prompt), q.GenerativeContentConfig)
		return genErr
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("empty generation response")
	}

	if resp.UsageMetadata != nil {
		q.inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		q.outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			builder.WriteString(part.Text)
		}
	}

	value := strings.TrimSpace(builder.String())
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	return strings.TrimSpace(value), nil
}
