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

// Package services holds the domain services that sit between the HTTP
// surface and the pipeline commands. This file implements concept
// extraction: turning one video's transcript into a set of teaching
// concepts via the generative model, with two degraded tiers behind it.
// If the model reply is not valid JSON, a regex scrape recovers partial
// concepts; if the model call fails entirely or the video has no
// transcript, concepts are synthesized from the description. Extraction
// therefore never fails, it only degrades.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"text/template"

	"github.com/studyweave/studyweave/internal/cloud"
	"github.com/studyweave/studyweave/internal/core/model"
)

const (
	// maxTranscriptEntries bounds how many caption lines go into the prompt.
	maxTranscriptEntries = 50
	// maxTranscriptChars bounds the formatted transcript's length in the prompt.
	maxTranscriptChars = 4000
	// maxDescriptionChars bounds the video description's length in the prompt.
	maxDescriptionChars = 200
	// maxFallbackConcepts caps how many concepts the regex scrape recovers.
	maxFallbackConcepts = 3
	// maxHeuristicConcepts caps how many concepts the description heuristic emits.
	maxHeuristicConcepts = 5
)

// defaultConceptPrompt is used when the configuration does not supply a
// concept extraction template.
const defaultConceptPrompt = `You are an expert curriculum designer. Analyze this video lecture and extract the 3 to 5 most important teaching concepts.

Video title: {{.TITLE}}
Video description: {{.DESCRIPTION}}

Transcript with timestamps:
{{.TRANSCRIPT}}

For each concept provide a short name, the clock timestamp where it is introduced, the same timestamp in seconds, a two or three sentence summary, and one multiple-choice quiz question with exactly four options, the zero-based index of the correct option, and a one-sentence explanation.

Respond with ONLY a JSON object shaped exactly like this example, with no surrounding prose:
{{.EXAMPLE_JSON}}`

// defaultAnswerPrompt is used when the configuration does not supply a
// question-answering template.
const defaultAnswerPrompt = `You are a patient tutor. Using only the context below, answer the student's question with a brief explanation, a short example, and a one-sentence takeaway. If the context does not contain the answer, say so plainly.

Context:
{{.CONTEXT}}

Question: {{.QUESTION}}`

// fallbackAnswer is returned when the model cannot produce an answer.
const fallbackAnswer = "I'm sorry, I couldn't generate an answer for that question right now. Please try again in a moment."

// timestampPattern accepts MM:SS and H:MM:SS clock strings.
var timestampPattern = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

// Regexes for scraping concept fields out of a malformed JSON reply.
var (
	fallbackNamePattern      = regexp.MustCompile(`"name":\s*"([^"]+)"`)
	fallbackTimestampPattern = regexp.MustCompile(`"timestamp":\s*"([^"]+)"`)
	fallbackSummaryPattern   = regexp.MustCompile(`"summary":\s*"([^"]+)"`)
)

// ConceptExtractor turns a video record into teaching concepts.
type ConceptExtractor struct {
	generator       cloud.TextGenerator
	conceptTemplate *template.Template
	answerTemplate  *template.Template
	exampleJSON     string
}

// NewConceptExtractor builds the extractor from the configured prompt
// templates, falling back to the built-in defaults when a template is not
// configured.
func NewConceptExtractor(config *cloud.Config, generator cloud.TextGenerator) (*ConceptExtractor, error) {
	conceptSource := config.PromptTemplates.ConceptPrompt
	if strings.TrimSpace(conceptSource) == "" {
		conceptSource = defaultConceptPrompt
	}
	answerSource := config.PromptTemplates.AnswerPrompt
	if strings.TrimSpace(answerSource) == "" {
		answerSource = defaultAnswerPrompt
	}

	conceptTemplate, err := template.New("concept-extraction").Parse(conceptSource)
	if err != nil {
		return nil, fmt.Errorf("failed to parse concept extraction template: %w", err)
	}
	answerTemplate, err := template.New("answer").Parse(answerSource)
	if err != nil {
		return nil, fmt.Errorf("failed to parse answer template: %w", err)
	}

	exampleBytes, err := json.MarshalIndent(model.GetExampleConceptSet(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal example concept set: %w", err)
	}

	return &ConceptExtractor{
		generator:       generator,
		conceptTemplate: conceptTemplate,
		answerTemplate:  answerTemplate,
		exampleJSON:     string(exampleBytes),
	}, nil
}

// Extract produces teaching concepts for one video. It never returns an
// error: model and parse failures step down through the regex scrape and
// the description heuristic, so every video yields at least one concept.
func (e *ConceptExtractor) Extract(ctx context.Context, video *model.VideoRecord) []*model.Concept {
	if !video.HasTranscript || len(video.Transcript) == 0 {
		slog.InfoContext(ctx, "no transcript, using description heuristic", "video_id", video.ID)
		return e.heuristicConcepts(video)
	}

	prompt, err := e.buildConceptPrompt(video)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render concept prompt", "video_id", video.ID, "error", err)
		return e.heuristicConcepts(video)
	}

	reply, err := e.generator.GenerateText(ctx, prompt)
	if err != nil {
		slog.WarnContext(ctx, "concept generation failed, using description heuristic", "video_id", video.ID, "error", err)
		return e.heuristicConcepts(video)
	}

	concepts, err := parseConceptReply(reply)
	if err != nil {
		slog.WarnContext(ctx, "model reply not parseable, scraping fields", "video_id", video.ID, "error", err)
		concepts = parseConceptsFallback(reply)
	}
	if len(concepts) == 0 {
		return e.heuristicConcepts(video)
	}
	return concepts
}

// AnswerQuestion answers a student question grounded on the video and
// concept context. Failures produce a fixed apology instead of an error so
// the endpoint always has something to return.
func (e *ConceptExtractor) AnswerQuestion(ctx context.Context, question string, video *model.VideoRecord, concept *model.Concept) string {
	var contextParts []string
	if video != nil {
		contextParts = append(contextParts, fmt.Sprintf("Video: %s", video.Title))
		// The transcript excerpt is the richest grounding; the description
		// only stands in when no captions were retrieved.
		if len(video.Transcript) > 0 {
			contextParts = append(contextParts, fmt.Sprintf("Transcript excerpt:\n%s", FormatTranscript(video.Transcript)))
		} else if video.Description != "" {
			contextParts = append(contextParts, fmt.Sprintf("Description: %s", trimDescription(video.Description)))
		}
	}
	if concept != nil {
		contextParts = append(contextParts, fmt.Sprintf("Concept: %s", concept.Name))
		if concept.Summary != "" {
			contextParts = append(contextParts, fmt.Sprintf("Summary: %s", concept.Summary))
		}
	}

	var prompt strings.Builder
	err := e.answerTemplate.Execute(&prompt, map[string]string{
		"QUESTION": question,
		"CONTEXT":  strings.Join(contextParts, "\n"),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render answer prompt", "error", err)
		return fallbackAnswer
	}

	answer, err := e.generator.GenerateText(ctx, prompt.String())
	if err != nil || strings.TrimSpace(answer) == "" {
		slog.WarnContext(ctx, "answer generation failed", "error", err)
		return fallbackAnswer
	}
	return strings.TrimSpace(answer)
}

// buildConceptPrompt renders the extraction prompt with the video's title,
// trimmed description, formatted transcript, and the few-shot example JSON.
func (e *ConceptExtractor) buildConceptPrompt(video *model.VideoRecord) (string, error) {
	var out strings.Builder
	err := e.conceptTemplate.Execute(&out, map[string]string{
		"TITLE":        video.Title,
		"DESCRIPTION":  trimDescription(video.Description),
		"TRANSCRIPT":   FormatTranscript(video.Transcript),
		"EXAMPLE_JSON": e.exampleJSON,
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// trimDescription bounds the description to maxDescriptionChars before it
// is embedded in a prompt.
func trimDescription(description string) string {
	if len(description) > maxDescriptionChars {
		return description[:maxDescriptionChars]
	}
	return description
}

// FormatTranscript renders caption entries as "[MM:SS] text" lines, bounded
// to the first maxTranscriptEntries entries and maxTranscriptChars
// characters so the prompt stays inside the model's context budget.
func FormatTranscript(entries []*model.TranscriptEntry) string {
	limit := len(entries)
	if limit > maxTranscriptEntries {
		limit = maxTranscriptEntries
	}
	lines := make([]string, 0, limit)
	for _, entry := range entries[:limit] {
		lines = append(lines, fmt.Sprintf("[%s] %s", model.FormatClock(int(entry.Start)), entry.Text))
	}
	formatted := strings.Join(lines, "\n")
	if len(formatted) > maxTranscriptChars {
		formatted = formatted[:maxTranscriptChars] + "..."
	}
	return formatted
}

// parseConceptReply decodes the model's JSON reply and validates it. The
// reply is rejected as a whole when any concept or quiz entry is malformed,
// so downstream code never sees a half-valid set.
func parseConceptReply(reply string) ([]*model.Concept, error) {
	var set model.ConceptSet
	if err := json.Unmarshal([]byte(reply), &set); err != nil {
		return nil, fmt.Errorf("failed to decode concept reply: %w", err)
	}
	if err := ValidateConcepts(set.Concepts); err != nil {
		return nil, err
	}
	for _, concept := range set.Concepts {
		// Keep the model's seconds value when plausible, otherwise derive it
		// from the clock string so the two fields never disagree.
		if concept.TimestampSeconds <= 0 {
			concept.TimestampSeconds = model.ParseClock(concept.Timestamp)
		}
	}
	return set.Concepts, nil
}

// ValidateConcepts checks every concept for the fields the course assembly
// depends on. Validation is all or nothing: one bad concept rejects the
// whole set, and the caller falls back to scraping.
func ValidateConcepts(concepts []*model.Concept) error {
	if len(concepts) == 0 {
		return errors.New("concept set is empty")
	}
	for i, concept := range concepts {
		if concept == nil {
			return fmt.Errorf("concept %d is null", i)
		}
		if strings.TrimSpace(concept.Name) == "" {
			return fmt.Errorf("concept %d has no name", i)
		}
		if !timestampPattern.MatchString(concept.Timestamp) {
			return fmt.Errorf("concept %d has malformed timestamp %q", i, concept.Timestamp)
		}
		if strings.TrimSpace(concept.Summary) == "" {
			return fmt.Errorf("concept %d has no summary", i)
		}
		for j, question := range concept.Quiz {
			if question == nil {
				return fmt.Errorf("concept %d quiz question %d is null", i, j)
			}
			if strings.TrimSpace(question.Question) == "" {
				return fmt.Errorf("concept %d quiz question %d has no text", i, j)
			}
			if len(question.Options) < 2 {
				return fmt.Errorf("concept %d quiz question %d has %d options, want at least 2", i, j, len(question.Options))
			}
			if question.Correct < 0 || question.Correct >= len(question.Options) {
				return fmt.Errorf("concept %d quiz question %d has out-of-range answer index %d", i, j, question.Correct)
			}
		}
	}
	return nil
}

// parseConceptsFallback scrapes concept fields out of a reply that failed
// JSON decoding. Names, timestamps, and summaries are matched positionally;
// each recovered concept gets a placeholder quiz.
func parseConceptsFallback(reply string) []*model.Concept {
	names := fallbackNamePattern.FindAllStringSubmatch(reply, -1)
	timestamps := fallbackTimestampPattern.FindAllStringSubmatch(reply, -1)
	summaries := fallbackSummaryPattern.FindAllStringSubmatch(reply, -1)

	count := len(names)
	if len(timestamps) < count {
		count = len(timestamps)
	}
	if len(summaries) < count {
		count = len(summaries)
	}
	if count > maxFallbackConcepts {
		count = maxFallbackConcepts
	}

	concepts := make([]*model.Concept, 0, count)
	for i := 0; i < count; i++ {
		timestamp := timestamps[i][1]
		if !timestampPattern.MatchString(timestamp) {
			timestamp = "00:00"
		}
		name := names[i][1]
		concepts = append(concepts, &model.Concept{
			Name:             name,
			Timestamp:        timestamp,
			TimestampSeconds: model.ParseClock(timestamp),
			Summary:          summaries[i][1],
			Quiz: []*model.QuizQuestion{
				{
					Question:    fmt.Sprintf("What is the key point about %s?", name),
					Options:     []string{"Option A", "Option B", "Option C", "Option D"},
					Correct:     0,
					Explanation: "This is a fallback question.",
				},
			},
		})
	}
	return concepts
}

// heuristicConcepts synthesizes concepts from the video description when
// the model is unavailable or the video has no transcript. Description
// lines of a sensible length become concepts spaced a minute apart; an
// empty description yields a single introduction concept.
func (e *ConceptExtractor) heuristicConcepts(video *model.VideoRecord) []*model.Concept {
	var concepts []*model.Concept
	for _, line := range strings.Split(video.Description, "\n") {
		bullet := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• \t"))
		if len(bullet) < 10 || len(bullet) > 140 {
			continue
		}
		name := bullet
		if len(name) > 60 {
			name = strings.TrimSpace(name[:60])
		}
		seconds := len(concepts) * 60
		concepts = append(concepts, &model.Concept{
			Name:             name,
			Timestamp:        model.FormatClock(seconds),
			TimestampSeconds: seconds,
			Summary:          bullet,
			Quiz: []*model.QuizQuestion{
				{
					Question:    fmt.Sprintf("What is the key point about %s?", name),
					Options:     []string{"Option A", "Option B", "Option C", "Option D"},
					Correct:     0,
					Explanation: "This is a fallback question.",
				},
			},
		})
		if len(concepts) >= maxHeuristicConcepts {
			break
		}
	}
	if len(concepts) > 0 {
		return concepts
	}

	return []*model.Concept{
		{
			Name:             fmt.Sprintf("Introduction to %s", video.Title),
			Timestamp:        "00:00",
			TimestampSeconds: 0,
			Summary:          fmt.Sprintf("An overview of the material covered in %s.", video.Title),
			Quiz: []*model.QuizQuestion{
				{
					Question:    "What is the main topic of this video?",
					Options:     []string{video.Title, "Something else", "Not specified", "Multiple topics"},
					Correct:     0,
					Explanation: "The video's title states its main topic.",
				},
			},
		},
	}
}
