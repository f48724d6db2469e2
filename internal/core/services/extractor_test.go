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

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyweave/studyweave/internal/cloud"
	"github.com/studyweave/studyweave/internal/core/model"
	test "github.com/studyweave/studyweave/internal/testutil"
)

// fakeGenerator returns a canned reply or error and records the prompts it
// was asked for.
type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testVideo() *model.VideoRecord {
	return &model.VideoRecord{
		ID:            "dQw4w9WgXcQ",
		Title:         "Introduction to Go Concurrency",
		Description:   "Learn goroutines and channels.\n- Goroutines are lightweight threads\n- Channels pass values between goroutines",
		Duration:      "PT3M32S",
		URL:           "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		HasTranscript: true,
		Transcript: []*model.TranscriptEntry{
			{Start: 0, Duration: 4.2, Text: "Welcome to this introduction to Go concurrency."},
			{Start: 12.5, Duration: 5.1, Text: "A goroutine is a lightweight thread."},
			{Start: 65, Duration: 6.3, Text: "Channels let goroutines communicate."},
		},
	}
}

func newExtractor(t *testing.T, generator cloud.TextGenerator) *ConceptExtractor {
	t.Helper()
	extractor, err := NewConceptExtractor(cloud.NewConfig(), generator)
	require.NoError(t, err)
	return extractor
}

const validReply = `{
	"concepts": [
		{
			"name": "Goroutines",
			"timestamp": "00:12",
			"timestamp_seconds": 12,
			"summary": "Goroutines are lightweight threads managed by the Go runtime.",
			"quiz": [{
				"question": "What manages goroutines?",
				"options": ["The Go runtime", "The OS kernel", "The compiler", "The linker"],
				"correct": 0,
				"explanation": "The runtime scheduler multiplexes goroutines onto OS threads."
			}]
		},
		{
			"name": "Channels",
			"timestamp": "01:05",
			"timestamp_seconds": 0,
			"summary": "Channels pass values between goroutines safely.",
			"quiz": []
		}
	]
}`

func TestExtractValidReply(t *testing.T) {
	generator := &fakeGenerator{reply: validReply}
	extractor := newExtractor(t, generator)

	concepts := extractor.Extract(context.Background(), testVideo())
	require.Len(t, concepts, 2)

	assert.Equal(t, "Goroutines", concepts[0].Name)
	assert.Equal(t, 12, concepts[0].TimestampSeconds)
	// A missing seconds value is recomputed from the clock string.
	assert.Equal(t, "Channels", concepts[1].Name)
	assert.Equal(t, 65, concepts[1].TimestampSeconds)

	require.Len(t, generator.prompts, 1)
	prompt := generator.prompts[0]
	assert.Contains(t, prompt, "Introduction to Go Concurrency")
	assert.Contains(t, prompt, "[00:12] A goroutine is a lightweight thread.")
	assert.Contains(t, prompt, `"concepts"`, "the few-shot example must be embedded")
}

func TestExtractBrokenJSONFallsBackToScrape(t *testing.T) {
	// Valid-looking fields inside a reply that is not valid JSON overall.
	broken := `Here are the concepts you asked for:
	{"name": "Goroutines", "timestamp": "00:12", "summary": "Lightweight threads."},
	{"name": "Channels", "timestamp": "01:05", "summary": "Typed conduits."},
	{"name": "Select", "timestamp": "02:10", "summary": "Waits on many channels."},
	{"name": "Mutexes", "timestamp": "03:00", "summary": "Locks shared state."}`
	generator := &fakeGenerator{reply: broken}
	extractor := newExtractor(t, generator)

	concepts := extractor.Extract(context.Background(), testVideo())
	require.Len(t, concepts, 3, "scrape recovery is capped at three concepts")

	assert.Equal(t, "Goroutines", concepts[0].Name)
	assert.Equal(t, 12, concepts[0].TimestampSeconds)
	require.Len(t, concepts[0].Quiz, 1)
	assert.Equal(t, 0, concepts[0].Quiz[0].Correct)
	assert.Equal(t, "This is a fallback question.", concepts[0].Quiz[0].Explanation)
}

func TestExtractInvalidQuizRejectsWholeSet(t *testing.T) {
	// One quiz question with a single option poisons the whole reply,
	// pushing the extractor into the scrape tier.
	badQuiz := strings.Replace(validReply,
		`["The Go runtime", "The OS kernel", "The compiler", "The linker"]`,
		`["The Go runtime"]`, 1)
	generator := &fakeGenerator{reply: badQuiz}
	extractor := newExtractor(t, generator)

	concepts := extractor.Extract(context.Background(), testVideo())
	require.NotEmpty(t, concepts)
	// The scrape tier stamps its placeholder quiz on everything it recovers.
	for _, concept := range concepts {
		require.Len(t, concept.Quiz, 1)
		assert.Equal(t, "This is a fallback question.", concept.Quiz[0].Explanation)
	}
}

func TestExtractGeneratorErrorUsesHeuristic(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("model unavailable")}
	extractor := newExtractor(t, generator)

	concepts := extractor.Extract(context.Background(), test.GetTestVideoRecord())
	require.Len(t, concepts, 3, "one concept per usable description line")
	assert.Equal(t, "Learn goroutines and channels.", concepts[0].Name)
	assert.Equal(t, "Goroutines are lightweight threads", concepts[1].Name)
	assert.Equal(t, 0, concepts[0].TimestampSeconds)
	assert.Equal(t, 60, concepts[1].TimestampSeconds, "heuristic concepts are spaced a minute apart")
	assert.Equal(t, 120, concepts[2].TimestampSeconds)
}

func TestExtractNoTranscriptUsesHeuristic(t *testing.T) {
	generator := &fakeGenerator{reply: validReply}
	extractor := newExtractor(t, generator)

	concepts := extractor.Extract(context.Background(), test.GetTestVideoRecordNoTranscript())
	require.NotEmpty(t, concepts)
	assert.Empty(t, generator.prompts, "the model must not be called without a transcript")
}

func TestExtractEmptyDescriptionYieldsIntroduction(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("model unavailable")}
	extractor := newExtractor(t, generator)

	video := testVideo()
	video.Description = ""

	concepts := extractor.Extract(context.Background(), video)
	require.Len(t, concepts, 1)
	assert.Equal(t, "Introduction to Introduction to Go Concurrency", concepts[0].Name)
	assert.Equal(t, "00:00", concepts[0].Timestamp)
	require.Len(t, concepts[0].Quiz, 1)
	assert.Equal(t, video.Title, concepts[0].Quiz[0].Options[0])
}

func TestValidateConcepts(t *testing.T) {
	good := []*model.Concept{{Name: "A", Timestamp: "00:10", Summary: "ok"}}
	assert.NoError(t, ValidateConcepts(good))

	assert.Error(t, ValidateConcepts(nil))
	assert.Error(t, ValidateConcepts([]*model.Concept{{Timestamp: "00:10", Summary: "ok"}}))
	assert.Error(t, ValidateConcepts([]*model.Concept{{Name: "A", Timestamp: "ten past", Summary: "ok"}}))
	assert.Error(t, ValidateConcepts([]*model.Concept{{Name: "A", Timestamp: "00:10"}}))
	assert.Error(t, ValidateConcepts([]*model.Concept{{
		Name: "A", Timestamp: "00:10", Summary: "ok",
		Quiz: []*model.QuizQuestion{{Question: "q", Options: []string{"a", "b", "c", "d"}, Correct: 9}},
	}}))
}

func TestFormatTranscriptTruncation(t *testing.T) {
	entries := make([]*model.TranscriptEntry, 80)
	for i := range entries {
		entries[i] = &model.TranscriptEntry{
			Start: float64(i * 10),
			Text:  strings.Repeat("word ", 30),
		}
	}
	formatted := FormatTranscript(entries)
	assert.LessOrEqual(t, len(formatted), maxTranscriptChars+3)
	assert.True(t, strings.HasSuffix(formatted, "..."))
	assert.NotContains(t, formatted, "[13:00]", "only the first fifty entries are formatted")
}

func TestBuildConceptPromptCapsDescription(t *testing.T) {
	generator := &fakeGenerator{reply: validReply}
	extractor := newExtractor(t, generator)

	video := testVideo()
	video.Description = strings.Repeat("x", 20000) + "OVERFLOW"

	extractor.Extract(context.Background(), video)
	require.Len(t, generator.prompts, 1)
	assert.NotContains(t, generator.prompts[0], "OVERFLOW")
	assert.Contains(t, generator.prompts[0], strings.Repeat("x", maxDescriptionChars))
	assert.NotContains(t, generator.prompts[0], strings.Repeat("x", maxDescriptionChars+1))
}

func TestAnswerQuestion(t *testing.T) {
	generator := &fakeGenerator{reply: "Channels carry typed values between goroutines."}
	extractor := newExtractor(t, generator)

	answer := extractor.AnswerQuestion(context.Background(), "What do channels do?", testVideo(), &model.Concept{
		Name:    "Channels",
		Summary: "Channels pass values between goroutines safely.",
	})
	assert.Equal(t, "Channels carry typed values between goroutines.", answer)

	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], "What do channels do?")
	assert.Contains(t, generator.prompts[0], "Concept: Channels")
	assert.Contains(t, generator.prompts[0], "Transcript excerpt:")
	assert.Contains(t, generator.prompts[0], "[01:05] Channels let goroutines communicate.")
}

func TestAnswerQuestionWithoutTranscriptUsesDescription(t *testing.T) {
	generator := &fakeGenerator{reply: "Goroutines are cheap."}
	extractor := newExtractor(t, generator)

	video := testVideo()
	video.Transcript = nil
	video.HasTranscript = false

	extractor.AnswerQuestion(context.Background(), "What is a goroutine?", video, nil)

	require.Len(t, generator.prompts, 1)
	assert.NotContains(t, generator.prompts[0], "Transcript excerpt:")
	assert.Contains(t, generator.prompts[0], "Description: Learn goroutines and channels.")
}

func TestAnswerQuestionFallback(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("model unavailable")}
	extractor := newExtractor(t, generator)

	answer := extractor.AnswerQuestion(context.Background(), "What do channels do?", nil, nil)
	assert.Equal(t, fallbackAnswer, answer)
}
