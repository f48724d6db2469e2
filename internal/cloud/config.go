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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. API keys and model settings are read once at
// process start into this value object and passed by reference into each
// fetcher and extractor constructor; no pipeline component reads ambient
// global state.
//
// Structs:
//   - GeminiLLMModel: Configuration for a Gemini generative model.
//   - PromptTemplates: Text templates for prompts sent to the GenAI models.
//   - YouTubeAPI: Configuration for the YouTube Data and timedtext endpoints.
//   - Gemini: API key for the Gemini service.
//   - Retry: Bounded retry settings shared by the network-calling components.
//   - Config: The top-level struct aggregating all of the above.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for
// GenAI models. Lecture transcripts are trusted input, so all categories are
// configured to pass through without being blocked.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// GeminiLLMModel represents the configuration for one Gemini model profile.
type GeminiLLMModel struct {
	Model              string  `toml:"model"`               // The model name (e.g., "gemini-1.5-flash").
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the model.
	Temperature        float32 `toml:"temperature"`         // Sampling temperature.
	TopP               float32 `toml:"top_p"`               // Nucleus sampling parameter.
	TopK               float32 `toml:"top_k"`               // Top-k sampling parameter.
	MaxTokens          int32   `toml:"max_tokens"`          // Maximum output tokens.
	OutputFormat       string  `toml:"output_format"`       // Desired response MIME type (e.g., "application/json").
	RateLimit          int     `toml:"rate_limit"`          // Requests per second allowed against this model.
}

// PromptTemplates holds the Go text/template sources for the prompts sent to
// the generative models.
type PromptTemplates struct {
	ConceptPrompt string `toml:"concept_extraction"` // Template for extracting concepts from a transcript.
	AnswerPrompt  string `toml:"answer"`             // Template for grounded question answering.
}

// YouTubeAPI represents the configuration for the YouTube-facing clients.
// Endpoint overrides exist so tests can point the clients at local servers.
type YouTubeAPI struct {
	APIKey            string `toml:"api_key"`             // Developer key for the YouTube Data API v3.
	Endpoint          string `toml:"endpoint"`            // Optional Data API endpoint override.
	TranscriptBaseURL string `toml:"transcript_base_url"` // Optional timedtext endpoint override.
}

// Gemini holds the API key for the Gemini generative-language service.
type Gemini struct {
	APIKey string `toml:"api_key"`
}

// Retry holds the bounded retry settings used by every network-calling
// component: a fixed attempt count with linearly increasing backoff.
type Retry struct {
	MaxAttempts   int `toml:"max_attempts"`   // Total attempts per call, including the first.
	BackoffMillis int `toml:"backoff_millis"` // Base backoff; attempt n waits n * this value.
}

// Config represents the overall application configuration loaded from TOML
// files. It is the root container for all other configuration structs.
type Config struct {
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // GCP project for telemetry export.
		Port            int    `toml:"port"`              // HTTP listen port.
		ThreadPoolSize  int    `toml:"thread_pool_size"`  // Worker-pool size for the video fetch fan-out.
		MaxVideoURLs    int    `toml:"max_video_urls"`    // Cap on URLs per course build request.
		MaxURLLength    int    `toml:"max_url_length"`    // Cap on a single URL's length in characters.
	} `toml:"application"`
	YouTube         YouTubeAPI                `toml:"youtube"`
	Gemini          Gemini                    `toml:"gemini"`
	PromptTemplates PromptTemplates           `toml:"prompt_templates"`
	AgentModels     map[string]GeminiLLMModel `toml:"agent_models"` // Gemini model profiles keyed by a logical name (e.g., "concept-extractor").
	Retry           Retry                     `toml:"retry"`
}

// NewConfig creates a new, initialized Config instance. The map fields must
// be initialized before the TOML loader populates them.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]GeminiLLMModel),
	}
}
