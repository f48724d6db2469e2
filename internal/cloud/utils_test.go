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

package cloud

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfigOverrideWins(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".env.toml", `
[application]
name = "base-name"
port = 8080
thread_pool_size = 3

[youtube]
api_key = "base-key"
`)
	writeConfigFile(t, dir, ".env.test.toml", `
[application]
name = "test-name"

[youtube]
api_key = "test-key"
`)

	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "test")

	config := NewConfig()
	LoadConfig(&config)

	assert.Equal(t, "test-name", config.Application.Name)
	assert.Equal(t, "test-key", config.YouTube.APIKey)
	// Values the override does not repeat survive from the base file.
	assert.Equal(t, 8080, config.Application.Port)
	assert.Equal(t, 3, config.Application.ThreadPoolSize)
}

func TestLoadConfigRuntimeDefaultsToTest(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".env.toml", `
[application]
name = "base-name"
`)
	writeConfigFile(t, dir, ".env.test.toml", `
[application]
name = "from-test-override"
`)

	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "")

	config := NewConfig()
	LoadConfig(&config)
	assert.Equal(t, "from-test-override", config.Application.Name)
}

func TestLoadConfigAgentModels(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".env.toml", `
[agent_models.concept-extractor]
model = "gemini-1.5-flash"
temperature = 0.7
max_tokens = 1500
output_format = "application/json"
rate_limit = 1
`)

	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "test")

	config := NewConfig()
	LoadConfig(&config)

	require.Contains(t, config.AgentModels, "concept-extractor")
	agent := config.AgentModels["concept-extractor"]
	assert.Equal(t, "gemini-1.5-flash", agent.Model)
	assert.Equal(t, float32(0.7), agent.Temperature)
	assert.Equal(t, int32(1500), agent.MaxTokens)
	assert.Equal(t, "application/json", agent.OutputFormat)
}

func TestValidateConfig(t *testing.T) {
	config := NewConfig()
	missing := ValidateConfig(config)
	assert.ElementsMatch(t, []string{"youtube.api_key", "gemini.api_key"}, missing)

	config.YouTube.APIKey = "yt"
	config.Gemini.APIKey = "gm"
	assert.Empty(t, ValidateConfig(config))
}
