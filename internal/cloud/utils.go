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
// This file contains the hierarchical configuration loader: a base TOML
// file is read first, then an environment-specific file (selected by an
// environment variable) overwrites any values it repeats. This lets local,
// test, and production runs share one base file.
package cloud

import (
	"errors"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Configuration loading constants.
const (
	ConfigFileBaseName  = ".env"                      // Base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"                     // File extension for configuration files.
	ConfigSeparator     = "."                         // Separator in override file names (e.g., ".env.test.toml").
	EnvConfigFilePrefix = "STUDYWEAVE_CONFIG_PREFIX"  // Environment variable naming the config directory.
	EnvConfigRuntime    = "STUDYWEAVE_RUNTIME"        // Environment variable naming the runtime (e.g., "local", "test").
)

// fileExists reports whether a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates baseConfig from the base TOML file and then merges
// the environment-specific override file on top of it. The directory and
// runtime name come from the EnvConfigFilePrefix and EnvConfigRuntime
// environment variables; the runtime defaults to "test" when unset.
func LoadConfig(baseConfig interface{}) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension
	slog.Info("loading configuration", "base", baseConfigFileName, "override", envConfigFileName)

	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	// Values in the override file win over the base configuration.
	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}

// ValidateConfig checks that the API keys the pipeline depends on are
// present. Missing keys are reported rather than fatal so the server can
// still start for endpoints that do not need them.
func ValidateConfig(config *Config) []string {
	var missing []string
	if config.YouTube.APIKey == "" {
		missing = append(missing, "youtube.api_key")
	}
	if config.Gemini.APIKey == "" {
		missing = append(missing, "gemini.api_key")
	}
	return missing
}
