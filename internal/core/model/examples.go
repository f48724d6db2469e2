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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are used for "few-shot" prompting with the
// generative AI models. By embedding a concrete example of the desired JSON
// output structure in the prompt itself, we guide the model to return data
// that is consistent, correctly formatted, and parsable.
package model

// GetExampleConceptSet creates a sample ConceptSet used as the few-shot
// example when asking the generative model to extract teaching concepts.
// It shows the model the exact envelope shape: a top-level "concepts" array
// whose entries carry a name, a clock timestamp, the same timestamp in
// seconds, a short summary, and a quiz array.
func GetExampleConceptSet() *ConceptSet {
	return &ConceptSet{
		Concepts: []*Concept{
			{
				Name:             "Variable Scope",
				Timestamp:        "02:03",
				TimestampSeconds: 123,
				Summary: "Variable scope determines where a variable can be read or " +
					"written. The video contrasts block scope with function scope and " +
					"shows how shadowing causes subtle bugs.",
				Quiz: []*QuizQuestion{
					{
						Question:    "What does the scope of a variable control?",
						Options:     []string{"Where it can be accessed", "How much memory it uses", "Its runtime type", "Its default value"},
						Correct:     0,
						Explanation: "Scope defines the region of the program where a binding is visible.",
					},
				},
			},
		},
	}
}
