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

// Package cor (Chain of Responsibility) provides the building blocks for
// creating workflows. This file defines the interfaces that govern the
// behavior of all components within the pattern: a Command is an atomic unit
// of work, a Chain executes commands in sequence while piping each command's
// output into the next command's input, and a Context is the shared property
// bag a single workflow execution reads from and writes to.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used for the primary data flow within a
// chain. After each command runs, the chain moves the value stored under
// CtxOut to CtxIn so it becomes the next command's input.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state object passed through a chain of commands.
// It carries data, errors, and the standard Go context (for cancellation
// and trace propagation) for one workflow execution.
type Context interface {
	// SetContext sets the standard Go context, primarily for passing
	// cancellation signals and OpenTelemetry span information.
	SetContext(ctx context.Context)

	// GetContext retrieves the standard Go context.
	GetContext() context.Context

	// Add stores a key-value pair. It returns the Context so calls can be
	// chained fluently.
	Add(key string, value interface{}) Context

	// AddError records an error produced by a command. The key should be
	// the name of the command that produced it.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the workflow, keyed by
	// command name.
	GetErrors() map[string]error

	// Get retrieves a value by key, or nil when absent.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any command has recorded an error.
	HasErrors() bool
}

// Executable is any object with a core execution step. Execute reads its
// inputs from the Context and writes its outputs back to it.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, testable unit of work and the fundamental building
// block of a workflow.
type Command interface {
	Executable

	// GetName returns the command's unique name, used for logging and telemetry.
	GetName() string

	// GetInputParam returns the context key the command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command stores its primary
	// output under.
	GetOutputParam() string

	// IsExecutable is the precondition check run before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for creating metrics.
	GetMeter() metric.Meter

	// GetSuccessCounter returns a counter incremented on successful executions.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns a counter incremented on failed executions.
	GetErrorCounter() metric.Int64Counter
}

// Chain is a sequence of commands. A Chain is itself a Command, so chains
// can be nested inside other chains.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after
	// a command records an error. Default is to stop.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
