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

package cor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendCommand appends its own suffix to the string it receives, passing
// the result down the chain.
type appendCommand struct {
	BaseCommand
	suffix string
	fail   bool
	ran    bool
}

func newAppendCommand(name, suffix string, fail bool) *appendCommand {
	return &appendCommand{BaseCommand: *NewBaseCommand(name), suffix: suffix, fail: fail}
}

func (c *appendCommand) Execute(context Context) {
	c.ran = true
	if c.fail {
		context.AddError(c.GetName(), errors.New("command failed"))
		return
	}
	in := context.Get(c.GetInputParam()).(string)
	context.Add(c.GetOutputParam(), in+c.suffix)
}

func newChainContext(value string) Context {
	chainCtx := NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(CtxIn, value)
	return chainCtx
}

func TestChainPipesOutputToInput(t *testing.T) {
	first := newAppendCommand("first", "-a", false)
	second := newAppendCommand("second", "-b", false)

	chain := NewBaseChain("test-chain")
	chain.AddCommand(first).AddCommand(second)

	chainCtx := newChainContext("start")
	chain.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	assert.True(t, first.ran)
	assert.True(t, second.ran)
	// After the final command the piped value has moved to CtxIn and CtxOut
	// is cleared.
	assert.Equal(t, "start-a-b", chainCtx.Get(CtxIn))
	assert.Nil(t, chainCtx.Get(CtxOut))
}

func TestChainStopsOnError(t *testing.T) {
	first := newAppendCommand("first", "-a", true)
	second := newAppendCommand("second", "-b", false)

	chain := NewBaseChain("test-chain")
	chain.AddCommand(first).AddCommand(second)

	chainCtx := newChainContext("start")
	chain.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	assert.True(t, first.ran)
	assert.False(t, second.ran, "the chain must stop at the first error")
}

func TestChainContinueOnFailure(t *testing.T) {
	first := newAppendCommand("first", "-a", true)
	second := newAppendCommand("second", "-b", false)

	chain := NewBaseChain("test-chain")
	chain.ContinueOnFailure(true)
	chain.AddCommand(first).AddCommand(second)

	chainCtx := newChainContext("start")
	chain.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.True(t, second.ran)
}

func TestChainSkipsNonExecutableCommand(t *testing.T) {
	// No CtxIn value, so the command's precondition fails.
	command := newAppendCommand("first", "-a", false)
	chain := NewBaseChain("test-chain")
	chain.AddCommand(command)

	chainCtx := NewBaseContext()
	chainCtx.SetContext(context.Background())
	chain.Execute(chainCtx)

	assert.False(t, command.ran)
	assert.False(t, chainCtx.HasErrors())
}

func TestNamedInputOutputParams(t *testing.T) {
	command := newAppendCommand("named", "-x", false)
	command.InputParamName = "custom_in"
	command.OutputParamName = "custom_out"

	chainCtx := NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add("custom_in", "value")

	require.True(t, command.IsExecutable(chainCtx))
	command.Execute(chainCtx)
	assert.Equal(t, "value-x", chainCtx.Get("custom_out"))
}
