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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPolicy returns a policy with a recorded fake clock instead of real
// sleeping.
func stubPolicy(maxAttempts int) (RetryPolicy, *[]time.Duration) {
	slept := &[]time.Duration{}
	policy := NewRetryPolicy(maxAttempts, 100*time.Millisecond)
	policy.Sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return policy, slept
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	policy, slept := stubPolicy(3)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestRetryRecoversWithLinearBackoff(t *testing.T) {
	policy, slept := stubPolicy(3)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *slept)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	policy, _ := stubPolicy(3)

	calls := 0
	wantErr := errors.New("still broken")
	err := policy.Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	policy, slept := stubPolicy(3)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return Permanent(errors.New("forbidden"))
	})
	assert.ErrorIs(t, err, ErrPermanent)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	policy, _ := stubPolicy(5)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := policy.Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryDefaults(t *testing.T) {
	policy := NewRetryPolicy(0, 0)
	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, policy.Backoff(1))
	assert.Equal(t, time.Second, policy.Backoff(2))
}
