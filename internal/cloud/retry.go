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
// This file defines the retry policy value threaded into every
// network-calling operation. Representing the policy as a plain value with
// an injectable sleep function keeps retry behavior independently testable
// with a fake clock, instead of burying repeated-attempt loops inside each
// fetcher.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPermanent marks an upstream failure that retrying cannot help:
// authorization denied, a missing video, or a rate-limited endpoint.
// RetryPolicy.Do gives up immediately when an attempt returns an error
// wrapping this sentinel.
var ErrPermanent = errors.New("permanent upstream failure")

// Permanent wraps err so that RetryPolicy.Do will not retry it.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// RetryPolicy is a bounded fixed-count retry with backoff between attempts.
type RetryPolicy struct {
	MaxAttempts int                             // Total attempts per call, including the first.
	Backoff     func(attempt int) time.Duration // Wait before attempt n (1-based for waits).
	Sleep       func(d time.Duration)           // Injectable for tests; defaults to time.Sleep.
}

// NewRetryPolicy builds a policy with linearly increasing backoff: the wait
// before attempt n is n * step. Non-positive inputs fall back to three
// attempts with a half-second step, matching the upstream clients' limits.
func NewRetryPolicy(maxAttempts int, step time.Duration) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if step <= 0 {
		step = 500 * time.Millisecond
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * step
		},
		Sleep: time.Sleep,
	}
}

// Do invokes op until it succeeds, returns a permanent error, the context
// is cancelled, or the attempt budget runs out. The last error seen is
// returned on exhaustion.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			sleep(p.Backoff(attempt))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = op()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) {
			return err
		}
	}
	return err
}
