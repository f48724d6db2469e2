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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		clock string
		want  int
	}{
		{"02:03", 123},
		{"00:00", 0},
		{"1:02:03", 3723},
		{"10:00", 600},
		{" 02:03 ", 123},
		{"abc", 0},
		{"1:xx", 0},
		{"", 0},
		{"1:2:3:4", 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseClock(tc.clock), "clock %q", tc.clock)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "00:00", FormatClock(-5))
	assert.Equal(t, "02:03", FormatClock(123))
	assert.Equal(t, "59:59", FormatClock(3599))
	assert.Equal(t, "1:00:00", FormatClock(3600))
	assert.Equal(t, "1:02:03", FormatClock(3723))
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		iso  string
		want int
	}{
		{"PT3M32S", 212},
		{"PT1H", 3600},
		{"PT45S", 45},
		{"PT1H2M3S", 3723},
		{"P1DT1H", 90000},
		{"not-a-duration", 0},
		{"", 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseISODuration(tc.iso), "duration %q", tc.iso)
	}
}

func TestClockRoundTrip(t *testing.T) {
	for _, seconds := range []int{1, 59, 60, 61, 3599, 3600, 7322} {
		assert.Equal(t, seconds, ParseClock(FormatClock(seconds)), "seconds %d", seconds)
	}
}
