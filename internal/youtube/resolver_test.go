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

package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch url with extra params", "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link with timestamp", "https://youtu.be/dQw4w9WgXcQ?t=30", "dQw4w9WgXcQ", true},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"legacy v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"surrounding whitespace", "  https://youtu.be/dQw4w9WgXcQ  ", "dQw4w9WgXcQ", true},
		{"not a video url", "https://example.com/page", "", false},
		{"id too short", "https://youtu.be/short", "", false},
		{"empty", "", "", false},
		{"garbage", "not a url at all", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := ExtractVideoID(tc.url)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestIsWellFormed(t *testing.T) {
	assert.True(t, IsWellFormed("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.True(t, IsWellFormed("http://youtu.be/dQw4w9WgXcQ"))
	assert.True(t, IsWellFormed("youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.True(t, IsWellFormed("HTTPS://WWW.YOUTUBE.COM/WATCH?V=dQw4w9WgXcQ"))
	assert.False(t, IsWellFormed("https://vimeo.com/12345"))
	assert.False(t, IsWellFormed("not-a-url"))
	assert.False(t, IsWellFormed(""))
}
