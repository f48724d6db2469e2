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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTranscriptXML = `<?xml version="1.0" encoding="utf-8"?>
<transcript>
	<text start="0" dur="4.2">Welcome to this introduction to Go concurrency.</text>
	<text start="12.5" dur="5.1">A goroutine is a
lightweight thread &amp; it is cheap.</text>
	<text start="20.1" dur="1.0">um</text>
	<text start="65" dur="6.3">Channels let goroutines communicate.</text>
</transcript>`

func newTranscriptServer(t *testing.T, handler http.HandlerFunc) *TranscriptFetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewTranscriptFetcher(server.URL, server.Client())
}

func TestTranscriptFetchManualTrack(t *testing.T) {
	fetcher := newTranscriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		if r.URL.Query().Get("lang") == "en" && r.URL.Query().Get("kind") == "" {
			_, _ = w.Write([]byte(sampleTranscriptXML))
			return
		}
		// Every other track is absent.
	})

	entries, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.Len(t, entries, 3, "the two-character fragment must be filtered out")

	assert.Equal(t, 0.0, entries[0].Start)
	assert.Equal(t, 4.2, entries[0].Duration)
	assert.Equal(t, "Welcome to this introduction to Go concurrency.", entries[0].Text)
	// Entities are unescaped and embedded newlines collapse to spaces.
	assert.Equal(t, "A goroutine is a lightweight thread & it is cheap.", entries[1].Text)
	assert.Equal(t, "Channels let goroutines communicate.", entries[2].Text)
}

func TestTranscriptFetchFallsBackToAutoGenerated(t *testing.T) {
	fetcher := newTranscriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lang") == "en-GB" && r.URL.Query().Get("kind") == "asr" {
			_, _ = w.Write([]byte(sampleTranscriptXML))
		}
	})

	entries, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestTranscriptFetchFallsBackToListedTrack(t *testing.T) {
	fetcher := newTranscriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case query.Get("type") == "list":
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript_list><track lang_code="de" kind=""/></transcript_list>`))
		case query.Get("lang") == "de":
			_, _ = w.Write([]byte(sampleTranscriptXML))
		}
	})

	entries, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestTranscriptFetchNoTracks(t *testing.T) {
	fetcher := newTranscriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Empty body for every tier.
	})

	_, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestTranscriptFetchAllEntriesFiltered(t *testing.T) {
	fetcher := newTranscriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lang") == "en" && r.URL.Query().Get("kind") == "" {
			_, _ = w.Write([]byte(`<transcript><text start="0" dur="1">um</text><text start="1" dur="1">ah</text></transcript>`))
		}
	})

	_, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestTranscriptFetchVideoGone(t *testing.T) {
	var requests int
	fetcher := newTranscriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrVideoUnavailable)
	assert.Equal(t, 1, requests, "an unavailable video must abort the tier walk")
}

func TestTranscriptFetchRateLimited(t *testing.T) {
	var requests int
	fetcher := newTranscriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, requests, "throttling must abort the tier walk")
}
