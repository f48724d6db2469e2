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

// This file implements transcript retrieval from the timedtext caption
// endpoint. The Data API's captions.download method requires OAuth consent
// from the video owner, so the publicly readable timedtext XML feed is
// used instead. Tracks are tried in preference order: manually authored
// English captions first, then auto-generated ones, then whatever track
// the listing endpoint reports. Any tier producing entries wins; a video
// with no usable track yields ErrNoTranscript, which callers treat as a
// degraded-but-successful outcome.
package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/studyweave/studyweave/internal/core/model"
)

// DefaultTimedTextBaseURL is the production caption endpoint.
const DefaultTimedTextBaseURL = "https://video.google.com/timedtext"

// manualLanguageTiers are the English language codes tried for manual and
// auto-generated tracks, in preference order.
var manualLanguageTiers = []string{"en", "en-US", "en-GB", "en-CA", "en-AU"}

var (
	// ErrNoTranscript indicates the video has no usable caption track in
	// any tier. This is an expected outcome, not a pipeline failure.
	ErrNoTranscript = errors.New("no transcript available")

	// ErrVideoUnavailable indicates the caption endpoint reports the video
	// itself as gone, so no further tiers are worth trying.
	ErrVideoUnavailable = errors.New("video unavailable")

	// ErrRateLimited indicates the caption endpoint is throttling us and
	// further tier attempts would make it worse.
	ErrRateLimited = errors.New("caption endpoint rate limited")
)

// timedTextTrack is one entry of the caption track listing.
type timedTextTrack struct {
	LangCode string `xml:"lang_code,attr"`
	Kind     string `xml:"kind,attr"`
}

// timedTextTrackList is the root of a "?type=list" response.
type timedTextTrackList struct {
	XMLName xml.Name         `xml:"transcript_list"`
	Tracks  []timedTextTrack `xml:"track"`
}

// timedTextEntry is one caption line with its start offset and duration
// in seconds.
type timedTextEntry struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Text     string  `xml:",chardata"`
}

// timedTextTranscript is the root of a caption track response.
type timedTextTranscript struct {
	XMLName xml.Name         `xml:"transcript"`
	Entries []timedTextEntry `xml:"text"`
}

// TranscriptFetcher retrieves caption tracks over HTTP.
type TranscriptFetcher struct {
	baseURL string
	client  *http.Client
}

// NewTranscriptFetcher builds a fetcher against the given caption endpoint.
// An empty baseURL selects the production endpoint.
func NewTranscriptFetcher(baseURL string, client *http.Client) *TranscriptFetcher {
	if baseURL == "" {
		baseURL = DefaultTimedTextBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TranscriptFetcher{baseURL: baseURL, client: client}
}

// Fetch returns the transcript entries for a video, trying manual English
// tracks, then auto-generated ones, then any track the listing reports.
// ErrNoTranscript is returned when every tier comes up empty.
func (t *TranscriptFetcher) Fetch(ctx context.Context, videoID string) ([]*model.TranscriptEntry, error) {
	for _, lang := range manualLanguageTiers {
		entries, err := t.fetchTrack(ctx, videoID, lang, "")
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	for _, lang := range manualLanguageTiers {
		entries, err := t.fetchTrack(ctx, videoID, lang, "asr")
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	tracks, err := t.listTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	for _, track := range tracks {
		entries, err := t.fetchTrack(ctx, videoID, track.LangCode, track.Kind)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoTranscript, videoID)
}

// fetchTrack requests one caption track. An empty body or a parse failure
// means the track does not exist and the caller should fall through to the
// next tier; only endpoint-level failures abort the whole fetch.
func (t *TranscriptFetcher) fetchTrack(ctx context.Context, videoID, lang, kind string) ([]*model.TranscriptEntry, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", lang)
	if kind != "" {
		params.Set("kind", kind)
	}

	body, err := t.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var transcript timedTextTranscript
	if err := xml.Unmarshal(body, &transcript); err != nil {
		return nil, nil
	}

	entries := make([]*model.TranscriptEntry, 0, len(transcript.Entries))
	for _, raw := range transcript.Entries {
		text := html.UnescapeString(raw.Text)
		text = strings.Join(strings.Fields(text), " ")
		// Very short fragments ("uh", "um") carry no signal for extraction.
		if len(text) <= 2 {
			continue
		}
		entries = append(entries, &model.TranscriptEntry{
			Start:    raw.Start,
			Duration: raw.Duration,
			Text:     text,
		})
	}
	return entries, nil
}

// listTracks asks the endpoint which caption tracks exist for the video.
func (t *TranscriptFetcher) listTracks(ctx context.Context, videoID string) ([]timedTextTrack, error) {
	params := url.Values{}
	params.Set("type", "list")
	params.Set("v", videoID)

	body, err := t.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var list timedTextTrackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, nil
	}
	return list.Tracks, nil
}

// get performs one caption endpoint request and maps the status codes that
// make further attempts pointless onto their sentinels.
func (t *TranscriptFetcher) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: status %d", ErrVideoUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("caption endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	return body, nil
}
