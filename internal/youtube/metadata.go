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

// This file implements metadata lookup against the YouTube Data API v3.
// One videos.list call per identifier returns the snippet, content details,
// and statistics parts; the response is flattened into the pipeline's
// VideoRecord. Failures that retrying cannot fix (quota denial, a deleted
// video) are marked permanent so the retry policy gives up immediately.
package youtube

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/studyweave/studyweave/internal/cloud"
	"github.com/studyweave/studyweave/internal/core/model"
)

// ErrVideoNotFound indicates the API returned an empty item list for the
// requested identifier: the video is deleted, private, or never existed.
var ErrVideoNotFound = errors.New("video not found")

// MetadataFetcher retrieves video metadata from the YouTube Data API.
type MetadataFetcher struct {
	service *yt.Service
	retry   cloud.RetryPolicy
}

// NewMetadataFetcher builds a fetcher authenticated with the given API key.
// Extra client options are accepted so tests can point the service at a
// local HTTP server.
func NewMetadataFetcher(ctx context.Context, apiKey string, retry cloud.RetryPolicy, opts ...option.ClientOption) (*MetadataFetcher, error) {
	options := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := yt.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &MetadataFetcher{service: service, retry: retry}, nil
}

// Fetch looks up one video and returns its record without a transcript.
// HTTP 403 (quota or key problems) and 404 responses are treated as
// permanent; other failures are retried per the policy.
func (m *MetadataFetcher) Fetch(ctx context.Context, videoID string) (*model.VideoRecord, error) {
	var response *yt.VideoListResponse
	err := m.retry.Do(ctx, func() error {
		var callErr error
		response, callErr = m.service.Videos.
			List([]string{"snippet", "contentDetails", "statistics"}).
			Id(videoID).
			Context(ctx).
			Do()
		if callErr != nil {
			var apiErr *googleapi.Error
			if errors.As(callErr, &apiErr) && (apiErr.Code == 403 || apiErr.Code == 404) {
				return cloud.Permanent(callErr)
			}
			return callErr
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("metadata lookup for %s failed: %w", videoID, err)
	}
	if len(response.Items) == 0 {
		return nil, cloud.Permanent(fmt.Errorf("%w: %s", ErrVideoNotFound, videoID))
	}

	item := response.Items[0]
	record := &model.VideoRecord{
		ID:  videoID,
		URL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
	}
	if item.Snippet != nil {
		record.Title = item.Snippet.Title
		record.Description = item.Snippet.Description
		record.Channel = item.Snippet.ChannelTitle
		record.PublishedAt = item.Snippet.PublishedAt
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			record.Thumbnail = item.Snippet.Thumbnails.High.Url
		}
	}
	if item.ContentDetails != nil {
		record.Duration = item.ContentDetails.Duration
	}
	if item.Statistics != nil {
		record.ViewCount = item.Statistics.ViewCount
		record.LikeCount = item.Statistics.LikeCount
		record.CommentCount = item.Statistics.CommentCount
	}
	return record, nil
}
