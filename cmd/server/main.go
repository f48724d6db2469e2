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

// Package main is the entry point for the course-builder backend server.
//
// The server exposes a REST API over Gin for turning batches of video URLs
// into structured courses: a health probe, the course build and video
// preview operations, a grounded question-answering endpoint, and a
// document upload endpoint. Requests are traced with OpenTelemetry and
// logs carry trace correlation fields for Cloud Logging.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/studyweave/studyweave/internal/core/model"
	"github.com/studyweave/studyweave/internal/telemetry"
)

// courseRequest is the payload for the build and preview endpoints.
type courseRequest struct {
	VideoURLs []string `json:"video_urls"`
}

// askRequest is the payload for the question-answering endpoint. Video and
// concept context are optional.
type askRequest struct {
	Question string             `json:"question"`
	Video    *model.VideoRecord `json:"video,omitempty"`
	Concept  *model.Concept     `json:"concept,omitempty"`
}

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware("studyweave-backend"))
	// cors.Default() allows all origins, which is what the local frontend
	// development setup needs.
	r.Use(cors.Default())

	HealthRouter(r)

	apiV1 := r.Group("/api/v1")
	{
		CourseRouter(apiV1)
		DocumentUpload(apiV1)
	}

	port := config.Application.Port
	if port <= 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 5 * time.Minute, // Course builds wait on model generations.
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready", "port", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// HealthRouter registers the unversioned health probe.
func HealthRouter(r *gin.Engine) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"message":      "StudyWeave AI Backend Running",
			"config_valid": state.configValid,
		})
	})
}

// CourseRouter registers the course-building endpoints:
//   - POST /courses: build a full course from a batch of video URLs.
//   - POST /videos/preview: resolve the batch without running extraction.
//   - POST /ask: answer a student question grounded on course context.
func CourseRouter(r *gin.RouterGroup) {
	r.POST("/courses", func(c *gin.Context) {
		var req courseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "video_urls must be a list"})
			return
		}

		course, buildErr := state.courseService.BuildCourse(c.Request.Context(), req.VideoURLs)
		if buildErr != nil {
			c.JSON(http.StatusBadRequest, buildErr)
			return
		}
		c.JSON(http.StatusOK, course)
	})

	r.POST("/videos/preview", func(c *gin.Context) {
		var req courseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "video_urls must be a list"})
			return
		}

		preview, buildErr := state.courseService.PreviewVideos(c.Request.Context(), req.VideoURLs)
		if buildErr != nil {
			c.JSON(http.StatusBadRequest, buildErr)
			return
		}
		c.JSON(http.StatusOK, preview)
	})

	r.POST("/ask", func(c *gin.Context) {
		var req askRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
			return
		}

		answer := state.courseService.AnswerQuestion(c.Request.Context(), req.Question, req.Video, req.Concept)
		c.JSON(http.StatusOK, gin.H{"answer": answer})
	})
}

// DocumentUpload registers the supplementary-material upload endpoint. The
// first bytes of the upload are sniffed to verify it is a document type we
// plan to index; ingestion itself is not implemented yet, so accepted
// files are acknowledged with 202.
func DocumentUpload(r *gin.RouterGroup) {
	documentTypes := map[string]bool{"pdf": true, "docx": true, "pptx": true}

	r.POST("/documents", func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		defer func() { _ = file.Close() }()

		// 261 bytes is all the magic-number matcher needs.
		head := make([]byte, 261)
		n, _ := file.Read(head)
		kind, err := filetype.Match(head[:n])
		if err != nil || !documentTypes[kind.Extension] {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "only pdf, docx, and pptx documents are supported"})
			return
		}

		slog.InfoContext(c.Request.Context(), "document accepted", "name", fileHeader.Filename, "type", kind.Extension, "size", fileHeader.Size)
		c.JSON(http.StatusAccepted, gin.H{
			"status": "accepted",
			"name":   fileHeader.Filename,
			"type":   kind.Extension,
		})
	})
}
