// Package hosting exposes identification over HTTP for the serve mode.
package hosting

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/features/history"
	"github.com/contre95/soundprint/src/features/identify"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, identifyService *identify.Service, historyService *history.Service) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
		AppName:               "Soundprint",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
		BodyLimit:             100 * 1024 * 1024, // uploads are raw audio
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handler := &apiHandler{identify: identifyService, history: historyService}
	api := app.Group("/api")
	api.Post("/identify", handler.identifyUpload)
	api.Get("/history", handler.recentHistory)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

type apiHandler struct {
	identify *identify.Service
	history  *history.Service
}

// identifyUpload accepts a multipart audio upload under the "audio"
// field and returns the ranked matches as JSON.
func (h *apiHandler) identifyUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing 'audio' file field"})
	}

	tmpDir, err := os.MkdirTemp("", "soundprint-upload-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, tmpPath); err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}

	opts := identify.Options{
		MaxResults: c.QueryInt("max_results"),
		Preprocess: c.QueryBool("preprocess"),
		Source:     identify.SourceUpload,
	}
	matches, err := h.identify.Identify(c.Context(), tmpPath, opts)
	switch {
	case errors.Is(err, identify.ErrNoMatches):
		return c.JSON(fiber.Map{"matches": []any{}})
	case errors.Is(err, identify.ErrNoAPIKey):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return err
	}

	results := make([]fiber.Map, 0, len(matches))
	for _, m := range matches {
		results = append(results, fiber.Map{
			"title":      m.Recording.Title,
			"artist":     m.ArtistNames(),
			"score":      m.Score,
			"confidence": m.ScorePercent(),
			"recording":  m.Recording.ID,
			"duration":   m.Recording.Duration,
		})
	}
	return c.JSON(fiber.Map{"matches": results})
}

// recentHistory lists past identifications, newest first.
func (h *apiHandler) recentHistory(c *fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "history is disabled"})
	}
	entries, err := h.history.Recent(c.Context())
	if err != nil {
		return err
	}
	results := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		results = append(results, fiber.Map{
			"id":         e.ID,
			"created_at": e.CreatedAt,
			"source":     e.Source,
			"title":      e.Title,
			"artist":     e.Artist,
			"score":      e.Score,
		})
	}
	return c.JSON(fiber.Map{"history": results})
}
