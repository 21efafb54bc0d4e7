// Package server exposes the resource map over HTTP: a home page, the map
// view with its markers, a plain-text diagnostics dump behind a debug flag,
// and a liveness endpoint.
package server

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"

	"resourcemap/internal/config"
	"resourcemap/internal/logger"
	"resourcemap/internal/resource"
	"resourcemap/internal/storage"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server wires the fiber app to the workbook loader. Every map request
// re-reads the workbook; there is no state shared across requests.
type Server struct {
	app   *fiber.App
	cfg   *config.Config
	store *storage.Service
}

// New builds the HTTP server. store may be nil when the workbook lives on
// local disk.
func New(cfg *config.Config, store *storage.Service) (*Server, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")

	app := fiber.New(fiber.Config{
		Views:                 engine,
		DisableStartupMessage: true,
	})

	s := &Server{app: app, cfg: cfg, store: store}
	app.Get("/", s.handleHome)
	app.Get("/ping", s.handlePing)
	app.Get("/map", s.handleMap)
	return s, nil
}

// Listen serves on the configured address until Shutdown is called.
func (s *Server) Listen() error {
	logger.Get("server").Infof("listening on %s", s.cfg.ServerAddr)
	return s.app.Listen(s.cfg.ServerAddr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHome(c *fiber.Ctx) error {
	return c.Render("home", fiber.Map{})
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// handleMap renders the map with one marker per kept record. With ?debug=1 it
// returns the load diagnostics as plain text instead.
func (s *Server) handleMap(c *fiber.Ctx) error {
	records, diag := s.load(c)

	if c.Query("debug") == "1" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(diag.String())
	}

	markers, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.Render("map_home", fiber.Map{
		"Markers": template.JS(markers),
		"Count":   len(records),
	})
}

// load refreshes the local workbook copy from object storage when configured,
// then runs the ingestion pass. Load failures surface as diagnostics, never
// as request errors: the page renders with zero markers.
func (s *Server) load(c *fiber.Ctx) ([]resource.Record, *resource.Diagnostics) {
	log := logger.Get("server")
	path := s.cfg.Sheet.InputPath
	if s.store != nil {
		if err := s.store.FetchFile(c.Context(), filepath.Base(path), path); err != nil {
			log.Warnf("workbook fetch failed, using local copy: %v", err)
		}
	}
	records, diag := resource.Load(path, s.cfg.Sheet.SheetName)
	if len(diag.Errors) > 0 {
		log.Warnf("load finished with errors: %v", diag.Errors)
	}
	return records, diag
}
