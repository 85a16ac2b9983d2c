// Package api serves the browser shell: a single page that generates a QR
// code from text, previews it and saves it.
package api

import (
	"log/slog"
	"sync"
	"time"

	"github.com/openclaw/qrgen/qr"
	"github.com/openclaw/qrgen/status"
)

// State is the shell's position in the generate/export cycle.
type State string

const (
	StateIdle             State = "idle"
	StateGenerated        State = "generated"
	StateExported         State = "exported"
	StateGenerationFailed State = "generation_failed"
	StateExportFailed     State = "export_failed"
)

// Server holds the dependencies for all HTTP handlers and the single current
// image. A new generation always replaces the current image; a failed one
// clears it.
type Server struct {
	Pipeline   *qr.Pipeline
	Log        *slog.Logger
	Version    string
	OutputPath string
	Stylesheet string
	// Hosts lists hostnames accepted besides loopback ones.
	Hosts []string

	mu        sync.RWMutex
	current   *qr.Image
	state     State
	message   status.Message
	startTime time.Time
}

// NewServer returns a Server in the idle state.
func NewServer(p *qr.Pipeline, log *slog.Logger, version, outputPath, stylesheet string) *Server {
	return &Server{
		Pipeline:   p,
		Log:        log,
		Version:    version,
		OutputPath: outputPath,
		Stylesheet: stylesheet,
		state:      StateIdle,
		message:    status.Ready(),
		startTime:  time.Now(),
	}
}

// Generate runs the pipeline on text and records the outcome.
func (s *Server) Generate(text string) (*qr.Image, status.Message, error) {
	img, err := s.Pipeline.Generate(text)
	msg := status.ForGenerate(err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = img
	s.message = msg
	if err != nil {
		s.state = StateGenerationFailed
		s.Log.Info("generation failed", "error", err)
	} else {
		s.state = StateGenerated
	}
	return img, msg, err
}

// Export writes the current image to path. An empty path falls back to the
// configured output path.
func (s *Server) Export(path string) (string, status.Message, error) {
	if path == "" {
		path = s.OutputPath
	}

	// Hold the write lock across the export so a concurrent generation cannot
	// swap the image mid-write.
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.Pipeline.Export(s.current, path)
	msg := status.ForExport(path, err)
	s.message = msg
	switch {
	case err == nil:
		s.state = StateExported
		s.Log.Info("qr code saved", "path", path)
	case s.current == nil:
		// Nothing was generated; the state does not move.
	default:
		s.state = StateExportFailed
		s.Log.Warn("saving qr code failed", "path", path, "error", err)
	}
	return path, msg, err
}

// Current returns the current image, if any.
func (s *Server) Current() *qr.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Snapshot returns the state and the last status message.
func (s *Server) Snapshot() (State, status.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.message
}
