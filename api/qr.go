package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"

	"github.com/openclaw/qrgen/qr"
	"github.com/openclaw/qrgen/status"
)

// maxRequestBody bounds JSON bodies; the largest symbol holds under 3KB.
const maxRequestBody = 64 << 10

type generateRequest struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Status  status.Message `json:"status"`
	Width   int            `json:"width,omitempty"`
	Height  int            `json:"height,omitempty"`
	Version int            `json:"version,omitempty"`
	Modules int            `json:"modules,omitempty"`
	PNG     string         `json:"png,omitempty"`
}

type exportRequest struct {
	Path string `json:"path"`
}

type exportResponse struct {
	Status status.Message `json:"status"`
	Path   string         `json:"path"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	img, msg, err := s.Generate(req.Text)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, qr.ErrEmptyInput) {
			code = http.StatusBadRequest
		}
		writeJSON(w, code, generateResponse{Status: msg})
		return
	}

	data, err := img.PNG()
	if err != nil {
		s.Log.Error("encode png", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Status:  msg,
		Width:   img.Width(),
		Height:  img.Height(),
		Version: img.Version(),
		Modules: img.Modules(),
		PNG:     base64.StdEncoding.EncodeToString(data),
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	img := s.Current()
	if img == nil {
		writeError(w, http.StatusNotFound, "no QR code generated")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, qr.Preview(img, qr.PreviewSize)); err != nil {
		s.Log.Error("write preview", "error", err)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	img := s.Current()
	if img == nil {
		writeError(w, http.StatusConflict, status.ForExport("", qr.ErrNoImage).Text)
		return
	}

	data, err := img.PNG()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="qr_code.png"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	// An empty body saves to the configured output path.
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	path, msg, err := s.Export(req.Path)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, exportResponse{Status: msg, Path: path})
	case errors.Is(err, qr.ErrNoImage):
		writeJSON(w, http.StatusConflict, exportResponse{Status: msg, Path: path})
	default:
		writeJSON(w, http.StatusInternalServerError, exportResponse{Status: msg, Path: path})
	}
}
