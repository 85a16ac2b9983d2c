package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/qrgen/qr"
	"github.com/openclaw/qrgen/status"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	s := NewServer(qr.New(log), log, "test", filepath.Join(dir, "qr_code.png"), "")
	return s, NewRouter(s)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Host = "127.0.0.1:8556"
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestGenerateHandler(t *testing.T) {
	t.Parallel()

	t.Run("returns the png and dimensions", func(t *testing.T) {
		t.Parallel()
		s, h := newTestServer(t)

		rec := do(t, h, http.MethodPost, "/generate", `{"text":"https://example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[generateResponse](t, rec)
		assert.Equal(t, status.KindSuccess, resp.Status.Kind)
		assert.Equal(t, (resp.Modules+4)*8, resp.Width)
		assert.Equal(t, resp.Width, resp.Height)

		data, err := base64.StdEncoding.DecodeString(resp.PNG)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, resp.Width, cfg.Width)

		state, _ := s.Snapshot()
		assert.Equal(t, StateGenerated, state)
		assert.NotNil(t, s.Current())
	})

	t.Run("rejects blank text and clears the image", func(t *testing.T) {
		t.Parallel()
		s, h := newTestServer(t)

		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/generate", `{"text":"first"}`).Code)

		rec := do(t, h, http.MethodPost, "/generate", `{"text":"   "}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeBody[generateResponse](t, rec)
		assert.Equal(t, "Please enter a message to generate a QR code.", resp.Status.Text)
		assert.Empty(t, resp.PNG)

		state, _ := s.Snapshot()
		assert.Equal(t, StateGenerationFailed, state)
		assert.Nil(t, s.Current())
	})

	t.Run("reports payloads over capacity", func(t *testing.T) {
		t.Parallel()
		_, h := newTestServer(t)

		body, err := json.Marshal(generateRequest{Text: strings.Repeat("x", 4000)})
		require.NoError(t, err)
		rec := do(t, h, http.MethodPost, "/generate", string(body))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		resp := decodeBody[generateResponse](t, rec)
		assert.True(t, strings.HasPrefix(resp.Status.Text, "Error generating QR code: "))
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()
		_, h := newTestServer(t)
		rec := do(t, h, http.MethodPost, "/generate", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExportHandler(t *testing.T) {
	t.Parallel()

	t.Run("refuses before any generation", func(t *testing.T) {
		t.Parallel()
		s, h := newTestServer(t)

		rec := do(t, h, http.MethodPost, "/export", "")
		require.Equal(t, http.StatusConflict, rec.Code)

		_, err := os.Stat(s.OutputPath)
		assert.True(t, os.IsNotExist(err))
		state, _ := s.Snapshot()
		assert.Equal(t, StateIdle, state)
	})

	t.Run("writes to the default path", func(t *testing.T) {
		t.Parallel()
		s, h := newTestServer(t)
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/generate", `{"text":"hello"}`).Code)

		rec := do(t, h, http.MethodPost, "/export", "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[exportResponse](t, rec)
		assert.Equal(t, s.OutputPath, resp.Path)
		assert.Equal(t, "QR code saved successfully to: qr_code.png", resp.Status.Text)

		f, err := os.Open(s.OutputPath)
		require.NoError(t, err)
		defer f.Close()
		cfg, err := png.DecodeConfig(f)
		require.NoError(t, err)
		assert.Equal(t, s.Current().Width(), cfg.Width)

		state, _ := s.Snapshot()
		assert.Equal(t, StateExported, state)
	})

	t.Run("writes to a requested path", func(t *testing.T) {
		t.Parallel()
		_, h := newTestServer(t)
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/generate", `{"text":"hello"}`).Code)

		path := filepath.Join(t.TempDir(), "custom.png")
		body, err := json.Marshal(exportRequest{Path: path})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/export", string(body)).Code)
		assert.FileExists(t, path)
	})

	t.Run("reports write failures and stays usable", func(t *testing.T) {
		t.Parallel()
		s, h := newTestServer(t)
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/generate", `{"text":"hello"}`).Code)

		bad := filepath.Join(t.TempDir(), "missing", "qr.png")
		body, err := json.Marshal(exportRequest{Path: bad})
		require.NoError(t, err)
		rec := do(t, h, http.MethodPost, "/export", string(body))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeBody[exportResponse](t, rec)
		assert.True(t, strings.HasPrefix(resp.Status.Text, "Error saving file: "))

		state, _ := s.Snapshot()
		assert.Equal(t, StateExportFailed, state)
		assert.NotNil(t, s.Current())

		// Retry to a good path succeeds with the same image.
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/export", "").Code)
	})
}

func TestPreviewAndDownload(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/preview.png", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodGet, "/download", "").Code)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/generate", `{"text":"https://example.com"}`).Code)

	rec := do(t, h, http.MethodGet, "/preview.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg, err := png.DecodeConfig(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, qr.PreviewSize, cfg.Width)
	assert.Equal(t, qr.PreviewSize, cfg.Height)

	rec = do(t, h, http.MethodGet, "/download", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "qr_code.png")
	_, err = png.Decode(rec.Body)
	assert.NoError(t, err)
}

func TestStatusHandler(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[statusResponse](t, rec)
	assert.Equal(t, "idle", resp.State)
	assert.False(t, resp.HasImage)
	assert.Equal(t, "Ready to generate QR code", resp.Message.Text)
	assert.Equal(t, "test", resp.Version)

	do(t, h, http.MethodPost, "/generate", `{"text":"x"}`)
	resp = decodeBody[statusResponse](t, do(t, h, http.MethodGet, "/status", ""))
	assert.Equal(t, "generated", resp.State)
	assert.True(t, resp.HasImage)
}

func TestPageAndStylesheet(t *testing.T) {
	t.Parallel()

	t.Run("page links the stylesheet", func(t *testing.T) {
		t.Parallel()
		_, h := newTestServer(t)
		rec := do(t, h, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `href="/styles.css"`)
	})

	t.Run("missing stylesheet falls back to default", func(t *testing.T) {
		t.Parallel()
		s, h := newTestServer(t)
		s.Stylesheet = filepath.Join(t.TempDir(), "absent.css")

		rec := do(t, h, http.MethodGet, "/styles.css", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, defaultStylesheet, rec.Body.String())
	})

	t.Run("configured stylesheet is served", func(t *testing.T) {
		t.Parallel()
		s, h := newTestServer(t)
		path := filepath.Join(t.TempDir(), "theme.css")
		require.NoError(t, os.WriteFile(path, []byte("body { color: red; }"), 0o644))
		s.Stylesheet = path

		rec := do(t, h, http.MethodGet, "/styles.css", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "body { color: red; }", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	})
}
