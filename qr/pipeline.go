// Package qr turns text into QR code images and writes them out as PNG files.
//
// Encoding is delegated to github.com/skip2/go-qrcode. The package fixes the
// rendering policy (recovery level, module size, quiet zone, colours) so that
// every caller produces the same bitmap for the same text.
package qr

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

// Fixed rendering policy.
const (
	// Level is the error-correction level (~15% recoverable).
	Level = qrcode.Medium
	// BoxSize is the side of one module in pixels.
	BoxSize = 8
	// Border is the quiet zone width in modules.
	Border = 2
)

var (
	// ErrEmptyInput is returned when the text is empty or only whitespace.
	ErrEmptyInput = errors.New("qr: input text is empty")
	// ErrNoImage is returned when exporting without a generated image.
	ErrNoImage = errors.New("qr: no image to export")
)

// EncodingError reports that the encoder rejected the payload.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string { return "encode qr code: " + e.Err.Error() }
func (e *EncodingError) Unwrap() error { return e.Err }

// ExportError reports that the PNG could not be written to Path.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}
func (e *ExportError) Unwrap() error { return e.Err }

// Pipeline generates and exports QR images. It holds no state between calls.
type Pipeline struct {
	log *slog.Logger
}

// New returns a Pipeline that logs through log. A nil logger uses slog.Default.
func New(log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{log: log}
}

// Generate encodes text into a QR image. Surrounding whitespace is trimmed
// before encoding; text that is empty after trimming yields ErrEmptyInput.
// The smallest symbol version that fits the payload is chosen.
func (p *Pipeline) Generate(text string) (*Image, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	code, err := qrcode.New(text, Level)
	if err != nil {
		p.log.Debug("qr encode failed", "length", len(text), "error", err)
		return nil, &EncodingError{Err: err}
	}
	code.DisableBorder = true

	// Bitmap pads the encoder's buffer, so it must be called once per code.
	grid := code.Bitmap()
	if len(grid) == 0 || len(grid) != len(grid[0]) {
		return nil, &EncodingError{Err: errors.New("encoder returned a malformed module grid")}
	}

	img := newImage(text, code.VersionNumber, grid)
	p.log.Debug("qr generated",
		"version", img.version,
		"modules", img.modules,
		"size", img.Width(),
	)
	return img, nil
}

// Export writes img to path as an RGB PNG. The data goes to a temporary file
// in the target directory first and is renamed into place, so path never
// holds a partial image.
func (p *Pipeline) Export(img *Image, path string) error {
	if img == nil {
		return ErrNoImage
	}
	if path == "" {
		return &ExportError{Path: path, Err: errors.New("empty path")}
	}

	if err := writeAtomic(path, img); err != nil {
		p.log.Debug("qr export failed", "path", path, "error", err)
		return &ExportError{Path: path, Err: osCause(err)}
	}

	p.log.Debug("qr exported", "path", path, "size", img.Width())
	return nil
}

// writeAtomic writes img next to path and renames it into place. A new file
// gets 0666 minus the umask, as a direct create would; an existing file keeps
// its permissions.
func writeAtomic(path string, img *Image) (err error) {
	perm := os.FileMode(0o666)
	keep := false
	if fi, statErr := os.Stat(path); statErr == nil && fi.Mode().IsRegular() {
		perm = fi.Mode().Perm()
		keep = true
	}

	tmp, err := createTemp(path, perm)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = img.WritePNG(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if keep {
		// The umask applied at create time may have dropped bits.
		if err = tmp.Chmod(perm); err != nil {
			return err
		}
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// createTemp opens a fresh hidden file beside path. Unlike os.CreateTemp it
// lets the umask shape perm.
func createTemp(path string, perm os.FileMode) (*os.File, error) {
	dir, base := filepath.Split(path)
	for range 10 {
		name := filepath.Join(dir, "."+base+"."+strconv.FormatUint(rand.Uint64(), 36)+".tmp")
		f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, errors.New("could not create temporary file")
}

// osCause strips the temp-file path from OS errors so messages refer to the
// export target only. The errno is kept for errors.Is checks.
func osCause(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err
	}
	return err
}
