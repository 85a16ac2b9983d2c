// Package status maps pipeline outcomes to the messages shown to the user.
package status

import (
	"errors"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/openclaw/qrgen/qr"
)

// Kind classifies a message for styling.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message is a single line of user-facing status text.
type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#155724")).Background(lipgloss.Color("#d4edda")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#721c24")).Background(lipgloss.Color("#f8d7da")).Padding(0, 1)
)

// Ready is the message shown before anything has been generated.
func Ready() Message {
	return Message{Kind: KindInfo, Text: "Ready to generate QR code"}
}

// ForGenerate describes the outcome of a Generate call.
func ForGenerate(err error) Message {
	var encErr *qr.EncodingError
	switch {
	case err == nil:
		return Message{Kind: KindSuccess, Text: "QR code generated successfully! You can now save it."}
	case errors.Is(err, qr.ErrEmptyInput):
		return Message{Kind: KindError, Text: "Please enter a message to generate a QR code."}
	case errors.As(err, &encErr):
		return Message{Kind: KindError, Text: "Error generating QR code: " + encErr.Err.Error()}
	default:
		return Message{Kind: KindError, Text: "Error generating QR code: " + err.Error()}
	}
}

// ForExport describes the outcome of an Export call to path.
func ForExport(path string, err error) Message {
	var expErr *qr.ExportError
	switch {
	case err == nil:
		return Message{Kind: KindSuccess, Text: "QR code saved successfully to: " + filepath.Base(path)}
	case errors.Is(err, qr.ErrNoImage):
		return Message{Kind: KindError, Text: "Generate a QR code before saving."}
	case errors.As(err, &expErr):
		return Message{Kind: KindError, Text: "Error saving file: " + expErr.Err.Error()}
	default:
		return Message{Kind: KindError, Text: "Error saving file: " + err.Error()}
	}
}

// Render styles the message for a terminal.
func (m Message) Render() string {
	switch m.Kind {
	case KindSuccess:
		return successStyle.Render(m.Text)
	case KindError:
		return errorStyle.Render(m.Text)
	default:
		return infoStyle.Render(m.Text)
	}
}

// Err converts an error message into an error value, or nil otherwise.
func (m Message) Err() error {
	if m.Kind != KindError {
		return nil
	}
	return errors.New(m.Text)
}
