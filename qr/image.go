package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
)

var (
	fill       = color.RGBA{A: 0xff}
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Image is a rendered QR symbol. It is read-only once created and implements
// image.Image, so it can be handed to any display surface or encoder.
type Image struct {
	text    string
	version int
	modules int
	grid    [][]bool
	rgba    *image.RGBA
}

func newImage(text string, version int, grid [][]bool) *Image {
	n := len(grid)
	side := (n + 2*Border) * BoxSize

	rgba := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	black := image.NewUniform(fill)
	for y, row := range grid {
		for x, dark := range row {
			if !dark {
				continue
			}
			px := (x + Border) * BoxSize
			py := (y + Border) * BoxSize
			draw.Draw(rgba, image.Rect(px, py, px+BoxSize, py+BoxSize), black, image.Point{}, draw.Src)
		}
	}

	return &Image{
		text:    text,
		version: version,
		modules: n,
		grid:    grid,
		rgba:    rgba,
	}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle { return i.rgba.Bounds() }

// At implements image.Image.
func (i *Image) At(x, y int) color.Color { return i.rgba.At(x, y) }

// Opaque reports that every pixel is fully opaque. The backing RGBA buffer is
// opaque too, which is what lets WritePNG emit RGB without an alpha channel.
func (i *Image) Opaque() bool { return true }

// Width is the image width in pixels.
func (i *Image) Width() int { return i.rgba.Bounds().Dx() }

// Height is the image height in pixels.
func (i *Image) Height() int { return i.rgba.Bounds().Dy() }

// Version is the QR symbol version (1-40).
func (i *Image) Version() int { return i.version }

// Modules is the number of modules per side, excluding the quiet zone.
func (i *Image) Modules() int { return i.modules }

// Text is the encoded payload.
func (i *Image) Text() string { return i.text }

// Bitmap returns a copy of the module grid without the quiet zone.
// true means a dark module.
func (i *Image) Bitmap() [][]bool {
	out := make([][]bool, len(i.grid))
	for y, row := range i.grid {
		out[y] = append([]bool(nil), row...)
	}
	return out
}

// WritePNG encodes the image as PNG into w.
func (i *Image) WritePNG(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, i.rgba); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNG returns the PNG encoding of the image.
func (i *Image) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := i.WritePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
