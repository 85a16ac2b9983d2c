package qr

import (
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// PreviewSize is the side of the on-screen preview box in pixels.
const PreviewSize = 300

// Preview scales src into a size x size square, keeping the aspect ratio and
// centring it on a white background.
func Preview(src image.Image, size int) *image.RGBA {
	if size <= 0 {
		size = PreviewSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	b := src.Bounds()
	if b.Empty() {
		return dst
	}

	w, h := size, size
	if b.Dx() > b.Dy() {
		h = b.Dy() * size / b.Dx()
	} else if b.Dy() > b.Dx() {
		w = b.Dx() * size / b.Dy()
	}
	x0 := (size - w) / 2
	y0 := (size - h) / 2

	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), src, b, draw.Src, nil)
	return dst
}

// Terminal renders the symbol and its quiet zone as text, packing two module
// rows into each line with half-block characters. Dark modules are drawn as
// spaces on a light terminal cell so the code scans on dark themes too.
func (i *Image) Terminal() string {
	n := i.modules + 2*Border
	dark := func(x, y int) bool {
		x -= Border
		y -= Border
		if x < 0 || y < 0 || x >= i.modules || y >= i.modules {
			return false
		}
		return i.grid[y][x]
	}

	var sb strings.Builder
	for y := 0; y < n; y += 2 {
		for x := 0; x < n; x++ {
			top := dark(x, y)
			bottom := y+1 < n && dark(x, y+1)
			switch {
			case top && bottom:
				sb.WriteString(" ")
			case top:
				sb.WriteString("▄")
			case bottom:
				sb.WriteString("▀")
			default:
				sb.WriteString("█")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
