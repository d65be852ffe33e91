package main

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"math"
)

// CreateIconRGBA generates a 22x22 RGBA byte slice for the tray icon: a 2x2
// grid of rounded tiles, white on a transparent background with antialiased
// corners.
func CreateIconRGBA() ([]byte, int, int) {
	const (
		size   = 22
		tile   = 8.0
		gap    = 2.0
		margin = 2.0
		radius = 2.0
	)
	rgba := make([]byte, size*size*4)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := float64(x) + 0.5
			fy := float64(y) + 0.5

			alpha := 0.0
			for row := 0; row < 2; row++ {
				for col := 0; col < 2; col++ {
					x0 := margin + float64(col)*(tile+gap)
					y0 := margin + float64(row)*(tile+gap)
					alpha = math.Max(alpha, roundedTileCoverage(fx, fy, x0, y0, tile, radius))
				}
			}

			if alpha > 0.0 {
				idx := (y*size + x) * 4
				rgba[idx] = 255
				rgba[idx+1] = 255
				rgba[idx+2] = 255
				rgba[idx+3] = uint8(math.Min(alpha, 1.0) * 255.0)
			}
		}
	}

	return rgba, size, size
}

// roundedTileCoverage returns how much of the pixel centred at (fx, fy) the
// rounded square at (x0, y0) covers.
func roundedTileCoverage(fx, fy, x0, y0, side, r float64) float64 {
	if fx < x0 || fy < y0 || fx > x0+side || fy > y0+side {
		return 0
	}
	// Distance from the nearest corner circle centre, when in a corner.
	cx := math.Min(math.Max(fx, x0+r), x0+side-r)
	cy := math.Min(math.Max(fy, y0+r), y0+side-r)
	d := math.Hypot(fx-cx, fy-cy)
	switch {
	case d <= r-0.6:
		return 1
	case d <= r:
		return (r - d) / 0.6
	default:
		return 0
	}
}

// iconDataURI encodes the tray icon as a PNG data URI for the tray page.
func iconDataURI() string {
	rgba, w, h := CreateIconRGBA()
	img := &image.NRGBA{Pix: rgba, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
