package layout

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

// DrawSnapshot renders a renderable snapshot to a PNG file, opacity mapped
// to gray level. Intended for offline inspection of finished layouts.
func DrawSnapshot(snap model.RenderableSnapshot, filename string, invertColor bool) error {
	width, height := 1600, 1200
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	background := color.RGBA{255, 255, 255, 255}
	foreground := color.RGBA{0, 0, 0, 255}
	if invertColor {
		background, foreground = foreground, background
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, background)
		}
	}

	minX, minY := math.Inf(+1), math.Inf(+1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range snap.Nodes {
		minX = math.Min(minX, n.X-n.Radius)
		minY = math.Min(minY, n.Y-n.Radius)
		maxX = math.Max(maxX, n.X+n.Radius)
		maxY = math.Max(maxY, n.Y+n.Radius)
	}
	if len(snap.Nodes) == 0 || maxX <= minX || maxY <= minY {
		return encodePNG(img, filename)
	}
	scale := math.Min(float64(width)/(maxX-minX), float64(height)/(maxY-minY))
	toImage := func(x, y float64) (int, int) {
		return int((x - minX) * scale), int((y - minY) * scale)
	}

	positions := map[string][2]int{}
	for _, n := range snap.Nodes {
		px, py := toImage(n.X, n.Y)
		positions[n.ID] = [2]int{px, py}
	}
	for _, l := range snap.Links {
		if !l.Visible {
			continue
		}
		from, okFrom := positions[l.SourceID]
		to, okTo := positions[l.TargetID]
		if !okFrom || !okTo {
			continue
		}
		drawLine(img, from[0], from[1], to[0], to[1], blend(background, foreground, l.Opacity))
	}
	for _, n := range snap.Nodes {
		px, py := toImage(n.X, n.Y)
		drawCircle(img, px, py, int(n.Radius*scale), blend(background, foreground, n.Opacity))
	}
	return encodePNG(img, filename)
}

func blend(bg, fg color.RGBA, opacity float64) color.RGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*opacity)
	}
	return color.RGBA{mix(bg.R, fg.R), mix(bg.G, fg.G), mix(bg.B, fg.B), 255}
}

func drawCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	if r < 1 {
		r = 1
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := int(math.Abs(float64(x1 - x0)))
	dy := -int(math.Abs(float64(y1 - y0)))
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func encodePNG(img *image.RGBA, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}
