// Package annotate draws inspection overlays (boxes, centroids, status
// banners) directly onto RGBA frames, without a native imaging dependency.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blend"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	ColorGold     = color.RGBA{G: 255, A: 255}
	ColorStone    = color.RGBA{B: 255, A: 255}
	ColorAcid     = color.RGBA{R: 255, G: 165, A: 255}
	ColorCentroid = color.RGBA{R: 255, G: 255, A: 255}
	ColorOK       = color.RGBA{G: 255, A: 255}
	ColorWaiting  = color.RGBA{R: 255, G: 255, A: 255}
	ColorAlert    = color.RGBA{R: 255, A: 255}
	ColorText     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

var face = basicfont.Face7x13

// ToRGBA converts any decoded image into a mutable RGBA frame.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Rect strokes a rectangle outline with the given thickness.
func Rect(dst *image.RGBA, r image.Rectangle, col color.RGBA, thickness int) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setPixel(dst, x, r.Min.Y+t, col)
			setPixel(dst, x, r.Max.Y-1-t, col)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setPixel(dst, r.Min.X+t, y, col)
			setPixel(dst, r.Max.X-1-t, y, col)
		}
	}
}

// Box draws a labeled bounding box; the label sits just above the top edge.
func Box(dst *image.RGBA, r image.Rectangle, col color.RGBA, label string) {
	Rect(dst, r, col, 2)
	if label != "" {
		Text(dst, label, image.Pt(r.Min.X, r.Min.Y-4), col)
	}
}

// Dot draws a filled circle, used for the tracked centroid marker.
func Dot(dst *image.RGBA, p image.Point, radius int, col color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setPixel(dst, p.X+dx, p.Y+dy, col)
			}
		}
	}
}

// Text renders a single line at the baseline point.
func Text(dst *image.RGBA, s string, at image.Point, col color.RGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(at.X, at.Y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// Banner draws a status line at the bottom center over a black background
// strip, the shared shape of the rubbing and acid stage banners.
func Banner(dst *image.RGBA, text string, col color.RGBA) {
	b := dst.Bounds()
	w := textWidth(text)
	x := (b.Dx() - w) / 2
	y := b.Dy() - 30

	bg := image.Rect(x-10, y-16, x+w+10, y+8)
	fill(dst, bg, color.RGBA{A: 255})
	Text(dst, text, image.Pt(x, y), col)
}

// Stats draws the top-left translucent box with FPS, per-frame processing
// time and the active task.
func Stats(dst *image.RGBA, fps, processMS float64, task string) {
	fill(dst, image.Rect(10, 10, 190, 72), color.RGBA{A: 153})
	Text(dst, fmt.Sprintf("FPS: %.1f", fps), image.Pt(18, 28), ColorOK)
	Text(dst, fmt.Sprintf("Process: %.1fms", processMS), image.Pt(18, 46), ColorOK)
	Text(dst, "Task: "+task, image.Pt(18, 64), ColorWaiting)
}

// DoneOverlay blends a translucent green layer over the whole frame and
// centers the completion caption. Returns the blended frame.
func DoneOverlay(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	green := image.NewRGBA(b)
	draw.Draw(green, b, image.NewUniform(color.RGBA{G: 100, A: 255}), image.Point{}, draw.Src)

	out := blend.Opacity(src, green, 0.3)

	text := "ANALYSIS COMPLETE"
	Text(out, text, image.Pt((b.Dx()-textWidth(text))/2, b.Dy()/2), ColorText)
	return out
}

// Placeholder produces the black "camera offline" frame.
func Placeholder(w, h int, text string) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(dst, dst.Bounds(), color.RGBA{A: 255})
	Text(dst, text, image.Pt((w-textWidth(text))/2, h/2), ColorAlert)
	return dst
}

// fill paints a region with src-over blending so translucent colors work.
func fill(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

func setPixel(dst *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(dst.Bounds()) {
		dst.SetRGBA(x, y, col)
	}
}
