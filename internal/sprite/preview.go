package sprite

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"ship-visuals-tools/internal/descriptor"
)

var markerColor = color.NRGBA{R: 255, G: 32, B: 32, A: 255}

// markerRadius is the half-length of a point cross, in output pixels.
const markerRadius = 3

// RenderPreview scales img so its longer side is size and draws a cross at
// every point. Points are in source pixels.
func RenderPreview(img *image.NRGBA, points []descriptor.Point, size int) *image.NRGBA {
	b := img.Bounds()
	scale := 1.0
	if size > 0 && b.Dx() > 0 && b.Dy() > 0 {
		scale = float64(size) / float64(max(b.Dx(), b.Dy()))
	}
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))

	out := Resize(img, w, h)
	for _, p := range points {
		drawCross(out, int(math.Round(p.X*scale)), int(math.Round(p.Y*scale)))
	}
	return out
}

// Resize scales with premultiplied-alpha CatmullRom filtering so transparent
// edges do not pick up dark halos.
func Resize(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
		return dst
	}

	// Premultiply alpha
	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, b, draw.Src, nil)

	// Unpremultiply alpha
	result := image.NewNRGBA(dst.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := dst.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float64(dst.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				result.Pix[di] = clamp8(float64(dst.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float64(dst.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float64(dst.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = dst.Pix[si+3]
		}
	}
	return result
}

func drawCross(img *image.NRGBA, cx, cy int) {
	for d := -markerRadius; d <= markerRadius; d++ {
		setIn(img, cx+d, cy)
		setIn(img, cx, cy+d)
	}
}

func setIn(img *image.NRGBA, x, y int) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, markerColor)
	}
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
