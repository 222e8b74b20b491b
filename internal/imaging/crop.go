package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ContentBounds returns the smallest rectangle containing every pixel that
// differs from background. ok is false when the whole image is background.
func ContentBounds(img image.Image, background color.Color) (rect image.Rectangle, ok bool) {
	br, bg, bb, ba := background.RGBA()
	bounds := img.Bounds()

	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X-1, bounds.Min.Y-1
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if r == br && g == bg && b == bb && a == ba {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// TightCrop trims background-coloured margins from img and then surrounds the
// remaining content with pad pixels of background.
//
// An image that is entirely background is returned unchanged (as an NRGBA
// copy). The result always has its origin at (0, 0).
func TightCrop(img image.Image, background color.Color, pad int) *image.NRGBA {
	content, ok := ContentBounds(img, background)
	if !ok {
		return imaging.Clone(img)
	}
	if pad < 0 {
		pad = 0
	}

	cropped := imaging.Crop(img, content)
	canvas := imaging.New(content.Dx()+2*pad, content.Dy()+2*pad, background)
	return imaging.Paste(canvas, cropped, image.Pt(pad, pad))
}
