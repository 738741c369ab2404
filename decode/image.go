package decode

import (
	"fmt"
	"image"
	"image/color"

	"github.com/l3lasx/poc-barcodescanner/camera"
)

// rgbImage exposes a packed-RGB frame buffer (3 bytes per pixel, the camera
// pipeline's native output) as an image.Image without copying.
type rgbImage struct {
	width  int
	height int
	pix    []byte
}

func (m *rgbImage) ColorModel() color.Model { return color.RGBAModel }

func (m *rgbImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

func (m *rgbImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return color.RGBA{}
	}
	i := (y*m.width + x) * 3
	return color.RGBA{R: m.pix[i], G: m.pix[i+1], B: m.pix[i+2], A: 0xff}
}

// FrameImage wraps a camera frame as an image.Image for decoding.
//
// The frame data is shared, not copied; the caller must not mutate
// frame.Data while the image is in use.
func FrameImage(frame camera.Frame) (image.Image, error) {
	want := frame.Width * frame.Height * 3
	if len(frame.Data) < want {
		return nil, fmt.Errorf("decode: short frame buffer: got %d bytes, want %d (%dx%d RGB)",
			len(frame.Data), want, frame.Width, frame.Height)
	}
	return &rgbImage{width: frame.Width, height: frame.Height, pix: frame.Data}, nil
}
