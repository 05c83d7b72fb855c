package cpu

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"gohack/pkg/grid"
)

const (
	ScreenWidth  = 512
	ScreenHeight = 256

	wordsPerRow = ScreenWidth / 16
)

var (
	// PixelOn is drawn for set bits in the screen map.
	PixelOn = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	// PixelOff is drawn for clear bits.
	PixelOff = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// GetFramebufferRGBA decodes the screen map into a 512×256 RGBA8888 byte
// slice. Bit 0 of each word is the leftmost of its sixteen pixels.
func (c *CPU) GetFramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)

	for wordIdx := 0; wordIdx < ScreenWords; wordIdx++ {
		word := c.RAM[int(ScreenBase)+wordIdx]
		col, row := grid.GetGridCoords(wordIdx, wordsPerRow)
		for bit := 0; bit < 16; bit++ {
			px := PixelOff
			if word&(1<<bit) != 0 {
				px = PixelOn
			}
			i := (row*ScreenWidth + col*16 + bit) * 4
			pixels[i+0] = px.R
			pixels[i+1] = px.G
			pixels[i+2] = px.B
			pixels[i+3] = px.A
		}
	}

	return pixels
}

// GetFramebufferImage returns the screen as an *image.RGBA.
func (c *CPU) GetFramebufferImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.GetFramebufferRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// ScaledFramebuffer returns the screen enlarged by an integer factor using
// nearest-neighbour sampling so pixels stay sharp.
func (c *CPU) ScaledFramebuffer(scale int) *image.RGBA {
	src := c.GetFramebufferImage()
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, ScreenWidth*scale, ScreenHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveScreenshot encodes the screen as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string, scale int) error {
	img := c.ScaledFramebuffer(scale)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
