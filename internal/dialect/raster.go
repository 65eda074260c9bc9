package dialect

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/tillpoint/print-engine/internal/profile"
)

// DotsForPaper resolves a paper width class to printable dot columns
func DotsForPaper(w profile.PaperWidth) int {
	switch w {
	case profile.Paper58mm:
		return 384
	case profile.Paper112mm:
		return 832
	default:
		return 576
	}
}

// LogoRaster loads the business logo and encodes it as an ESC/POS raster
// block for thermal headers. With no logo path configured, a monogram of the
// business name is rendered instead so the header slot is never blank.
func LogoRaster(business profile.Business, paper profile.PaperWidth) ([]byte, error) {
	maxDots := DotsForPaper(paper) / 2

	var img image.Image
	if business.LogoPath != "" {
		file, err := os.Open(business.LogoPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open logo file: %w", err)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode logo: %w", err)
		}
	} else {
		img = monogram(business.Name, maxDots)
	}

	if img.Bounds().Dx() > maxDots {
		img = imaging.Resize(img, maxDots, 0, imaging.Lanczos)
	}

	return rasterBlock(img), nil
}

// monogram draws the first letter of the business name inside a filled square
func monogram(name string, size int) image.Image {
	if size > 128 {
		size = 128
	}
	initial := "?"
	for _, r := range name {
		initial = string(r)
		break
	}

	ctx := gg.NewContext(size, size)
	ctx.SetRGB(1, 1, 1)
	ctx.Clear()
	ctx.SetRGB(0, 0, 0)
	ctx.DrawRectangle(0, 0, float64(size), float64(size))
	ctx.Fill()
	ctx.SetRGB(1, 1, 1)
	ctx.DrawStringAnchored(initial, float64(size)/2, float64(size)/2, 0.5, 0.5)

	return ctx.Image()
}

// rasterBlock converts an image to a GS v 0 raster bit image command
func rasterBlock(img image.Image) []byte {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	bytesPerLine := (width + 7) / 8

	bitmap := make([]byte, bytesPerLine*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			gray := (r + g + b) / 3
			// Threshold at 50%
			if gray < 32768 {
				bitmap[y*bytesPerLine+x/8] |= 1 << (7 - x%8)
			}
		}
	}

	block := make([]byte, 0, 8+len(bitmap))
	block = append(block, GS, 'v', '0', 0)
	block = append(block, byte(bytesPerLine&0xFF), byte((bytesPerLine>>8)&0xFF))
	block = append(block, byte(height&0xFF), byte((height>>8)&0xFF))
	block = append(block, bitmap...)

	return block
}
