package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// iconPNG renders the 16x16 tray icon at startup: a dashed capture frame,
// matching the screenshot-tool motif.
func iconPNG() []byte {
	const size = 16
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	frame := color.RGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff}
	for i := 2; i < size-2; i++ {
		// dashed: skip every third pixel
		if i%3 == 0 {
			continue
		}
		img.SetRGBA(i, 2, frame)
		img.SetRGBA(i, size-3, frame)
		img.SetRGBA(2, i, frame)
		img.SetRGBA(size-3, i, frame)
	}

	dot := color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	for y := 6; y <= 9; y++ {
		for x := 6; x <= 9; x++ {
			img.SetRGBA(x, y, dot)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
