package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

var (
	iconOnce sync.Once
	iconData []byte
)

// iconBytes draws the tray icon: a play triangle on a dark square.
func iconBytes() []byte {
	iconOnce.Do(func() {
		iconData = renderIcon(22)
	})
	return iconData
}

func renderIcon(size int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	bg := color.NRGBA{R: 0x1f, G: 0x23, B: 0x2b, A: 0xff}
	fg := color.NRGBA{R: 0xf5, G: 0xa6, B: 0x23, A: 0xff}

	left, right := size/3, size*3/4
	mid := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, bg)
			if x < left || x > right {
				continue
			}
			// half-height of the triangle shrinks linearly towards its tip
			half := (right - x) * mid / (right - left)
			if y >= mid-half && y <= mid+half {
				img.SetNRGBA(x, y, fg)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
