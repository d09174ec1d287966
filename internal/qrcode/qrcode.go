// Package qrcode renders short links as PNG QR codes.
package qrcode

import (
	"fmt"
	"image/color"

	qr "github.com/skip2/go-qrcode"
)

const DefaultSize = 256

var (
	foreground = color.RGBA{R: 0x1e, G: 0x40, B: 0xaf, A: 0xff}
	background = color.White
)

// PNG encodes content as a size x size PNG with medium error correction.
func PNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}

	code, err := qr.New(content, qr.Medium)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode %q: %w", content, err)
	}
	code.ForegroundColor = foreground
	code.BackgroundColor = background

	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: render png: %w", err)
	}
	return png, nil
}
