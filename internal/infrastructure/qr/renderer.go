// Package qr genera imágenes PNG de códigos QR.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	bqr "github.com/boombuler/barcode/qr"
)

// Renderer dibuja el QR con módulos de ModuleSize píxeles y un margen de
// QuietZone módulos en blanco.
type Renderer struct {
	ModuleSize int
	QuietZone  int
	Level      bqr.ErrorCorrectionLevel
}

// NewRenderer valores de las etiquetas impresas: 10 px por módulo, margen 4, corrección L.
func NewRenderer() *Renderer {
	return &Renderer{ModuleSize: 10, QuietZone: 4, Level: bqr.L}
}

// PNG codifica content y devuelve la imagen PNG.
func (r *Renderer) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr: contenido vacío")
	}
	code, err := bqr.Encode(content, r.Level, bqr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr: codificar: %w", err)
	}
	modules := code.Bounds().Dx()
	side := modules * r.ModuleSize
	scaled, err := barcode.Scale(code, side, side)
	if err != nil {
		return nil, fmt.Errorf("qr: escalar: %w", err)
	}

	margin := r.QuietZone * r.ModuleSize
	canvas := image.NewGray(image.Rect(0, 0, side+2*margin, side+2*margin))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(margin, margin, margin+side, margin+side), scaled, scaled.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("qr: png: %w", err)
	}
	return buf.Bytes(), nil
}
