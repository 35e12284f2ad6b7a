package quotemill

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	canvasWidth  = 1200
	canvasHeight = 630
	canvasPad    = 80
	jpegQuality  = 80

	// Drawing happens at 2x and is downscaled to the target width, which
	// smooths glyph edges the same way the old upload pipeline smoothed
	// photos.
	rasterScale = 2

	attributionSize = 28.0
	footerSize      = 22.0
	// Vertical room reserved below the quote block for attribution.
	attributionBand = 110.0
)

// ImageRenderer rasterizes a render context into a share-card JPEG. It is a
// pure transformation: the same context always produces the same image.
type ImageRenderer struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// NewImageRenderer parses the embedded Go typefaces once for reuse across
// renders.
func NewImageRenderer() (*ImageRenderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &ImageRenderer{regular: regular, bold: bold}, nil
}

// Render draws the quote card and encodes it as JPEG.
func (r *ImageRenderer) Render(rc RenderContext) ([]byte, error) {
	boxWidth := float64(canvasWidth - 2*canvasPad)
	boxHeight := float64(canvasHeight-2*canvasPad) - attributionBand
	fontSize := FitFontSize(rc.Text, boxWidth, boxHeight)
	lines := wrapWords(rc.Text, fontSize, boxWidth)

	w := canvasWidth * rasterScale
	h := canvasHeight * rasterScale
	dc := gg.NewContext(w, h)

	dc.SetHexColor("#1b1f2a")
	dc.Clear()

	quoteFace, err := r.face(r.bold, fontSize*rasterScale)
	if err != nil {
		return nil, err
	}
	defer quoteFace.Close()

	// Centered quote block. The wrap above used the same width estimator
	// as the fitter, so the block height matches what FitFontSize assumed.
	dc.SetFontFace(quoteFace)
	dc.SetHexColor("#f2f3f5")
	lineHeight := fontSize * fitLineHeightRatio * rasterScale
	blockHeight := float64(len(lines)) * lineHeight
	top := (float64(h)-attributionBand*rasterScale-blockHeight)/2 + lineHeight/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, float64(w)/2, top+float64(i)*lineHeight, 0.5, 0.5)
	}

	smallFace, err := r.face(r.regular, attributionSize*rasterScale)
	if err != nil {
		return nil, err
	}
	defer smallFace.Close()

	if rc.Author != "" {
		dc.SetFontFace(smallFace)
		dc.SetHexColor("#aab2c4")
		dc.DrawStringAnchored("— "+rc.Author, float64(w)/2,
			float64(h)-(attributionBand-20)*rasterScale, 0.5, 0.5)
	}

	footerFace, err := r.face(r.regular, footerSize*rasterScale)
	if err != nil {
		return nil, err
	}
	defer footerFace.Close()

	dc.SetFontFace(footerFace)
	dc.SetHexColor("#7a8299")
	if rc.SourceDomain != "" {
		dc.DrawStringAnchored(rc.SourceDomain, canvasPad*rasterScale,
			float64(h)-canvasPad*rasterScale/2, 0, 0.5)
	}

	return encodeCard(dc.Image())
}

func (r *ImageRenderer) face(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	return face, nil
}

// encodeCard downscales the supersampled canvas to the target width and
// encodes it as JPEG.
func encodeCard(img image.Image) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
