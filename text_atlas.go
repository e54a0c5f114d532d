package physlines

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	atlasSize    = 512
	atlasPadding = 2
	atlasSpacing = 4

	DefaultFontSize = 16
)

// TextVertex is one corner of a glyph quad, in normalized device coordinates.
type TextVertex struct {
	Pos   [2]float32 `layout:"float2" location:"0"`
	UV    [2]float32 `layout:"float2" location:"1"`
	Color [4]float32 `layout:"float4" location:"2"`
}

// TextItem is a string placed in pixels from the top-left corner of the
// framebuffer.
type TextItem struct {
	Text  string
	X, Y  float32
	Scale float32
	Color [4]float32
}

// TextQueue collects the text to draw this frame. The renderer draws and
// clears it.
type TextQueue struct {
	items []TextItem
}

func (q *TextQueue) DrawText(text string, x, y, scale float32, color [4]float32) {
	q.items = append(q.items, TextItem{Text: text, X: x, Y: y, Scale: scale, Color: color})
}

func (q *TextQueue) Items() []TextItem {
	return q.items
}

func (q *TextQueue) Clear() {
	q.items = q.items[:0]
}

// TextMeasurer lays out text without drawing it.
type TextMeasurer interface {
	MeasureText(text string, scale float32) (w, h float32)
	LineHeight(scale float32) float32
}

type glyphInfo struct {
	uvMin [2]float32
	uvMax [2]float32
	size  [2]float32
	off   [2]float32
	adv   float32
}

// TextAtlas is a single-channel texture holding the printable ASCII glyphs
// of one font face.
type TextAtlas struct {
	Image      *image.Alpha
	glyphs     map[rune]glyphInfo
	ascent     float32
	lineHeight float32
}

// NewDefaultTextAtlas rasterizes Go Regular at size points.
func NewDefaultTextAtlas(size float64) (*TextAtlas, error) {
	return NewTextAtlas(goregular.TTF, size)
}

func NewTextAtlas(ttf []byte, size float64) (*TextAtlas, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	defer face.Close()

	atlas := &TextAtlas{
		Image:      image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize)),
		glyphs:     make(map[rune]glyphInfo),
		ascent:     float32(face.Metrics().Ascent.Ceil()),
		lineHeight: float32(face.Metrics().Height.Ceil()),
	}
	if err := atlas.pack(face); err != nil {
		return nil, err
	}
	return atlas, nil
}

// pack copies the glyph masks row by row into the atlas image.
func (a *TextAtlas) pack(face font.Face) error {
	x, y := atlasPadding, atlasPadding
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		bounds, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w, h := bounds.Dx(), bounds.Dy()

		if x+w >= atlasSize {
			x = atlasPadding
			y += rowHeight + atlasSpacing
			rowHeight = 0
		}
		if y+h >= atlasSize {
			return fmt.Errorf("glyph %q does not fit in a %dx%d atlas", r, atlasSize, atlasSize)
		}

		draw.Draw(a.Image, image.Rect(x, y, x+w, y+h), mask, maskp, draw.Src)
		a.glyphs[r] = glyphInfo{
			uvMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			uvMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			size:  [2]float32{float32(w), float32(h)},
			off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			adv:   float32(adv) / 64.0,
		}

		x += w + atlasSpacing
		rowHeight = max(rowHeight, h)
	}
	return nil
}

func (a *TextAtlas) HasGlyph(r rune) bool {
	_, ok := a.glyphs[r]
	return ok
}

// BuildVertices turns text items into two triangles per visible glyph for a
// screenW x screenH framebuffer. Unknown runes are skipped.
func (a *TextAtlas) BuildVertices(items []TextItem, screenW, screenH int) []TextVertex {
	vertices := make([]TextVertex, 0, len(items)*6*16)
	sw, sh := float32(screenW), float32(screenH)

	toNdc := func(px, py float32) [2]float32 {
		return [2]float32{px/sw*2 - 1, 1 - py/sh*2}
	}

	for _, item := range items {
		scale := item.Scale
		if scale <= 0 {
			scale = 1
		}
		posX := item.X
		posY := item.Y + a.ascent*scale

		for _, r := range item.Text {
			if r == '\n' {
				posX = item.X
				posY += a.lineHeight * scale
				continue
			}
			g, ok := a.glyphs[r]
			if !ok {
				continue
			}

			if g.size[0] > 0 && g.size[1] > 0 {
				p0 := toNdc(posX+g.off[0]*scale, posY+g.off[1]*scale)
				p1 := toNdc(posX+(g.off[0]+g.size[0])*scale, posY+(g.off[1]+g.size[1])*scale)

				v00 := TextVertex{Pos: p0, UV: g.uvMin, Color: item.Color}
				v10 := TextVertex{Pos: [2]float32{p1[0], p0[1]}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: item.Color}
				v01 := TextVertex{Pos: [2]float32{p0[0], p1[1]}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: item.Color}
				v11 := TextVertex{Pos: p1, UV: g.uvMax, Color: item.Color}
				vertices = append(vertices, v00, v10, v01, v10, v11, v01)
			}
			posX += g.adv * scale
		}
	}
	return vertices
}

func (a *TextAtlas) MeasureText(text string, scale float32) (float32, float32) {
	var maxW, curW float32
	lines := 1
	for _, r := range text {
		if r == '\n' {
			maxW = max(maxW, curW)
			curW = 0
			lines++
			continue
		}
		if g, ok := a.glyphs[r]; ok {
			curW += g.adv * scale
		}
	}
	return max(maxW, curW), a.lineHeight * scale * float32(lines)
}

func (a *TextAtlas) LineHeight(scale float32) float32 {
	return a.lineHeight * scale
}
