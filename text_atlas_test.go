package physlines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAtlas(t *testing.T) *TextAtlas {
	t.Helper()
	atlas, err := NewDefaultTextAtlas(DefaultFontSize)
	require.NoError(t, err)
	return atlas
}

func TestTextAtlas_PacksAscii(t *testing.T) {
	atlas := newTestAtlas(t)

	for r := rune(33); r < 127; r++ {
		assert.True(t, atlas.HasGlyph(r), "glyph %q", r)
	}
	assert.False(t, atlas.HasGlyph('é'))

	inked := 0
	for _, px := range atlas.Image.Pix {
		if px > 0 {
			inked++
		}
	}
	assert.Greater(t, inked, 0)
}

func TestTextAtlas_Measure(t *testing.T) {
	atlas := newTestAtlas(t)

	w1, h1 := atlas.MeasureText("abc", 1)
	require.Greater(t, w1, float32(0))
	assert.Equal(t, atlas.LineHeight(1), h1)

	w2, h2 := atlas.MeasureText("abc", 2)
	assert.InDelta(t, 2*w1, w2, 1e-4)
	assert.Equal(t, 2*h1, h2)

	// the widest line wins
	w3, h3 := atlas.MeasureText("abc\na", 1)
	assert.Equal(t, w1, w3)
	assert.Equal(t, 2*h1, h3)

	// unknown runes take no space
	w4, _ := atlas.MeasureText("abcé", 1)
	assert.Equal(t, w1, w4)
}

func TestTextAtlas_BuildVertices(t *testing.T) {
	atlas := newTestAtlas(t)

	items := []TextItem{{Text: "A B", X: 10, Y: 10, Scale: 1, Color: [4]float32{1, 1, 1, 1}}}
	vertices := atlas.BuildVertices(items, 800, 600)

	// the space has no quad
	require.Len(t, vertices, 12)
	for _, v := range vertices {
		assert.GreaterOrEqual(t, v.Pos[0], float32(-1))
		assert.LessOrEqual(t, v.Pos[0], float32(1))
		assert.GreaterOrEqual(t, v.Pos[1], float32(-1))
		assert.LessOrEqual(t, v.Pos[1], float32(1))
		assert.Equal(t, [4]float32{1, 1, 1, 1}, v.Color)
	}
	// top-left text sits in the upper-left quadrant
	assert.Less(t, vertices[0].Pos[0], float32(0))
	assert.Greater(t, vertices[0].Pos[1], float32(0))
	// B is right of A
	assert.Greater(t, vertices[6].Pos[0], vertices[0].Pos[0])
}

func TestTextAtlas_BuildVerticesNewline(t *testing.T) {
	atlas := newTestAtlas(t)

	vertices := atlas.BuildVertices([]TextItem{{Text: "A\nA", Scale: 1}}, 800, 600)
	require.Len(t, vertices, 12)
	assert.Equal(t, vertices[0].Pos[0], vertices[6].Pos[0])
	assert.Less(t, vertices[6].Pos[1], vertices[0].Pos[1])
}

func TestTextQueue(t *testing.T) {
	q := &TextQueue{}
	q.DrawText("fps", 1, 2, 1, [4]float32{1, 1, 1, 1})
	require.Len(t, q.Items(), 1)
	assert.Equal(t, "fps", q.Items()[0].Text)
	q.Clear()
	assert.Empty(t, q.Items())
}
