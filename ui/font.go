package ui

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/GoncaloFDS/tracer/render"
)

// Glyph is one rasterized character of the atlas. Offset positions the
// quad relative to the pen at the baseline; UVs address the atlas.
type Glyph struct {
	UVMin   [2]float32
	UVMax   [2]float32
	Size    [2]float32
	Offset  [2]float32
	Advance float32
}

const (
	atlasWidth = 512
	glyphPad   = 1

	firstRune = ' '
	lastRune  = '~'
)

// FontAtlas rasterizes the builtin face into a single alpha texture.
// Version increases on every rebuild; the renderer re-uploads the
// texture when the version it bound falls behind.
type FontAtlas struct {
	pixels     *image.Alpha
	glyphs     map[rune]Glyph
	size       float32
	ascent     float32
	lineHeight float32
	version    uint64
}

// NewFontAtlas rasterizes the printable ASCII range at the given pixel
// size.
func NewFontAtlas(size float32) (*FontAtlas, error) {
	a := &FontAtlas{size: size}
	if err := a.rebuild(); err != nil {
		return nil, err
	}
	return a, nil
}

// SetSize re-rasterizes the atlas at a new pixel size and bumps the
// version.
func (a *FontAtlas) SetSize(size float32) error {
	a.size = size
	return a.rebuild()
}

func (a *FontAtlas) rebuild() error {
	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("ui: parse builtin font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    float64(a.size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("ui: open face: %w", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	rowHeight := (metrics.Ascent + metrics.Descent).Ceil() + glyphPad

	// First pass places every glyph to size the atlas.
	type placed struct {
		r    rune
		x, y int
	}
	var placements []placed
	x, y := glyphPad, glyphPad
	for r := rune(firstRune); r <= lastRune; r++ {
		dr, _, _, _, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w := dr.Dx()
		if x+w+glyphPad > atlasWidth {
			x = glyphPad
			y += rowHeight
		}
		placements = append(placements, placed{r: r, x: x, y: y})
		x += w + glyphPad
	}
	height := y + rowHeight

	pixels := image.NewAlpha(image.Rect(0, 0, atlasWidth, height))
	glyphs := make(map[rune]Glyph, len(placements))
	for _, p := range placements {
		dr, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, p.r)
		if !ok {
			continue
		}
		w, h := dr.Dx(), dr.Dy()
		draw.Draw(pixels, image.Rect(p.x, p.y, p.x+w, p.y+h), mask, maskp, draw.Src)
		glyphs[p.r] = Glyph{
			UVMin:   [2]float32{float32(p.x) / atlasWidth, float32(p.y) / float32(height)},
			UVMax:   [2]float32{float32(p.x+w) / atlasWidth, float32(p.y+h) / float32(height)},
			Size:    [2]float32{float32(w), float32(h)},
			Offset:  [2]float32{float32(dr.Min.X), float32(dr.Min.Y)},
			Advance: float32(adv) / 64,
		}
	}

	a.pixels = pixels
	a.glyphs = glyphs
	a.ascent = float32(metrics.Ascent.Ceil())
	a.lineHeight = float32(rowHeight)
	a.version++
	return nil
}

// Version returns the rebuild counter, starting at 1.
func (a *FontAtlas) Version() uint64 { return a.version }

// Extent returns the atlas texture size in pixels.
func (a *FontAtlas) Extent() render.Extent2D {
	b := a.pixels.Bounds()
	return render.Extent2D{Width: uint32(b.Dx()), Height: uint32(b.Dy())}
}

// Glyph looks up one character.
func (a *FontAtlas) Glyph(r rune) (Glyph, bool) {
	g, ok := a.glyphs[r]
	return g, ok
}

// LineHeight returns the row advance in pixels.
func (a *FontAtlas) LineHeight() float32 { return a.lineHeight }

// RGBA expands the alpha coverage to premultiplied white RGBA bytes for
// the texture upload.
func (a *FontAtlas) RGBA() []byte {
	src := a.pixels.Pix
	out := make([]byte, len(src)*4)
	for i, v := range src {
		out[i*4+0] = v
		out[i*4+1] = v
		out[i*4+2] = v
		out[i*4+3] = v
	}
	return out
}

// Text lays out a single line at the given pen position (x at the first
// glyph, y at the baseline) and returns it as an overlay mesh sampling
// the atlas.
func (a *FontAtlas) Text(s string, x, y float32, color [4]uint8) Mesh {
	m := Mesh{Texture: FontTexture}
	pen := x
	for _, r := range s {
		g, ok := a.glyphs[r]
		if !ok {
			continue
		}
		if g.Size[0] > 0 && g.Size[1] > 0 {
			x0 := pen + g.Offset[0]
			y0 := y + g.Offset[1]
			x1 := x0 + g.Size[0]
			y1 := y0 + g.Size[1]
			base := uint32(len(m.Vertices))
			m.Vertices = append(m.Vertices,
				Vertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.UVMin[0], g.UVMin[1]}, Color: color},
				Vertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: color},
				Vertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.UVMax[0], g.UVMax[1]}, Color: color},
				Vertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: color},
			)
			m.Indices = append(m.Indices,
				base, base+1, base+2,
				base, base+2, base+3,
			)
		}
		pen += g.Advance
	}
	return m
}
