package terminal

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/wricardo/grovewalk/game/scene"
)

const (
	assetDir = "assets"
	assetExt = ".glb"
)

// fixedGlyphs covers templates without palette variants
var fixedGlyphs = map[string]rune{
	"player":     '@',
	"cloud":      '░',
	"tile-grass": '·',
	"tile-water": '≈',
	"tile-path":  '=',
}

// variantGlyphs is indexed by variant modulo length
var variantGlyphs = map[string][]rune{
	"tree":   {'♣', '♠', '¥'},
	"rock":   {'●', '◆'},
	"flower": {'✿', '❀', '*', '✽'},
}

// GlyphLoader resolves manifest asset paths to terminal glyphs
type GlyphLoader struct{}

// LoadTemplate maps assets/<id>.glb to a template carrying the glyph for id
func (GlyphLoader) LoadTemplate(ctx context.Context, p string) (*scene.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, file := path.Split(p)
	if path.Clean(dir) != assetDir || path.Ext(file) != assetExt {
		return nil, fmt.Errorf("%w: unsupported asset path %q", scene.ErrAssetLoad, p)
	}

	id := strings.TrimSuffix(file, assetExt)
	glyph, ok := glyphFor(id)
	if !ok {
		return nil, fmt.Errorf("%w: no glyph for %q", scene.ErrAssetLoad, id)
	}
	return &scene.Template{ID: id, Path: p, Glyph: glyph}, nil
}

// glyphFor looks up the glyph for a template ID such as tree-2 or tile-water
func glyphFor(id string) (rune, bool) {
	if g, ok := fixedGlyphs[id]; ok {
		return g, true
	}

	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return 0, false
	}
	glyphs, ok := variantGlyphs[id[:i]]
	if !ok {
		return 0, false
	}
	variant, err := strconv.Atoi(id[i+1:])
	if err != nil || variant < 0 {
		return 0, false
	}
	return glyphs[variant%len(glyphs)], true
}
