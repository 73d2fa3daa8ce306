package terminal

import (
	"fmt"
	"maps"
	"math"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/grovewalk/game/scene"
)

// cellWidth is the number of screen columns per tile
const cellWidth = 2

// tilt thresholds for a falling tree, in radians
const (
	leanAngle   = 0.35
	felledAngle = 1.2
)

// strideAngle is the leg swing past which the player is drawn mid-step
const strideAngle = 0.3

type layer int

const (
	layerGround layer = iota
	layerDecoration
	layerPlayer
	layerSky
)

// sprite is one instantiated template
type sprite struct {
	handle    scene.Handle
	id        string
	glyph     rune
	color     tcell.Color
	layer     layer
	transform scene.Transform
	opacity   float64
	attached  bool

	// per-instance copy of the template's materials
	slots map[string]scene.Material
}

// Canvas is a scene.Scene drawn top-down onto a tcell screen. Every tile
// occupies cellWidth columns and one row.
type Canvas struct {
	gridSize int
	originX  int
	originY  int

	sprites map[scene.Handle]*sprite
	next    scene.Handle
	pose    scene.LimbPose
}

// NewCanvas creates an empty canvas for a gridSize world
func NewCanvas(gridSize int) *Canvas {
	return &Canvas{
		gridSize: gridSize,
		originY:  1,
		sprites:  make(map[scene.Handle]*sprite),
	}
}

func (c *Canvas) Instantiate(lib *scene.Library, templateID string) (scene.Handle, error) {
	s := &sprite{id: templateID, opacity: 1, layer: layerFor(templateID)}

	if lib != nil {
		tpl, err := lib.Get(templateID)
		if err != nil {
			return 0, err
		}
		s.glyph = tpl.Glyph
		s.slots = maps.Clone(tpl.Slots)
	} else {
		g, ok := glyphFor(templateID)
		if !ok {
			return 0, fmt.Errorf("%w: %s", scene.ErrUnknownTemplate, templateID)
		}
		s.glyph = g
		s.slots = scene.SlotsFor(templateID, nil)
	}
	if s.slots == nil {
		s.slots = map[string]scene.Material{}
	}
	s.color = primaryColor(s.slots)

	c.next++
	s.handle = c.next
	c.sprites[s.handle] = s
	return s.handle, nil
}

func (c *Canvas) SetTransform(h scene.Handle, t scene.Transform) {
	if s, ok := c.sprites[h]; ok {
		s.transform = t
	}
}

// SetOpacity fades a sprite. The first value below 1 switches its materials
// to transparent so Draw blends it into what lies underneath.
func (c *Canvas) SetOpacity(h scene.Handle, opacity float64) {
	s, ok := c.sprites[h]
	if !ok {
		return
	}
	s.opacity = math.Max(0, math.Min(1, opacity))
	if s.opacity >= 1 {
		return
	}
	for name, m := range s.slots {
		if !m.Transparent {
			m.Transparent = true
			s.slots[name] = m
		}
	}
}

// SetPose records the player's walk pose for the next Draw
func (c *Canvas) SetPose(p scene.LimbPose) {
	c.pose = p
}

func (c *Canvas) Attach(h scene.Handle) {
	if s, ok := c.sprites[h]; ok {
		s.attached = true
	}
}

// Detach forgets the sprite; handles are never reused
func (c *Canvas) Detach(h scene.Handle) {
	delete(c.sprites, h)
}

// Len returns the number of live sprites
func (c *Canvas) Len() int {
	return len(c.sprites)
}

// Layout centres the grid horizontally on a w x h screen
func (c *Canvas) Layout(w, h int) {
	c.originX = max(0, (w-c.gridSize*cellWidth)/2)
	c.originY = 1
	if h < c.gridSize+2 {
		c.originY = 0
	}
}

// ScreenToTile converts a screen cell to grid coordinates. Cells outside
// the grid map to negative or out-of-range coordinates.
func (c *Canvas) ScreenToTile(col, row int) (int, int) {
	if col < c.originX || row < c.originY {
		return -1, -1
	}
	return (col - c.originX) / cellWidth, row - c.originY
}

// TileToScreen returns the left screen column and row of a tile
func (c *Canvas) TileToScreen(x, y int) (int, int) {
	return c.originX + x*cellWidth, c.originY + y
}

// Draw paints every attached sprite, ground first and sky last
func (c *Canvas) Draw(screen tcell.Screen) {
	sprites := make([]*sprite, 0, len(c.sprites))
	for _, s := range c.sprites {
		if s.attached {
			sprites = append(sprites, s)
		}
	}
	sort.Slice(sprites, func(i, j int) bool {
		if sprites[i].layer != sprites[j].layer {
			return sprites[i].layer < sprites[j].layer
		}
		return sprites[i].handle < sprites[j].handle
	})

	for _, s := range sprites {
		x := int(math.Round(s.transform.Position.X))
		y := int(math.Round(s.transform.Position.Z))
		if x < 0 || y < 0 || x >= c.gridSize || y >= c.gridSize {
			continue
		}
		col, row := c.TileToScreen(x, y)

		switch s.layer {
		case layerGround:
			style := tcell.StyleDefault.Background(dim(s.color, 0.45)).Foreground(s.color)
			screen.SetContent(col, row, s.glyph, nil, style)
			screen.SetContent(col+1, row, ' ', nil, style)
		case layerSky:
			for dx := 0; dx < cellWidth; dx++ {
				mainc, combc, style, _ := screen.GetContent(col+dx, row)
				_, bg, _ := style.Decompose()
				screen.SetContent(col+dx, row, mainc, combc, style.Background(blend(bg, s.color, 0.25*s.opacity)))
			}
		case layerPlayer:
			_, _, style, _ := screen.GetContent(col, row)
			screen.SetContent(col, row, s.striding(c.pose), nil, style.Foreground(s.color).Bold(true))
		default:
			_, _, style, _ := screen.GetContent(col, row)
			fg := s.color
			if s.transparent() {
				_, bg, _ := style.Decompose()
				fg = blend(bg, s.color, s.opacity)
			}
			screen.SetContent(col, row, s.tilted(), nil, style.Foreground(fg))
		}
	}
}

// tilted returns the glyph for a sprite, leaning when a tree topples
func (s *sprite) tilted() rune {
	if s.layer != layerDecoration || !strings.HasPrefix(s.id, "tree-") {
		return s.glyph
	}
	r := s.transform.Rotation
	angle := math.Hypot(r.X, r.Z)
	switch {
	case angle >= felledAngle:
		return '_'
	case angle >= leanAngle && math.Abs(r.Z) >= math.Abs(r.X):
		if r.Z < 0 {
			return '/'
		}
		return '\\'
	case angle >= leanAngle:
		return '|'
	}
	return s.glyph
}

// striding returns the player glyph for the current step of the walk cycle
func (s *sprite) striding(p scene.LimbPose) rune {
	switch {
	case p.LeftLeg >= strideAngle:
		return 'λ'
	case p.RightLeg >= strideAngle:
		return 'ʎ'
	}
	return s.glyph
}

// transparent reports whether any material has been switched to blending
func (s *sprite) transparent() bool {
	for _, m := range s.slots {
		if m.Transparent {
			return true
		}
	}
	return false
}

func layerFor(templateID string) layer {
	switch {
	case strings.HasPrefix(templateID, "tile-"):
		return layerGround
	case templateID == "player":
		return layerPlayer
	case templateID == "cloud":
		return layerSky
	}
	return layerDecoration
}

// primaryColor picks the dominant surface of a template
func primaryColor(slots map[string]scene.Material) tcell.Color {
	for _, name := range []string{scene.SlotCanopy, scene.SlotPetal, scene.SlotStone, scene.SlotGround, scene.SlotBody} {
		if m, ok := slots[name]; ok && m.Color != "" {
			return tcell.GetColor(m.Color)
		}
	}
	return tcell.ColorWhite
}

func dim(c tcell.Color, f float64) tcell.Color {
	return blend(tcell.ColorBlack, c, f)
}

// blend mixes from toward to by f in [0,1]
func blend(from, to tcell.Color, f float64) tcell.Color {
	if f >= 1 || !from.Valid() {
		return to
	}
	if !to.Valid() {
		return from
	}
	r1, g1, b1 := from.RGB()
	r2, g2, b2 := to.RGB()
	mix := func(a, b int32) int32 {
		return a + int32(math.Round(float64(b-a)*f))
	}
	return tcell.NewRGBColor(mix(r1, r2), mix(g1, g2), mix(b1, b2))
}
