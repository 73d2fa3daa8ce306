package scene

import "strings"

// Slot names shared by templates and frontends
const (
	SlotTrunk  = "trunk"
	SlotCanopy = "canopy"
	SlotStone  = "stone"
	SlotPetal  = "petal"
	SlotStem   = "stem"
	SlotBody   = "body"
	SlotLimb   = "limb"
	SlotGround = "ground"
)

var (
	canopyPalette = []string{"#2f8f3f", "#4caf50", "#8bc34a", "#c0a030", "#1b5e20", "#66bb6a", "#9ccc65", "#a5d6a7"}
	stonePalette  = []string{"#8d8d8d", "#6d6a63", "#a19d94", "#5f6368", "#777777", "#9e9e9e", "#616161", "#bdbdbd"}
	petalPalette  = []string{"#e53935", "#fdd835", "#8e24aa", "#f5f5f5", "#fb8c00", "#ec407a", "#42a5f5", "#ffee58"}
)

// SlotsFor builds the material table for a template once, at load time.
// Slots the loader already supplied win over the defaults.
func SlotsFor(templateID string, loaded map[string]Material) map[string]Material {
	slots := defaultSlots(templateID)
	for name, m := range loaded {
		slots[name] = m
	}
	return slots
}

func defaultSlots(templateID string) map[string]Material {
	kind, variant := splitTemplateID(templateID)
	switch kind {
	case "tree":
		return map[string]Material{
			SlotTrunk:  {Color: "#7e5134", Opacity: 1},
			SlotCanopy: {Color: pick(canopyPalette, variant), Opacity: 1},
		}
	case "rock":
		return map[string]Material{
			SlotStone: {Color: pick(stonePalette, variant), Opacity: 1},
		}
	case "flower":
		return map[string]Material{
			SlotStem:  {Color: "#388e3c", Opacity: 1},
			SlotPetal: {Color: pick(petalPalette, variant), Opacity: 1},
		}
	case "player":
		return map[string]Material{
			SlotBody: {Color: "#1e88e5", Opacity: 1},
			SlotLimb: {Color: "#ffcc80", Opacity: 1},
		}
	case "cloud":
		return map[string]Material{
			SlotBody: {Color: "#ffffff", Opacity: 0.9, Transparent: true},
		}
	case "tile":
		colors := map[string]string{"grass": "#7cb342", "water": "#29b6f6", "path": "#bcaaa4"}
		return map[string]Material{
			SlotGround: {Color: colors[strings.TrimPrefix(templateID, "tile-")], Opacity: 1},
		}
	}
	return map[string]Material{}
}

func splitTemplateID(id string) (string, int) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return id, 0
	}
	variant := 0
	for _, c := range id[i+1:] {
		if c < '0' || c > '9' {
			return id[:i], 0
		}
		variant = variant*10 + int(c-'0')
	}
	return id[:i], variant
}

func pick(palette []string, i int) string {
	return palette[i%len(palette)]
}
