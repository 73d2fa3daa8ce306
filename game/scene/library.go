package scene

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	ErrAssetLoad       = errors.New("asset load failed")
	ErrUnknownTemplate = errors.New("unknown template")
)

// maxParallelLoads bounds concurrent LoadTemplate calls
const maxParallelLoads = 4

// Material is one named surface of a template
type Material struct {
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	Transparent bool    `json:"transparent"`
}

// Template is a resolved, reusable visual that scenes clone per instance
type Template struct {
	ID    string              `json:"id"`
	Path  string              `json:"path"`
	Glyph rune                `json:"glyph,omitempty"`
	Slots map[string]Material `json:"slots"`
}

// Loader is the asset resolution collaborator
type Loader interface {
	LoadTemplate(ctx context.Context, path string) (*Template, error)
}

// Manifest maps template IDs to asset paths
type Manifest map[string]string

// Library holds every template a session needs, resolved before the loop starts
type Library struct {
	templates map[string]*Template
}

// Get returns the template for id
func (l *Library) Get(id string) (*Template, error) {
	t, ok := l.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return t, nil
}

// IDs returns the template IDs in sorted order
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.templates))
	for id := range l.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of templates
func (l *Library) Len() int {
	return len(l.templates)
}

// Preload resolves every manifest entry concurrently. Any failure aborts the
// whole load; no partial library is ever returned.
func Preload(ctx context.Context, loader Loader, manifest Manifest) (*Library, error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: no loader configured", ErrAssetLoad)
	}

	var mu sync.Mutex
	templates := make(map[string]*Template, len(manifest))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)

	for id, path := range manifest {
		g.Go(func() error {
			tpl, err := loader.LoadTemplate(gctx, path)
			if err != nil {
				return fmt.Errorf("%w: %s (%s): %v", ErrAssetLoad, id, path, err)
			}
			if tpl == nil {
				return fmt.Errorf("%w: %s (%s): loader returned no template", ErrAssetLoad, id, path)
			}

			resolved := *tpl
			resolved.ID = id
			resolved.Path = path
			resolved.Slots = SlotsFor(id, tpl.Slots)

			mu.Lock()
			templates[id] = &resolved
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Library{templates: templates}, nil
}

// DefaultManifest lists the templates a world with the given variant counts uses
func DefaultManifest(treeVariants, rockVariants, flowerVariants int) Manifest {
	m := Manifest{
		"player":     "assets/player.glb",
		"cloud":      "assets/cloud.glb",
		"tile-grass": "assets/tile-grass.glb",
		"tile-water": "assets/tile-water.glb",
		"tile-path":  "assets/tile-path.glb",
	}
	for i := 0; i < treeVariants; i++ {
		m[TemplateID("tree", i)] = fmt.Sprintf("assets/tree-%d.glb", i)
	}
	for i := 0; i < rockVariants; i++ {
		m[TemplateID("rock", i)] = fmt.Sprintf("assets/rock-%d.glb", i)
	}
	for i := 0; i < flowerVariants; i++ {
		m[TemplateID("flower", i)] = fmt.Sprintf("assets/flower-%d.glb", i)
	}
	return m
}

// TemplateID names the template for a decoration kind and palette variant
func TemplateID(kind string, variant int) string {
	return fmt.Sprintf("%s-%d", kind, variant)
}
