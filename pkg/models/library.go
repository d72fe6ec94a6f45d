package models

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Asset names a mesh in a Library. When Node is set only that node's mesh
// is loaded; otherwise the whole file is merged. Fallback builds the
// stand-in used when Path does not exist.
type Asset struct {
	Name     string
	Path     string
	Node     string
	Texture  bool
	Fallback func() *Mesh
}

// Library holds the meshes a scene draws, keyed by asset name.
type Library struct {
	meshes   map[string]*Mesh
	textures map[string]image.Image
}

type loaded struct {
	mesh *Mesh
	tex  image.Image
}

// LoadLibrary loads every asset concurrently. A missing file is replaced
// by the asset's fallback and logged; any other failure cancels the
// remaining loads and is returned.
func LoadLibrary(ctx context.Context, assets []Asset, logger *log.Logger) (*Library, error) {
	results := make([]loaded, len(assets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, a := range assets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := loadAsset(a)
			if errors.Is(err, fs.ErrNotExist) && a.Fallback != nil {
				logger.Warn("model file missing, using fallback", "asset", a.Name, "path", a.Path)
				r = loaded{mesh: a.Fallback()}
				r.mesh.Fallback = true
				err = nil
			}
			if err != nil {
				return fmt.Errorf("load %s: %w", a.Name, err)
			}
			logger.Debug("loaded model", "asset", a.Name, "vertices", r.mesh.VertexCount(), "triangles", r.mesh.TriangleCount())
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lib := &Library{
		meshes:   make(map[string]*Mesh, len(assets)),
		textures: make(map[string]image.Image),
	}
	for i, a := range assets {
		lib.meshes[a.Name] = results[i].mesh
		if results[i].tex != nil {
			lib.textures[a.Name] = results[i].tex
		}
	}
	return lib, nil
}

func loadAsset(a Asset) (loaded, error) {
	if a.Path == "" {
		return loaded{}, fs.ErrNotExist
	}
	switch {
	case a.Node != "":
		m, err := NewGLTFLoader().LoadNode(a.Path, a.Node)
		return loaded{mesh: m}, err
	case a.Texture:
		m, tex, err := LoadGLBWithTexture(a.Path)
		return loaded{mesh: m, tex: tex}, err
	default:
		m, err := LoadGLB(a.Path)
		return loaded{mesh: m}, err
	}
}

// Get returns the mesh loaded for name.
func (l *Library) Get(name string) (*Mesh, bool) {
	m, ok := l.meshes[name]
	return m, ok
}

// Texture returns the embedded image loaded with name, if any.
func (l *Library) Texture(name string) (image.Image, bool) {
	t, ok := l.textures[name]
	return t, ok
}

// Names returns the asset names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.meshes))
	for n := range l.meshes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Fallbacks returns the names of assets that were built procedurally.
func (l *Library) Fallbacks() []string {
	var names []string
	for _, n := range l.Names() {
		if l.meshes[n].Fallback {
			names = append(names, n)
		}
	}
	return names
}
