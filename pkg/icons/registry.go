package icons

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/natalchart/pkg/render/canvas"
)

// DefaultSize is the edge length icons are normalised to.
const DefaultSize = 80

// Prefix starts every icon id.
const Prefix = "ic_"

var extensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

// Loader produces the image for a declared icon.
type Loader func(ctx context.Context) (image.Image, error)

type entry struct {
	load  Loader
	img   image.Image
	ready bool
	err   error
	subs  []func(ok bool)
}

// Option configures a Registry.
type Option func(*Registry)

// WithSize sets the edge length icons are scaled to. Zero keeps source sizes.
func WithSize(n int) Option { return func(r *Registry) { r.size = n } }

// WithConcurrency bounds the number of icons decoded at once.
func WithConcurrency(n int) Option { return func(r *Registry) { r.workers = n } }

// Registry is a concurrency-safe icon store.
type Registry struct {
	size    int
	workers int

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{size: DefaultSize, workers: 8, entries: make(map[string]*entry)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Declare registers id with a loader. Declaring an id again replaces a
// loader that has not run yet.
func (r *Registry) Declare(id string, load Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		if !e.ready {
			e.load = load
		}
		return
	}
	r.entries[id] = &entry{load: load}
}

// DeclareFile registers an icon backed by an image file.
func (r *Registry) DeclareFile(id, path string) {
	r.Declare(id, func(context.Context) (image.Image, error) {
		return decodeFile(path)
	})
}

// DeclareDir registers every image file named ic_<name>.<ext> in dir.
func (r *Registry) DeclareDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read icon dir: %w", err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name()))
		id := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		if !extensions[ext] || !strings.HasPrefix(id, Prefix) {
			continue
		}
		r.DeclareFile(id, filepath.Join(dir, f.Name()))
	}
	return nil
}

// Set stores a ready image for id and notifies its subscribers.
func (r *Registry) Set(id string, img image.Image) {
	r.finish(id, r.normalize(img), nil)
}

// IDs returns the declared ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Preload runs the loaders of every pending icon. A failing icon stays
// unready; the first failure is returned after all loaders finish.
func (r *Registry) Preload(ctx context.Context) error {
	r.mu.Lock()
	pending := make(map[string]Loader)
	for id, e := range r.entries {
		if !e.ready && e.err == nil && e.load != nil {
			pending[id] = e.load
		}
	}
	r.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		g.SetLimit(r.workers)
	}
	var (
		errMu    sync.Mutex
		firstErr error
	)
	for id, load := range pending {
		g.Go(func() error {
			img, err := load(ctx)
			if err != nil {
				err = fmt.Errorf("icon %s: %w", id, err)
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				r.finish(id, nil, err)
				return nil
			}
			r.finish(id, r.normalize(img), nil)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return firstErr
}

func (r *Registry) finish(id string, img image.Image, err error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry{}
		r.entries[id] = e
	}
	if err != nil {
		e.err = err
	} else {
		e.img, e.ready = img, true
	}
	subs := e.subs
	e.subs = nil
	r.mu.Unlock()

	for _, fn := range subs {
		fn(err == nil)
	}
}

func (r *Registry) normalize(img image.Image) image.Image {
	if r.size <= 0 || img == nil {
		return img
	}
	b := img.Bounds()
	if b.Dx() == r.size && b.Dy() == r.size {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// IsReady reports whether id is loaded.
func (r *Registry) IsReady(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return ok && e.ready
}

// Subscribe calls fn once id settles, with false if loading fails. If id is
// already ready, fn(true) runs before Subscribe returns. Unknown ids and
// icons that already failed return false.
func (r *Registry) Subscribe(id string, fn func(ok bool)) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || e.err != nil {
		r.mu.Unlock()
		return false
	}
	if !e.ready {
		e.subs = append(e.subs, fn)
		r.mu.Unlock()
		return true
	}
	r.mu.Unlock()
	fn(true)
	return true
}

// Size returns the pixel dimensions of a loaded icon.
func (r *Registry) Size(id string) (int, int, bool) {
	img, ok := r.Image(id)
	if !ok {
		return 0, 0, false
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), true
}

// Image returns a loaded icon.
func (r *Registry) Image(id string) (image.Image, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || !e.ready {
		return nil, false
	}
	return e.img, true
}

// Err returns the load error of id, if any.
func (r *Registry) Err(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e.err
	}
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

var _ canvas.Provider = (*Registry)(nil)
