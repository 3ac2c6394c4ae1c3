package canvas

import (
	"context"
	"errors"
	"sync"
)

// ErrPassActive is returned by Begin while another pass is still drawing.
var ErrPassActive = errors.New("canvas: render pass already active")

// IconStatus reports what DrawIcon did with a request.
type IconStatus int

const (
	IconDrawn IconStatus = iota
	IconDeferred
	IconSkipped
)

func (s IconStatus) String() string {
	switch s {
	case IconDrawn:
		return "drawn"
	case IconDeferred:
		return "deferred"
	default:
		return "skipped"
	}
}

// Painter executes primitive drawing operations against a Surface.
type Painter struct {
	surface Surface
	icons   Provider

	mu          sync.Mutex
	gen         uint64
	active      bool
	outstanding int
	dropped     int
	queue       []func()
	wake        chan struct{}
}

// NewPainter creates a painter for surface. icons may be nil, in which case
// every icon draw is skipped.
func NewPainter(surface Surface, icons Provider) *Painter {
	return &Painter{
		surface: surface,
		icons:   icons,
		wake:    make(chan struct{}, 1),
	}
}

// Surface returns the underlying drawing target.
func (p *Painter) Surface() Surface { return p.surface }

// Begin starts a new pass: it clears the surface, advances the generation and
// forgets deferred draws of earlier passes.
func (p *Painter) Begin() (uint64, error) {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return 0, ErrPassActive
	}
	p.active = true
	p.gen++
	p.outstanding = 0
	p.dropped = 0
	p.queue = nil
	gen := p.gen
	p.mu.Unlock()

	p.surface.Clear()
	return gen, nil
}

// End marks the synchronous part of the current pass as finished. Deferred
// icon draws of the pass remain pending until Settle runs them or the next
// Begin supersedes them.
func (p *Painter) End() {
	p.mu.Lock()
	p.active = false
	p.mu.Unlock()
}

// Generation returns the id of the current (or last) pass.
func (p *Painter) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// Pending returns the number of deferred icon draws of the current pass
// that have not run yet.
func (p *Painter) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

// Dropped returns the number of deferred icon draws of the current pass
// whose icon failed to load. They count as skipped.
func (p *Painter) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// StrokeCircle outlines a circle in the default colour.
func (p *Painter) StrokeCircle(center Point, radius float64) {
	p.surface.StrokeCircle(center, radius, DefaultColor)
}

// StrokeLine draws a segment. An optional colour applies to this call only.
func (p *Painter) StrokeLine(from, to Point, color ...Color) {
	c := DefaultColor
	if len(color) > 0 && color[0] != "" {
		c = color[0]
	}
	p.surface.StrokeLine(from, to, c)
}

// Placeholder renders the empty state.
func (p *Painter) Placeholder(text string) {
	p.surface.Placeholder(text)
}

// DrawIcon blits the icon id as a size×size square at topLeft. If the icon
// is still loading the draw is deferred to Settle; unknown icons are skipped,
// and so are deferred icons whose loading fails.
func (p *Painter) DrawIcon(id string, topLeft Point, size float64) IconStatus {
	if p.icons == nil {
		return IconSkipped
	}
	if p.icons.IsReady(id) {
		if p.blit(id, topLeft, size) {
			return IconDrawn
		}
		return IconSkipped
	}

	p.mu.Lock()
	gen := p.gen
	p.outstanding++
	p.mu.Unlock()

	ok := p.icons.Subscribe(id, func(loaded bool) {
		p.post(func() {
			p.mu.Lock()
			current := gen == p.gen
			if current {
				p.outstanding--
			}
			p.mu.Unlock()
			if !current {
				return
			}
			if !loaded || !p.blit(id, topLeft, size) {
				p.mu.Lock()
				p.dropped++
				p.mu.Unlock()
			}
		})
	})
	if !ok {
		p.mu.Lock()
		if gen == p.gen {
			p.outstanding--
		}
		p.mu.Unlock()
		return IconSkipped
	}
	return IconDeferred
}

// Settle runs deferred icon draws on the calling goroutine until every draw
// of the current pass has completed or ctx is done. Draws queued by stale
// passes are discarded as they are encountered.
func (p *Painter) Settle(ctx context.Context) error {
	for {
		p.drain()

		p.mu.Lock()
		done := p.outstanding == 0
		p.mu.Unlock()
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.wake:
		}
	}
}

func (p *Painter) drain() {
	for {
		p.mu.Lock()
		queue := p.queue
		p.queue = nil
		p.mu.Unlock()
		if len(queue) == 0 {
			return
		}
		for _, fn := range queue {
			fn()
		}
	}
}

func (p *Painter) post(fn func()) {
	p.mu.Lock()
	p.queue = append(p.queue, fn)
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Painter) blit(id string, topLeft Point, size float64) bool {
	img, ok := p.icons.Image(id)
	if !ok || img == nil {
		return false
	}
	p.surface.DrawImage(id, img, topLeft, size)
	return true
}
