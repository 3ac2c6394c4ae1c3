package wheel

import (
	"context"
	"fmt"
	"sync"

	"github.com/matzehuels/natalchart/pkg/chart"
	"github.com/matzehuels/natalchart/pkg/render/canvas"
)

// EmptyText is shown instead of a wheel when there is no chart.
const EmptyText = "No chart"

// Phase is the progress of a render pass.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDivisionsComputed
	PhaseDrawing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDivisionsComputed:
		return "divisions-computed"
	case PhaseDrawing:
		return "drawing"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the engine's position in the pass. Division is meaningful only
// while drawing.
type State struct {
	Phase      Phase
	Division   int
	Generation uint64
}

// IconCounts tallies what happened to the icons of a pass.
type IconCounts struct {
	Drawn    int `json:"drawn"`
	Deferred int `json:"deferred"`
	Skipped  int `json:"skipped"`
}

func (c *IconCounts) add(s canvas.IconStatus) {
	switch s {
	case canvas.IconDrawn:
		c.Drawn++
	case canvas.IconDeferred:
		c.Deferred++
	default:
		c.Skipped++
	}
}

// Pass describes a finished synchronous render pass.
type Pass struct {
	Generation uint64
	Empty      bool
	Layout     *Layout
	Icons      IconCounts
}

// Engine draws charts onto one painter, one pass at a time.
type Engine struct {
	painter *canvas.Painter
	cfg     LayoutConfig

	mu       sync.Mutex
	state    State
	observer func(State)
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers fn to be called on every state transition.
func WithObserver(fn func(State)) Option {
	return func(e *Engine) { e.observer = fn }
}

// NewEngine creates an engine drawing with painter at the given size.
func NewEngine(painter *canvas.Painter, cfg LayoutConfig, opts ...Option) *Engine {
	e := &Engine{painter: painter, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's layout configuration.
func (e *Engine) Config() LayoutConfig { return e.cfg }

// Painter returns the painter the engine draws with.
func (e *Engine) Painter() *canvas.Painter { return e.painter }

// State returns the current pass state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) enter(phase Phase, division int) {
	e.mu.Lock()
	e.state.Phase = phase
	e.state.Division = division
	st := e.state
	e.mu.Unlock()
	if e.observer != nil {
		e.observer(st)
	}
}

// Render clears the surface and draws resp. A response without a computed
// chart draws only the empty-state placeholder. Icons that are still loading
// are deferred; call Settle to wait for them.
func (e *Engine) Render(resp *chart.Response) (*Pass, error) {
	gen, err := e.painter.Begin()
	if err != nil {
		return nil, err
	}
	defer e.painter.End()

	e.mu.Lock()
	e.state = State{Phase: PhaseIdle, Generation: gen}
	e.mu.Unlock()

	pass := &Pass{Generation: gen}
	if !resp.HasChart() {
		e.painter.Placeholder(EmptyText)
		pass.Empty = true
		e.enter(PhaseDone, 0)
		return pass, nil
	}

	layout, err := Plan(resp.Chart, e.cfg)
	if err != nil {
		e.enter(PhaseDone, 0)
		return nil, err
	}
	pass.Layout = layout
	e.enter(PhaseDivisionsComputed, 0)

	origin := e.cfg.Origin()
	e.painter.StrokeCircle(origin, e.cfg.OuterRadius)
	e.painter.StrokeCircle(origin, e.cfg.InnerRadius())

	for i := range layout.Divisions {
		e.enter(PhaseDrawing, i)

		tick := layout.Ticks[i]
		e.painter.StrokeLine(tick.From, tick.To)

		sign := layout.SignIcons[i]
		pass.Icons.add(e.painter.DrawIcon(sign.ID, sign.TopLeft, sign.Size))

		for _, p := range layout.PlanetsIn(i) {
			e.painter.StrokeLine(p.Tick.From, p.Tick.To)
			pass.Icons.add(e.painter.DrawIcon(p.Icon.ID, p.Icon.TopLeft, p.Icon.Size))
		}
	}

	for _, a := range layout.Aspects {
		e.painter.StrokeLine(a.From, a.To, a.Color)
	}

	e.enter(PhaseDone, len(layout.Divisions)-1)
	return pass, nil
}

// Settle waits for the deferred icons of the current pass.
func (e *Engine) Settle(ctx context.Context) error {
	return e.painter.Settle(ctx)
}
