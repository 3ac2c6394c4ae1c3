package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matzehuels/natalchart/pkg/chart"
	"github.com/matzehuels/natalchart/pkg/render/aspectgraph"
	"github.com/matzehuels/natalchart/pkg/render/canvas"
	"github.com/matzehuels/natalchart/pkg/render/sink"
	"github.com/matzehuels/natalchart/pkg/wheel"
)

// Snapshot is the json artifact: the planned layout plus every draw call.
type Snapshot struct {
	Empty  bool             `json:"empty"`
	Layout *wheel.Layout    `json:"layout,omitempty"`
	Ops    *canvas.Recorder `json:"scene"`
}

// Render generates output artifacts in the requested formats. layout is the
// planned wheel, nil when resp carries no chart. icons may be nil.
//
// partial lists the formats drawn while icons were still loading when the
// settle timeout hit. Their artifacts lack those icons and must not be cached.
func Render(ctx context.Context, resp *chart.Response, layout *wheel.Layout, icons canvas.Provider, opts Options) (artifacts map[string][]byte, partial []string, err error) {
	opts.SetRenderDefaults()
	artifacts = make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		complete := true

		switch format {
		case FormatSVG:
			data, complete, err = renderSVG(ctx, resp, icons, opts)
		case FormatPNG:
			data, complete, err = renderPNG(ctx, resp, icons, opts)
		case FormatJSON:
			data, complete, err = renderScene(ctx, resp, layout, icons, opts)
		case FormatDOT:
			data = []byte(aspectgraph.ToDOT(orEmpty(layout), graphOptions(opts)))
		case FormatGraph:
			data, err = aspectgraph.RenderSVG(ctx, aspectgraph.ToDOT(orEmpty(layout), graphOptions(opts)))
		default:
			return nil, nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		if !complete {
			partial = append(partial, format)
		}
	}

	return artifacts, partial, nil
}

func renderSVG(ctx context.Context, resp *chart.Response, icons canvas.Provider, opts Options) ([]byte, bool, error) {
	cfg := opts.LayoutConfig()
	surface := sink.NewSVGSurface(cfg.CanvasSize, sink.WithSVGStrokeWidth(opts.StrokeWidth))
	complete, err := drawWheel(ctx, surface, icons, resp, opts)
	if err != nil {
		return nil, false, err
	}
	return surface.Bytes(), complete, nil
}

func renderPNG(ctx context.Context, resp *chart.Response, icons canvas.Provider, opts Options) ([]byte, bool, error) {
	cfg := opts.LayoutConfig()
	surface := sink.NewRasterSurface(cfg.CanvasSize,
		sink.WithRasterScale(opts.Scale),
		sink.WithRasterStrokeWidth(opts.StrokeWidth),
	)
	defer surface.Close()
	complete, err := drawWheel(ctx, surface, icons, resp, opts)
	if err != nil {
		return nil, false, err
	}
	data, err := surface.PNG()
	return data, complete, err
}

func renderScene(ctx context.Context, resp *chart.Response, layout *wheel.Layout, icons canvas.Provider, opts Options) ([]byte, bool, error) {
	cfg := opts.LayoutConfig()
	rec := canvas.NewRecorder(cfg.CanvasSize)
	complete, err := drawWheel(ctx, rec, icons, resp, opts)
	if err != nil {
		return nil, false, err
	}
	data, err := json.MarshalIndent(Snapshot{Empty: layout == nil, Layout: layout, Ops: rec}, "", "  ")
	return data, complete, err
}

// drawWheel runs one engine pass onto surface and waits up to
// opts.SettleTimeout for icons that were still loading. It reports false
// when icons missed the deadline and were left out of the artifact.
func drawWheel(ctx context.Context, surface canvas.Surface, icons canvas.Provider, resp *chart.Response, opts Options) (bool, error) {
	logger := opts.Logger
	engine := wheel.NewEngine(canvas.NewPainter(surface, icons), opts.LayoutConfig(),
		wheel.WithObserver(func(s wheel.State) {
			if s.Phase != wheel.PhaseDrawing {
				logger.Debug("wheel pass", "phase", s.Phase, "generation", s.Generation)
			}
		}),
	)

	pass, err := engine.Render(resp)
	if err != nil {
		return false, err
	}
	if pass.Icons.Deferred == 0 {
		return true, nil
	}

	settleCtx, cancel := context.WithTimeout(ctx, opts.SettleTimeout)
	defer cancel()
	painter := engine.Painter()
	if err := engine.Settle(settleCtx); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		logger.Warn("icons not ready, rendering without them", "pending", painter.Pending())
		return false, nil
	}
	if n := painter.Dropped(); n > 0 {
		logger.Warn("icons failed to load, skipped", "count", n)
	}
	return true, nil
}

func graphOptions(opts Options) aspectgraph.Options {
	return aspectgraph.Options{Detailed: opts.Detailed, Conjunctions: opts.Conjunctions}
}

func orEmpty(l *wheel.Layout) *wheel.Layout {
	if l == nil {
		return &wheel.Layout{}
	}
	return l
}
