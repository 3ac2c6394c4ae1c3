// Package pkg provides the core libraries for natalchart.
//
// # Overview
//
// natalchart asks a chart service for the planetary positions of a moment at a
// place and draws them as a radial wheel: twelve sign divisions starting at
// the Ascendant, a tick and glyph for each planet, and colour-coded aspect
// lines across the middle. The pkg directory is organized into these areas:
//
//  1. [chart] and [wheel] - Domain model and wheel geometry
//  2. [render] - Drawing surfaces (SVG, PNG, recorded ops, aspect graph)
//  3. [integrations] - Chart service client (charts and geocoding)
//  4. [pipeline] - Orchestration (locate → fetch → layout → render)
//  5. [cache], [store], [config] - Infrastructure
//  6. [server] - HTTP API over the pipeline
//
// # Architecture
//
// The typical data flow:
//
//	place + date/time
//	         ↓
//	    [integrations/natalcharts] (geocode, fetch chart)
//	         ↓
//	    [chart] (ordered planets, houses, aspects)
//	         ↓
//	    [wheel] (divisions, planet angles, aspect lines)
//	         ↓
//	    [render] (SVG/PNG/JSON/DOT output)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, cache.NewNullCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Place: "New York, NY",
//	    Year:  1990, Month: 1, Day: 1, Hour: 8, Minute: 30,
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	os.WriteFile("chart.svg", result.Artifacts[pipeline.FormatSVG], 0o644)
//
// [chart]: github.com/matzehuels/natalchart/pkg/chart
// [wheel]: github.com/matzehuels/natalchart/pkg/wheel
// [render]: github.com/matzehuels/natalchart/pkg/render
// [integrations]: github.com/matzehuels/natalchart/pkg/integrations
// [integrations/natalcharts]: github.com/matzehuels/natalchart/pkg/integrations/natalcharts
// [pipeline]: github.com/matzehuels/natalchart/pkg/pipeline
// [cache]: github.com/matzehuels/natalchart/pkg/cache
// [store]: github.com/matzehuels/natalchart/pkg/store
// [config]: github.com/matzehuels/natalchart/pkg/config
// [server]: github.com/matzehuels/natalchart/pkg/server
package pkg
