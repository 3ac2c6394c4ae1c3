package aspectgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/natalchart/pkg/chart"
	"github.com/matzehuels/natalchart/pkg/wheel"
)

// Options configures aspect graph rendering.
type Options struct {
	// Detailed adds the sign, house and angle to node labels.
	Detailed bool
	// Conjunctions adds dotted edges for conjunctions, which the wheel omits.
	Conjunctions bool
}

// ToDOT converts a planned wheel into Graphviz DOT.
func ToDOT(l *wheel.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=circo;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [penwidth=2];\n")
	buf.WriteString("\n")

	for _, p := range l.Planets {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", p.Name, fmtLabel(l, p, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, a := range l.Aspects {
		fmt.Fprintf(&buf, "  %q -- %q [color=%q, tooltip=%q];\n", a.First, a.Second, string(a.Color), a.Type)
	}
	if opts.Conjunctions {
		for _, pair := range conjunctions(l) {
			fmt.Fprintf(&buf, "  %q -- %q [style=dotted, tooltip=%q];\n", pair[0], pair[1], chart.Conjunction)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(l *wheel.Layout, p wheel.PlanetPlacement, detailed bool) string {
	if !detailed {
		return p.Name
	}
	house := l.Divisions[p.Division].HouseKey
	return strings.Join([]string{
		p.Name,
		p.Sign,
		house,
		strconv.FormatFloat(p.Angle, 'f', 1, 64) + "°",
	}, "\n")
}

// conjunctions returns each placed conjunction pair once, in placement order.
func conjunctions(l *wheel.Layout) [][2]string {
	seen := make(map[string]bool)
	var out [][2]string
	for _, p := range l.Planets {
		for _, a := range p.Aspects {
			if a.TypeName != chart.Conjunction {
				continue
			}
			_, second := a.Pair()
			if second == p.Name {
				continue
			}
			if _, ok := l.Placement(second); !ok {
				continue
			}
			key := chart.Aspect{First: p.Name, Second: second}.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, [2]string{p.Name, second})
		}
	}
	return out
}

// RenderSVG lays out a DOT graph with Graphviz and returns SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the graph scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
