// Package render turns workflow configurations into node-link diagrams.
//
// [ToDOT] emits Graphviz DOT text describing the state graph: states as
// boxes, transitions as labeled arrows. [RenderSVG] and [RenderPNG] rasterize
// the DOT through the embedded Graphviz engine, so no external binary is
// needed.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// Options configures diagram generation.
type Options struct {
	// Detailed annotates each transition with its criterion and processor
	// counts. When false, only the transition name is shown.
	Detailed bool

	// Direction is the Graphviz rankdir. Defaults to "TB".
	Direction string
}

// ToDOT converts a workflow configuration to Graphviz DOT format. The
// initial state is drawn with a bold outline, terminal states with a grey
// fill, and disabled transitions with dashed arrows.
func ToDOT(c workflow.Configuration, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph workflow {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	terminal := make(map[string]bool)
	for _, id := range c.TerminalStates() {
		terminal[id] = true
	}

	for _, id := range c.StateIDs() {
		attrs := []string{fmt.Sprintf("label=%q", stateLabel(id, c.States[id]))}
		if id == c.InitialState {
			attrs = append(attrs, "penwidth=2")
		}
		if terminal[id] {
			attrs = append(attrs, "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range c.StateIDs() {
		for _, t := range c.States[id].Transitions {
			attrs := []string{fmt.Sprintf("label=%q", transitionLabel(t, opts.Detailed))}
			if t.Disabled {
				attrs = append(attrs, "style=dashed")
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", id, t.Next, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func stateLabel(id string, s workflow.StateDefinition) string {
	if s.Name != "" && s.Name != id {
		return s.Name + "\n" + id
	}
	return id
}

func transitionLabel(t workflow.TransitionDefinition, detailed bool) string {
	label := t.Name
	if label == "" {
		label = "(unnamed)"
	}
	if !detailed {
		return label
	}

	var parts []string
	if t.Manual {
		parts = append(parts, "manual")
	}
	if t.Criterion != nil {
		parts = append(parts, fmt.Sprintf("if %s %s %v", t.Criterion.Field, t.Criterion.Operator, t.Criterion.Value))
	}
	if n := len(t.Processors); n > 0 {
		parts = append(parts, fmt.Sprintf("processors: %d", n))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders DOT text to SVG using the embedded Graphviz engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG, normalizeViewBox)
}

// RenderPNG renders DOT text to PNG using the embedded Graphviz engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG, nil)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out := buf.Bytes()
	if post != nil {
		out = post(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the viewBox starts at
// the origin and explicit pixel dimensions are present. Graphviz emits
// point-based sizes that embed poorly in the canvas UI.
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
