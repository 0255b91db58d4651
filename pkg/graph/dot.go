package graph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/network"
)

// Edge directions drawn by [ToDOT].
const (
	DirectionSuppliers = "suppliers"
	DirectionCustomers = "customers"
	DirectionBoth      = "both"
)

// DOTOptions configures network diagrams.
type DOTOptions struct {
	// Direction selects which lists become edges. Empty means both.
	Direction string
	// Detailed adds industry names and upstreamness to node labels and
	// shares to edge labels.
	Detailed bool
}

// ToDOT converts a network to Graphviz DOT. Every edge points from seller
// to buyer. An edge present in both a supplier and a customer list is drawn
// once.
func ToDOT(n *network.Network, opts DOTOptions) string {
	var buf bytes.Buffer
	writeHeader(&buf, "LR")

	for _, node := range n.Nodes {
		fmt.Fprintf(&buf, "  %s [label=%s];\n", dotQuote(node.Code), dotQuote(nodeLabel(node, opts.Detailed)))
	}

	buf.WriteString("\n")
	seen := make(map[[2]string]bool)
	emit := func(from, to string, share float64) {
		key := [2]string{from, to}
		if seen[key] {
			return
		}
		seen[key] = true
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", dotQuote(from), dotQuote(to), dotQuote(fmtShare(share)))
			return
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(from), dotQuote(to))
	}

	dir := opts.Direction
	if dir == "" {
		dir = DirectionBoth
	}
	if dir == DirectionSuppliers || dir == DirectionBoth {
		for _, l := range n.Suppliers {
			for _, e := range l.Edges {
				emit(e.Code, l.Code, e.Share)
			}
		}
	}
	if dir == DirectionCustomers || dir == DirectionBoth {
		for _, l := range n.Customers {
			for _, e := range l.Edges {
				emit(l.Code, e.Code, e.Share)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// NeighborhoodDOT draws one industry with its suppliers on the left and
// its customers on the right. Industries that are both are drawn with a
// double outline.
func NeighborhoodDOT(nb *network.Neighborhood) string {
	var buf bytes.Buffer
	writeHeader(&buf, "LR")

	focus := nb.Focus.Code
	fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=\"#ffd966\"];\n", dotQuote(focus), dotQuote(nodeLabel(nb.Focus, true)))
	for _, s := range nb.Suppliers {
		fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=\"#cfe2f3\"];\n", dotQuote(s.Code), dotQuote(nodeLabel(s.Industry, true)))
	}
	for _, c := range nb.Customers {
		fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=\"#d9ead3\"];\n", dotQuote(c.Code), dotQuote(nodeLabel(c.Industry, true)))
	}
	for _, b := range nb.Both {
		fmt.Fprintf(&buf, "  %s [label=%s, peripheries=2];\n", dotQuote(b.Code), dotQuote(nodeLabel(b.Industry, true)))
	}

	buf.WriteString("\n")
	for _, s := range nb.Suppliers {
		fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", dotQuote(s.Code), dotQuote(focus), dotQuote(fmtShare(s.InputShare)))
	}
	for _, c := range nb.Customers {
		fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", dotQuote(focus), dotQuote(c.Code), dotQuote(fmtShare(c.OutputShare)))
	}
	for _, b := range nb.Both {
		fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", dotQuote(b.Code), dotQuote(focus), dotQuote(fmtShare(b.InputShare)))
		fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", dotQuote(focus), dotQuote(b.Code), dotQuote(fmtShare(b.OutputShare)))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// dotQuote returns s as a DOT double-quoted string. Only the quote and
// backslash are escaped, and line breaks become \n, so non-ASCII names
// reach Graphviz unchanged.
func dotQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func writeHeader(buf *bytes.Buffer, rankdir string) {
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
}

func nodeLabel(ind network.Industry, detailed bool) string {
	if !detailed {
		return ind.Code
	}
	parts := []string{ind.Code}
	if ind.Name != "" {
		parts = append(parts, ind.Name)
	}
	parts = append(parts, "u = "+strconv.FormatFloat(ind.Upstreamness, 'f', network.UpstreamnessDecimals, 64))
	return strings.Join(parts, "\n")
}

func fmtShare(s float64) string {
	return strconv.FormatFloat(s*100, 'f', 1, 64) + "%"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
