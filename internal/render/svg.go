package render

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// A4 landscape at 96 dpi.
const (
	PrintPageWidth  = 1123
	PrintPageHeight = 794
	printMargin     = 24
)

const (
	titleBand   = 60
	handleWidth = 8
	fontFamily  = "Inter, Helvetica, Arial, sans-serif"
)

// Options controls SVG output.
type Options struct {
	// Print lays the chart out on a fixed A4-landscape page and leaves out
	// the drag handles and column resizers.
	Print bool
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string { return xmlEscaper.Replace(s) }

// SVG writes v as a standalone SVG document.
func SVG(w io.Writer, v View, opts Options) error {
	var b strings.Builder
	writeSVG(&b, v, opts)
	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	return nil
}

// Print writes the A4-landscape print layout of v.
func Print(w io.Writer, v View) error {
	return SVG(w, v, Options{Print: true})
}

func writeSVG(b *strings.Builder, v View, opts Options) {
	contentW := math.Max(v.Width, float64(v.FrozenWidth))
	contentH := titleBand + v.Height

	if opts.Print {
		scale := math.Min(1, math.Min(
			(PrintPageWidth-2*printMargin)/contentW,
			(PrintPageHeight-2*printMargin)/contentH,
		))
		fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="297mm" height="210mm" viewBox="0 0 %d %d" class="gantt print">`+"\n",
			PrintPageWidth, PrintPageHeight)
		fmt.Fprintf(b, `<rect width="100%%" height="100%%" fill="#FFFFFF"/>`+"\n")
		fmt.Fprintf(b, `<g transform="translate(%d %d) scale(%s)">`+"\n", printMargin, printMargin, num(scale))
	} else {
		fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" class="gantt">`+"\n",
			num(contentW), num(contentH), num(contentW), num(contentH))
		fmt.Fprintf(b, `<rect width="100%%" height="100%%" fill="#FFFFFF"/>`+"\n")
		b.WriteString("<g>\n")
	}
	fmt.Fprintf(b, `<title>%s</title>`+"\n", esc(v.Title))
	writeDefs(b)
	fmt.Fprintf(b, `<rect x="0" y="0" width="%s" height="%d" fill="%s"/>`+"\n", num(contentW), titleBand, TooltipColor)

	fmt.Fprintf(b, `<text x="0" y="28" class="title">%s</text>`+"\n", esc(v.Title))
	fmt.Fprintf(b, `<text x="0" y="50" class="subtitle">%s</text>`+"\n", esc(v.Subtitle))

	fmt.Fprintf(b, `<g transform="translate(0 %d)">`+"\n", titleBand)
	writeColumns(b, v, opts)
	if v.NoData {
		fmt.Fprintf(b, `<text x="%s" y="%d" class="empty">%s</text>`+"\n",
			num(contentW/2), HeaderHeight+RowHeight, esc(v.Message))
	} else {
		writeTimelineHeader(b, v)
		writeRows(b, v, opts)
		writeConnectors(b, v)
	}
	b.WriteString("</g>\n</g>\n</svg>\n")
}

func writeDefs(b *strings.Builder) {
	fmt.Fprintf(b, `<defs>
<style>
.title { font-family: %[1]s; font-size: 22px; font-weight: 700; fill: #FFFFFF; }
.subtitle { font-family: %[1]s; font-size: 13px; fill: #E6F4F1; }
.cell { font-family: %[1]s; font-size: 13px; fill: #111827; }
.head { font-family: %[1]s; font-size: 13px; font-weight: 600; fill: #111827; }
.bucket { font-family: %[1]s; font-size: 11px; fill: #6B7280; text-anchor: middle; }
.bucket-sub { font-family: %[1]s; font-size: 11px; font-weight: 500; fill: #374151; text-anchor: middle; }
.empty { font-family: %[1]s; font-size: 14px; fill: #6B7280; text-anchor: middle; }
</style>
<marker id="arrow-head" viewBox="0 0 10 10" refX="8" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="%[2]s" opacity="0.8"/></marker>
<marker id="arrow-head-red" viewBox="0 0 10 10" refX="8" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="%[3]s" opacity="0.8"/></marker>
</defs>
`, fontFamily, ConnectorColor, ConflictColor)
}

func writeColumns(b *strings.Builder, v View, opts Options) {
	for _, c := range v.Columns {
		fmt.Fprintf(b, `<rect x="%d" y="0" width="%d" height="%d" fill="#F3F4F6" stroke="#E5E7EB"/>`+"\n",
			c.X, c.Width, HeaderHeight)
		fmt.Fprintf(b, `<text x="%d" y="%d" class="head">%s</text>`+"\n", c.X+12, HeaderHeight/2+5, esc(c.Title))
		if !opts.Print {
			fmt.Fprintf(b, `<rect class="resizer" data-column="%s" x="%d" y="0" width="4" height="%s" fill="transparent"/>`+"\n",
				c.Column, c.X+c.Width-2, num(v.Height))
		}
	}
}

func writeTimelineHeader(b *strings.Builder, v View) {
	for _, h := range v.Header {
		fill := "#F9FAFB"
		if h.Weekend {
			fill = "#E5E7EB"
		}
		fmt.Fprintf(b, `<rect x="%s" y="0" width="%s" height="%d" fill="%s" stroke="#E5E7EB"/>`+"\n",
			num(h.X), num(h.Width), HeaderHeight, fill)
		mid := num(h.X + h.Width/2)
		if h.SubLabel != "" {
			fmt.Fprintf(b, `<text x="%s" y="20" class="bucket-sub">%s</text>`+"\n", mid, esc(h.SubLabel))
			fmt.Fprintf(b, `<text x="%s" y="38" class="bucket">%s</text>`+"\n", mid, esc(h.Label))
		} else {
			fmt.Fprintf(b, `<text x="%s" y="30" class="bucket">%s</text>`+"\n", mid, esc(h.Label))
		}
	}
}

func writeRows(b *strings.Builder, v View, opts Options) {
	for _, r := range v.Rows {
		fmt.Fprintf(b, `<g class="row" data-task-id="%d">`+"\n", r.TaskID)
		fmt.Fprintf(b, `<rect x="0" y="%s" width="%s" height="%d" fill="#FFFFFF" stroke="#E5E7EB"/>`+"\n",
			num(r.Y), num(v.Width), RowHeight)
		texts := []string{r.Group, r.Name, r.Deps}
		for i, c := range v.Columns {
			fmt.Fprintf(b, `<text x="%d" y="%s" class="cell">%s</text>`+"\n",
				c.X+12, num(r.Y+RowHeight/2+5), esc(truncate(texts[i], c.Width-24)))
		}
		if r.Bar != nil {
			writeBar(b, r, opts)
		}
		b.WriteString("</g>\n")
	}
}

func writeBar(b *strings.Builder, r RowView, opts Options) {
	bar := r.Bar
	h := float64(RowHeight) * 0.6
	y := r.Y + (RowHeight-h)/2
	fmt.Fprintf(b, `<g class="bar" data-task-bar-id="%d">`+"\n", r.TaskID)
	fmt.Fprintf(b, `<title>%s</title>`+"\n", esc(strings.Join(bar.Tooltip, "\n")))
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s"/>`+"\n",
		num(bar.Left), num(y), num(bar.Width), num(h), esc(bar.TrackColor))
	if bar.ProgressWidth > 0 {
		fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s"/>`+"\n",
			num(bar.Left), num(y), num(bar.ProgressWidth), num(h), esc(bar.Color))
	}
	if !opts.Print {
		fmt.Fprintf(b, `<rect class="handle resize-left" x="%s" y="%s" width="%d" height="%s" fill="transparent"/>`+"\n",
			num(bar.Left), num(y), handleWidth, num(h))
		fmt.Fprintf(b, `<rect class="handle resize-right" x="%s" y="%s" width="%d" height="%s" fill="transparent"/>`+"\n",
			num(bar.Left+bar.Width-handleWidth), num(y), handleWidth, num(h))
	}
	b.WriteString("</g>\n")
}

func writeConnectors(b *strings.Builder, v View) {
	for _, c := range v.Connectors {
		stroke, marker := ConnectorColor, "arrow-head"
		if c.Conflict {
			stroke, marker = ConflictColor, "arrow-head-red"
		}
		fmt.Fprintf(b, `<path class="connector" data-from="%d" data-to="%d" d="%s" stroke="%s" marker-end="url(#%s)" fill="none" stroke-width="1.5" opacity="0.8"/>`+"\n",
			c.ParentID, c.ChildID, c.Path, stroke, marker)
	}
}

// truncate shortens s to roughly fit width pixels of 13px text.
func truncate(s string, width int) string {
	limit := width / 7
	r := []rune(s)
	if limit <= 1 || len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
