// Package render prints dashboard snapshots to a terminal.
package render

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sells-group/lifemap/internal/views"
)

// DefaultWidth is the bar track width used when none is given.
const DefaultWidth = 40

const (
	barGlyph    = "█"
	swatchGlyph = "■"
	highlightFg = "#ff0000"
)

// Printer formats view models with lipgloss. Colors are only emitted when
// the output supports them.
type Printer struct {
	r     *lipgloss.Renderer
	width int

	title     lipgloss.Style
	muted     lipgloss.Style
	highlight lipgloss.Style
	box       lipgloss.Style
}

// NewPrinter returns a Printer for output written to w. width is the
// length of the longest bar.
func NewPrinter(w io.Writer, width int) *Printer {
	if width <= 0 {
		width = DefaultWidth
	}
	r := lipgloss.NewRenderer(w)
	return &Printer{
		r:         r,
		width:     width,
		title:     r.NewStyle().Bold(true).Underline(true),
		muted:     r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		highlight: r.NewStyle().Foreground(lipgloss.Color(highlightFg)).Bold(true),
		box:       r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (p *Printer) color(c string) lipgloss.Style {
	if c == views.HighlightColor {
		c = highlightFg
	}
	return p.r.NewStyle().Foreground(lipgloss.Color(c))
}

// Snapshot renders every chart of s, top to bottom.
func (p *Printer) Snapshot(s views.Snapshot) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		p.Bar(s.Bar),
		"",
		p.Legend(s.Legend),
		"",
		p.Line(s.Line),
		"",
		p.Scatter(s.Scatter),
	)
}

// Bar draws one horizontal bar per country, scaled to the x domain. The
// last-added country is marked with an asterisk.
func (p *Printer) Bar(v views.BarView) string {
	var sb strings.Builder
	sb.WriteString(p.title.Render(v.Title))
	sb.WriteString("\n")
	if len(v.Bars) == 0 {
		sb.WriteString(p.muted.Render("no countries selected"))
		return sb.String()
	}

	labelWidth := 0
	for _, b := range v.Bars {
		labelWidth = max(labelWidth, lipgloss.Width(b.Country))
	}
	label := p.r.NewStyle().Width(labelWidth + 2)

	for i, b := range v.Bars {
		name := b.Country
		style := p.color(b.Color)
		if b.Highlighted {
			name = "*" + name
			style = p.highlight
		}
		sb.WriteString(label.Render(name))
		sb.WriteString(style.Render(strings.Repeat(barGlyph, p.barLength(b.Value, v.X.Domain))))
		sb.WriteString(" ")
		sb.WriteString(formatValue(b.Value))
		if i < len(v.Bars)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (p *Printer) barLength(v float64, d views.Domain) int {
	if d.Empty || d.Max <= 0 || v <= 0 {
		return 0
	}
	n := int(math.Round(v / d.Max * float64(p.width)))
	return max(n, 1)
}

// Legend lists one swatch per bar, in bar order.
func (p *Printer) Legend(entries []views.LegendEntry) string {
	if len(entries) == 0 {
		return ""
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = p.color(e.Color).Render(swatchGlyph) + " " + e.Country
	}
	return strings.Join(parts, "  ")
}

// Line prints each series as a row of year=value cells. Years without a
// value are left out rather than drawn as zero.
func (p *Printer) Line(v views.LineView) string {
	var sb strings.Builder
	sb.WriteString(p.title.Render(v.Title))
	if len(v.Series) == 0 {
		sb.WriteString("\n")
		sb.WriteString(p.muted.Render("no series"))
		return sb.String()
	}
	for _, s := range v.Series {
		cells := make([]string, len(s.Points))
		for i, pt := range s.Points {
			cells[i] = fmt.Sprintf("%d=%s", pt.Year, formatValue(pt.Value))
		}
		sb.WriteString("\n")
		sb.WriteString(p.color(s.Color).Render(s.Country))
		sb.WriteString(": ")
		sb.WriteString(strings.Join(cells, " "))
	}
	return sb.String()
}

// Scatter prints the scatter points as a table sorted by x.
func (p *Printer) Scatter(v views.ScatterView) string {
	var sb strings.Builder
	sb.WriteString(p.title.Render(v.YLabel + " vs " + v.XLabel))
	if len(v.Points) == 0 {
		sb.WriteString("\n")
		sb.WriteString(p.muted.Render("no points"))
		return sb.String()
	}

	points := make([]views.ScatterPoint, len(v.Points))
	copy(points, v.Points)
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })

	nameWidth := lipgloss.Width("Country")
	for _, pt := range points {
		nameWidth = max(nameWidth, lipgloss.Width(pt.Country))
	}
	col := p.r.NewStyle().Width(nameWidth + 2)

	sb.WriteString("\n")
	sb.WriteString(col.Render("Country"))
	sb.WriteString(p.muted.Render(v.XLabel + " | " + v.YLabel))
	for _, pt := range points {
		sb.WriteString("\n")
		sb.WriteString(p.color(pt.Color).Render(col.Render(pt.Country)))
		sb.WriteString(formatValue(pt.X) + " | " + formatValue(pt.Y))
	}
	return sb.String()
}

// Tooltip draws the hover text in a bordered box.
func (p *Printer) Tooltip(t views.Tooltip) string {
	return p.box.Render(t.Text())
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
