package render

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

const (
	chartWidth  = 640
	chartHeight = 200
	chartPad    = 8
)

// Line is one polyline of a chart, already projected into SVG coordinates.
type Line struct {
	Label  string
	Color  string
	Points string
	Last   string
}

// Chart is a titled group of lines sharing one y axis.
type Chart struct {
	Title  string
	Lines  []Line
	Min    string
	Max    string
	Width  int
	Height int
}

type metric struct {
	label string
	color string
	value func(position.Point) decimal.Decimal
}

var chartDefs = []struct {
	title   string
	metrics []metric
}{
	{"Whirlpool price", []metric{
		{"price", "#2563eb", func(p position.Point) decimal.Decimal { return p.WhirlpoolPrice }},
	}},
	{"Locked value", []metric{
		{"locked value", "#16a34a", func(p position.Point) decimal.Decimal { return p.LockedValue }},
	}},
	{"Token amounts", []metric{
		{"token A", "#9333ea", func(p position.Point) decimal.Decimal { return p.TokenAAmount }},
		{"token B", "#ea580c", func(p position.Point) decimal.Decimal { return p.TokenBAmount }},
	}},
	{"Fees and pending yield", []metric{
		{"fees A", "#0891b2", func(p position.Point) decimal.Decimal { return p.TokenAFees }},
		{"fees B", "#ca8a04", func(p position.Point) decimal.Decimal { return p.TokenBFees }},
		{"pending yield", "#dc2626", func(p position.Point) decimal.Decimal { return p.PendingYield }},
	}},
}

// Charts projects a series into the four dashboard charts. The x axis is
// time, so uneven sampling shows as uneven spacing.
func Charts(points []position.Point) []Chart {
	charts := make([]Chart, 0, len(chartDefs))
	for _, def := range chartDefs {
		charts = append(charts, buildChart(def.title, def.metrics, points))
	}
	return charts
}

func buildChart(title string, metrics []metric, points []position.Point) Chart {
	c := Chart{Title: title, Width: chartWidth, Height: chartHeight}
	if len(points) == 0 {
		return c
	}

	lo, hi := metrics[0].value(points[0]), metrics[0].value(points[0])
	for _, m := range metrics {
		for _, p := range points {
			v := m.value(p)
			lo = decimal.Min(lo, v)
			hi = decimal.Max(hi, v)
		}
	}
	c.Min, c.Max = lo.String(), hi.String()

	// Flat series: center the line.
	if lo.Equal(hi) {
		lo = lo.Sub(decimal.NewFromInt(1))
		hi = hi.Add(decimal.NewFromInt(1))
	}

	first := points[0].Timestamp
	span := points[len(points)-1].Timestamp.Sub(first).Seconds()
	ylo, yspan := lo.InexactFloat64(), hi.Sub(lo).InexactFloat64()

	for _, m := range metrics {
		var b strings.Builder
		for i, p := range points {
			x := float64(chartWidth) / 2
			if span > 0 {
				x = chartPad + p.Timestamp.Sub(first).Seconds()/span*(chartWidth-2*chartPad)
			}
			y := chartHeight - chartPad - (m.value(p).InexactFloat64()-ylo)/yspan*(chartHeight-2*chartPad)
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(coord(x))
			b.WriteByte(',')
			b.WriteString(coord(y))
		}
		c.Lines = append(c.Lines, Line{
			Label:  m.label,
			Color:  m.color,
			Points: b.String(),
			Last:   m.value(points[len(points)-1]).String(),
		})
	}
	return c
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
